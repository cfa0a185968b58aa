// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/pkg/errors"

	_ "github.com/hopsan/gohopsan/comps"
	"github.com/hopsan/gohopsan/core"
)

// buildDemoModel assembles the built-in demonstration model: a hydraulic
// line of alternating volumes and orifices fed by a pressure source, plus a
// signal chain ending in a sink. nVolumes scales the model size.
func buildDemoModel(engine *core.Engine, nVolumes int, dt float64) (*core.System, error) {
	sys := engine.CreateComponentSystem()
	sys.SetDesiredTimestep(dt)

	src := engine.CreateComponent("HydraulicPressureSourceC")
	src.Base().SetParameterValue("p", "2e5")
	if err := sys.AddComponent(src); err != nil {
		return nil, errors.Wrap(err, "adding pressure source")
	}

	prev := src
	prevPort := "P1"
	for i := 0; i < nVolumes; i++ {
		orifice := engine.CreateComponent("HydraulicLaminarOrifice")
		volume := engine.CreateComponent("HydraulicVolumeC")
		if err := sys.AddComponent(orifice); err != nil {
			return nil, errors.Wrap(err, "adding orifice")
		}
		if err := sys.AddComponent(volume); err != nil {
			return nil, errors.Wrap(err, "adding volume")
		}
		if err := sys.Connect(prev.Base().Name(), prevPort, orifice.Base().Name(), "P1"); err != nil {
			return nil, errors.Wrap(err, "connecting orifice")
		}
		if err := sys.Connect(orifice.Base().Name(), "P2", volume.Base().Name(), "P1"); err != nil {
			return nil, errors.Wrap(err, "connecting volume")
		}
		prev = volume
		prevPort = "P2"
	}

	// terminate the line so the last volume sees a resistive end
	endOrifice := engine.CreateComponent("HydraulicLaminarOrifice")
	endSource := engine.CreateComponent("HydraulicPressureSourceC")
	endSource.Base().SetParameterValue("p", "1e5")
	if err := sys.AddComponent(endOrifice); err != nil {
		return nil, errors.Wrap(err, "adding end orifice")
	}
	if err := sys.AddComponent(endSource); err != nil {
		return nil, errors.Wrap(err, "adding end source")
	}
	if err := sys.Connect(prev.Base().Name(), prevPort, endOrifice.Base().Name(), "P1"); err != nil {
		return nil, errors.Wrap(err, "terminating line")
	}
	if err := sys.Connect(endOrifice.Base().Name(), "P2", endSource.Base().Name(), "P1"); err != nil {
		return nil, errors.Wrap(err, "terminating line")
	}

	// signal chain: step -> gain -> sink
	step := engine.CreateComponent("SignalStep")
	gain := engine.CreateComponent("SignalGain")
	sink := engine.CreateComponent("SignalSink")
	gain.Base().SetParameterValue("k", "2")
	for _, c := range []core.Component{step, gain, sink} {
		if err := sys.AddComponent(c); err != nil {
			return nil, errors.Wrap(err, "adding signal component")
		}
	}
	if err := sys.Connect(step.Base().Name(), "out", gain.Base().Name(), "in"); err != nil {
		return nil, errors.Wrap(err, "connecting signal chain")
	}
	if err := sys.Connect(gain.Base().Name(), "out", sink.Base().Name(), "in"); err != nil {
		return nil, errors.Wrap(err, "connecting signal chain")
	}

	log.Infof("built demo model with %d components", len(sys.SubComponents()))
	return sys, nil
}
