// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comps

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/hopsan/gohopsan/core"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// addNamed creates a registered component and adds it under a fixed name
func addNamed(tst *testing.T, e *core.Engine, sys *core.System, typeName, name string) core.Component {
	c := e.CreateComponent(typeName)
	if _, ok := c.(*core.DummyComponent); ok {
		tst.Fatalf("type %q is not registered", typeName)
	}
	sys.AddComponent(c)
	actual, err := sys.RenameSubComponent(c.Base().Name(), name)
	if err != nil || actual != name {
		tst.Fatalf("cannot rename %q to %q: %v", typeName, name, err)
	}
	return c
}

func Test_signal01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("signal01. step -> gain -> add chain")

	e := core.NewEngine()
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(0.1)

	step := addNamed(tst, e, sys, "SignalStep", "step")
	gain := addNamed(tst, e, sys, "SignalGain", "gain")
	add := addNamed(tst, e, sys, "SignalAdd", "add")
	konst := addNamed(tst, e, sys, "SignalConstant", "konst")
	_ = addNamed(tst, e, sys, "SignalSink", "sink")

	step.Base().SetParameterValue("y_0", "0")
	step.Base().SetParameterValue("y_A", "1")
	step.Base().SetParameterValue("t_step", "0.5")
	gain.Base().SetParameterValue("k", "2")
	konst.Base().SetParameterValue("y", "10")

	sys.Connect("step", "out", "gain", "in")
	sys.Connect("gain", "out", "add", "in1")
	sys.Connect("konst", "out", "add", "in2")
	sys.Connect("add", "out", "sink", "in")

	if !sys.Initialize(0, 1) {
		tst.Errorf("initialize failed")
		return
	}
	sys.Simulate(1)

	out := add.Base().Port("out").ReadSafe(core.NSValue)
	chk.Scalar(tst, "add.out after step", 1e-15, out, 12) // 2*1 + 10
	sys.Finalize()
}

func Test_signal02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("signal02. unit delay resolves an algebraic loop")

	e := core.NewEngine()
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(0.1)

	gain := addNamed(tst, e, sys, "SignalGain", "gain")
	_ = addNamed(tst, e, sys, "SignalUnitDelay", "delay")
	gain.Base().SetParameterValue("k", "1")

	sys.Connect("gain", "out", "delay", "in")
	sys.Connect("delay", "out", "gain", "in")

	if !sys.Initialize(0, 1) {
		tst.Errorf("cycle with unit delay must initialize")
		return
	}
	sys.Simulate(1)
	sys.Finalize()
}

func Test_hydraulic01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("hydraulic01. source - orifice - source settles to a steady flow")

	e := core.NewEngine()
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(1e-3)

	hi := addNamed(tst, e, sys, "HydraulicPressureSourceC", "hi")
	orifice := addNamed(tst, e, sys, "HydraulicLaminarOrifice", "orifice")
	lo := addNamed(tst, e, sys, "HydraulicPressureSourceC", "lo")

	hi.Base().SetParameterValue("p", "2e5")
	lo.Base().SetParameterValue("p", "1e5")
	orifice.Base().SetParameterValue("Kc", "1e-9")

	sys.Connect("hi", "P1", "orifice", "P1")
	sys.Connect("orifice", "P2", "lo", "P1")

	if !sys.Initialize(0, 0.1) {
		tst.Errorf("initialize failed")
		return
	}
	sys.Simulate(0.1)

	// stiff sources: q = Kc * dp
	q := orifice.Base().Port("P2").ReadSafe(core.NHFlow)
	chk.Scalar(tst, "steady flow", 1e-12, q, 1e-9*(2e5-1e5))

	p1 := orifice.Base().Port("P1").ReadSafe(core.NHPressure)
	chk.Scalar(tst, "upstream pressure", 1e-9, p1, 2e5)
	sys.Finalize()
}

func Test_hydraulic02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("hydraulic02. volume line stays bounded and conserves sign")

	e := core.NewEngine()
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(1e-4)

	src := addNamed(tst, e, sys, "HydraulicPressureSourceC", "src")
	o1 := addNamed(tst, e, sys, "HydraulicLaminarOrifice", "o1")
	vol := addNamed(tst, e, sys, "HydraulicVolumeC", "vol")
	o2 := addNamed(tst, e, sys, "HydraulicLaminarOrifice", "o2")
	end := addNamed(tst, e, sys, "HydraulicPressureSourceC", "end")

	src.Base().SetParameterValue("p", "2e5")
	end.Base().SetParameterValue("p", "1e5")
	o1.Base().SetParameterValue("Kc", "1e-9")
	o2.Base().SetParameterValue("Kc", "1e-9")

	sys.Connect("src", "P1", "o1", "P1")
	sys.Connect("o1", "P2", "vol", "P1")
	sys.Connect("vol", "P2", "o2", "P1")
	sys.Connect("o2", "P2", "end", "P1")

	if !sys.Initialize(0, 0.05) {
		tst.Errorf("initialize failed")
		return
	}
	sys.Simulate(0.05)

	// the volume pressure must settle between the two supplies
	p := vol.Base().Port("P1").ReadSafe(core.NHPressure)
	if math.IsNaN(p) || p < 1e5-1e3 || p > 2e5+1e3 {
		tst.Errorf("volume pressure out of physical range: %v", p)
		return
	}
	chk.Scalar(tst, "mid pressure", 5e3, p, 1.5e5)
	sys.Finalize()
}

func Test_electric01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("electric01. voltage source - resistor - source gives ohmic current")

	e := core.NewEngine()
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(1e-4)

	u1 := addNamed(tst, e, sys, "ElectricVoltageSourceC", "u1")
	r := addNamed(tst, e, sys, "ElectricResistor", "r")
	u0 := addNamed(tst, e, sys, "ElectricVoltageSourceC", "u0")

	u1.Base().SetParameterValue("U", "12")
	u0.Base().SetParameterValue("U", "0")
	r.Base().SetParameterValue("R", "4")

	sys.Connect("u1", "P1", "r", "P1")
	sys.Connect("r", "P2", "u0", "P1")

	if !sys.Initialize(0, 0.01) {
		tst.Errorf("initialize failed")
		return
	}
	sys.Simulate(0.01)

	i := r.Base().Port("P2").ReadSafe(core.NECurrent)
	chk.Scalar(tst, "ohmic current", 1e-12, i, 3) // 12V / 4Ohm
	sys.Finalize()
}

func Test_mechanic01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mechanic01. spring-mass pair oscillates with bounded energy")

	e := core.NewEngine()
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(1e-4)

	spring := addNamed(tst, e, sys, "MechanicSpringC", "spring")
	spring2 := addNamed(tst, e, sys, "MechanicSpringC", "spring2")
	mass := addNamed(tst, e, sys, "MechanicTranslationalMass", "mass")
	anchor := addNamed(tst, e, sys, "MechanicTranslationalMass", "anchor")

	spring.Base().SetParameterValue("k", "1000")
	spring2.Base().SetParameterValue("k", "1000")
	mass.Base().SetParameterValue("m", "1")
	mass.Base().SetParameterValue("B", "10")
	anchor.Base().SetParameterValue("m", "1e6") // effectively fixed

	sys.Connect("spring", "P1", "mass", "P1")
	sys.Connect("spring", "P2", "anchor", "P1")
	sys.Connect("spring2", "P1", "mass", "P2")
	sys.Connect("spring2", "P2", "anchor", "P2")

	// preload one spring through the start values on the C side
	spring.Base().SetDefaultStartValue(spring.Base().Port("P1"), core.NMForce, 100)

	if !sys.Initialize(0, 0.5) {
		tst.Errorf("initialize failed")
		return
	}
	sys.Simulate(0.5)

	v := mass.Base().Port("P1").ReadSafe(core.NMVelocity)
	if math.IsNaN(v) || math.Abs(v) > 1e3 {
		tst.Errorf("mass velocity diverged: %v", v)
	}
	sys.Finalize()
}

func Test_parallel01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("parallel01. library model: 4-thread run matches single-thread")

	build := func() (*core.Engine, *core.System) {
		e := core.NewEngine()
		sys := e.CreateComponentSystem()
		sys.SetDesiredTimestep(1e-3)
		for i := 0; i < 20; i++ {
			hi := addNamed(tst, e, sys, "HydraulicPressureSourceC", io.Sf("hi%d", i))
			or := addNamed(tst, e, sys, "HydraulicLaminarOrifice", io.Sf("or%d", i))
			vol := addNamed(tst, e, sys, "HydraulicVolumeC", io.Sf("vol%d", i))
			o2 := addNamed(tst, e, sys, "HydraulicLaminarOrifice", io.Sf("o2%d", i))
			lo := addNamed(tst, e, sys, "HydraulicPressureSourceC", io.Sf("lo%d", i))
			hi.Base().SetParameterValue("p", io.Sf("%g", 2e5+float64(i)*1e3))
			sys.Connect(hi.Base().Name(), "P1", or.Base().Name(), "P1")
			sys.Connect(or.Base().Name(), "P2", vol.Base().Name(), "P1")
			sys.Connect(vol.Base().Name(), "P2", o2.Base().Name(), "P1")
			sys.Connect(o2.Base().Name(), "P2", lo.Base().Name(), "P1")
		}
		return e, sys
	}

	_, ref := build()
	if !ref.Initialize(0, 0.2) {
		tst.Errorf("initialize failed")
		return
	}
	ref.Simulate(0.2)

	_, par := build()
	if !par.Initialize(0, 0.2) {
		tst.Errorf("initialize failed")
		return
	}
	par.SimulateMultiThreaded(0, 0.2, 4, false, core.OfflineScheduling)

	refNodes := ref.Nodes()
	parNodes := par.Nodes()
	chk.IntAssert(len(refNodes), len(parNodes))
	for i := range refNodes {
		a := refNodes[i].LogData()
		b := parNodes[i].LogData()
		chk.IntAssert(len(a), len(b))
		for j := range a {
			for k := range a[j] {
				if a[j][k] != b[j][k] {
					tst.Errorf("log mismatch at node %d slot %d var %d: %v != %v", i, j, k, a[j][k], b[j][k])
					return
				}
			}
		}
	}
}
