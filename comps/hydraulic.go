// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comps

import (
	"github.com/hopsan/gohopsan/core"
)

func init() {
	core.RegisterCreatorFunction("HydraulicPressureSourceC", func() core.Component { return new(HydraulicPressureSourceC) })
	core.RegisterCreatorFunction("HydraulicVolumeC", func() core.Component { return new(HydraulicVolumeC) })
	core.RegisterCreatorFunction("HydraulicLaminarOrifice", func() core.Component { return new(HydraulicLaminarOrifice) })
}

// HydraulicPressureSourceC is a C-type pressure supply: it imposes its
// pressure as the wave variable with zero characteristic impedance
type HydraulicPressureSourceC struct {
	core.ComponentBase

	pSet float64
	p1   *core.Port
	c    *float64
	zc   *float64
}

// Configure installs the power port and the pressure constant
func (o *HydraulicPressureSourceC) Configure() {
	o.SetCQSType(core.CType)
	o.pSet = 1e5
	o.AddConstant("p", "Supplied pressure", "Pressure", 1e5, &o.pSet)
	o.p1 = o.AddPowerPort("P1", core.NodeHydraulicType)
}

// Initialize binds node data and imposes the supply
func (o *HydraulicPressureSourceC) Initialize(startT, stopT float64) bool {
	o.c = o.p1.NodeDataPtr(core.NHWave)
	o.zc = o.p1.NodeDataPtr(core.NHZc)
	*o.c = o.pSet
	*o.zc = 0
	return true
}

// SimulateOneStep keeps imposing the supply pressure
func (o *HydraulicPressureSourceC) SimulateOneStep(stopT float64) {
	*o.c = o.pSet
	*o.zc = 0
}

// HydraulicVolumeC is a C-type hydraulic volume modelled as a transmission
// line of one timestep with low-pass filtered wave update
type HydraulicVolumeC struct {
	core.ComponentBase

	volume float64
	bulk   float64
	alpha  float64

	p1, p2   *core.Port
	q1, q2   *float64
	p1v, p2v *float64
	c1, c2   *float64
	zc1, zc2 *float64
	zc       float64
}

// Configure installs two power ports and the volume constants
func (o *HydraulicVolumeC) Configure() {
	o.SetCQSType(core.CType)
	o.AddConstant("V", "Volume", "Volume", 1e-3, &o.volume)
	o.AddConstant("Beta_e", "Bulk modulus", "Pressure", 1e9, &o.bulk)
	o.AddConstant("alpha", "Low pass coefficient", "", 0.1, &o.alpha)
	o.p1 = o.AddPowerPort("P1", core.NodeHydraulicType)
	o.p2 = o.AddPowerPort("P2", core.NodeHydraulicType)
}

// Initialize computes the characteristic impedance and primes the waves
func (o *HydraulicVolumeC) Initialize(startT, stopT float64) bool {
	o.q1 = o.p1.NodeDataPtr(core.NHFlow)
	o.p1v = o.p1.NodeDataPtr(core.NHPressure)
	o.c1 = o.p1.NodeDataPtr(core.NHWave)
	o.zc1 = o.p1.NodeDataPtr(core.NHZc)
	o.q2 = o.p2.NodeDataPtr(core.NHFlow)
	o.p2v = o.p2.NodeDataPtr(core.NHPressure)
	o.c2 = o.p2.NodeDataPtr(core.NHWave)
	o.zc2 = o.p2.NodeDataPtr(core.NHZc)

	o.zc = o.bulk / o.volume * o.Timestep() / (1 - o.alpha)
	*o.c1 = *o.p1v + o.zc**o.q1
	*o.c2 = *o.p2v + o.zc**o.q2
	*o.zc1 = o.zc
	*o.zc2 = o.zc
	return true
}

// SimulateOneStep advances the transmission line one step
func (o *HydraulicVolumeC) SimulateOneStep(stopT float64) {
	c10 := *o.c2 + 2*o.zc**o.q2
	c20 := *o.c1 + 2*o.zc**o.q1
	*o.c1 = o.alpha**o.c1 + (1-o.alpha)*c10
	*o.c2 = o.alpha**o.c2 + (1-o.alpha)*c20
	*o.zc1 = o.zc
	*o.zc2 = o.zc
}

// HydraulicLaminarOrifice is a Q-type laminar restriction between two
// hydraulic nodes
type HydraulicLaminarOrifice struct {
	core.ComponentBase

	kc float64

	p1, p2   *core.Port
	q1, q2   *float64
	p1v, p2v *float64
	c1, c2   *float64
	zc1, zc2 *float64
}

// Configure installs two power ports and the conductance constant
func (o *HydraulicLaminarOrifice) Configure() {
	o.SetCQSType(core.QType)
	o.AddConstant("Kc", "Pressure-flow coefficient", "", 1e-11, &o.kc)
	o.p1 = o.AddPowerPort("P1", core.NodeHydraulicType)
	o.p2 = o.AddPowerPort("P2", core.NodeHydraulicType)
}

// Initialize binds node data
func (o *HydraulicLaminarOrifice) Initialize(startT, stopT float64) bool {
	o.q1 = o.p1.NodeDataPtr(core.NHFlow)
	o.p1v = o.p1.NodeDataPtr(core.NHPressure)
	o.c1 = o.p1.NodeDataPtr(core.NHWave)
	o.zc1 = o.p1.NodeDataPtr(core.NHZc)
	o.q2 = o.p2.NodeDataPtr(core.NHFlow)
	o.p2v = o.p2.NodeDataPtr(core.NHPressure)
	o.c2 = o.p2.NodeDataPtr(core.NHWave)
	o.zc2 = o.p2.NodeDataPtr(core.NHZc)
	return true
}

// SimulateOneStep solves the resistive relation against the incoming waves
func (o *HydraulicLaminarOrifice) SimulateOneStep(stopT float64) {
	q2 := o.kc * (*o.c1 - *o.c2) / (1 + o.kc*(*o.zc1+*o.zc2))
	q1 := -q2
	*o.q1 = q1
	*o.q2 = q2
	*o.p1v = *o.c1 + q1**o.zc1
	*o.p2v = *o.c2 + q2**o.zc2
}
