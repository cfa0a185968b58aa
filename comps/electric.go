// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comps

import (
	"github.com/hopsan/gohopsan/core"
)

func init() {
	core.RegisterCreatorFunction("ElectricVoltageSourceC", func() core.Component { return new(ElectricVoltageSourceC) })
	core.RegisterCreatorFunction("ElectricCapacitanceC", func() core.Component { return new(ElectricCapacitanceC) })
	core.RegisterCreatorFunction("ElectricResistor", func() core.Component { return new(ElectricResistor) })
}

// ElectricVoltageSourceC is a C-type stiff voltage supply
type ElectricVoltageSourceC struct {
	core.ComponentBase

	uSet float64
	p1   *core.Port
	c    *float64
	zc   *float64
}

// Configure installs the power port and the voltage constant
func (o *ElectricVoltageSourceC) Configure() {
	o.SetCQSType(core.CType)
	o.AddConstant("U", "Supplied voltage", "Voltage", 12, &o.uSet)
	o.p1 = o.AddPowerPort("P1", core.NodeElectricType)
}

// Initialize imposes the supply
func (o *ElectricVoltageSourceC) Initialize(startT, stopT float64) bool {
	o.c = o.p1.NodeDataPtr(core.NEWave)
	o.zc = o.p1.NodeDataPtr(core.NEZc)
	*o.c = o.uSet
	*o.zc = 0
	return true
}

// SimulateOneStep keeps imposing the supply voltage
func (o *ElectricVoltageSourceC) SimulateOneStep(stopT float64) {
	*o.c = o.uSet
	*o.zc = 0
}

// ElectricCapacitanceC is a C-type capacitance modelled as a transmission
// line of one timestep
type ElectricCapacitanceC struct {
	core.ComponentBase

	cap   float64
	alpha float64

	p1, p2   *core.Port
	i1, i2   *float64
	u1, u2   *float64
	c1, c2   *float64
	zc1, zc2 *float64
	zc       float64
}

// Configure installs two power ports and the capacitance constants
func (o *ElectricCapacitanceC) Configure() {
	o.SetCQSType(core.CType)
	o.AddConstant("C", "Capacitance", "F", 1e-4, &o.cap)
	o.AddConstant("alpha", "Low pass coefficient", "", 0.1, &o.alpha)
	o.p1 = o.AddPowerPort("P1", core.NodeElectricType)
	o.p2 = o.AddPowerPort("P2", core.NodeElectricType)
}

// Initialize computes the impedance and primes the waves
func (o *ElectricCapacitanceC) Initialize(startT, stopT float64) bool {
	o.i1 = o.p1.NodeDataPtr(core.NECurrent)
	o.u1 = o.p1.NodeDataPtr(core.NEVoltage)
	o.c1 = o.p1.NodeDataPtr(core.NEWave)
	o.zc1 = o.p1.NodeDataPtr(core.NEZc)
	o.i2 = o.p2.NodeDataPtr(core.NECurrent)
	o.u2 = o.p2.NodeDataPtr(core.NEVoltage)
	o.c2 = o.p2.NodeDataPtr(core.NEWave)
	o.zc2 = o.p2.NodeDataPtr(core.NEZc)

	o.zc = o.Timestep() / o.cap / (1 - o.alpha)
	*o.c1 = *o.u1 + o.zc**o.i1
	*o.c2 = *o.u2 + o.zc**o.i2
	*o.zc1 = o.zc
	*o.zc2 = o.zc
	return true
}

// SimulateOneStep advances the transmission line one step
func (o *ElectricCapacitanceC) SimulateOneStep(stopT float64) {
	c10 := *o.c2 + 2*o.zc**o.i2
	c20 := *o.c1 + 2*o.zc**o.i1
	*o.c1 = o.alpha**o.c1 + (1-o.alpha)*c10
	*o.c2 = o.alpha**o.c2 + (1-o.alpha)*c20
	*o.zc1 = o.zc
	*o.zc2 = o.zc
}

// ElectricResistor is a Q-type resistor between two electric nodes
type ElectricResistor struct {
	core.ComponentBase

	r float64

	p1, p2   *core.Port
	i1, i2   *float64
	u1, u2   *float64
	c1, c2   *float64
	zc1, zc2 *float64
}

// Configure installs two power ports and the resistance constant
func (o *ElectricResistor) Configure() {
	o.SetCQSType(core.QType)
	o.AddConstant("R", "Resistance", "Resistance", 1, &o.r)
	o.p1 = o.AddPowerPort("P1", core.NodeElectricType)
	o.p2 = o.AddPowerPort("P2", core.NodeElectricType)
}

// Initialize binds node data
func (o *ElectricResistor) Initialize(startT, stopT float64) bool {
	o.i1 = o.p1.NodeDataPtr(core.NECurrent)
	o.u1 = o.p1.NodeDataPtr(core.NEVoltage)
	o.c1 = o.p1.NodeDataPtr(core.NEWave)
	o.zc1 = o.p1.NodeDataPtr(core.NEZc)
	o.i2 = o.p2.NodeDataPtr(core.NECurrent)
	o.u2 = o.p2.NodeDataPtr(core.NEVoltage)
	o.c2 = o.p2.NodeDataPtr(core.NEWave)
	o.zc2 = o.p2.NodeDataPtr(core.NEZc)
	return true
}

// SimulateOneStep solves the resistive relation against the incoming waves
func (o *ElectricResistor) SimulateOneStep(stopT float64) {
	g := 1 / o.r
	i2 := g * (*o.c1 - *o.c2) / (1 + g*(*o.zc1+*o.zc2))
	i1 := -i2
	*o.i1 = i1
	*o.i2 = i2
	*o.u1 = *o.c1 + i1**o.zc1
	*o.u2 = *o.c2 + i2**o.zc2
}
