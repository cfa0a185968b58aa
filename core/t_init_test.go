// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// test components ////////////////////////////////////////////////////////////

// tstSourceC is a C-type supply with one hydraulic power port
type tstSourceC struct {
	ComponentBase
	pSet float64
	p1   *Port
}

func (o *tstSourceC) Configure() {
	o.SetCQSType(CType)
	o.AddConstant("p", "Supplied pressure", "Pressure", 1e5, &o.pSet)
	o.p1 = o.AddPowerPort("P1", NodeHydraulicType)
}

func (o *tstSourceC) Initialize(startT, stopT float64) bool {
	o.p1.WriteSafe(NHWave, o.pSet)
	o.p1.WriteSafe(NHZc, 0)
	return true
}

func (o *tstSourceC) SimulateOneStep(stopT float64) {
	o.p1.WriteSafe(NHWave, o.pSet)
}

// tstOrificeQ is a Q-type restriction with two hydraulic power ports
type tstOrificeQ struct {
	ComponentBase
	kc     float64
	p1, p2 *Port
}

func (o *tstOrificeQ) Configure() {
	o.SetCQSType(QType)
	o.AddConstant("Kc", "Pressure-flow coefficient", "", 1e-11, &o.kc)
	o.p1 = o.AddPowerPort("P1", NodeHydraulicType)
	o.p2 = o.AddPowerPort("P2", NodeHydraulicType)
}

func (o *tstOrificeQ) SimulateOneStep(stopT float64) {
	c1 := o.p1.ReadSafe(NHWave)
	c2 := o.p2.ReadSafe(NHWave)
	zc1 := o.p1.ReadSafe(NHZc)
	zc2 := o.p2.ReadSafe(NHZc)
	q2 := o.kc * (c1 - c2) / (1 + o.kc*(zc1+zc2))
	o.p1.WriteSafe(NHFlow, -q2)
	o.p2.WriteSafe(NHFlow, q2)
	o.p1.WriteSafe(NHPressure, c1-q2*zc1)
	o.p2.WriteSafe(NHPressure, c2+q2*zc2)
}

// tstGainS is a signal gain with auto-bound input and output
type tstGainS struct {
	ComponentBase
	k   float64
	in  *float64
	out *float64
}

func (o *tstGainS) Configure() {
	o.SetCQSType(SType)
	o.AddConstant("k", "Gain factor", "", 1, &o.k)
	o.AddInputVariable("in", "Input", "", 0, &o.in)
	o.AddOutputVariable("out", "Output", "", 0, &o.out)
}

func (o *tstGainS) Initialize(startT, stopT float64) bool {
	*o.out = o.k * *o.in
	return true
}

func (o *tstGainS) SimulateOneStep(stopT float64) {
	*o.out = o.k * *o.in
}

// tstDelayS outputs its previous-step input and breaks sorting cycles
type tstDelayS struct {
	ComponentBase
	delayed float64
	in      *float64
	out     *float64
}

func (o *tstDelayS) Configure() {
	o.SetCQSType(SType)
	o.SetLoopBreaker(true)
	o.AddInputVariable("in", "Input", "", 0, &o.in)
	o.AddOutputVariable("out", "Output", "", 0, &o.out)
}

func (o *tstDelayS) Initialize(startT, stopT float64) bool {
	o.delayed = *o.out
	return true
}

func (o *tstDelayS) SimulateOneStep(stopT float64) {
	*o.out = o.delayed
	o.delayed = *o.in
}

// tstStepCounter counts SimulateOneStep calls
type tstStepCounter struct {
	ComponentBase
	nSteps int
	out    *float64
}

func (o *tstStepCounter) Configure() {
	o.SetCQSType(SType)
	o.AddOutputVariable("out", "Step count", "", 0, &o.out)
}

func (o *tstStepCounter) Initialize(startT, stopT float64) bool {
	o.nSteps = 0
	return true
}

func (o *tstStepCounter) SimulateOneStep(stopT float64) {
	o.nSteps++
	*o.out = float64(o.nSteps)
}

// helpers ////////////////////////////////////////////////////////////////////

// newTestEngine returns an engine with the test components registered
func newTestEngine() *Engine {
	e := NewEngine()
	e.RegisterCreatorFunction("TestSourceC", func() Component { return new(tstSourceC) })
	e.RegisterCreatorFunction("TestOrificeQ", func() Component { return new(tstOrificeQ) })
	e.RegisterCreatorFunction("TestGainS", func() Component { return new(tstGainS) })
	e.RegisterCreatorFunction("TestDelayS", func() Component { return new(tstDelayS) })
	e.RegisterCreatorFunction("TestStepCounter", func() Component { return new(tstStepCounter) })
	return e
}

// mustAdd creates a component, renames it and adds it to sys
func mustAdd(e *Engine, sys *System, typeName, name string) Component {
	c := e.CreateComponent(typeName)
	c.Base().name = name
	if err := sys.AddComponent(c); err != nil {
		chk.Panic("cannot add component %q: %v", name, err)
	}
	return c
}
