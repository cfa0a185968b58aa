// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package comps holds the built-in component library subset shipped with
// the engine: signal arithmetic and a minimal set of hydraulic, mechanic
// and electric TLM components
package comps

import (
	"github.com/hopsan/gohopsan/core"
)

func init() {
	core.RegisterCreatorFunction("SignalConstant", func() core.Component { return new(SignalConstant) })
	core.RegisterCreatorFunction("SignalStep", func() core.Component { return new(SignalStep) })
	core.RegisterCreatorFunction("SignalGain", func() core.Component { return new(SignalGain) })
	core.RegisterCreatorFunction("SignalAdd", func() core.Component { return new(SignalAdd) })
	core.RegisterCreatorFunction("SignalUnitDelay", func() core.Component { return new(SignalUnitDelay) })
	core.RegisterCreatorFunction("SignalSink", func() core.Component { return new(SignalSink) })
}

// SignalConstant emits a constant value
type SignalConstant struct {
	core.ComponentBase

	y   float64
	out *float64
}

// Configure installs ports and parameters
func (o *SignalConstant) Configure() {
	o.SetCQSType(core.SType)
	o.AddConstant("y", "Constant value", "", 1, &o.y)
	o.AddOutputVariable("out", "Constant output", "", 1, &o.out)
}

// Initialize writes the constant once
func (o *SignalConstant) Initialize(startT, stopT float64) bool {
	*o.out = o.y
	return true
}

// SimulateOneStep keeps the output constant
func (o *SignalConstant) SimulateOneStep(stopT float64) {
	*o.out = o.y
}

// SignalStep emits a step at a given time
type SignalStep struct {
	core.ComponentBase

	base      float64
	amplitude float64
	stepTime  float64
	out       *float64
}

// Configure installs ports and parameters
func (o *SignalStep) Configure() {
	o.SetCQSType(core.SType)
	o.AddConstant("y_0", "Base value", "", 0, &o.base)
	o.AddConstant("y_A", "Amplitude", "", 1, &o.amplitude)
	o.AddConstant("t_step", "Step time", "Time", 1, &o.stepTime)
	o.AddOutputVariable("out", "Step output", "", 0, &o.out)
}

// Initialize starts on the base value
func (o *SignalStep) Initialize(startT, stopT float64) bool {
	*o.out = o.base
	return true
}

// SimulateOneStep raises the output once the step time has passed
func (o *SignalStep) SimulateOneStep(stopT float64) {
	if stopT >= o.stepTime {
		*o.out = o.base + o.amplitude
	} else {
		*o.out = o.base
	}
}

// SignalGain multiplies its input by a constant factor
type SignalGain struct {
	core.ComponentBase

	k   float64
	in  *float64
	out *float64
}

// Configure installs ports and parameters
func (o *SignalGain) Configure() {
	o.SetCQSType(core.SType)
	o.AddConstant("k", "Gain factor", "", 1, &o.k)
	o.AddInputVariable("in", "Input", "", 0, &o.in)
	o.AddOutputVariable("out", "Gained output", "", 0, &o.out)
}

// Initialize computes the initial output
func (o *SignalGain) Initialize(startT, stopT float64) bool {
	*o.out = o.k * *o.in
	return true
}

// SimulateOneStep applies the gain
func (o *SignalGain) SimulateOneStep(stopT float64) {
	*o.out = o.k * *o.in
}

// SignalAdd sums its two inputs
type SignalAdd struct {
	core.ComponentBase

	in1 *float64
	in2 *float64
	out *float64
}

// Configure installs ports
func (o *SignalAdd) Configure() {
	o.SetCQSType(core.SType)
	o.AddInputVariable("in1", "First term", "", 0, &o.in1)
	o.AddInputVariable("in2", "Second term", "", 0, &o.in2)
	o.AddOutputVariable("out", "Sum", "", 0, &o.out)
}

// Initialize computes the initial sum
func (o *SignalAdd) Initialize(startT, stopT float64) bool {
	*o.out = *o.in1 + *o.in2
	return true
}

// SimulateOneStep sums the inputs
func (o *SignalAdd) SimulateOneStep(stopT float64) {
	*o.out = *o.in1 + *o.in2
}

// SignalUnitDelay outputs its previous-step input; it intentionally breaks
// cycles in the signal graph
type SignalUnitDelay struct {
	core.ComponentBase

	delayed float64
	in      *float64
	out     *float64
}

// Configure installs ports; the delay is exempt from signal ordering
func (o *SignalUnitDelay) Configure() {
	o.SetCQSType(core.SType)
	o.SetLoopBreaker(true)
	o.AddInputVariable("in", "Input", "", 0, &o.in)
	o.AddOutputVariable("out", "Delayed output", "", 0, &o.out)
}

// Initialize seeds the delay register with the start value of the output
func (o *SignalUnitDelay) Initialize(startT, stopT float64) bool {
	o.delayed = *o.out
	return true
}

// SimulateOneStep emits last step's input and latches the current one
func (o *SignalUnitDelay) SimulateOneStep(stopT float64) {
	*o.out = o.delayed
	o.delayed = *o.in
}

// SignalSink terminates any number of signals so that they get logged; it
// computes nothing
type SignalSink struct {
	core.ComponentBase

	in *core.Port
}

// Configure installs the multiport input
func (o *SignalSink) Configure() {
	o.SetCQSType(core.SType)
	o.in = o.AddReadMultiPort("in", core.NodeSignalType, false)
}
