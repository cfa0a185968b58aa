// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// ConditionalSystem is a subsystem that only simulates its children while
// its condition input is true; time and logging still advance so that the
// surrounding system stays synchronous
type ConditionalSystem struct {
	System

	condition *float64
}

// configureCondition installs the condition input
func (o *ConditionalSystem) configureCondition() {
	o.AddInputVariable("on", "Simulate contents while true", "", 1, &o.condition)
}

// Simulate advances the system; while the condition is false only time and
// the log grid move forward
func (o *ConditionalSystem) Simulate(stopT float64) {
	if o.condition == nil || *o.condition > 0.5 {
		o.System.Simulate(stopT)
		return
	}
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	for i := 0; i < n; i++ {
		if o.wasStopRequested() {
			break
		}
		o.time += o.timestep
		o.totalSteps++
		o.logTimeAndNodes(o.totalSteps)
	}
}

// SimulateOneStep lets the conditional system act as an ordinary component
func (o *ConditionalSystem) SimulateOneStep(stopT float64) {
	o.Simulate(stopT)
}
