// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"math"
	"strings"

	"github.com/cpmech/gosl/io"
)

// calcNumSimSteps rounds the remaining interval to a whole number of steps
func calcNumSimSteps(t, stopT, dt float64) int {
	if dt <= 0 {
		return 0
	}
	n := int(math.Round((stopT - t) / dt))
	if n < 0 {
		return 0
	}
	return n
}

// log grid ///////////////////////////////////////////////////////////////////

// limitLogSlots clamps the requested sample count to the number of samples
// the simulated interval can produce
func limitLogSlots(simStartT, simStopT, dt, logStartT float64, requested int) int {
	startT := math.Max(simStartT, logStartT)
	if startT > simStopT {
		startT = simStopT
	}
	possible := int((simStopT-startT)/dt + 1)
	if possible < requested {
		return possible
	}
	return requested
}

// setupLogGrid computes the slot count and the strictly increasing vector of
// step indices at which logging occurs; the first logged sample is the
// initial state
func (o *System) setupLogGrid(startT, stopT float64) {
	o.nLogSlots = limitLogSlots(startT, stopT, o.timestep, o.logStartTime, o.requestedLogSamples)
	if o.nLogSlots != o.requestedLogSamples {
		o.AddWarningMessage(io.Sf("Requested %d log samples but the simulation only produces %d, limiting", o.requestedLogSamples, o.nLogSlots))
	}
	o.logSlotIndices = o.logSlotIndices[:0]
	o.logTimes = o.logTimes[:0]
	o.logCursor = 0
	if o.nLogSlots <= 0 {
		return
	}

	logStart := math.Max(startT, o.logStartTime)
	firstStep := int(math.Ceil((logStart - startT) / o.timestep))
	totalSteps := calcNumSimSteps(startT, stopT, o.timestep)
	span := totalSteps - firstStep
	if span < 0 {
		span = 0
	}
	// spread nLogSlots indices over [firstStep, totalSteps], keeping them
	// strictly increasing
	last := -1
	for i := 0; i < o.nLogSlots; i++ {
		var idx int
		if o.nLogSlots == 1 {
			idx = firstStep
		} else {
			idx = firstStep + int(math.Round(float64(i)*float64(span)/float64(o.nLogSlots-1)))
		}
		if idx <= last {
			idx = last + 1
		}
		if idx > totalSteps {
			break
		}
		o.logSlotIndices = append(o.logSlotIndices, idx)
		last = idx
	}
	o.nLogSlots = len(o.logSlotIndices)
}

// preAllocateLogSpace sizes every owned node's log matrix; an allocation
// failure disables logging for the offending node and keeps simulating.
// A node logs when at least one of its ports requests logging.
func (o *System) preAllocateLogSpace() {
	for _, n := range o.nodes {
		enable := false
		for _, p := range n.ports {
			if p.enableLog {
				enable = true
				break
			}
		}
		n.SetLoggingEnabled(enable && o.nLogSlots > 0)
		if !n.PreAllocateLog(o.nLogSlots) {
			o.AddWarningMessage("could not allocate log memory for a node, logging disabled for it")
		}
	}
	o.logTimes = make([]float64, 0, o.nLogSlots)
}

// logTimeAndNodes appends one sample when the step counter matches the next
// precomputed index
func (o *System) logTimeAndNodes(step int) {
	if o.logCursor >= len(o.logSlotIndices) {
		return
	}
	if step != o.logSlotIndices[o.logCursor] {
		return
	}
	o.logTimes = append(o.logTimes, o.time)
	for _, n := range o.nodes {
		n.LogIntoSlot(o.logCursor)
	}
	o.logCursor++
}

// sorting ////////////////////////////////////////////////////////////////////

// signalSourceComponent finds the component this read-type port depends on,
// mapped to the child of sys that contains it; loop breakers are no sources
func signalSourceComponent(sys *System, p *Port) Component {
	if !p.IsConnected() {
		return nil
	}
	endpoints := []*Port{p}
	if p.IsMultiPort() {
		endpoints = p.subPorts
	}
	for _, ep := range endpoints {
		if ep.node == nil {
			continue
		}
		src := ep.node.SourcePort()
		if src == nil {
			continue
		}
		writer := src.owner
		if writer.Base().IsLoopBreaker() {
			continue
		}
		// map the writer to the sibling child inside sys
		for c := writer; c != nil; {
			if c.Base().SystemParent() == sys {
				return c
			}
			parent := c.Base().SystemParent()
			if parent == nil {
				break
			}
			c = parent.self
		}
	}
	return nil
}

// readHintPorts lists the ports of c that behave as signal destinations; on
// subsystems the boundary recursion uses the internal sort hint
func readHintPorts(c Component) (res []*Port) {
	isSys := compIsSystem(c)
	for _, p := range c.Base().Ports() {
		switch {
		case p.kind == ReadPortKind || p.kind == ReadMultiPortKind:
			if p.sortHint == Destination {
				res = append(res, p)
			}
		case isSys && p.kind == SystemPortKind:
			if p.InternalSortHint() == Destination {
				res = append(res, p)
			}
		}
	}
	return
}

// sortComponentVector sorts components so that each runs after the
// components it receives signals from. The only valid failure is an
// algebraic loop in the signal graph.
func (o *System) sortComponentVector(comps []Component) ([]Component, bool) {
	sorted := make([]Component, 0, len(comps))
	placed := make(map[Component]bool)
	inVector := make(map[Component]bool)
	for _, c := range comps {
		inVector[c] = true
	}

	for len(sorted) < len(comps) {
		progressed := false
		for _, c := range comps {
			if placed[c] {
				continue
			}
			ready := true
			for _, p := range readHintPorts(c) {
				req := signalSourceComponent(o, p)
				if req == nil || req == c {
					continue
				}
				if inVector[req] && !placed[req] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, c)
				placed[c] = true
				progressed = true
			}
		}
		if !progressed {
			o.AddErrorMessage("Initialize: algebraic loop found, signal components could not be sorted")
			if len(sorted) > 0 {
				o.AddInfoMessage("Last component that was successfully sorted: " + sorted[len(sorted)-1].Base().Name())
			}
			o.AddInfoMessage("Initialize: hint: use unit delay components to resolve loops")
			return comps, false
		}
	}

	if len(sorted) > 0 && sorted[0].Base().CQSType() == SType {
		names := make([]string, len(sorted))
		for i, c := range sorted {
			names[i] = c.Base().Name()
		}
		o.AddDebugMessage("Sorted components successfully, simulation order:\n" + strings.Join(names, "\n"))
	}
	return sorted, true
}

// timestep distribution //////////////////////////////////////////////////////

// adjustTimestep hands each child its timestep: inheritors get the parent
// step, the rest keep their own desired step with non-positive values
// falling back to the parent step
func (o *System) adjustTimestep(comps []Component) {
	for _, c := range comps {
		b := c.Base()
		if b.InheritsTimestep() {
			b.setTimestep(o.timestep)
			continue
		}
		sub := b.DesiredTimestep()
		if sub <= 0 {
			sub = o.timestep
		}
		b.setTimestep(sub)
	}
}

// pre-simulation validation //////////////////////////////////////////////////

// checkModelBeforeSimulation validates required-port connections, rejects
// unknown-CQS children and warns about unreferenced system parameters
func (o *System) checkModelBeforeSimulation() bool {
	for _, c := range o.SubComponents() {
		b := c.Base()
		for _, p := range b.Ports() {
			if p.IsConnectionRequired() && !p.IsConnected() {
				o.AddErrorMessage("Component " + b.Name() + " port " + p.Name() + " must be connected")
				return false
			}
			if p.kind == PowerPortKind && p.IsConnected() && p.node != nil {
				nPower := len(p.node.ConnectedPortsByKind(PowerPortKind))
				nInterface := 0
				for _, q := range p.node.ConnectedPorts() {
					if q.IsInterfacePort() {
						nInterface++
					}
				}
				if nPower < 2 && nInterface == 0 {
					o.AddErrorMessage("Component " + b.Name() + " power port " + p.Name() + " has no power peer on its node")
					return false
				}
			}
		}
		if b.CQSType() == UndefinedCQS {
			o.AddErrorMessage("Component " + b.Name() + " has an unknown CQS type: " + b.CQSType().String())
			return false
		}
	}

	// warn about unused system parameters; names carrying '#' follow the
	// start-value suffix convention and are skipped
	for _, p := range o.params.Parameters() {
		if strings.Contains(p.Name(), "#") {
			continue
		}
		if !o.systemParameterIsReferenced(p.Name()) {
			o.AddWarningMessage("System parameter " + p.Name() + " is not used by any component")
		}
	}
	return true
}

// systemParameterIsReferenced scans children for a raw value referencing name
func (o *System) systemParameterIsReferenced(name string) bool {
	for _, c := range o.SubComponents() {
		for _, p := range c.Base().Parameters().Parameters() {
			if strings.Contains(p.Value(), name) {
				return true
			}
		}
	}
	return false
}

// start values and recursive evaluation //////////////////////////////////////

// loadStartValues primes all live nodes: children first, then the boundary
// ports override. A read port on the boundary keeps its own start value only
// when no writer feeds it.
func (o *System) loadStartValues() {
	for _, c := range o.SubComponents() {
		if s := asSystem(c); s != nil {
			s.loadStartValues()
			continue
		}
		c.Base().LoadStartValues()
	}
	for _, name := range o.portOrder {
		p := o.ports[name]
		if p.kind == ReadPortKind {
			if !p.IsConnectedToWriteOrPowerPort() {
				p.ForceLoadStartValues()
			}
			continue
		}
		p.LoadStartValues()
	}
}

// LoadStartValuesFromSimulation snapshots the hierarchy's node values into
// the start nodes; used by keep-values-as-start-values mode
func (o *System) LoadStartValuesFromSimulation() {
	for _, c := range o.SubComponents() {
		if s := asSystem(c); s != nil {
			s.LoadStartValuesFromSimulation()
			continue
		}
		c.Base().LoadStartValuesFromSimulation()
	}
	o.ComponentBase.LoadStartValuesFromSimulation()
}

// evaluateScriptsRecursively runs every non-empty inline script in the
// hierarchy through the engine's script evaluator; failure is fatal for
// initialization
func (o *System) evaluateScriptsRecursively() bool {
	if o.script != "" {
		if o.engine == nil || o.engine.evaluator == nil {
			o.AddErrorMessage("System " + o.name + " carries an inline script but no script evaluator is installed")
			return false
		}
		output, err := o.engine.evaluator.Eval(o.script, o)
		if err != nil {
			o.AddErrorMessage("Inline script failed in system " + o.name + ": " + err.Error())
			return false
		}
		if output != "" {
			o.AddDebugMessage(output)
		}
	}
	for _, c := range o.SubComponents() {
		if s := asSystem(c); s != nil {
			if !s.evaluateScriptsRecursively() {
				return false
			}
			continue
		}
		if script := c.Base().InlineScript(); script != "" {
			if o.engine == nil || o.engine.evaluator == nil {
				o.AddErrorMessage("Component " + c.Base().Name() + " carries an inline script but no script evaluator is installed")
				return false
			}
			if _, err := o.engine.evaluator.EvalInComponent(script, c); err != nil {
				o.AddErrorMessage("Inline script failed in component " + c.Base().Name() + ": " + err.Error())
				return false
			}
		}
	}
	return true
}

// evaluateParametersRecursively evaluates parameters in the whole hierarchy
func (o *System) evaluateParametersRecursively() bool {
	ok := o.params.EvaluateParameters()
	for _, c := range o.SubComponents() {
		if s := asSystem(c); s != nil {
			ok = s.evaluateParametersRecursively() && ok
			continue
		}
		ok = c.Base().EvaluateParameters() && ok
	}
	return ok
}

// checkParametersRecursively re-checks deferred parameters bottom-up; the
// first failure is surfaced by component and parameter name
func (o *System) checkParametersRecursively() (component, parameter string, ok bool) {
	if failed, okp := o.params.CheckParameters(); !okp {
		return o.name, failed, false
	}
	for _, c := range o.SubComponents() {
		if s := asSystem(c); s != nil {
			if comp, par, okc := s.checkParametersRecursively(); !okc {
				return comp, par, false
			}
			continue
		}
		if failed, okp := c.Base().Parameters().CheckParameters(); !okp {
			return c.Base().Name(), failed, false
		}
	}
	return "", "", true
}

// initialize /////////////////////////////////////////////////////////////////

// partitionDisabled parks disabled children in the disabled vectors; they
// still get their start values loaded so that node values are fresh when
// they are re-enabled
func (o *System) partitionDisabled() {
	split := func(v []Component) (active, off []Component) {
		for _, c := range v {
			if c.Base().IsDisabled() {
				off = append(off, c)
			} else {
				active = append(active, c)
			}
		}
		return
	}
	var off []Component
	o.sComps, off = split(append(o.sComps, o.disabledS...))
	o.disabledS = off
	o.cComps, off = split(append(o.cComps, o.disabledC...))
	o.disabledC = off
	o.qComps, off = split(append(o.qComps, o.disabledQ...))
	o.disabledQ = off
}

// Initialize prepares the system hierarchy for a run from startT to stopT.
// False is returned when validation, sorting, script evaluation, parameter
// evaluation or any child initialization fails.
func (o *System) Initialize(startT, stopT float64) bool {
	o.AddDebugMessage("ComponentSystem::Initialize in " + o.name)

	o.partitionDisabled()
	o.resetStopFlag()

	o.time = startT
	o.totalSteps = 0

	if o.timestep < 10*math.SmallestNonzeroFloat64 {
		o.AddErrorMessage("The timestep is too low")
		return false
	}

	if !o.checkModelBeforeSimulation() {
		return false
	}

	o.setupLogGrid(startT, stopT)
	o.preAllocateLogSpace()
	if o.wasStopRequested() {
		return false
	}

	o.adjustTimestep(o.sComps)
	o.adjustTimestep(o.cComps)
	o.adjustTimestep(o.qComps)

	// sort signal components; a cycle here is fatal
	var ok bool
	o.sComps, ok = o.sortComponentVector(o.sComps)
	if !ok {
		return false
	}
	// C and Q sorting is best effort
	o.cComps, _ = o.sortComponentVector(o.cComps)
	o.qComps, _ = o.sortComponentVector(o.qComps)

	if o.IsTopLevelSystem() {
		if !o.evaluateScriptsRecursively() {
			return false
		}
		o.evaluateParametersRecursively()
		if comp, par, okp := o.checkParametersRecursively(); !okp {
			o.AddErrorMessage("Parameter " + par + " in component " + comp + " could not be evaluated")
			return false
		}
		if !o.keepStartValues {
			o.loadStartValues()
		}
	}

	initGroup := func(comps []Component) bool {
		for _, c := range comps {
			if o.wasStopRequested() {
				return false
			}
			c.Base().InitializeAutoSignalNodeDataPtrs()
			if s := asSystem(c); s != nil {
				s.requestedLogSamples = o.requestedLogSamples
				s.logStartTime = o.logStartTime
			}
			if !c.Initialize(startT, stopT) {
				o.StopSimulation("Failed to initialize: " + c.Base().Name())
			}
		}
		return true
	}
	if !initGroup(o.sComps) || !initGroup(o.cComps) || !initGroup(o.qComps) {
		return false
	}
	if o.wasStopRequested() {
		return false
	}

	// the initial state is the first logged sample
	o.logTimeAndNodes(o.totalSteps)
	return true
}

// simulate ///////////////////////////////////////////////////////////////////

// Simulate advances the system to stopT with the fixed step assigned at
// initialize: signal components run first, then C, then Q, then logging
func (o *System) Simulate(stopT float64) {
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	for i := 0; i < n; i++ {
		if o.wasStopRequested() {
			break
		}
		o.time += o.timestep
		for _, c := range o.sComps {
			c.SimulateOneStep(o.time)
		}
		for _, c := range o.cComps {
			c.SimulateOneStep(o.time)
		}
		for _, c := range o.qComps {
			c.SimulateOneStep(o.time)
		}
		o.totalSteps++
		o.logTimeAndNodes(o.totalSteps)
	}
}

// SimulateOneStep lets a subsystem act as an ordinary component inside its
// parent: it advances itself to the parent's current time
func (o *System) SimulateOneStep(stopT float64) {
	o.Simulate(stopT)
}

// Finalize releases per-run resources on every child and merges the
// disabled children back into the active vectors
func (o *System) Finalize() {
	for _, c := range o.sComps {
		c.Finalize()
	}
	for _, c := range o.cComps {
		c.Finalize()
	}
	for _, c := range o.qComps {
		c.Finalize()
	}
	o.sComps = append(o.sComps, o.disabledS...)
	o.cComps = append(o.cComps, o.disabledC...)
	o.qComps = append(o.qComps, o.disabledQ...)
	o.disabledS = nil
	o.disabledC = nil
	o.disabledQ = nil
	if o.keepStartValues {
		o.LoadStartValuesFromSimulation()
	}
}
