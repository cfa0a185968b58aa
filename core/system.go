// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"strings"
	"sync"

	"github.com/cpmech/gosl/chk"
)

// System is the container component: it owns child components and nodes,
// maintains the alias table, infers its CQS type from its boundary, sorts
// its children and drives initialize/simulate/finalize
type System struct {
	ComponentBase

	reservedNames map[string]NameTag
	compsByName   map[string]Component

	// children partitioned by CQS type
	sComps     []Component
	cComps     []Component
	qComps     []Component
	undefComps []Component

	// disabled children parked during a run
	disabledS []Component
	disabledC []Component
	disabledQ []Component

	nodes   []*Node
	aliases *AliasHandler

	externalModelPath   string
	keepStartValues     bool
	requestedLogSamples int
	logStartTime        float64

	// per-run log grid
	nLogSlots      int
	logSlotIndices []int
	logTimes       []float64
	logCursor      int

	totalSteps int

	stopMu        sync.Mutex
	stopRequested bool
	stopReason    string

	plan *partitionPlan // cached multi-thread partition for noChanges reruns
}

// initSystem wires a fresh system; called by the engine
func (o *System) initSystem(self Component, engine *Engine) {
	o.initBase("Subsystem", self, engine)
	o.cqsType = UndefinedCQS
	o.reservedNames = make(map[string]NameTag)
	o.compsByName = make(map[string]Component)
	o.aliases = newAliasHandler(o)
	o.requestedLogSamples = 2048
	o.logStartTime = 0
	o.name = "RootSystem"
}

// IsTopLevelSystem tells whether this system has no parent
func (o *System) IsTopLevelSystem() bool {
	return o.parent == nil
}

// Aliases returns the alias handler
func (o *System) Aliases() *AliasHandler {
	return o.aliases
}

// Nodes returns the nodes owned by this system
func (o *System) Nodes() []*Node {
	return o.nodes
}

// LogTimes returns the logged time stamps of the last run
func (o *System) LogTimes() []float64 {
	return o.logTimes
}

// NumLogSlots returns the computed log slot count of the current run
func (o *System) NumLogSlots() int {
	return o.nLogSlots
}

// TotalSteps returns the number of simulation steps taken
func (o *System) TotalSteps() int {
	return o.totalSteps
}

// adding and removing children ///////////////////////////////////////////////

// AddComponent adopts a child component: the name is made unique, parent and
// depth are assigned, and the dummy nodes on the child's unconnected ports
// are transferred into this system's node list
func (o *System) AddComponent(c Component) error {
	if c == nil {
		o.AddErrorMessage("AddComponent: component is nil")
		return chk.Err("cannot add nil component")
	}
	b := c.Base()
	if b.parent != nil {
		return chk.Err("component %q already belongs to a system", b.name)
	}
	b.name = o.reserveUniqueName(b.name, ComponentNameTag)
	b.parent = o
	o.setHierarchyDepthRecursively(c, o.hierarchyDepth+1)
	o.compsByName[b.name] = c
	o.addToCQSVector(c)
	o.takeOverPortNodes(c)
	return nil
}

// setHierarchyDepthRecursively updates depth on a child and everything below it
func (o *System) setHierarchyDepthRecursively(c Component, depth int) {
	c.Base().hierarchyDepth = depth
	if s := asSystem(c); s != nil {
		for _, sub := range s.SubComponents() {
			s.setHierarchyDepthRecursively(sub, depth+1)
		}
	}
}

// takeOverPortNodes moves the dummy nodes attached to a child's ports into
// this system's node list
func (o *System) takeOverPortNodes(c Component) {
	for _, p := range c.Base().Ports() {
		if p.node != nil && p.node.owner == nil {
			o.addSubNode(p.node)
		}
	}
}

// addToCQSVector stores a child in the vector matching its CQS type
func (o *System) addToCQSVector(c Component) {
	switch c.Base().cqsType {
	case CType:
		o.cComps = append(o.cComps, c)
	case QType:
		o.qComps = append(o.qComps, c)
	case SType:
		o.sComps = append(o.sComps, c)
	default:
		o.undefComps = append(o.undefComps, c)
	}
}

// removeFromCQSVector takes a child out of whatever vector holds it
func (o *System) removeFromCQSVector(c Component) {
	rm := func(v []Component) []Component {
		for i, x := range v {
			if x == c {
				return append(v[:i], v[i+1:]...)
			}
		}
		return v
	}
	o.sComps = rm(o.sComps)
	o.cComps = rm(o.cComps)
	o.qComps = rm(o.qComps)
	o.undefComps = rm(o.undefComps)
	o.disabledS = rm(o.disabledS)
	o.disabledC = rm(o.disabledC)
	o.disabledQ = rm(o.disabledQ)
}

// RemoveSubComponent disconnects every port of a child, removes aliases
// referencing it, drops its dummy nodes and erases it from this system
func (o *System) RemoveSubComponent(c Component) error {
	b := c.Base()
	if o.compsByName[b.name] != c {
		return chk.Err("component %q is not a child of system %q", b.name, o.name)
	}

	// disconnect everything first
	for _, p := range b.Ports() {
		endpoints := []*Port{p}
		if p.IsMultiPort() {
			endpoints = append([]*Port{}, p.subPorts...)
		}
		for _, ep := range endpoints {
			for len(ep.connectedPorts) > 0 {
				o.DisconnectPorts(ep, ep.connectedPorts[0])
			}
		}
	}

	o.aliases.ComponentRemoved(b.name)

	// drop the dummy nodes owned here
	for _, p := range b.Ports() {
		if p.node != nil && p.node.owner == o {
			o.removeSubNode(p.node)
		}
	}

	o.removeFromCQSVector(c)
	delete(o.compsByName, b.name)
	o.unReserveName(b.name)
	b.parent = nil
	return nil
}

// RenameSubComponent renames a child, rewriting all aliases that refer to
// it; the actual (collision-free) new name is returned
func (o *System) RenameSubComponent(oldName, newName string) (actual string, err error) {
	c, ok := o.compsByName[oldName]
	if !ok {
		return "", chk.Err("no subcomponent named %q", oldName)
	}
	o.unReserveName(oldName)
	actual = o.reserveUniqueName(newName, ComponentNameTag)
	delete(o.compsByName, oldName)
	o.compsByName[actual] = c
	c.Base().name = actual
	o.aliases.ComponentRenamed(oldName, actual)
	return
}

// SubComponent returns a child by name, or nil
func (o *System) SubComponent(name string) Component {
	return o.compsByName[name]
}

// SubComponents returns all children, S then C then Q then undefined
func (o *System) SubComponents() (res []Component) {
	res = append(res, o.sComps...)
	res = append(res, o.cComps...)
	res = append(res, o.qComps...)
	res = append(res, o.undefComps...)
	res = append(res, o.disabledS...)
	res = append(res, o.disabledC...)
	res = append(res, o.disabledQ...)
	return
}

// subComponentOrSelf resolves a name to a child, or to this system when the
// name addresses the system boundary itself
func (o *System) subComponentOrSelf(name string) Component {
	if c, ok := o.compsByName[name]; ok {
		return c
	}
	if name == o.name || name == "self" {
		return o.self
	}
	return nil
}

// nodes //////////////////////////////////////////////////////////////////////

// addSubNode stores a node in this system, taking it over from any
// previous owner
func (o *System) addSubNode(n *Node) {
	if n.owner == o {
		return
	}
	if n.owner != nil {
		n.owner.removeSubNode(n)
	}
	n.owner = o
	o.nodes = append(o.nodes, n)
}

// removeSubNode takes a node out of this system
func (o *System) removeSubNode(n *Node) {
	for i, x := range o.nodes {
		if x == n {
			o.nodes = append(o.nodes[:i], o.nodes[i+1:]...)
			n.owner = nil
			return
		}
	}
}

// system ports ///////////////////////////////////////////////////////////////

// AddSystemPort adds a transparent boundary port; its node type is decided
// by whatever it gets connected to
func (o *System) AddSystemPort(name string) *Port {
	name = o.reserveUniqueName(name, SystemPortNameTag)
	p := o.addPort(SystemPortKind, NodeEmptyType, name, false)
	if p != nil && p.node != nil {
		o.addSubNode(p.node)
	}
	return p
}

// connecting /////////////////////////////////////////////////////////////////

// Connect joins two ports addressed by component and port name
func (o *System) Connect(comp1, port1, comp2, port2 string) error {
	c1 := o.subComponentOrSelf(comp1)
	c2 := o.subComponentOrSelf(comp2)
	if c1 == nil || c2 == nil {
		o.AddErrorMessage("Connect: could not find both components: " + comp1 + ", " + comp2)
		return chk.Err("cannot find components %q and %q", comp1, comp2)
	}
	p1 := c1.Base().Port(port1)
	p2 := c2.Base().Port(port2)
	if p1 == nil || p2 == nil {
		o.AddErrorMessage("Connect: could not find both ports: " + port1 + ", " + port2)
		return chk.Err("cannot find ports %q and %q", port1, port2)
	}
	return o.ConnectPorts(p1, p2)
}

// ConnectPorts joins two ports: the join is validated, the nodes behind the
// ports are merged, and node ownership is recomputed. A failed validation
// leaves the graph unchanged.
func (o *System) ConnectPorts(p1, p2 *Port) error {
	if p1 == nil || p2 == nil {
		o.AddErrorMessage("Trying to connect nil port(s)")
		return chk.Err("cannot connect nil ports")
	}
	if p1 == p2 {
		o.AddErrorMessage("You can not connect a port to itself")
		return chk.Err("cannot connect a port to itself")
	}

	assist := connAssistant{sys: o}

	if p1.IsMultiPort() && p2.IsMultiPort() {
		o.AddErrorMessage("You are not allowed to connect two multiports to each other")
		return chk.Err("cannot connect two multiports")
	}

	// a read multiport may take the same signal twice (scopes); anything else
	// may not connect twice
	if !(p1.kind == ReadMultiPortKind || p2.kind == ReadMultiPortKind) && p1.IsConnectedTo(p2) {
		o.AddErrorMessage("Port " + p1.owner.Base().Name() + "::" + p1.name + " is already connected to " + p2.owner.Base().Name() + "::" + p2.name)
		return chk.Err("ports already connected")
	}

	if !assist.ensureNotCrossConnecting(p1, p2) {
		return chk.Err("cannot cross-connect between systems")
	}

	if p1.kind == SystemPortKind && p2.kind == SystemPortKind && !p1.IsConnected() && !p2.IsConnected() {
		o.AddErrorMessage("You are not allowed to connect two blank system ports to each other")
		return chk.Err("cannot connect two blank system ports")
	}

	if (p1.IsMultiPort() || p2.IsMultiPort()) && (p1.kind == ReadPortKind || p2.kind == ReadPortKind) {
		o.AddErrorMessage("You are not allowed to connect a read port to a multiport, connect to an ordinary port instead")
		return chk.Err("cannot connect read port to multiport")
	}

	success := false
	blank1 := p1.kind == SystemPortKind && !p1.IsConnected()
	blank2 := p2.kind == SystemPortKind && !p2.IsConnected()
	if blank1 || blank2 {
		blankSysPort, otherPort := p1, p2
		if blank2 {
			blankSysPort, otherPort = p2, p1
		}
		// the blank system port inherits the node type of the other side
		oldEmpty := blankSysPort.node
		blankSysPort.nodeType = otherPort.nodeType
		blankSysPort.setNode(newNode(blankSysPort.nodeType))
		assist.removeNode(oldEmpty)
		if owner := asSystem(blankSysPort.owner); owner != nil {
			owner.addSubNode(blankSysPort.node)
		}

		actual := assist.ifMultiportAddSubport(otherPort)
		success = assist.mergeNodeConnection(blankSysPort, actual)
		assist.ifMultiportCleanupAfterConnect(otherPort, actual, success)
		if !success {
			assist.clearSysPortNodeTypeIfEmpty(blankSysPort)
		}
	} else {
		actual1 := assist.ifMultiportAddSubport(p1)
		actual2 := assist.ifMultiportAddSubport(p2)
		success = assist.mergeNodeConnection(actual1, actual2)
		assist.ifMultiportCleanupAfterConnect(p1, actual1, success)
		assist.ifMultiportCleanupAfterConnect(p2, actual2, success)
	}

	if !success {
		return chk.Err("connect failed between %q and %q", p1.name, p2.name)
	}

	// the connection may change what the boundary looks like
	o.DetermineCQSType()
	if !o.IsTopLevelSystem() {
		o.parent.DetermineCQSType()
	}

	o.AddDebugMessage("Connected: {" + p1.owner.Base().Name() + "::" + p1.name + "} and {" + p2.owner.Base().Name() + "::" + p2.name + "}")
	return nil
}

// Disconnect splits the connection between two ports addressed by name
func (o *System) Disconnect(comp1, port1, comp2, port2 string) error {
	c1 := o.subComponentOrSelf(comp1)
	c2 := o.subComponentOrSelf(comp2)
	if c1 == nil || c2 == nil {
		return chk.Err("cannot find components %q and %q", comp1, comp2)
	}
	p1 := c1.Base().Port(port1)
	p2 := c2.Base().Port(port2)
	if p1 == nil || p2 == nil {
		return chk.Err("cannot find ports %q and %q", port1, port2)
	}
	return o.DisconnectPorts(p1, p2)
}

// DisconnectPorts splits two connected ports and removes nodes no longer in use
func (o *System) DisconnectPorts(p1, p2 *Port) error {
	if p1 == nil || p2 == nil {
		o.AddFatalMessage("DisconnectPorts: one of the ports is nil")
		return chk.Err("cannot disconnect nil ports")
	}
	if !p1.IsConnectedTo(p2) {
		o.AddErrorMessage("When attempting disconnect: port " + p1.owner.Base().Name() + "::" + p1.name + " is not connected to " + p2.owner.Base().Name() + "::" + p2.name)
		return chk.Err("ports are not connected")
	}

	assist := connAssistant{sys: o}
	success := false

	if !p1.IsMultiPort() && !p2.IsMultiPort() {
		success = assist.splitNodeConnection(p1, p2)
		// one of the two may be a subport of a multiport
		assist.ifMultiportCleanupAfterDisconnect(p1.parentPort, p1, success)
		assist.ifMultiportCleanupAfterDisconnect(p2.parentPort, p2, success)
	} else {
		if p1.IsMultiPort() && p2.IsMultiPort() {
			o.AddFatalMessage("DisconnectPorts: trying to disconnect two multiports")
			return chk.Err("cannot disconnect two multiports")
		}
		actual1, actual2 := assist.ifMultiportPrepareDisconnect(p1, p2)
		if actual1 == nil || actual2 == nil {
			return chk.Err("cannot locate multiport subports for disconnect")
		}
		success = assist.splitNodeConnection(actual1, actual2)
		assist.ifMultiportCleanupAfterDisconnect(p1, actual1, success)
		assist.ifMultiportCleanupAfterDisconnect(p2, actual2, success)
	}

	assist.clearSysPortNodeTypeIfEmpty(p1)
	assist.clearSysPortNodeTypeIfEmpty(p2)

	o.DetermineCQSType()
	if !o.IsTopLevelSystem() {
		o.parent.DetermineCQSType()
	}

	if !success {
		return chk.Err("disconnect failed between %q and %q", p1.name, p2.name)
	}
	o.AddDebugMessage("Disconnected: {" + p1.owner.Base().Name() + "::" + p1.name + "} and {" + p2.owner.Base().Name() + "::" + p2.name + "}")
	return nil
}

// CQS inference //////////////////////////////////////////////////////////////

// DetermineCQSType infers this system's CQS type from the internally
// connected ports on its boundary: all C makes it C, all Q makes it Q, only
// signals makes it S, anything mixed leaves it undefined
func (o *System) DetermineCQSType() {
	nC, nQ, nSignal := 0, 0, 0
	for _, name := range o.portOrder {
		p := o.ports[name]
		if p.kind != SystemPortKind {
			continue
		}
		for _, q := range p.connectedPorts {
			// only count ports belonging to components inside this system
			if q.owner.Base().SystemParent() != o {
				continue
			}
			switch q.kind {
			case ReadPortKind, WritePortKind, ReadMultiPortKind, BiDirSignalPortKind:
				nSignal++
			default:
				if q.owner.Base().IsComponentC() {
					nC++
				} else if q.owner.Base().IsComponentQ() {
					nQ++
				}
			}
		}
	}
	old := o.cqsType
	switch {
	case nC > 0 && nQ == 0 && nSignal == 0:
		o.setSystemCQS(CType)
	case nQ > 0 && nC == 0 && nSignal == 0:
		o.setSystemCQS(QType)
	case nSignal > 0 && nC == 0 && nQ == 0:
		o.setSystemCQS(SType)
	default:
		o.setSystemCQS(UndefinedCQS)
	}
	if o.cqsType != old && o.parent != nil {
		o.parent.reclassifyChild(o.self)
	}
}

// setSystemCQS applies a CQS type to this system: C systems carry start
// nodes on their power-carrying boundary ports, Q and S clear them
func (o *System) setSystemCQS(t CQSType) {
	o.cqsType = t
	for _, name := range o.portOrder {
		p := o.ports[name]
		if p.kind != SystemPortKind {
			continue
		}
		if t == CType {
			if p.nodeType != NodeEmptyType && p.nodeType != NodeSignalType {
				p.createStartNode(p.nodeType)
			}
		} else {
			p.eraseStartNode()
		}
	}
}

// reclassifyChild moves a child into the CQS vector matching its current type
func (o *System) reclassifyChild(c Component) {
	o.removeFromCQSVector(c)
	o.addToCQSVector(c)
}

// system parameters //////////////////////////////////////////////////////////

// SetSystemParameter adds or updates a system parameter; the name is
// reserved in the system namespace so that it cannot clash with children
func (o *System) SetSystemParameter(name, value string, typ ParamType, description, unit string, force bool) error {
	if o.params.HasParameter(name) {
		if !o.params.SetParameterValue(name, value) {
			return chk.Err("cannot set system parameter %q to %q", name, value)
		}
		return nil
	}
	if tag, taken := o.reservedNames[name]; taken && tag != SysParamNameTag {
		if !force {
			return chk.Err("name %q is occupied in system %q", name, o.name)
		}
	} else if !taken {
		o.reservedNames[name] = SysParamNameTag
	}
	var p *Parameter
	switch typ {
	case DoubleParam:
		p = o.params.addParameter(name, value, description, unit, DoubleParam, new(float64), nil, false)
	case IntParam:
		p = o.params.addParameter(name, value, description, unit, IntParam, new(int), nil, false)
	case BoolParam:
		p = o.params.addParameter(name, value, description, unit, BoolParam, new(bool), nil, false)
	default:
		p = o.params.addParameter(name, value, description, unit, typ, new(string), nil, false)
	}
	if p == nil {
		return chk.Err("cannot add system parameter %q", name)
	}
	if !o.params.SetParameterValue(name, value) {
		o.params.RemoveParameter(name)
		o.unReserveName(name)
		return chk.Err("cannot set system parameter %q to %q", name, value)
	}
	return nil
}

// RemoveSystemParameter drops a system parameter
func (o *System) RemoveSystemParameter(name string) {
	o.params.RemoveParameter(name)
	if tag, ok := o.reservedNames[name]; ok && tag == SysParamNameTag {
		o.unReserveName(name)
	}
}

// RenameSystemParameter renames a system parameter keeping its value
func (o *System) RenameSystemParameter(oldName, newName string) error {
	p := o.params.Parameter(oldName)
	if p == nil {
		return chk.Err("no system parameter named %q", oldName)
	}
	value := p.Value()
	typ := p.Type()
	desc := p.Description()
	unit := p.Unit()
	o.RemoveSystemParameter(oldName)
	return o.SetSystemParameter(newName, value, typ, desc, unit, false)
}

// resolveParamOrVariable resolves a reference within this system's scope:
// a system parameter, an alias (checked before any dotted-name split), or a
// component.port.variable triple
func (o *System) resolveParamOrVariable(ref string) (v float64, ok bool) {
	// system parameter
	if p := o.params.Parameter(ref); p != nil && p.Type() == DoubleParam {
		if err := o.params.evaluate(p); err == nil {
			if d, okd := p.data.(*float64); okd {
				return *d, true
			}
		}
		return 0, false
	}
	// alias, before splitting on '.'
	if spec, has := o.aliases.VariableSpec(ref); has {
		return o.variableValue(spec)
	}
	// component.port.variable
	parts := strings.Split(ref, ".")
	if len(parts) == 3 {
		return o.variableValue(VariableSpec{Component: parts[0], Port: parts[1], Variable: parts[2]})
	}
	return 0, false
}

// variableValue reads the current value of the variable named by spec
func (o *System) variableValue(spec VariableSpec) (v float64, ok bool) {
	c := o.subComponentOrSelf(spec.Component)
	if c == nil {
		return 0, false
	}
	p := c.Base().Port(spec.Port)
	if p == nil {
		return 0, false
	}
	id := p.VariableIDFromAliasOrName(spec.Variable)
	if id < 0 {
		return 0, false
	}
	return p.ReadSafe(id), true
}

// SetVariableAlias installs a system-scoped alias for a node variable
func (o *System) SetVariableAlias(alias, comp, port, variable string) bool {
	return o.aliases.SetVariableAlias(alias, comp, port, variable)
}

// model configuration ////////////////////////////////////////////////////////

// SetNumLogSamples requests the number of log samples for the next run
func (o *System) SetNumLogSamples(n int) {
	o.requestedLogSamples = n
}

// NumLogSamples returns the requested number of log samples
func (o *System) NumLogSamples() int {
	return o.requestedLogSamples
}

// SetLogStartTime sets the time before which nothing is logged
func (o *System) SetLogStartTime(t float64) {
	o.logStartTime = t
}

// LogStartTime returns the log start time
func (o *System) LogStartTime() float64 {
	return o.logStartTime
}

// SetDesiredTimestep requests a timestep for this system. On a non-root
// system this is accepted, but the standard simulate path stays synchronous
// at the parent step; sub-stepping is the subsystem's own responsibility.
func (o *System) SetDesiredTimestep(dt float64) {
	o.desiredTimestep = dt
	o.timestep = dt
	o.inheritTimestep = false
}

// SetKeepValuesAsStartValues makes the next initialize keep the node values
// from the previous run instead of loading start values
func (o *System) SetKeepValuesAsStartValues(keep bool) {
	o.keepStartValues = keep
}

// SetExternalModelFilePath records the path this system was loaded from
// when used as an external model reference
func (o *System) SetExternalModelFilePath(path string) {
	o.externalModelPath = path
}

// ExternalModelFilePath returns the external model path
func (o *System) ExternalModelFilePath() string {
	return o.externalModelPath
}

// cancellation ///////////////////////////////////////////////////////////////

// StopSimulation cooperatively aborts initialization or simulation; safe to
// call from any goroutine, the request propagates up to the parent system
func (o *System) StopSimulation(reason string) {
	o.stopMu.Lock()
	already := o.stopRequested
	o.stopRequested = true
	if !already {
		o.stopReason = reason
	}
	o.stopMu.Unlock()
	if !already {
		if reason != "" {
			o.AddInfoMessage("Simulation was stopped: " + reason)
		}
		if o.parent != nil {
			o.parent.StopSimulation(reason)
		}
	}
}

// wasStopRequested reads the cancellation flag
func (o *System) wasStopRequested() bool {
	o.stopMu.Lock()
	defer o.stopMu.Unlock()
	return o.stopRequested
}

// StopReason returns the recorded cancellation reason
func (o *System) StopReason() string {
	o.stopMu.Lock()
	defer o.stopMu.Unlock()
	return o.stopReason
}

// resetStopFlag clears the flag at the start of initialize
func (o *System) resetStopFlag() {
	o.stopMu.Lock()
	o.stopRequested = false
	o.stopReason = ""
	o.stopMu.Unlock()
}
