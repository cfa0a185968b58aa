// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"github.com/cpmech/gosl/io"
)

// CQSType is the scheduling role of a component in the transmission-line
// scheme: capacitive, resistive, signal or still undefined
type CQSType int

// CQS types
const (
	UndefinedCQS CQSType = iota
	CType
	QType
	SType
)

// String returns the CQS type name
func (t CQSType) String() string {
	switch t {
	case CType:
		return "C"
	case QType:
		return "Q"
	case SType:
		return "S"
	}
	return "Undefined"
}

// Component is the unit of model code. Concrete components embed
// ComponentBase and override the lifecycle callbacks they need.
type Component interface {
	Base() *ComponentBase
	Configure()
	Initialize(startT, stopT float64) bool
	SimulateOneStep(stopT float64)
	Finalize()
}

// autoSignal is a registered (port, dataID) pair to be resolved into a live
// node data pointer right before initialization
type autoSignal struct {
	port   *Port
	dataID int
	dest   **float64
}

// ComponentBase carries the generic state shared by all components: name,
// CQS kind, ports, parameters and timestep bookkeeping
type ComponentBase struct {
	name            string
	typeName        string
	subTypeName     string
	cqsType         CQSType
	parent          *System
	engine          *Engine
	hierarchyDepth  int
	timestep        float64
	desiredTimestep float64
	inheritTimestep bool
	disabled        bool
	loopBreaker     bool
	time            float64
	ports           map[string]*Port
	portOrder       []string
	params          *ParamHandler
	autoSignals     []autoSignal
	searchPaths     []string
	script          string
	measuredTime    float64
	self            Component
}

// initBase wires a freshly constructed component; called by the engine
// before Configure
func (o *ComponentBase) initBase(typeName string, self Component, engine *Engine) {
	o.typeName = typeName
	o.name = typeName
	o.self = self
	o.engine = engine
	o.inheritTimestep = true
	o.timestep = 0.001
	o.desiredTimestep = 0.001
	o.ports = make(map[string]*Port)
	o.params = newParamHandler(o)
}

// Base returns the embedded base; it makes any embedder satisfy Component
func (o *ComponentBase) Base() *ComponentBase {
	return o
}

// Configure is the default no-op configure callback
func (o *ComponentBase) Configure() {}

// Initialize is the default initialize callback
func (o *ComponentBase) Initialize(startT, stopT float64) bool {
	o.time = startT
	return true
}

// SimulateOneStep is the default no-op step callback
func (o *ComponentBase) SimulateOneStep(stopT float64) {
	o.time = stopT
}

// Finalize is the default no-op finalize callback
func (o *ComponentBase) Finalize() {}

// identity ///////////////////////////////////////////////////////////////////

// Name returns the component instance name
func (o *ComponentBase) Name() string {
	return o.name
}

// TypeName returns the registered type name
func (o *ComponentBase) TypeName() string {
	return o.typeName
}

// SubTypeName returns the sub-type name
func (o *ComponentBase) SubTypeName() string {
	return o.subTypeName
}

// SetSubTypeName sets the sub-type name
func (o *ComponentBase) SetSubTypeName(sub string) {
	o.subTypeName = sub
}

// CQSType returns the scheduling role
func (o *ComponentBase) CQSType() CQSType {
	return o.cqsType
}

// SetCQSType sets the scheduling role; components do this in Configure
// before adding ports, power ports on C-components carry start nodes
func (o *ComponentBase) SetCQSType(t CQSType) {
	o.cqsType = t
}

// IsComponentC tells whether this is a capacitive component
func (o *ComponentBase) IsComponentC() bool {
	return o.cqsType == CType
}

// IsComponentQ tells whether this is a resistive component
func (o *ComponentBase) IsComponentQ() bool {
	return o.cqsType == QType
}

// IsComponentSignal tells whether this is a signal component
func (o *ComponentBase) IsComponentSignal() bool {
	return o.cqsType == SType
}

// IsComponentSystem tells whether this component is a subsystem
func (o *ComponentBase) IsComponentSystem() bool {
	return o.self != nil && compIsSystem(o.self)
}

// SystemParent returns the owning system, or nil at the top level
func (o *ComponentBase) SystemParent() *System {
	return o.parent
}

// ModelHierarchyDepth returns the nesting depth, 0 for the top level system
func (o *ComponentBase) ModelHierarchyDepth() int {
	return o.hierarchyDepth
}

// Engine returns the engine that created this component
func (o *ComponentBase) Engine() *Engine {
	return o.engine
}

// SetLoopBreaker marks this component as an intentional break in the signal
// graph: it is not a source for ordering purposes (unit delays)
func (o *ComponentBase) SetLoopBreaker(b bool) {
	o.loopBreaker = b
}

// IsLoopBreaker tells whether this component breaks signal ordering cycles
func (o *ComponentBase) IsLoopBreaker() bool {
	return o.loopBreaker
}

// enable/disable /////////////////////////////////////////////////////////////

// SetDisabled excludes or re-includes this component from simulation
func (o *ComponentBase) SetDisabled(disabled bool) {
	o.disabled = disabled
}

// IsDisabled tells whether this component is excluded from simulation
func (o *ComponentBase) IsDisabled() bool {
	return o.disabled
}

// timestep ///////////////////////////////////////////////////////////////////

// Time returns the component's local simulation time
func (o *ComponentBase) Time() float64 {
	return o.time
}

// Timestep returns the active timestep
func (o *ComponentBase) Timestep() float64 {
	return o.timestep
}

// setTimestep installs the timestep distributed by the parent
func (o *ComponentBase) setTimestep(dt float64) {
	o.timestep = dt
}

// SetDesiredTimestep requests a specific timestep and clears inheritance
func (o *ComponentBase) SetDesiredTimestep(dt float64) {
	o.desiredTimestep = dt
	o.inheritTimestep = false
}

// DesiredTimestep returns the requested timestep
func (o *ComponentBase) DesiredTimestep() float64 {
	return o.desiredTimestep
}

// SetInheritTimestep makes the component follow its parent's timestep
func (o *ComponentBase) SetInheritTimestep(inherit bool) {
	o.inheritTimestep = inherit
}

// InheritsTimestep tells whether the parent's timestep is used
func (o *ComponentBase) InheritsTimestep() bool {
	return o.inheritTimestep
}

// ports //////////////////////////////////////////////////////////////////////

// Port returns a port by name, or nil
func (o *ComponentBase) Port(name string) *Port {
	return o.ports[name]
}

// Ports returns all ports in insertion order
func (o *ComponentBase) Ports() (res []*Port) {
	for _, name := range o.portOrder {
		res = append(res, o.ports[name])
	}
	return
}

// addPort creates and registers a port on this component
func (o *ComponentBase) addPort(kind PortKind, nodeType, name string, required bool) *Port {
	if _, taken := o.ports[name]; taken {
		o.AddErrorMessage("Component::addPort: port name already exists: " + name)
		return nil
	}
	p := newPort(kind, nodeType, name, o.self, nil)
	p.required = required
	o.ports[name] = p
	o.portOrder = append(o.portOrder, name)
	return p
}

// RemovePort disconnects and unregisters a port
func (o *ComponentBase) RemovePort(name string) {
	p, ok := o.ports[name]
	if !ok {
		return
	}
	if o.parent != nil {
		for len(p.connectedPorts) > 0 {
			o.parent.DisconnectPorts(p, p.connectedPorts[0])
		}
		for _, sp := range p.subPorts {
			for len(sp.connectedPorts) > 0 {
				o.parent.DisconnectPorts(sp, sp.connectedPorts[0])
			}
		}
	}
	p.eraseStartNode()
	delete(o.ports, name)
	for i, n := range o.portOrder {
		if n == name {
			o.portOrder = append(o.portOrder[:i], o.portOrder[i+1:]...)
			break
		}
	}
}

// AddPowerPort adds a power port carrying a power node type
func (o *ComponentBase) AddPowerPort(name, nodeType string) *Port {
	return o.addPort(PowerPortKind, nodeType, name, true)
}

// AddPowerMultiPort adds a multiport accepting many power connections
func (o *ComponentBase) AddPowerMultiPort(name, nodeType string) *Port {
	return o.addPort(PowerMultiPortKind, nodeType, name, true)
}

// AddReadPort adds a signal input port
func (o *ComponentBase) AddReadPort(name, nodeType string, required bool) *Port {
	return o.addPort(ReadPortKind, nodeType, name, required)
}

// AddReadMultiPort adds a multiport accepting many signal inputs
func (o *ComponentBase) AddReadMultiPort(name, nodeType string, required bool) *Port {
	return o.addPort(ReadMultiPortKind, nodeType, name, required)
}

// AddWritePort adds a signal output port
func (o *ComponentBase) AddWritePort(name, nodeType string, required bool) *Port {
	p := o.addPort(WritePortKind, nodeType, name, required)
	if p != nil {
		p.SetSortHint(Source)
	}
	return p
}

// AddBiDirSignalPort adds a bidirectional signal port
func (o *ComponentBase) AddBiDirSignalPort(name, nodeType string, required bool) *Port {
	return o.addPort(BiDirSignalPortKind, nodeType, name, required)
}

// input/output variables and constants ///////////////////////////////////////

// AddConstant registers a double constant bound directly to a component field
func (o *ComponentBase) AddConstant(name, description, quantityOrUnit string, defaultValue float64, dest *float64) {
	*dest = defaultValue
	o.params.addParameter(name, io.Sf("%g", defaultValue), description, quantityOrUnit, DoubleParam, dest, nil, false)
}

// AddConstantInt registers an integer constant bound to a component field
func (o *ComponentBase) AddConstantInt(name, description string, defaultValue int, dest *int) {
	*dest = defaultValue
	o.params.addParameter(name, io.Sf("%d", defaultValue), description, "", IntParam, dest, nil, false)
}

// AddConstantBool registers a boolean constant bound to a component field
func (o *ComponentBase) AddConstantBool(name, description string, defaultValue bool, dest *bool) {
	*dest = defaultValue
	o.params.addParameter(name, io.Sf("%v", defaultValue), description, "", BoolParam, dest, nil, false)
}

// AddConstantString registers a string constant bound to a component field
func (o *ComponentBase) AddConstantString(name, description, defaultValue string, dest *string) {
	*dest = defaultValue
	o.params.addParameter(name, defaultValue, description, "", StringParam, dest, nil, false)
}

// AddConditionalConstant registers a conditional constant: an index into the
// conditions vector, bound to an int field
func (o *ComponentBase) AddConditionalConstant(name, description string, conditions []string, dest *int) {
	*dest = 0
	o.params.addParameter(name, "0", description, "", ConditionalParam, dest, conditions, false)
}

// AddInputVariable adds a signal input: a read port with a default start
// value; when dest is non-nil it is auto-bound to the node data at initialize
func (o *ComponentBase) AddInputVariable(name, description, quantityOrUnit string, defaultValue float64, dest **float64) *Port {
	p := o.AddReadPort(name, NodeSignalType, false)
	if p == nil {
		return nil
	}
	p.SetDescription(description)
	if p.startNode != nil {
		p.startNode.SetValue(NSValue, defaultValue)
		p.startNode.SetSignalQuantity(quantityOrUnit, defaultQuantities.LookupBaseUnit(quantityOrUnit))
		o.params.SetParameterValue(name+"#Value", io.Sf("%g", defaultValue))
	}
	if dest != nil {
		o.RegisterAutoSignal(p, NSValue, dest)
	}
	return p
}

// AddOutputVariable adds a signal output: a write port with a default start value
func (o *ComponentBase) AddOutputVariable(name, description, quantityOrUnit string, defaultValue float64, dest **float64) *Port {
	p := o.AddWritePort(name, NodeSignalType, false)
	if p == nil {
		return nil
	}
	p.SetDescription(description)
	if p.startNode != nil {
		p.startNode.SetValue(NSValue, defaultValue)
		p.startNode.SetSignalQuantity(quantityOrUnit, defaultQuantities.LookupBaseUnit(quantityOrUnit))
		o.params.SetParameterValue(name+"#Value", io.Sf("%g", defaultValue))
	}
	if dest != nil {
		o.RegisterAutoSignal(p, NSValue, dest)
	}
	return p
}

// RegisterAutoSignal queues a (port, dataID) pair for resolution into a live
// data pointer before initialization
func (o *ComponentBase) RegisterAutoSignal(p *Port, dataID int, dest **float64) {
	o.autoSignals = append(o.autoSignals, autoSignal{port: p, dataID: dataID, dest: dest})
}

// InitializeAutoSignalNodeDataPtrs resolves all registered auto signal
// pointers against the currently connected nodes
func (o *ComponentBase) InitializeAutoSignalNodeDataPtrs() {
	for _, a := range o.autoSignals {
		*a.dest = a.port.NodeDataPtr(a.dataID)
	}
}

// SetDefaultStartValue sets a start value on a port variable
func (o *ComponentBase) SetDefaultStartValue(p *Port, dataID int, value float64) {
	if p == nil || p.startNode == nil {
		return
	}
	p.startNode.SetValue(dataID, value)
	d := p.startNode.DataDescription(dataID)
	if d != nil {
		o.params.SetParameterValue(p.name+"#"+d.Name, io.Sf("%g", value))
	}
}

// parameters /////////////////////////////////////////////////////////////////

// Parameters returns the parameter handler
func (o *ComponentBase) Parameters() *ParamHandler {
	return o.params
}

// SetParameterValue sets a parameter raw value; unresolved references are
// queued for evaluation before simulation
func (o *ComponentBase) SetParameterValue(name, value string) bool {
	return o.params.SetParameterValue(name, value)
}

// EvaluateParameters evaluates all parameters now
func (o *ComponentBase) EvaluateParameters() bool {
	return o.params.EvaluateParameters()
}

// misc ///////////////////////////////////////////////////////////////////////

// AddSearchPath appends a path searched for external resources
func (o *ComponentBase) AddSearchPath(path string) {
	for _, p := range o.searchPaths {
		if p == path {
			return
		}
	}
	o.searchPaths = append(o.searchPaths, path)
}

// SearchPaths returns the registered search paths
func (o *ComponentBase) SearchPaths() []string {
	return o.searchPaths
}

// SetInlineScript stores the script evaluated in this component's scope
// before simulation
func (o *ComponentBase) SetInlineScript(text string) {
	o.script = text
}

// InlineScript returns the stored script text
func (o *ComponentBase) InlineScript() string {
	return o.script
}

// MeasuredTime returns the measured per-step simulation cost
func (o *ComponentBase) MeasuredTime() float64 {
	return o.measuredTime
}

// SetMeasuredTime stores the measured per-step simulation cost
func (o *ComponentBase) SetMeasuredTime(t float64) {
	o.measuredTime = t
}

// LoadStartValues copies all port start values into the live nodes
func (o *ComponentBase) LoadStartValues() {
	for _, name := range o.portOrder {
		o.ports[name].LoadStartValues()
	}
}

// LoadStartValuesFromSimulation snapshots live node values into start nodes
func (o *ComponentBase) LoadStartValuesFromSimulation() {
	for _, name := range o.portOrder {
		o.ports[name].LoadStartValuesFromSimulation()
	}
}

// messages ///////////////////////////////////////////////////////////////////

// AddInfoMessage posts an info message on the engine bus
func (o *ComponentBase) AddInfoMessage(text string) {
	if o.engine != nil {
		o.engine.Messages().AddInfo(text)
	}
}

// AddWarningMessage posts a warning on the engine bus
func (o *ComponentBase) AddWarningMessage(text string) {
	if o.engine != nil {
		o.engine.Messages().AddWarning(text)
	}
}

// AddErrorMessage posts an error on the engine bus
func (o *ComponentBase) AddErrorMessage(text string) {
	if o.engine != nil {
		o.engine.Messages().AddError(text)
	}
}

// AddFatalMessage posts a fatal message on the engine bus
func (o *ComponentBase) AddFatalMessage(text string) {
	if o.engine != nil {
		o.engine.Messages().AddFatal(text)
	}
}

// AddDebugMessage posts a debug message on the engine bus
func (o *ComponentBase) AddDebugMessage(text string) {
	if o.engine != nil {
		o.engine.Messages().AddDebug(text)
	}
}
