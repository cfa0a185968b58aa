// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// PortKind tags the role of a port. The multiport kinds must stay last so
// that IsMulti can test by ordering.
type PortKind int

// port kinds
const (
	UndefinedPortKind PortKind = iota
	PowerPortKind
	ReadPortKind
	WritePortKind
	BiDirSignalPortKind
	SystemPortKind
	PowerMultiPortKind
	ReadMultiPortKind
)

// IsMulti tells whether the kind is a multiport kind
func (k PortKind) IsMulti() bool {
	return k >= PowerMultiPortKind
}

// String returns the kind name
func (k PortKind) String() string {
	switch k {
	case PowerPortKind:
		return "PowerPort"
	case ReadPortKind:
		return "ReadPort"
	case WritePortKind:
		return "WritePort"
	case BiDirSignalPortKind:
		return "BiDirectionalSignalPort"
	case SystemPortKind:
		return "SystemPort"
	case PowerMultiPortKind:
		return "PowerMultiPort"
	case ReadMultiPortKind:
		return "ReadMultiPort"
	}
	return "UndefinedPort"
}

// SortHint guides the topological ordering of signal components
type SortHint int

// sort hints
const (
	NoSortHint SortHint = iota
	Source
	Destination
	IndependentDestination
)

// Port is a typed handle attached to a component; it points at exactly one
// node (except multiports, which own subports instead)
type Port struct {
	name           string
	description    string
	kind           PortKind
	nodeType       string
	owner          Component
	parentPort     *Port
	subPorts       []*Port
	required       bool
	sortHint       SortHint
	node           *Node
	startNode      *Node
	enableLog      bool
	connectedPorts []*Port
	varAliases     map[string]int
}

// newPort creates a port of the given kind. Non-multiports receive a fresh
// dummy node immediately so that reads work before any connection is made.
func newPort(kind PortKind, nodeType, name string, owner Component, parentPort *Port) (o *Port) {
	o = new(Port)
	o.kind = kind
	o.nodeType = nodeType
	o.name = name
	o.owner = owner
	o.parentPort = parentPort
	o.enableLog = true
	o.varAliases = make(map[string]int)
	if !kind.IsMulti() && nodeType != "" {
		o.setNode(newNode(nodeType))
	}
	switch kind {
	case PowerPortKind:
		if owner != nil && owner.Base().IsComponentC() {
			o.createStartNode(nodeType)
		}
	case ReadPortKind, ReadMultiPortKind:
		o.sortHint = Destination
		if kind == ReadPortKind {
			o.createStartNode(nodeType)
		}
	case WritePortKind:
		o.createStartNode(nodeType)
	case BiDirSignalPortKind:
		o.sortHint = Destination
		o.createStartNode(nodeType)
	}
	return
}

// Name returns the port name
func (o *Port) Name() string {
	return o.name
}

// Description returns the port description
func (o *Port) Description() string {
	return o.description
}

// SetDescription sets the port description
func (o *Port) SetDescription(desc string) {
	o.description = desc
}

// Kind returns the port kind
func (o *Port) Kind() PortKind {
	return o.kind
}

// NodeType returns the required node type; system ports inherit theirs from
// whatever they get connected to and report "NodeEmpty" while blank
func (o *Port) NodeType() string {
	return o.nodeType
}

// Component returns the owning component
func (o *Port) Component() Component {
	return o.owner
}

// ParentPort returns the owning multiport for subports, or nil
func (o *Port) ParentPort() *Port {
	return o.parentPort
}

// IsMultiPort tells whether this port owns subports instead of a node
func (o *Port) IsMultiPort() bool {
	return o.kind.IsMulti()
}

// IsInterfacePort tells whether this port sits on a subsystem boundary
func (o *Port) IsInterfacePort() bool {
	if o.owner == nil {
		return false
	}
	_, isSystem := o.owner.(*System)
	if !isSystem {
		_, isSystem = o.owner.(*ConditionalSystem)
	}
	return isSystem
}

// IsConnectionRequired tells whether the port must be connected before simulation
func (o *Port) IsConnectionRequired() bool {
	return o.required
}

// SetConnectionRequired changes the connection-required flag
func (o *Port) SetConnectionRequired(required bool) {
	o.required = required
}

// SortHint returns the sorting hint
func (o *Port) SortHint() SortHint {
	return o.sortHint
}

// SetSortHint sets the sorting hint. Read-type ports only accept destination
// hints, they can never be signal sources.
func (o *Port) SetSortHint(hint SortHint) {
	switch o.kind {
	case ReadPortKind, ReadMultiPortKind:
		if hint == Destination || hint == IndependentDestination {
			o.sortHint = hint
		}
	default:
		o.sortHint = hint
	}
}

// node access ////////////////////////////////////////////////////////////////

// Node returns the node this port points at; nil for multiports
func (o *Port) Node() *Node {
	return o.node
}

// StartNode returns the start-value template node, or nil
func (o *Port) StartNode() *Node {
	return o.startNode
}

// setNode installs n as this port's node and keeps the port registrations on
// both nodes consistent
func (o *Port) setNode(n *Node) {
	if o.node != nil {
		o.node.removeConnectedPort(o)
	}
	o.node = n
	if n != nil {
		n.addConnectedPort(o)
	}
}

// createStartNode attaches an unconnected template node carrying default
// start values, and registers one start-value parameter per visible variable
func (o *Port) createStartNode(nodeType string) {
	if nodeType == "" || o.startNode != nil {
		return
	}
	o.startNode = newNode(nodeType)
	o.registerStartValueParams()
}

// eraseStartNode drops the start node and its registered start-value parameters
func (o *Port) eraseStartNode() {
	if o.startNode == nil {
		return
	}
	o.unregisterStartValueParams()
	o.startNode = nil
}

// registerStartValueParams exposes each visible start-node variable as a
// component parameter named "port#Variable" bound to the start-node storage
func (o *Port) registerStartValueParams() {
	if o.startNode == nil || o.owner == nil || o.parentPort != nil {
		return
	}
	h := o.owner.Base().params
	for i := range o.startNode.desc {
		d := &o.startNode.desc[i]
		if d.Role == HiddenVar || d.Role == TLMVar {
			continue
		}
		name := o.name + "#" + d.Name
		quantityOrUnit := d.Quantity
		if quantityOrUnit == "" {
			quantityOrUnit = d.Unit
		}
		h.addParameter(name, "", d.Name+" start value", quantityOrUnit, DoubleParam, o.startNode.DataPtr(d.ID), nil, true)
	}
}

// unregisterStartValueParams removes the parameters added by registerStartValueParams
func (o *Port) unregisterStartValueParams() {
	if o.startNode == nil || o.owner == nil || o.parentPort != nil {
		return
	}
	h := o.owner.Base().params
	for i := range o.startNode.desc {
		d := &o.startNode.desc[i]
		if d.Role == HiddenVar || d.Role == TLMVar {
			continue
		}
		h.RemoveParameter(o.name + "#" + d.Name)
	}
}

// connection state ///////////////////////////////////////////////////////////

// IsConnected tells whether the port takes part in at least one connection
func (o *Port) IsConnected() bool {
	if o.IsMultiPort() {
		for _, sp := range o.subPorts {
			if sp.IsConnected() {
				return true
			}
		}
		return false
	}
	return len(o.connectedPorts) > 0
}

// IsConnectedTo tells whether this port is connected to other, directly or
// through one of its subports
func (o *Port) IsConnectedTo(other *Port) bool {
	if o.IsMultiPort() {
		for _, sp := range o.subPorts {
			if sp.IsConnectedTo(other) {
				return true
			}
		}
		return false
	}
	if other.IsMultiPort() {
		return other.IsConnectedTo(o)
	}
	for _, p := range o.connectedPorts {
		if p == other {
			return true
		}
	}
	return false
}

// ConnectedPorts returns the directly connected peer ports
func (o *Port) ConnectedPorts() []*Port {
	return o.connectedPorts
}

// addConnectedPort cross-registers a peer; duplicates are ignored
func (o *Port) addConnectedPort(p *Port) {
	for _, q := range o.connectedPorts {
		if q == p {
			return
		}
	}
	o.connectedPorts = append(o.connectedPorts, p)
}

// eraseConnectedPort removes a peer registration
func (o *Port) eraseConnectedPort(p *Port) {
	for i, q := range o.connectedPorts {
		if q == p {
			o.connectedPorts = append(o.connectedPorts[:i], o.connectedPorts[i+1:]...)
			return
		}
	}
}

// reading and writing ////////////////////////////////////////////////////////

// ReadSafe reads a node value by data id; out of range yields 0
func (o *Port) ReadSafe(dataID int) float64 {
	if o.IsMultiPort() {
		if len(o.subPorts) > 0 {
			return o.subPorts[0].ReadSafe(dataID)
		}
		return 0
	}
	return o.node.Value(dataID)
}

// ReadSafeSub reads from subport subIdx of a multiport; for ordinary ports
// the index is ignored
func (o *Port) ReadSafeSub(dataID, subIdx int) float64 {
	if o.IsMultiPort() {
		if subIdx >= 0 && subIdx < len(o.subPorts) {
			return o.subPorts[subIdx].ReadSafe(dataID)
		}
		return 0
	}
	return o.node.Value(dataID)
}

// WriteSafe writes a node value by data id. Writing to a plain read port
// fails loudly; the start-value bootstrap uses the node directly instead.
func (o *Port) WriteSafe(dataID int, v float64) {
	if o.kind == ReadPortKind || o.kind == ReadMultiPortKind {
		if o.owner != nil {
			o.owner.Base().AddErrorMessage("Port::WriteSafe: cannot write to read port " + o.name)
		}
		return
	}
	if o.IsMultiPort() {
		for _, sp := range o.subPorts {
			sp.WriteSafe(dataID, v)
		}
		return
	}
	o.node.SetValue(dataID, v)
}

// WriteSafeSub writes to subport subIdx of a multiport; for ordinary ports
// the index is ignored
func (o *Port) WriteSafeSub(dataID, subIdx int, v float64) {
	if o.IsMultiPort() {
		if subIdx >= 0 && subIdx < len(o.subPorts) {
			o.subPorts[subIdx].WriteSafe(dataID, v)
		}
		return
	}
	o.WriteSafe(dataID, v)
}

// NodeDataPtr returns a pointer into node storage for the hot simulation
// path. Assumes dataID is in range.
func (o *Port) NodeDataPtr(dataID int) *float64 {
	if o.IsMultiPort() {
		if len(o.subPorts) > 0 {
			return o.subPorts[0].NodeDataPtr(dataID)
		}
		return nil
	}
	return o.node.DataPtr(dataID)
}

// NodeDataPtrSub returns a pointer into the storage of subport subIdx
func (o *Port) NodeDataPtrSub(dataID, subIdx int) *float64 {
	if o.IsMultiPort() {
		if subIdx >= 0 && subIdx < len(o.subPorts) {
			return o.subPorts[subIdx].NodeDataPtr(dataID)
		}
		return nil
	}
	return o.node.DataPtr(dataID)
}

// start values ///////////////////////////////////////////////////////////////

// LoadStartValues copies the start-node values into the live node. Read
// ports skip this when connected, the writer side sets the value then.
func (o *Port) LoadStartValues() {
	if o.IsMultiPort() {
		for _, sp := range o.subPorts {
			sp.LoadStartValues()
		}
		return
	}
	if o.kind == ReadPortKind && o.IsConnected() {
		return
	}
	o.forceLoadStartValues()
}

// ForceLoadStartValues loads start values even into a connected read port;
// used by the system-boundary bootstrap
func (o *Port) ForceLoadStartValues() {
	o.forceLoadStartValues()
}

func (o *Port) forceLoadStartValues() {
	if o.startNode == nil || o.node == nil {
		return
	}
	o.startNode.CopyValuesTo(o.node)
	o.startNode.CopySignalQuantityTo(o.node)
}

// LoadStartValuesFromSimulation snapshots the live node values back into the
// start node, used by keep-values-as-start-values mode
func (o *Port) LoadStartValuesFromSimulation() {
	if o.IsMultiPort() {
		for _, sp := range o.subPorts {
			sp.LoadStartValuesFromSimulation()
		}
		return
	}
	if o.IsConnected() && o.startNode != nil && o.node != nil {
		o.node.CopyValuesTo(o.startNode)
	}
}

// IsConnectedToWriteOrPowerPort tells whether any peer is a writer; read
// ports connected only to other read ports keep their own start value
func (o *Port) IsConnectedToWriteOrPowerPort() bool {
	for _, p := range o.connectedPorts {
		switch p.kind {
		case WritePortKind, PowerPortKind, PowerMultiPortKind, BiDirSignalPortKind:
			return true
		}
	}
	return false
}

// multiport subport lifecycle ////////////////////////////////////////////////

// AddSubPort creates one new endpoint inside a multiport
func (o *Port) AddSubPort() *Port {
	if !o.IsMultiPort() {
		return nil
	}
	kind := PowerPortKind
	if o.kind == ReadMultiPortKind {
		kind = ReadPortKind
	}
	sp := newPort(kind, o.nodeType, o.name, o.owner, o)
	o.subPorts = append(o.subPorts, sp)
	return sp
}

// RemoveSubPort detaches one subport
func (o *Port) RemoveSubPort(sp *Port) {
	for i, q := range o.subPorts {
		if q == sp {
			o.subPorts = append(o.subPorts[:i], o.subPorts[i+1:]...)
			return
		}
	}
}

// SubPorts returns the endpoints owned by this multiport
func (o *Port) SubPorts() []*Port {
	return o.subPorts
}

// NumSubPorts returns the number of endpoints owned by this multiport
func (o *Port) NumSubPorts() int {
	return len(o.subPorts)
}

// effective roles on system boundaries ///////////////////////////////////////

// ExternalKind returns the effective role seen from outside the system,
// preferring Power over the other kinds; non-system ports return their kind
func (o *Port) ExternalKind() PortKind {
	if o.kind != SystemPortKind {
		return o.kind
	}
	var found *Port
	for _, p := range o.connectedPorts {
		if p.owner.Base().SystemParent() == o.owner.Base().SystemParent() {
			found = p
			if p.kind == PowerPortKind {
				return PowerPortKind
			}
		}
	}
	if found != nil {
		return found.kind
	}
	return o.kind
}

// InternalKind returns the effective role seen from inside the system
func (o *Port) InternalKind() PortKind {
	if o.kind != SystemPortKind {
		return o.kind
	}
	var found *Port
	for _, p := range o.connectedPorts {
		if compIsSystem(o.owner) && p.owner.Base().SystemParent() == asSystem(o.owner) {
			found = p
			if p.kind == PowerPortKind {
				return PowerPortKind
			}
		}
	}
	if found != nil {
		return found.kind
	}
	return o.kind
}

// InternalSortHint aggregates the sort hints of the internally connected
// ports: any internal source makes the boundary a source
func (o *Port) InternalSortHint() SortHint {
	if o.kind != SystemPortKind {
		return o.sortHint
	}
	nSources, nDest := 0, 0
	for _, p := range o.connectedPorts {
		if compIsSystem(o.owner) && p.owner.Base().SystemParent() == asSystem(o.owner) {
			switch p.sortHint {
			case Source:
				nSources++
			case Destination:
				nDest++
			}
		}
	}
	if nSources > 0 {
		return Source
	}
	if nDest > 0 {
		return Destination
	}
	return NoSortHint
}

// variable aliases ///////////////////////////////////////////////////////////

// SetVariableAlias records a local alias name for a node variable id; an
// empty alias removes any alias held for that id
func (o *Port) SetVariableAlias(alias string, dataID int) {
	for a, id := range o.varAliases {
		if id == dataID {
			delete(o.varAliases, a)
		}
	}
	if alias != "" {
		o.varAliases[alias] = dataID
	}
}

// VariableAlias returns the alias held for a variable id, or ""
func (o *Port) VariableAlias(dataID int) string {
	for a, id := range o.varAliases {
		if id == dataID {
			return a
		}
	}
	return ""
}

// VariableIDFromAliasOrName resolves a variable by alias first, then by its
// real data name
func (o *Port) VariableIDFromAliasOrName(name string) int {
	if id, ok := o.varAliases[name]; ok {
		return id
	}
	n := o.node
	if n == nil && len(o.subPorts) > 0 {
		n = o.subPorts[0].node
	}
	if n == nil {
		return -1
	}
	return n.DataIDFromName(name)
}

// logging ////////////////////////////////////////////////////////////////////

// SetLoggingEnabled turns logging of this port's node on or off
func (o *Port) SetLoggingEnabled(enable bool) {
	o.enableLog = enable
	if o.node != nil {
		o.node.SetLoggingEnabled(enable)
	}
	for _, sp := range o.subPorts {
		sp.SetLoggingEnabled(enable)
	}
}

// IsLoggingEnabled tells whether this port requests logging
func (o *Port) IsLoggingEnabled() bool {
	return o.enableLog
}

// helpers ////////////////////////////////////////////////////////////////////

// compIsSystem tells whether a component is a (conditional) system
func compIsSystem(c Component) bool {
	return asSystem(c) != nil
}

// asSystem returns the System behind a component, or nil
func asSystem(c Component) *System {
	switch s := c.(type) {
	case *System:
		return s
	case *ConditionalSystem:
		return &s.System
	}
	return nil
}
