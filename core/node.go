// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package core implements the simulation engine: the component/port/node
// graph, the CQS-typed fixed-step scheduler, the connection algebra and the
// single- and multi-threaded execution drivers
package core

import (
	"github.com/cpmech/gosl/chk"
)

// VarRole classifies a node data variable
type VarRole int

// variable roles
const (
	DefaultVar VarRole = iota
	IntensityVar
	FlowVar
	TLMVar
	HiddenVar
)

// VarDesc describes one data variable in a node
type VarDesc struct {
	ID                 int     // index in the node value vector
	Name               string  // e.g. "Pressure"
	ShortName          string  // e.g. "p"
	Unit               string  // e.g. "Pa"
	Quantity           string  // e.g. "Pressure"
	Role               VarRole // variable role
	ModifiableQuantity bool    // whether SetSignalQuantity may override later
}

// Node is a shared variable vector representing a physical connection point;
// all ports attached to it read and write the same storage
type Node struct {
	nodeType string
	desc     []VarDesc
	values   []float64
	logData  [][]float64 // [slot][var]
	doLog    bool
	ports    []*Port
	owner    *System
}

// newNodeWith allocates a node and sizes its data vector
func newNodeWith(nodeType string, ndata int) (o *Node) {
	o = new(Node)
	o.nodeType = nodeType
	o.desc = make([]VarDesc, ndata)
	o.values = make([]float64, ndata)
	return
}

// setData defines the characteristics of data slot id
func (o *Node) setData(id int, name, shortName, quantityOrUnit string, role VarRole) {
	d := &o.desc[id]
	d.ID = id
	d.Name = name
	d.ShortName = shortName
	d.Role = role
	if q, bu, isQuantity := defaultQuantities.CheckIfQuantityOrUnit(quantityOrUnit); isQuantity {
		d.Quantity = q
		d.Unit = bu
	} else {
		d.Unit = quantityOrUnit
	}
}

// NodeType returns the type name, e.g. "NodeHydraulic"
func (o *Node) NodeType() string {
	return o.nodeType
}

// NumDataVariables returns the number of data variables in this node
func (o *Node) NumDataVariables() int {
	return len(o.values)
}

// DataIDFromName returns the data id for a variable name, or -1
func (o *Node) DataIDFromName(name string) int {
	for i := range o.desc {
		if o.desc[i].Name == name {
			return i
		}
	}
	return -1
}

// DataDescription returns the description of data slot id, or nil
func (o *Node) DataDescription(id int) *VarDesc {
	if id < 0 || id >= len(o.desc) {
		return nil
	}
	return &o.desc[id]
}

// DataDescriptions returns all variable descriptions
func (o *Node) DataDescriptions() []VarDesc {
	return o.desc
}

// DataPtr returns a pointer to the storage of data slot id. Fast path;
// assumes id is in range.
func (o *Node) DataPtr(id int) *float64 {
	return &o.values[id]
}

// Value returns the current value of data slot id; out of range yields 0
func (o *Node) Value(id int) float64 {
	if id < 0 || id >= len(o.values) {
		return 0
	}
	return o.values[id]
}

// SetValue sets the current value of data slot id; out of range is ignored
func (o *Node) SetValue(id int, v float64) {
	if id < 0 || id >= len(o.values) {
		return
	}
	o.values[id] = v
}

// Values returns the live value vector
func (o *Node) Values() []float64 {
	return o.values
}

// CopyValuesTo copies all values into dst. The node types must be identical;
// a mismatch is a broken internal invariant.
func (o *Node) CopyValuesTo(dst *Node) {
	if dst.nodeType != o.nodeType {
		if o.owner != nil {
			o.owner.AddFatalMessage("Node::CopyValuesTo: node types differ: " + o.nodeType + " != " + dst.nodeType)
		}
		chk.Panic("cannot copy node values: node types differ: %q != %q", o.nodeType, dst.nodeType)
	}
	copy(dst.values, o.values)
}

// CopySignalQuantityTo copies the signal quantity and unit into dst, used
// when loading start values into signal nodes
func (o *Node) CopySignalQuantityTo(dst *Node) {
	if o.nodeType != NodeSignalType || dst.nodeType != NodeSignalType {
		return
	}
	if dst.desc[0].ModifiableQuantity {
		dst.desc[0].Quantity = o.desc[0].Quantity
		dst.desc[0].Unit = o.desc[0].Unit
	}
}

// SetSignalQuantity sets quantity and unit on a signal node. The override is
// refused once the quantity has been locked with SetSignalQuantityModifiable.
func (o *Node) SetSignalQuantity(quantity, unit string) bool {
	if o.nodeType != NodeSignalType {
		return false
	}
	if !o.desc[0].ModifiableQuantity && o.desc[0].Quantity != "" {
		return false
	}
	o.desc[0].Quantity = quantity
	o.desc[0].Unit = unit
	return true
}

// SetSignalQuantityModifiable controls whether later quantity overrides are allowed
func (o *Node) SetSignalQuantityModifiable(modifiable bool) {
	if o.nodeType == NodeSignalType {
		o.desc[0].ModifiableQuantity = modifiable
	}
}

// SignalQuantity returns the quantity of a signal node
func (o *Node) SignalQuantity() string {
	if o.nodeType != NodeSignalType {
		return ""
	}
	return o.desc[0].Quantity
}

// log ////////////////////////////////////////////////////////////////////////

// PreAllocateLog allocates the historical-log matrix with nSlots rows.
// Returns false and disables logging if allocation is not possible.
func (o *Node) PreAllocateLog(nSlots int) (ok bool) {
	defer func() {
		if recover() != nil {
			o.logData = nil
			o.doLog = false
			ok = false
		}
	}()
	if nSlots < 0 {
		return false
	}
	o.logData = make([][]float64, nSlots)
	for i := range o.logData {
		o.logData[i] = make([]float64, len(o.values))
	}
	if nSlots == 0 {
		o.doLog = false
	}
	return true
}

// LogIntoSlot stores the current values into log row k
func (o *Node) LogIntoSlot(k int) {
	if !o.doLog || k < 0 || k >= len(o.logData) {
		return
	}
	copy(o.logData[k], o.values)
}

// LogData returns the historical-log matrix (one row per sampled step)
func (o *Node) LogData() [][]float64 {
	return o.logData
}

// SetLoggingEnabled turns logging of this node on or off
func (o *Node) SetLoggingEnabled(enable bool) {
	o.doLog = enable
}

// IsLoggingEnabled tells whether this node logs
func (o *Node) IsLoggingEnabled() bool {
	return o.doLog
}

// ports //////////////////////////////////////////////////////////////////////

// ConnectedPorts returns all ports currently sharing this node
func (o *Node) ConnectedPorts() []*Port {
	return o.ports
}

// NumConnectedPorts returns the number of ports sharing this node
func (o *Node) NumConnectedPorts() int {
	return len(o.ports)
}

// ConnectedPortsByKind returns the subset of connected ports with the given kind
func (o *Node) ConnectedPortsByKind(kind PortKind) (res []*Port) {
	for _, p := range o.ports {
		if p.kind == kind {
			res = append(res, p)
		}
	}
	return
}

// IsConnectedToPort tells whether p shares this node
func (o *Node) IsConnectedToPort(p *Port) bool {
	for _, q := range o.ports {
		if q == p {
			return true
		}
	}
	return false
}

// WritePortComponent returns the component holding the write port attached to
// this node, or nil.
func (o *Node) WritePortComponent() Component {
	for _, p := range o.ports {
		if p.kind == WritePortKind || p.kind == BiDirSignalPortKind {
			return p.owner
		}
	}
	return nil
}

// SourcePort returns the port attached to this node that acts as the signal
// source, or nil. System ports recurse through their internal connections.
func (o *Node) SourcePort() *Port {
	for _, p := range o.ports {
		if p.sortHint == Source {
			return p
		}
		if p.kind == SystemPortKind && p.InternalSortHint() == Source {
			return p
		}
	}
	return nil
}

// Owner returns the system storing this node, or nil
func (o *Node) Owner() *System {
	return o.owner
}

// addConnectedPort registers p on this node; duplicates are ignored
func (o *Node) addConnectedPort(p *Port) {
	for _, q := range o.ports {
		if q == p {
			return
		}
	}
	o.ports = append(o.ports, p)
}

// removeConnectedPort unregisters p from this node
func (o *Node) removeConnectedPort(p *Port) {
	for i, q := range o.ports {
		if q == p {
			o.ports = append(o.ports[:i], o.ports[i+1:]...)
			return
		}
	}
}
