// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// connAssistant validates proposed joins, merges and splits nodes, keeps
// node ownership on the shallowest enclosing system, and manages multiport
// subport lifecycles. One instance serves a single connect or disconnect.
type connAssistant struct {
	sys *System
}

// connCounters classifies the ports gathered on a proposed node
type connCounters struct {
	nReadPorts               int
	nWritePorts              int
	nPowerPorts              int
	nSystemPorts             int
	nOwnSystemPorts          int // systemports belonging to the connecting system
	nInterfacePorts          int
	nNonInterfaceCPowerPorts int
	nNonInterfaceQPowerPorts int
	nCComponents             int
	nQComponents             int
	nSysComponentCs          int
	nSysComponentQs          int
}

// checkPort counts one port into the counters
func (o *connAssistant) checkPort(p *Port, c *connCounters) {
	if p.IsInterfacePort() {
		c.nInterfacePorts++
	}
	switch p.kind {
	case ReadPortKind:
		c.nReadPorts++
	case WritePortKind:
		c.nWritePorts++
	case PowerPortKind:
		c.nPowerPorts++
		if p.owner.Base().IsComponentC() && !p.IsInterfacePort() {
			c.nNonInterfaceCPowerPorts++
		} else if p.owner.Base().IsComponentQ() && !p.IsInterfacePort() {
			c.nNonInterfaceQPowerPorts++
		}
	case SystemPortKind:
		c.nSystemPorts++
	}
	if p.owner.Base().IsComponentC() {
		c.nCComponents++
		if p.owner.Base().IsComponentSystem() {
			c.nSysComponentCs++
		}
	} else if p.owner.Base().IsComponentQ() {
		c.nQComponents++
		if p.owner.Base().IsComponentSystem() {
			c.nSysComponentQs++
		}
	}
}

// ensureConnectionOK is the predicate run after a merge; it classifies all
// ports on the node plus the two candidates and applies the rejection rules
func (o *connAssistant) ensureConnectionOK(n *Node, p1, p2 *Port) bool {
	var c connCounters
	for _, p := range n.ports {
		o.checkPort(p, &c)
		if p.kind == SystemPortKind && asSystem(p.owner) == o.sys {
			c.nOwnSystemPorts++
		}
	}
	// the candidates may not yet be on the node; avoid double counting
	if !n.IsConnectedToPort(p1) {
		o.checkPort(p1, &c)
	}
	if !n.IsConnectedToPort(p2) {
		o.checkPort(p2, &c)
	}

	if c.nPowerPorts > 0 && c.nOwnSystemPorts > 1 {
		o.sys.AddErrorMessage("Trying to connect one power port to two system ports of the same system, this is not allowed")
		return false
	}
	if c.nPowerPorts > 2+c.nInterfacePorts-c.nSystemPorts {
		o.sys.AddErrorMessage("Trying to connect more than two power ports to same node")
		return false
	}
	if c.nWritePorts > 1+c.nInterfacePorts-c.nSystemPorts {
		o.sys.AddErrorMessage("Trying to connect more than one write port to same node")
		return false
	}
	if c.nPowerPorts > 0 && c.nWritePorts > 0 {
		o.sys.AddErrorMessage("Trying to connect write port and power port to same node")
		return false
	}
	// at most one C and one Q component may meet on a node
	if c.nNonInterfaceCPowerPorts > 1 {
		o.sys.AddErrorMessage("more than one non-interface C power port on one node")
		return false
	}
	if c.nNonInterfaceQPowerPorts > 1 {
		o.sys.AddErrorMessage("more than one non-interface Q power port on one node")
		return false
	}
	return true
}

// ensureNotCrossConnecting rejects joins across sibling system boundaries
// that do not pass through a system port
func (o *connAssistant) ensureNotCrossConnecting(p1, p2 *Port) bool {
	c1 := p1.owner
	c2 := p2.owner
	sp1 := c1.Base().SystemParent()
	sp2 := c2.Base().SystemParent()
	if sp1 != sp2 {
		if sp1 != asSystem(c2) && sp2 != asSystem(c1) {
			o.sys.AddErrorMessage("The components {" + c1.Base().Name() + "} and {" + c2.Base().Name() + "} must belong to the same subsystem")
			return false
		}
	}
	return true
}

// ensureSameNodeType verifies that the two ports agree on the node type
func (o *connAssistant) ensureSameNodeType(p1, p2 *Port) bool {
	if p1.nodeType != p2.nodeType {
		o.sys.AddErrorMessage("You can not connect a {" + p1.nodeType + "} port to a {" + p2.nodeType + "} port when connecting {" +
			p1.owner.Base().Name() + "::" + p1.name + "} to {" + p2.owner.Base().Name() + "::" + p2.name + "}")
		return false
	}
	return true
}

// ifMultiportAddSubport returns a new subport endpoint when p is a
// multiport, otherwise p itself
func (o *connAssistant) ifMultiportAddSubport(p *Port) *Port {
	if p.IsMultiPort() {
		return p.AddSubPort()
	}
	return p
}

// ifMultiportPrepareDisconnect locates the actual endpoints for a
// disconnect involving a multiport
func (o *connAssistant) ifMultiportPrepareDisconnect(p1, p2 *Port) (actual1, actual2 *Port) {
	if p1.IsMultiPort() && p2.IsMultiPort() {
		o.sys.AddFatalMessage("ifMultiportPrepareDisconnect: both ports can not be multiports")
		return nil, nil
	}
	actual1, actual2 = p1, p2
	if p1.IsMultiPort() {
		actual1 = o.findMultiportSubportFromOtherPort(p1, p2)
		if actual1 == nil {
			o.sys.AddFatalMessage("ifMultiportPrepareDisconnect: no subport found in first multiport")
		}
	}
	if p2.IsMultiPort() {
		actual2 = o.findMultiportSubportFromOtherPort(p2, p1)
		if actual2 == nil {
			o.sys.AddFatalMessage("ifMultiportPrepareDisconnect: no subport found in second multiport")
		}
	}
	return
}

// findMultiportSubportFromOtherPort finds the subport of multi whose other
// end is other
func (o *connAssistant) findMultiportSubportFromOtherPort(multi, other *Port) *Port {
	if other.IsMultiPort() {
		o.sys.AddFatalMessage("findMultiportSubportFromOtherPort: other port shall not be a multiport")
		return nil
	}
	for _, p := range other.connectedPorts {
		// a port can not be connected twice to the same multiport
		if p.parentPort == multi {
			return p
		}
	}
	return nil
}

// ifMultiportCleanupAfterConnect drops the subport created for a failed connect
func (o *connAssistant) ifMultiportCleanupAfterConnect(maybeMulti, actual *Port, wasSuccess bool) {
	if maybeMulti != nil && maybeMulti.IsMultiPort() && actual != nil && actual.parentPort == maybeMulti {
		if !wasSuccess {
			actual.setNode(nil)
			maybeMulti.RemoveSubPort(actual)
		}
	}
}

// ifMultiportCleanupAfterDisconnect drops the now-empty subport after a
// successful disconnect
func (o *connAssistant) ifMultiportCleanupAfterDisconnect(maybeMulti, actual *Port, wasSuccess bool) {
	if maybeMulti != nil && maybeMulti.IsMultiPort() && actual != nil && actual.parentPort == maybeMulti {
		if wasSuccess {
			o.removeNode(actual.node)
			actual.setNode(nil)
			maybeMulti.RemoveSubPort(actual)
		}
	}
}

// mergeNodeConnection unifies the nodes behind two ports: a fresh node of
// the shared type is installed into every reachable port, the old nodes are
// destroyed and the new one is stored in the shallowest enclosing system.
// The input ports must not be multiports (subports are fine).
func (o *connAssistant) mergeNodeConnection(p1, p2 *Port) bool {
	if !o.ensureSameNodeType(p1, p2) {
		return false
	}

	oldNode1 := p1.node
	oldNode2 := p2.node

	// looping a subsystem back onto itself would join a node with itself
	if oldNode1 == oldNode2 {
		o.sys.AddErrorMessage("This connection would mean that a node is joined with itself, this is not allowed")
		return false
	}

	nNew := newNode(p1.nodeType)
	o.recursivelySetNode(p1, nil, nNew)
	o.recursivelySetNode(p2, nil, nNew)

	// let the ports know about each other
	p1.addConnectedPort(p2)
	p2.addConnectedPort(p1)

	o.removeNode(oldNode1)
	o.removeNode(oldNode2)

	o.determineWhereToStoreNode(nNew)

	if o.ensureConnectionOK(nNew, p1, p2) {
		return true
	}
	o.splitNodeConnection(p1, p2) // undo
	return false
}

// splitNodeConnection undoes a connection: the two sides of the cut each
// receive a fresh node, the old shared node is destroyed
func (o *connAssistant) splitNodeConnection(p1, p2 *Port) bool {
	if p1 == nil || p2 == nil {
		o.sys.AddFatalMessage("splitNodeConnection: one of the ports is nil")
		return false
	}

	oldNode := p1.node
	newNode1 := newNode(oldNode.nodeType)
	newNode2 := newNode(oldNode.nodeType)

	// make the ports forget about each other
	p1.eraseConnectedPort(p2)
	p2.eraseConnectedPort(p1)

	o.recursivelySetNode(p1, nil, newNode1)
	o.recursivelySetNode(p2, nil, newNode2)

	o.removeNode(oldNode)

	o.determineWhereToStoreNode(newNode1)
	o.determineWhereToStoreNode(newNode2)
	return true
}

// recursivelySetNode installs n on p and on every port reachable through
// p's connection set; parent is the port we came from, skipped to avoid
// immediate back-traversal
func (o *connAssistant) recursivelySetNode(p, parent *Port, n *Node) {
	p.setNode(n)
	for _, q := range p.connectedPorts {
		if q == parent {
			continue
		}
		o.recursivelySetNode(q, p, n)
	}
}

// determineWhereToStoreNode stores n in the system with the shallowest
// model-hierarchy depth among the connected components
func (o *connAssistant) determineWhereToStoreNode(n *Node) {
	if n == nil {
		o.sys.AddFatalMessage("determineWhereToStoreNode: node is nil")
		return
	}
	var minComp Component
	min := int(^uint(0) >> 1)
	for _, p := range n.ports {
		if p.owner.Base().ModelHierarchyDepth() < min {
			min = p.owner.Base().ModelHierarchyDepth()
			minComp = p.owner
		}
	}
	if minComp == nil {
		o.sys.AddFatalMessage("determineWhereToStoreNode: no owner system found")
		return
	}
	if parent := minComp.Base().SystemParent(); parent != nil {
		parent.addSubNode(n)
	} else if s := asSystem(minComp); s != nil {
		// connecting to the top level system itself
		s.addSubNode(n)
	} else {
		o.sys.AddFatalMessage("determineWhereToStoreNode: no system found for node storage")
	}
}

// removeNode takes a node out of its owning system
func (o *connAssistant) removeNode(n *Node) {
	if n == nil {
		return
	}
	if n.owner != nil {
		n.owner.removeSubNode(n)
	}
}

// clearSysPortNodeTypeIfEmpty resets the node type of a disconnected system
// port back to the empty sentinel
func (o *connAssistant) clearSysPortNodeTypeIfEmpty(p *Port) {
	if p != nil && p.kind == SystemPortKind && !p.IsConnected() {
		oldNode := p.node
		p.setNode(newNode(NodeEmptyType))
		o.removeNode(oldNode)
		p.nodeType = NodeEmptyType
	}
}
