// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// checkPortNodeInvariant verifies that every connected port appears exactly
// once in its node's port set
func checkPortNodeInvariant(tst *testing.T, comps ...Component) {
	for _, c := range comps {
		for _, p := range c.Base().Ports() {
			endpoints := []*Port{p}
			if p.IsMultiPort() {
				endpoints = p.SubPorts()
			}
			for _, ep := range endpoints {
				if ep.Node() == nil {
					continue
				}
				count := 0
				for _, q := range ep.Node().ConnectedPorts() {
					if q == ep {
						count++
					}
				}
				if count != 1 {
					tst.Errorf("port %s::%s appears %d times in its node's port set", c.Base().Name(), ep.Name(), count)
				}
			}
		}
	}
}

func Test_connect01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect01. series merge: C - Q - C gives two shared nodes")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	a := mustAdd(e, sys, "TestSourceC", "A")
	b := mustAdd(e, sys, "TestOrificeQ", "B")
	c := mustAdd(e, sys, "TestSourceC", "C")

	// before connecting: four dummy nodes owned by the system
	chk.IntAssert(len(sys.Nodes()), 4)

	if err := sys.Connect("A", "P1", "B", "P1"); err != nil {
		tst.Errorf("connect A-B failed: %v", err)
		return
	}
	if err := sys.Connect("B", "P2", "C", "P1"); err != nil {
		tst.Errorf("connect B-C failed: %v", err)
		return
	}

	// two nodes remain, each with two power ports, both owned by the system
	chk.IntAssert(len(sys.Nodes()), 2)
	for _, n := range sys.Nodes() {
		chk.IntAssert(n.NumConnectedPorts(), 2)
		chk.IntAssert(len(n.ConnectedPortsByKind(PowerPortKind)), 2)
		if n.Owner() != sys {
			tst.Errorf("node must be owned by the enclosing system")
			return
		}
	}
	checkPortNodeInvariant(tst, a, b, c)

	// both sides of the orifice share storage with their peers
	ba := b.(*tstOrificeQ)
	aa := a.(*tstSourceC)
	if ba.p1.Node() != aa.p1.Node() {
		tst.Errorf("A.P1 and B.P1 must share one node")
	}
}

func Test_connect02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect02. forbidden direct C-C join leaves the graph unchanged")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	a := mustAdd(e, sys, "TestSourceC", "A")
	b := mustAdd(e, sys, "TestSourceC", "B")

	nodesBefore := len(sys.Nodes())
	errsBefore := e.Messages().NumErrors()

	err := sys.Connect("A", "P1", "B", "P1")
	if err == nil {
		tst.Errorf("connecting two C power ports must fail")
		return
	}
	if e.Messages().NumErrors() == errsBefore {
		tst.Errorf("failure must produce an error message")
		return
	}

	// graph unchanged: same node count, ports disconnected, separate nodes
	chk.IntAssert(len(sys.Nodes()), nodesBefore)
	aa := a.(*tstSourceC)
	bb := b.(*tstSourceC)
	if aa.p1.IsConnected() || bb.p1.IsConnected() {
		tst.Errorf("ports must remain disconnected after rollback")
		return
	}
	if aa.p1.Node() == bb.p1.Node() {
		tst.Errorf("rolled back ports must not share a node")
	}
	checkPortNodeInvariant(tst, a, b)
}

func Test_connect03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect03. merge then split restores node types and counts")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	a := mustAdd(e, sys, "TestSourceC", "A")
	b := mustAdd(e, sys, "TestOrificeQ", "B")

	nodesBefore := len(sys.Nodes())
	aa := a.(*tstSourceC)
	bb := b.(*tstOrificeQ)
	typeBefore1 := aa.p1.NodeType()
	typeBefore2 := bb.p1.NodeType()

	if err := sys.Connect("A", "P1", "B", "P1"); err != nil {
		tst.Errorf("connect failed: %v", err)
		return
	}
	chk.IntAssert(len(sys.Nodes()), nodesBefore-1)

	if err := sys.Disconnect("A", "P1", "B", "P1"); err != nil {
		tst.Errorf("disconnect failed: %v", err)
		return
	}
	chk.IntAssert(len(sys.Nodes()), nodesBefore)
	chk.String(tst, aa.p1.NodeType(), typeBefore1)
	chk.String(tst, bb.p1.NodeType(), typeBefore2)
	if aa.p1.IsConnected() || bb.p1.IsConnected() {
		tst.Errorf("ports must be disconnected after split")
	}
	checkPortNodeInvariant(tst, a, b)
}

func Test_connect04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect04. cross-connecting sibling systems is rejected")

	e := newTestEngine()
	top := e.CreateComponentSystem()
	s1 := e.CreateComponentSystem()
	s1.Base().name = "s1"
	s2 := e.CreateComponentSystem()
	s2.Base().name = "s2"
	top.AddComponent(s1)
	top.AddComponent(s2)

	a := mustAdd(e, s1, "TestSourceC", "A")
	b := mustAdd(e, s2, "TestOrificeQ", "B")

	err := top.ConnectPorts(a.Base().Port("P1"), b.Base().Port("P1"))
	if err == nil {
		tst.Errorf("cross connection between sibling systems must fail")
		return
	}
	if a.Base().Port("P1").IsConnected() {
		tst.Errorf("no state change allowed on failed cross connect")
	}
}

func Test_connect05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect05. double writers on one node are rejected")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	g1 := mustAdd(e, sys, "TestGainS", "g1")
	g2 := mustAdd(e, sys, "TestGainS", "g2")
	g3 := mustAdd(e, sys, "TestGainS", "g3")

	// two write ports on one node
	if err := sys.Connect("g1", "out", "g3", "in"); err != nil {
		tst.Errorf("first writer connect failed: %v", err)
		return
	}
	err := sys.Connect("g2", "out", "g3", "in")
	if err == nil {
		tst.Errorf("two write ports on one node must fail")
		return
	}
	checkPortNodeInvariant(tst, g1, g2, g3)
}

func Test_connect06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect06. multiport connects many peers to one logical place")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	g1 := mustAdd(e, sys, "TestGainS", "g1")
	sink := mustAdd(e, sys, "TestGainS", "sink")
	multi := sink.Base().AddReadMultiPort("multi", NodeSignalType, false)

	if err := sys.Connect("g1", "out", "sink", "multi"); err != nil {
		tst.Errorf("multiport connect failed: %v", err)
		return
	}
	chk.IntAssert(multi.NumSubPorts(), 1)
	if !multi.IsConnectedTo(g1.Base().Port("out")) {
		tst.Errorf("multiport must report connection through its subport")
		return
	}

	// disconnect removes the subport again
	if err := sys.Disconnect("g1", "out", "sink", "multi"); err != nil {
		tst.Errorf("multiport disconnect failed: %v", err)
		return
	}
	chk.IntAssert(multi.NumSubPorts(), 0)
	if g1.Base().Port("out").IsConnected() {
		tst.Errorf("writer must be disconnected")
	}
}

func Test_connect07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("connect07. node ownership moves to the shallowest system")

	e := newTestEngine()
	top := e.CreateComponentSystem()
	sub := e.CreateComponentSystem()
	sub.Base().name = "sub"
	top.AddComponent(sub)

	inner := mustAdd(e, sub, "TestSourceC", "inner")
	outer := mustAdd(e, top, "TestOrificeQ", "outer")
	bp := sub.AddSystemPort("P")

	if err := sub.Connect("inner", "P1", "sub", "P"); err != nil {
		tst.Errorf("inner boundary connect failed: %v", err)
		return
	}
	if err := top.Connect("outer", "P1", "sub", "P"); err != nil {
		tst.Errorf("outer boundary connect failed: %v", err)
		return
	}

	n := bp.Node()
	if n == nil || n.Owner() != top {
		tst.Errorf("shared node must be owned by the shallowest system (top)")
		return
	}
	// all three ports share it
	chk.IntAssert(n.NumConnectedPorts(), 3)
	checkPortNodeInvariant(tst, inner, outer, sub)
}
