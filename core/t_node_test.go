// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_node01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node01. data ids, values and descriptions")

	n := newNode(NodeHydraulicType)
	chk.IntAssert(n.NumDataVariables(), 6)
	chk.IntAssert(n.DataIDFromName("Pressure"), NHPressure)
	chk.IntAssert(n.DataIDFromName("Flow"), NHFlow)
	chk.IntAssert(n.DataIDFromName("nosuch"), -1)

	d := n.DataDescription(NHPressure)
	if d == nil {
		tst.Errorf("missing data description")
		return
	}
	chk.String(tst, d.ShortName, "p")
	chk.String(tst, d.Unit, "Pa")
	chk.String(tst, d.Quantity, "Pressure")

	n.SetValue(NHPressure, 2e5)
	chk.Scalar(tst, "pressure", 1e-17, n.Value(NHPressure), 2e5)
	chk.Scalar(tst, "ptr", 1e-17, *n.DataPtr(NHPressure), 2e5)

	// out of range access is harmless
	n.SetValue(99, 1)
	chk.Scalar(tst, "oob", 1e-17, n.Value(99), 0)
}

func Test_node02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node02. copy values requires identical node type")

	a := newNode(NodeHydraulicType)
	b := newNode(NodeHydraulicType)
	a.SetValue(NHPressure, 3e5)
	a.SetValue(NHFlow, 1e-3)
	a.CopyValuesTo(b)
	chk.Scalar(tst, "p", 1e-17, b.Value(NHPressure), 3e5)
	chk.Scalar(tst, "q", 1e-17, b.Value(NHFlow), 1e-3)

	// wrong type panics: the invariant is broken by the caller
	s := newNode(NodeSignalType)
	defer func() {
		if recover() == nil {
			tst.Errorf("expected panic when copying between node types")
		}
	}()
	a.CopyValuesTo(s)
}

func Test_node03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node03. log preallocation and slot writes")

	n := newNode(NodeSignalType)
	n.SetLoggingEnabled(true)
	if !n.PreAllocateLog(3) {
		tst.Errorf("preallocate failed")
		return
	}
	n.SetValue(NSValue, 1)
	n.LogIntoSlot(0)
	n.SetValue(NSValue, 2)
	n.LogIntoSlot(1)
	n.SetValue(NSValue, 3)
	n.LogIntoSlot(2)

	chk.IntAssert(len(n.LogData()), 3)
	chk.Vector(tst, "log", 1e-17, []float64{n.LogData()[0][0], n.LogData()[1][0], n.LogData()[2][0]}, []float64{1, 2, 3})

	// out of range slots are ignored
	n.LogIntoSlot(5)
}

func Test_node04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("node04. signal quantity override rules")

	n := newNode(NodeSignalType)
	if !n.SetSignalQuantity("Pressure", "Pa") {
		tst.Errorf("first quantity set should succeed")
		return
	}
	chk.String(tst, n.SignalQuantity(), "Pressure")

	// still modifiable by default
	if !n.SetSignalQuantity("Velocity", "m/s") {
		tst.Errorf("override should be allowed while modifiable")
		return
	}

	n.SetSignalQuantityModifiable(false)
	if n.SetSignalQuantity("Force", "N") {
		tst.Errorf("override should be refused after locking")
		return
	}
	chk.String(tst, n.SignalQuantity(), "Velocity")
}
