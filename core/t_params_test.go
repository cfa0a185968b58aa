// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_params01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("params01. literals write through to bound data")

	e := newTestEngine()
	gain := e.CreateComponent("TestGainS").(*tstGainS)

	if !gain.SetParameterValue("k", "3.5") {
		tst.Errorf("setting literal failed")
		return
	}
	chk.Scalar(tst, "k", 1e-17, gain.k, 3.5)

	// a non-literal value is not rejected: it is stored as a deferred
	// reference and fails only at check time
	if !gain.SetParameterValue("k", "notanumber") {
		tst.Errorf("reference-like value should be deferred, not rejected")
		return
	}
	failed, ok := gain.Parameters().CheckParameters()
	if ok {
		tst.Errorf("unresolvable reference must fail the check")
		return
	}
	chk.String(tst, failed, "k")
}

func Test_params02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("params02. system parameter reference and rename")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	gain := mustAdd(e, sys, "TestGainS", "gain").(*tstGainS)

	if err := sys.SetSystemParameter("K", "2.0", DoubleParam, "gain value", "", false); err != nil {
		tst.Errorf("SetSystemParameter failed: %v", err)
		return
	}
	if !gain.SetParameterValue("k", "K") {
		tst.Errorf("reference to system parameter should be deferred")
		return
	}
	v, err := gain.Parameters().EvaluateDouble("k")
	if err != nil {
		tst.Errorf("evaluation failed: %v", err)
		return
	}
	chk.Scalar(tst, "k==K", 1e-17, v, 2.0)

	// rename the system parameter, update the child reference
	if err := sys.RenameSystemParameter("K", "Kp"); err != nil {
		tst.Errorf("rename failed: %v", err)
		return
	}
	if !gain.SetParameterValue("k", "Kp") {
		tst.Errorf("reference to renamed parameter should be deferred")
		return
	}
	v, err = gain.Parameters().EvaluateDouble("k")
	if err != nil {
		tst.Errorf("evaluation after rename failed: %v", err)
		return
	}
	chk.Scalar(tst, "k==Kp", 1e-17, v, 2.0)
}

func Test_params03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("params03. reference cycles are detected, not chased")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	mustAdd(e, sys, "TestGainS", "gain")

	sys.SetSystemParameter("a", "1.0", DoubleParam, "", "", false)
	sys.SetSystemParameter("b", "1.0", DoubleParam, "", "", false)

	// now make them refer to each other
	p := sys.Parameters()
	p.Parameter("a").value = "b"
	p.Parameter("b").value = "a"

	_, err := p.EvaluateDouble("a")
	if err == nil {
		tst.Errorf("reference cycle must fail evaluation")
		return
	}
	chk.String(tst, errContains(err, "cycle"), "cycle")
}

func Test_params04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("params04. ancestor lookup and alias lookup")

	e := newTestEngine()
	top := e.CreateComponentSystem()
	sub := e.CreateComponentSystem()
	sub.Base().name = "sub"
	top.AddComponent(sub)
	gain := mustAdd(e, sub, "TestGainS", "gain").(*tstGainS)
	src := mustAdd(e, top, "TestSourceC", "src")

	// parameter found in grandparent scope
	top.SetSystemParameter("G", "7", DoubleParam, "", "", false)
	gain.SetParameterValue("k", "G")
	v, err := gain.Parameters().EvaluateDouble("k")
	if err != nil {
		tst.Errorf("ancestor lookup failed: %v", err)
		return
	}
	chk.Scalar(tst, "k==G", 1e-17, v, 7)

	// alias lookup reads the live variable value; the alias wins over any
	// dotted-name interpretation
	src.Base().Port("P1").Node().SetValue(NHPressure, 42)
	top.SetVariableAlias("supply", "src", "P1", "Pressure")
	gain.SetParameterValue("k", "supply")
	v, err = gain.Parameters().EvaluateDouble("k")
	if err != nil {
		tst.Errorf("alias lookup failed: %v", err)
		return
	}
	chk.Scalar(tst, "k==alias", 1e-17, v, 42)

	// dotted component.port.variable lookup
	gain.SetParameterValue("k", "src.P1.Pressure")
	v, err = gain.Parameters().EvaluateDouble("k")
	if err != nil {
		tst.Errorf("dotted lookup failed: %v", err)
		return
	}
	chk.Scalar(tst, "k==dotted", 1e-17, v, 42)
}

func Test_params05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("params05. conditional parameters store a valid index")

	e := newTestEngine()
	c := e.CreateComponent("TestGainS")
	b := c.Base()

	var mode int
	b.AddConditionalConstant("mode", "Operation mode", []string{"off", "on", "auto"}, &mode)

	if !b.SetParameterValue("mode", "2") {
		tst.Errorf("index in range must be accepted")
		return
	}
	chk.IntAssert(mode, 2)

	if !b.SetParameterValue("mode", "on") {
		tst.Errorf("condition label must be accepted")
		return
	}
	chk.IntAssert(mode, 1)

	if b.SetParameterValue("mode", "7") {
		tst.Errorf("out of range index must be rejected")
		return
	}
	chk.IntAssert(mode, 1)
}

// errContains returns what when the error text mentions it, else the error
// text (empty for a nil error); keeps the
// chk.String comparisons above readable
func errContains(err error, what string) string {
	if err == nil {
		return ""
	}
	for i := 0; i+len(what) <= len(err.Error()); i++ {
		if err.Error()[i:i+len(what)] == what {
			return what
		}
	}
	return err.Error()
}
