// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// buildParallelModel assembles nTriplets independent C-Q-C hydraulic lines
// plus one counter/delay signal chain per triplet; large enough to exercise
// the partitioners
func buildParallelModel(e *Engine, nTriplets int) *System {
	sys := e.CreateComponentSystem()
	sys.SetDesiredTimestep(0.01)
	for i := 0; i < nTriplets; i++ {
		a := mustAdd(e, sys, "TestSourceC", io.Sf("a%d", i))
		b := mustAdd(e, sys, "TestOrificeQ", io.Sf("b%d", i))
		c := mustAdd(e, sys, "TestSourceC", io.Sf("c%d", i))
		a.Base().SetParameterValue("p", io.Sf("%g", 1e5+float64(i)*1e3))
		sys.ConnectPorts(a.Base().Port("P1"), b.Base().Port("P1"))
		sys.ConnectPorts(b.Base().Port("P2"), c.Base().Port("P1"))

		cnt := mustAdd(e, sys, "TestStepCounter", io.Sf("cnt%d", i))
		u := mustAdd(e, sys, "TestDelayS", io.Sf("u%d", i))
		sys.ConnectPorts(cnt.Base().Port("out"), u.Base().Port("in"))
	}
	return sys
}

// snapshotLogs deep-copies every node log matrix of sys
func snapshotLogs(sys *System) (logs [][][]float64, times []float64) {
	for _, n := range sys.Nodes() {
		mat := make([][]float64, len(n.LogData()))
		for i, row := range n.LogData() {
			mat[i] = append([]float64{}, row...)
		}
		logs = append(logs, mat)
	}
	times = append([]float64{}, sys.LogTimes()...)
	return
}

// compareLogs asserts bit-identical log matrices
func compareLogs(tst *testing.T, label string, ref, got [][][]float64) {
	if len(ref) != len(got) {
		tst.Errorf("%s: node count differs: %d != %d", label, len(ref), len(got))
		return
	}
	for i := range ref {
		if len(ref[i]) != len(got[i]) {
			tst.Errorf("%s: node %d slot count differs", label, i)
			return
		}
		for j := range ref[i] {
			for k := range ref[i][j] {
				if ref[i][j][k] != got[i][j][k] {
					tst.Errorf("%s: node %d slot %d var %d differs: %v != %v", label, i, j, k, ref[i][j][k], got[i][j][k])
					return
				}
			}
		}
	}
}

func Test_mt01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mt01. multi-thread runs match the single-thread log bit for bit")

	// reference: single-threaded
	e := newTestEngine()
	sys := buildParallelModel(e, 20)
	if !sys.Initialize(0, 1) {
		tst.Errorf("initialize failed")
		return
	}
	sys.Simulate(1)
	refLogs, refTimes := snapshotLogs(sys)

	algorithms := []ParallelAlgorithm{
		OfflineScheduling,
		TaskPoolScheduling,
		TaskStealingScheduling,
		ParallelForScheduling,
		GroupedParallelForScheduling,
	}
	for _, alg := range algorithms {
		e2 := newTestEngine()
		sys2 := buildParallelModel(e2, 20)
		if !sys2.Initialize(0, 1) {
			tst.Errorf("initialize failed for %v", alg)
			return
		}
		sys2.SimulateMultiThreaded(0, 1, 4, false, alg)
		gotLogs, gotTimes := snapshotLogs(sys2)
		chk.Vector(tst, io.Sf("times %v", alg), 1e-17, gotTimes, refTimes)
		compareLogs(tst, alg.String(), refLogs, gotLogs)
	}
}

func Test_mt02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mt02. partition reuse with noChanges")

	e := newTestEngine()
	sys := buildParallelModel(e, 8)
	if !sys.Initialize(0, 1) {
		tst.Errorf("initialize failed")
		return
	}
	sys.SimulateMultiThreaded(0, 1, 2, false, OfflineScheduling)
	if sys.plan == nil {
		tst.Errorf("offline run must cache its partition plan")
		return
	}
	plan := sys.plan

	// rerun without repartitioning
	if !sys.Initialize(0, 1) {
		tst.Errorf("re-initialize failed")
		return
	}
	sys.SimulateMultiThreaded(0, 1, 2, true, OfflineScheduling)
	if sys.plan != plan {
		tst.Errorf("noChanges must reuse the cached partition plan")
	}
}

func Test_mt03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mt03. LPT distribution balances measured cost")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	var comps []Component
	costs := []float64{8, 7, 6, 5, 4, 3, 2, 1}
	for i, cost := range costs {
		c := mustAdd(e, sys, "TestStepCounter", io.Sf("c%d", i))
		c.Base().SetMeasuredTime(cost)
		comps = append(comps, c)
	}
	bins := distributeLPT(comps, 2)
	chk.IntAssert(len(bins), 2)

	load := func(bin []Component) (sum float64) {
		for _, c := range bin {
			sum += c.Base().MeasuredTime()
		}
		return
	}
	chk.Scalar(tst, "balanced", 1e-15, load(bins[0]), load(bins[1]))
}

func Test_mt04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mt04. signal grouping keeps connected components together")

	e := newTestEngine()
	sys := e.CreateComponentSystem()
	g1 := mustAdd(e, sys, "TestGainS", "g1")
	g2 := mustAdd(e, sys, "TestGainS", "g2")
	g3 := mustAdd(e, sys, "TestGainS", "g3")
	sys.Connect("g1", "out", "g2", "in")

	groups := groupSignalComponents([]Component{g1, g2, g3})
	chk.IntAssert(len(groups), 2)

	bins := distributeSignalGroups([]Component{g1, g2, g3}, 2)
	for _, bin := range bins {
		has1, has2 := false, false
		for _, c := range bin {
			if c == g1 {
				has1 = true
			}
			if c == g2 {
				has2 = true
			}
		}
		if has1 != has2 {
			tst.Errorf("connected components g1 and g2 must share a bin")
			return
		}
	}
}

func Test_mt05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mt05. barrier releases all waiters together")

	b := newBarrier(4)
	var mu sync.Mutex
	arrived := 0
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 100; round++ {
				mu.Lock()
				arrived++
				mu.Unlock()
				b.wait()
				mu.Lock()
				if arrived%4 != 0 {
					// between barriers every round must be complete
					tst.Errorf("barrier released before all arrived")
				}
				mu.Unlock()
				b.wait()
			}
		}()
	}
	wg.Wait()
	chk.IntAssert(arrived, 400)
}

func Test_mt06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mt06. cancellation stops a multi-threaded run cleanly")

	e := newTestEngine()
	sys := buildParallelModel(e, 4)
	if !sys.Initialize(0, 10) {
		tst.Errorf("initialize failed")
		return
	}
	sys.StopSimulation("abort")
	sys.SimulateMultiThreaded(0, 10, 3, false, TaskPoolScheduling)
	chk.IntAssert(sys.TotalSteps(), 0)
}
