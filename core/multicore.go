// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cpmech/gosl/io"
	"golang.org/x/sync/errgroup"
)

// ParallelAlgorithm selects the multi-threaded execution strategy
type ParallelAlgorithm int

// parallel algorithms
const (
	OfflineScheduling ParallelAlgorithm = iota
	TaskPoolScheduling
	TaskStealingScheduling
	ParallelForScheduling
	GroupedParallelForScheduling
)

// String returns the algorithm name
func (a ParallelAlgorithm) String() string {
	switch a {
	case OfflineScheduling:
		return "offline-partition"
	case TaskPoolScheduling:
		return "task-pool"
	case TaskStealingScheduling:
		return "task-stealing"
	case ParallelForScheduling:
		return "parallel-for"
	case GroupedParallelForScheduling:
		return "grouped-parallel-for"
	}
	return "unknown"
}

// barrier is a reusable cyclic barrier for the phase synchronization of the
// simulation workers
type barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	size  int
	count int
	gen   int
}

// newBarrier returns a barrier for n participants
func newBarrier(n int) (o *barrier) {
	o = new(barrier)
	o.size = n
	o.cond = sync.NewCond(&o.mu)
	return
}

// wait blocks until all participants have arrived
func (o *barrier) wait() {
	o.mu.Lock()
	gen := o.gen
	o.count++
	if o.count == o.size {
		o.count = 0
		o.gen++
		o.cond.Broadcast()
		o.mu.Unlock()
		return
	}
	for gen == o.gen {
		o.cond.Wait()
	}
	o.mu.Unlock()
}

// partitionPlan holds the per-thread component slices computed by the
// offline partitioner; reused between runs when noChanges is requested
type partitionPlan struct {
	nThreads int
	sBins    [][]Component
	cBins    [][]Component
	qBins    [][]Component
}

// clampThreads limits the desired thread count to the available cores
func clampThreads(desired int) int {
	max := runtime.NumCPU()
	if desired < 1 {
		return 1
	}
	if desired > max {
		return max
	}
	return desired
}

// measurement ////////////////////////////////////////////////////////////////

// simulateAndMeasureTime runs every component nSteps trial steps and records
// the wall-clock cost per component; the system must be re-initialized
// afterwards since the trial steps advance the model state
func (o *System) simulateAndMeasureTime(nSteps int) {
	t := o.time
	for _, group := range [][]Component{o.sComps, o.cComps, o.qComps} {
		for _, c := range group {
			tt := t
			start := time.Now()
			for i := 0; i < nSteps; i++ {
				tt += o.timestep
				c.SimulateOneStep(tt)
			}
			c.Base().SetMeasuredTime(time.Since(start).Seconds())
		}
	}
}

// resetMeasuredTimes zeroes the measured timers
func (o *System) resetMeasuredTimes() {
	for _, group := range [][]Component{o.sComps, o.cComps, o.qComps} {
		for _, c := range group {
			c.Base().SetMeasuredTime(0)
		}
	}
}

// partitioning ///////////////////////////////////////////////////////////////

// distributeLPT distributes components into nBins by descending measured
// cost, each into the currently lightest bin (longest-processing-time first,
// a 4/3 approximation of the optimum)
func distributeLPT(comps []Component, nBins int) [][]Component {
	sorted := append([]Component{}, comps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Base().MeasuredTime() > sorted[j].Base().MeasuredTime()
	})
	bins := make([][]Component, nBins)
	loads := make([]float64, nBins)
	for _, c := range sorted {
		k := 0
		for i := 1; i < nBins; i++ {
			if loads[i] < loads[k] {
				k = i
			}
		}
		bins[k] = append(bins[k], c)
		loads[k] += c.Base().MeasuredTime()
	}
	return bins
}

// unionFind is a plain disjoint-set over component indices
type unionFind struct {
	parent []int
}

func newUnionFind(n int) (o *unionFind) {
	o = new(unionFind)
	o.parent = make([]int, n)
	for i := range o.parent {
		o.parent[i] = i
	}
	return
}

func (o *unionFind) find(i int) int {
	for o.parent[i] != i {
		o.parent[i] = o.parent[o.parent[i]]
		i = o.parent[i]
	}
	return i
}

func (o *unionFind) union(i, j int) {
	ri, rj := o.find(i), o.find(j)
	if ri != rj {
		o.parent[ri] = rj
	}
}

// groupSignalComponents groups signal components that exchange data, using
// union-find over their port peers; connected components must stay in one
// bin so that their relative order survives partitioning
func groupSignalComponents(comps []Component) (groups [][]Component) {
	index := make(map[Component]int, len(comps))
	for i, c := range comps {
		index[c] = i
	}
	uf := newUnionFind(len(comps))
	for i, c := range comps {
		for _, p := range c.Base().Ports() {
			endpoints := []*Port{p}
			if p.IsMultiPort() {
				endpoints = p.SubPorts()
			}
			for _, ep := range endpoints {
				if ep.Node() == nil {
					continue
				}
				for _, q := range ep.Node().ConnectedPorts() {
					if j, ok := index[q.Component()]; ok {
						uf.union(i, j)
					}
				}
			}
		}
	}
	byRoot := make(map[int][]Component)
	var roots []int
	for i, c := range comps {
		r := uf.find(i)
		if _, seen := byRoot[r]; !seen {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], c)
	}
	for _, r := range roots {
		groups = append(groups, byRoot[r])
	}
	return
}

// distributeSignalGroups fills bins smallest-total-cost-first while keeping
// connectivity groups together; within a bin the sorted execution order of
// the members is preserved
func distributeSignalGroups(comps []Component, nBins int) [][]Component {
	groups := groupSignalComponents(comps)
	bins := make([][]Component, nBins)
	loads := make([]float64, nBins)
	for _, g := range groups {
		cost := 0.0
		for _, c := range g {
			cost += c.Base().MeasuredTime()
		}
		k := 0
		for i := 1; i < nBins; i++ {
			if loads[i] < loads[k] {
				k = i
			}
		}
		bins[k] = append(bins[k], g...)
		loads[k] += cost
	}
	return bins
}

// buildPartitionPlan measures component cost and distributes the work over
// nThreads bins
func (o *System) buildPartitionPlan(startT, stopT float64, nThreads int) *partitionPlan {
	o.simulateAndMeasureTime(100)
	plan := &partitionPlan{
		nThreads: nThreads,
		sBins:    distributeSignalGroups(o.sComps, nThreads),
		cBins:    distributeLPT(o.cComps, nThreads),
		qBins:    distributeLPT(o.qComps, nThreads),
	}
	o.resetMeasuredTimes()
	// the trial steps advanced the model; bring it back to the start state
	o.Initialize(startT, stopT)
	return plan
}

// SimulateMultiThreaded //////////////////////////////////////////////////////

// SimulateMultiThreaded advances the system to stopT using parallel workers.
// noChanges reuses the partition from a previous run. All algorithms honour
// the cooperative cancellation flag and the precomputed log-sample indices.
func (o *System) SimulateMultiThreaded(startT, stopT float64, nDesiredThreads int, noChanges bool, algorithm ParallelAlgorithm) {
	nThreads := clampThreads(nDesiredThreads)
	o.AddInfoMessage(io.Sf("Using %s algorithm with %d threads", algorithm.String(), nThreads))

	switch algorithm {
	case OfflineScheduling, TaskStealingScheduling:
		if !noChanges || o.plan == nil || o.plan.nThreads != nThreads {
			o.plan = o.buildPartitionPlan(startT, stopT, nThreads)
		}
		if algorithm == OfflineScheduling {
			o.simulateOffline(stopT, o.plan)
		} else {
			o.simulateTaskStealing(stopT, o.plan)
		}
	case TaskPoolScheduling:
		o.simulateTaskPool(stopT, nThreads)
	case ParallelForScheduling:
		o.simulateParallelFor(stopT)
	case GroupedParallelForScheduling:
		if !noChanges || o.plan == nil || o.plan.nThreads != nThreads {
			o.plan = o.buildPartitionPlan(startT, stopT, nThreads)
		}
		o.simulateGroupedParallelFor(stopT, o.plan)
	default:
		o.AddWarningMessage("Unknown parallel algorithm, falling back to single-threaded simulation")
		o.Simulate(stopT)
	}
}

// simulateOffline runs the statically partitioned slices, one worker per
// bin, bracketed by four barriers per step: S, C, Q and N (logging). Worker
// zero is the master: it advances time and appends to the log.
func (o *System) simulateOffline(stopT float64, plan *partitionPlan) {
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	var abort atomic.Bool
	b := newBarrier(plan.nThreads)

	var wg sync.WaitGroup
	for t := 0; t < plan.nThreads; t++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			master := tid == 0
			for i := 0; i < n; i++ {
				if master {
					if o.wasStopRequested() {
						abort.Store(true)
					} else {
						o.time += o.timestep
					}
				}
				b.wait() // S barrier: time is set, stop flag agreed
				if abort.Load() {
					return
				}
				for _, c := range plan.sBins[tid] {
					c.SimulateOneStep(o.time)
				}
				b.wait() // C barrier: all signal writes visible
				for _, c := range plan.cBins[tid] {
					c.SimulateOneStep(o.time)
				}
				b.wait() // Q barrier: all wave/impedance writes visible
				for _, c := range plan.qBins[tid] {
					c.SimulateOneStep(o.time)
				}
				b.wait() // N barrier: all writes visible to the logger
				if master {
					o.totalSteps++
					o.logTimeAndNodes(o.totalSteps)
				}
			}
		}(t)
	}
	wg.Wait()
}

// taskPool hands phase components to workers one at a time through an
// atomic cursor
type taskPool struct {
	work      atomic.Value // []Component; the current phase vector
	next      atomic.Int64
	remaining atomic.Int64
	open      atomic.Bool
	stop      atomic.Bool
	time      atomic.Value // float64; current simulation time
}

// openWith publishes a phase vector to the workers
func (o *taskPool) openWith(comps []Component, t float64) {
	o.work.Store(comps)
	o.next.Store(0)
	o.remaining.Store(int64(len(comps)))
	o.time.Store(t)
	o.open.Store(true)
}

// drainOne pops and simulates one component; false when the pool is empty
func (o *taskPool) drainOne() bool {
	comps, ok := o.work.Load().([]Component)
	if !ok {
		return false
	}
	i := o.next.Add(1) - 1
	if int(i) >= len(comps) {
		return false
	}
	t := o.time.Load().(float64)
	comps[i].SimulateOneStep(t)
	o.remaining.Add(-1)
	return true
}

// simulateTaskPool advances with one atomic time counter and a pool per
// phase: workers pop one component each, the master closes the pool when
// the outstanding counter reaches zero and opens the next phase
func (o *System) simulateTaskPool(stopT float64, nThreads int) {
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	pool := new(taskPool)
	pool.time.Store(o.time)

	var wg sync.WaitGroup
	for t := 1; t < nThreads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !pool.stop.Load() {
				if pool.open.Load() {
					if !pool.drainOne() {
						runtime.Gosched()
					}
				} else {
					runtime.Gosched()
				}
			}
		}()
	}

	phases := [][]Component{o.sComps, o.cComps, o.qComps}
	for i := 0; i < n; i++ {
		if o.wasStopRequested() {
			break
		}
		o.time += o.timestep
		for _, phase := range phases {
			pool.openWith(phase, o.time)
			for pool.drainOne() {
			}
			for pool.remaining.Load() > 0 {
				runtime.Gosched()
			}
			pool.open.Store(false)
		}
		o.totalSteps++
		o.logTimeAndNodes(o.totalSteps)
	}
	pool.stop.Store(true)
	wg.Wait()
}

// workQueue is a per-thread queue that neighbours may steal from
type workQueue struct {
	mu    sync.Mutex
	items []Component
}

// refill replaces the queue content
func (o *workQueue) refill(comps []Component) {
	o.mu.Lock()
	o.items = append(o.items[:0], comps...)
	o.mu.Unlock()
}

// popFront takes own work from the front
func (o *workQueue) popFront() Component {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.items) == 0 {
		return nil
	}
	c := o.items[0]
	o.items = o.items[1:]
	return c
}

// stealBack takes foreign work from the back
func (o *workQueue) stealBack() Component {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.items) == 0 {
		return nil
	}
	c := o.items[len(o.items)-1]
	o.items = o.items[:len(o.items)-1]
	return c
}

// simulateTaskStealing uses the offline partition but lets idle workers
// steal from their neighbours' queues between the phase barriers. Signal
// slices are not stolen, their order within a bin must hold.
func (o *System) simulateTaskStealing(stopT float64, plan *partitionPlan) {
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	var abort atomic.Bool
	b := newBarrier(plan.nThreads)

	cQueues := make([]*workQueue, plan.nThreads)
	qQueues := make([]*workQueue, plan.nThreads)
	for i := range cQueues {
		cQueues[i] = new(workQueue)
		qQueues[i] = new(workQueue)
	}

	drain := func(queues []*workQueue, tid int, t float64) {
		for {
			c := queues[tid].popFront()
			if c == nil {
				break
			}
			c.SimulateOneStep(t)
		}
		for k := 1; k < len(queues); k++ {
			victim := (tid + k) % len(queues)
			for {
				c := queues[victim].stealBack()
				if c == nil {
					break
				}
				c.SimulateOneStep(t)
			}
		}
	}

	var wg sync.WaitGroup
	for t := 0; t < plan.nThreads; t++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			master := tid == 0
			for i := 0; i < n; i++ {
				if master {
					if o.wasStopRequested() {
						abort.Store(true)
					} else {
						o.time += o.timestep
						for k := 0; k < plan.nThreads; k++ {
							cQueues[k].refill(plan.cBins[k])
							qQueues[k].refill(plan.qBins[k])
						}
					}
				}
				b.wait()
				if abort.Load() {
					return
				}
				for _, c := range plan.sBins[tid] {
					c.SimulateOneStep(o.time)
				}
				b.wait()
				drain(cQueues, tid, o.time)
				b.wait()
				drain(qQueues, tid, o.time)
				b.wait()
				if master {
					o.totalSteps++
					o.logTimeAndNodes(o.totalSteps)
				}
			}
		}(t)
	}
	wg.Wait()
}

// simulateParallelFor spawns one task per C-component per step, joins, then
// one per Q-component; signal components keep their sequential order
func (o *System) simulateParallelFor(stopT float64) {
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	for i := 0; i < n; i++ {
		if o.wasStopRequested() {
			break
		}
		o.time += o.timestep
		for _, c := range o.sComps {
			c.SimulateOneStep(o.time)
		}
		var eg errgroup.Group
		for _, c := range o.cComps {
			c := c
			eg.Go(func() error {
				c.SimulateOneStep(o.time)
				return nil
			})
		}
		eg.Wait()
		for _, c := range o.qComps {
			c := c
			eg.Go(func() error {
				c.SimulateOneStep(o.time)
				return nil
			})
		}
		eg.Wait()
		o.totalSteps++
		o.logTimeAndNodes(o.totalSteps)
	}
}

// simulateGroupedParallelFor is the parallel-for variant iterating per
// partition bin instead of per component
func (o *System) simulateGroupedParallelFor(stopT float64, plan *partitionPlan) {
	n := calcNumSimSteps(o.time, stopT, o.timestep)
	for i := 0; i < n; i++ {
		if o.wasStopRequested() {
			break
		}
		o.time += o.timestep
		for _, bin := range plan.sBins {
			for _, c := range bin {
				c.SimulateOneStep(o.time)
			}
		}
		var eg errgroup.Group
		for _, bin := range plan.cBins {
			bin := bin
			eg.Go(func() error {
				for _, c := range bin {
					c.SimulateOneStep(o.time)
				}
				return nil
			})
		}
		eg.Wait()
		for _, bin := range plan.qBins {
			bin := bin
			eg.Go(func() error {
				for _, c := range bin {
					c.SimulateOneStep(o.time)
				}
				return nil
			})
		}
		eg.Wait()
		o.totalSteps++
		o.logTimeAndNodes(o.totalSteps)
	}
}
