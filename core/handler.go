// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// SimulationHandler is the public simulation entry: initialize the system
// hierarchy, run to the stop time, finalize. It also exposes the
// multi-threaded path.
type SimulationHandler struct{}

// InitializeSystem prepares systems for a run from startT to stopT
func (o *SimulationHandler) InitializeSystem(startT, stopT float64, systems ...*System) bool {
	for _, s := range systems {
		if !s.Initialize(startT, stopT) {
			return false
		}
	}
	return true
}

// SimulateSystem runs systems to stopT, each on its own fixed step
func (o *SimulationHandler) SimulateSystem(stopT float64, systems ...*System) {
	for _, s := range systems {
		s.Simulate(stopT)
	}
}

// SimulateSystemMultiThreaded runs one system to stopT with parallel
// workers; noChanges reuses the partitioning from a previous run
func (o *SimulationHandler) SimulateSystemMultiThreaded(startT, stopT float64, nThreads int, noChanges bool, algorithm ParallelAlgorithm, system *System) {
	system.SimulateMultiThreaded(startT, stopT, nThreads, noChanges, algorithm)
}

// FinalizeSystem releases per-run resources
func (o *SimulationHandler) FinalizeSystem(systems ...*System) {
	for _, s := range systems {
		s.Finalize()
	}
}
