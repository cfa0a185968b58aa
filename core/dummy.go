// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// DummyComponent stands in for unknown component types so that a model can
// be loaded, inspected and saved without the real library present. It keeps
// the requested type name and leaves every node it touches unchanged.
type DummyComponent struct {
	ComponentBase
}

// Configure does nothing; ports appear as the loader recreates them
func (o *DummyComponent) Configure() {}

// Initialize warns once that this component will not do anything
func (o *DummyComponent) Initialize(startT, stopT float64) bool {
	o.time = startT
	o.AddWarningMessage("Component " + o.name + " is a dummy replacement for unknown type " + o.typeName + " and will not simulate")
	return true
}
