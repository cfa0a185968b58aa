// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"github.com/hopsan/gohopsan/msg"
	"github.com/hopsan/gohopsan/quantity"
)

// Version is the simulation core version string
const Version = "3.0.0-go"

// Creator allocates one component instance
type Creator func() Component

// globalCreators holds the component types registered by library packages
// at init time; engine instances overlay their own registrations on top
var globalCreators = make(map[string]Creator)

// RegisterCreatorFunction registers a component type in the process-wide
// registry; component library packages call this from init
func RegisterCreatorFunction(typeName string, creator Creator) {
	globalCreators[typeName] = creator
}

// Engine creates components, nodes and systems and owns the message bus and
// the quantity register consulted by everything it creates
type Engine struct {
	messages   *msg.Handler
	quantities *quantity.Register
	creators   map[string]Creator
	reserved   map[string]bool
	evaluator  ScriptEvaluator
}

// NewEngine returns an engine with the built-in registrations loaded
func NewEngine() (o *Engine) {
	o = new(Engine)
	o.messages = msg.NewHandler()
	o.quantities = quantity.Default()
	o.creators = make(map[string]Creator)
	o.reserved = make(map[string]bool)
	return
}

// Messages returns the engine message bus
func (o *Engine) Messages() *msg.Handler {
	return o.messages
}

// Quantities returns the quantity register
func (o *Engine) Quantities() *quantity.Register {
	return o.quantities
}

// SetScriptEvaluator installs the external inline script evaluator
func (o *Engine) SetScriptEvaluator(e ScriptEvaluator) {
	o.evaluator = e
}

// ScriptEvaluator returns the installed evaluator, or nil
func (o *Engine) ScriptEvaluator() ScriptEvaluator {
	return o.evaluator
}

// RegisterCreatorFunction registers a component type on this engine only,
// shadowing any process-wide registration with the same name
func (o *Engine) RegisterCreatorFunction(typeName string, creator Creator) {
	o.creators[typeName] = creator
	delete(o.reserved, typeName)
}

// ReserveComponentTypeName holds a type name without a creator; the library
// loader reserves names before the actual load completes
func (o *Engine) ReserveComponentTypeName(typeName string) bool {
	if o.HaveComponentType(typeName) || o.reserved[typeName] {
		return false
	}
	o.reserved[typeName] = true
	return true
}

// UnReserveComponentTypeName releases a reserved type name
func (o *Engine) UnReserveComponentTypeName(typeName string) {
	delete(o.reserved, typeName)
}

// HaveComponentType tells whether a creator exists for a type name
func (o *Engine) HaveComponentType(typeName string) bool {
	if _, ok := o.creators[typeName]; ok {
		return true
	}
	_, ok := globalCreators[typeName]
	return ok
}

// CreateComponent constructs and configures a component by type name.
// Unknown type names resolve to a dummy component that keeps the requested
// type name and forwards its ports unchanged.
func (o *Engine) CreateComponent(typeName string) Component {
	creator, ok := o.creators[typeName]
	if !ok {
		creator, ok = globalCreators[typeName]
	}
	var c Component
	if ok {
		c = creator()
	} else {
		o.messages.AddWarning("Could not create component of type " + typeName + ", inserting a dummy component instead")
		c = new(DummyComponent)
	}
	c.Base().initBase(typeName, c, o)
	c.Configure()
	return c
}

// CreateComponentSystem constructs an empty subsystem
func (o *Engine) CreateComponentSystem() *System {
	s := new(System)
	s.initSystem(s, o)
	return s
}

// CreateConditionalComponentSystem constructs a subsystem that only
// simulates while its condition input is true
func (o *Engine) CreateConditionalComponentSystem() *ConditionalSystem {
	s := new(ConditionalSystem)
	s.initSystem(s, o)
	s.configureCondition()
	return s
}

// CreateNode constructs a node of a registered node type
func (o *Engine) CreateNode(nodeType string) *Node {
	if !HaveNodeType(nodeType) {
		o.messages.AddError("Could not create node of unregistered type " + nodeType)
		return nil
	}
	return newNode(nodeType)
}
