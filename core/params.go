// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// ParamType tags the value type of a parameter
type ParamType int

// parameter types
const (
	DoubleParam ParamType = iota
	IntParam
	BoolParam
	StringParam
	TextblockParam
	ConditionalParam
)

// String returns the type name
func (t ParamType) String() string {
	switch t {
	case DoubleParam:
		return "double"
	case IntParam:
		return "integer"
	case BoolParam:
		return "bool"
	case StringParam:
		return "string"
	case TextblockParam:
		return "textblock"
	case ConditionalParam:
		return "conditional"
	}
	return "unknown"
}

// maxResolveDepth caps referential parameter resolution; a deeper chain is
// reported as a reference cycle
const maxResolveDepth = 500

// Parameter is one named typed value owned by a component
type Parameter struct {
	name        string
	value       string // raw value string; may be a reference or expression
	typ         ParamType
	description string
	quantity    string
	unit        string
	data        any // bound storage: *float64, *int, *bool or *string
	conditions  []string
	internal    bool // start-value parameters registered by ports
}

// Name returns the parameter name
func (o *Parameter) Name() string { return o.name }

// Value returns the raw value string
func (o *Parameter) Value() string { return o.value }

// Type returns the parameter type
func (o *Parameter) Type() ParamType { return o.typ }

// Description returns the parameter description
func (o *Parameter) Description() string { return o.description }

// Quantity returns the physical quantity, if any
func (o *Parameter) Quantity() string { return o.quantity }

// Unit returns the unit
func (o *Parameter) Unit() string { return o.unit }

// Conditions returns the condition labels of a conditional parameter
func (o *Parameter) Conditions() []string { return o.conditions }

// IsStartValue tells whether this is a port start-value parameter
func (o *Parameter) IsStartValue() bool { return o.internal }

// ParamHandler owns the parameters of one component and performs lazy
// evaluation with referential lookups into the system hierarchy
type ParamHandler struct {
	owner           *ComponentBase
	params          []*Parameter
	lookup          map[string]*Parameter
	needsEvaluation map[string]bool
	resolving       []string // names currently being resolved, for cycle detection
}

// newParamHandler returns an empty handler for one component
func newParamHandler(owner *ComponentBase) (o *ParamHandler) {
	o = new(ParamHandler)
	o.owner = owner
	o.lookup = make(map[string]*Parameter)
	o.needsEvaluation = make(map[string]bool)
	return
}

// addParameter registers a parameter. An empty value string takes the raw
// value from the bound storage.
func (o *ParamHandler) addParameter(name, value, description, quantityOrUnit string, typ ParamType, data any, conditions []string, internal bool) *Parameter {
	if _, taken := o.lookup[name]; taken {
		return nil
	}
	p := &Parameter{
		name:        name,
		value:       value,
		typ:         typ,
		description: description,
		data:        data,
		conditions:  conditions,
		internal:    internal,
	}
	if q, bu, isQuantity := defaultQuantities.CheckIfQuantityOrUnit(quantityOrUnit); isQuantity {
		p.quantity = q
		p.unit = bu
	} else {
		p.unit = quantityOrUnit
	}
	if value == "" {
		p.value = o.rawFromData(p)
	}
	o.params = append(o.params, p)
	o.lookup[name] = p
	return p
}

// rawFromData formats the bound storage as a literal value string
func (o *ParamHandler) rawFromData(p *Parameter) string {
	switch d := p.data.(type) {
	case *float64:
		return io.Sf("%g", *d)
	case *int:
		return io.Sf("%d", *d)
	case *bool:
		return io.Sf("%v", *d)
	case *string:
		return *d
	}
	return ""
}

// RemoveParameter drops a parameter by name
func (o *ParamHandler) RemoveParameter(name string) {
	p, ok := o.lookup[name]
	if !ok {
		return
	}
	delete(o.lookup, name)
	delete(o.needsEvaluation, name)
	for i, q := range o.params {
		if q == p {
			o.params = append(o.params[:i], o.params[i+1:]...)
			return
		}
	}
}

// HasParameter tells whether a parameter exists
func (o *ParamHandler) HasParameter(name string) bool {
	_, ok := o.lookup[name]
	return ok
}

// Parameter returns a parameter by name, or nil
func (o *ParamHandler) Parameter(name string) *Parameter {
	return o.lookup[name]
}

// Parameters returns all parameters in registration order
func (o *ParamHandler) Parameters() []*Parameter {
	return o.params
}

// SetParameterValue parses the value greedily: a literal of the target type
// is written through to the bound data at once; anything else is stored as an
// unevaluated reference and queued in the needs-evaluation set
func (o *ParamHandler) SetParameterValue(name, value string) bool {
	p, ok := o.lookup[name]
	if !ok {
		o.addErr("no parameter named " + name)
		return false
	}
	old := p.value
	p.value = value
	if o.tryEvaluate(p) {
		delete(o.needsEvaluation, name)
		return true
	}
	// not a literal; keep as reference and recheck before simulation starts
	if o.referenceCouldResolve(p) {
		o.needsEvaluation[name] = true
		return true
	}
	p.value = old
	o.addErr("cannot set parameter " + name + " to " + value)
	return false
}

// tryEvaluate parses the raw value as a literal of the target type and
// writes it through the bound data pointer
func (o *ParamHandler) tryEvaluate(p *Parameter) bool {
	switch p.typ {
	case DoubleParam:
		v, err := strconv.ParseFloat(strings.TrimSpace(p.value), 64)
		if err != nil {
			return false
		}
		if d, ok := p.data.(*float64); ok {
			*d = v
		}
	case IntParam:
		v, err := strconv.Atoi(strings.TrimSpace(p.value))
		if err != nil {
			return false
		}
		if d, ok := p.data.(*int); ok {
			*d = v
		}
	case BoolParam:
		v, err := strconv.ParseBool(strings.TrimSpace(p.value))
		if err != nil {
			return false
		}
		if d, ok := p.data.(*bool); ok {
			*d = v
		}
	case StringParam, TextblockParam:
		if d, ok := p.data.(*string); ok {
			*d = p.value
		}
	case ConditionalParam:
		idx, err := strconv.Atoi(strings.TrimSpace(p.value))
		if err != nil {
			// accept a condition label instead of an index
			idx = -1
			for i, c := range p.conditions {
				if c == p.value {
					idx = i
					break
				}
			}
			if idx < 0 {
				return false
			}
			p.value = io.Sf("%d", idx)
		}
		if idx < 0 || idx >= len(p.conditions) {
			return false
		}
		if d, ok := p.data.(*int); ok {
			*d = idx
		}
	}
	return true
}

// referenceCouldResolve tells whether keeping the value as a deferred
// reference makes sense for the parameter type
func (o *ParamHandler) referenceCouldResolve(p *Parameter) bool {
	switch p.typ {
	case DoubleParam, IntParam, BoolParam, StringParam:
		return p.value != ""
	}
	return false
}

// EvaluateParameter evaluates one parameter now, resolving references, and
// returns the final literal value string
func (o *ParamHandler) EvaluateParameter(name string) (value string, err error) {
	p, ok := o.lookup[name]
	if !ok {
		return "", chk.Err("no parameter named %q", name)
	}
	err = o.evaluate(p)
	if err != nil {
		return
	}
	return o.rawFromData(p), nil
}

// EvaluateDouble evaluates a double parameter and returns its numeric value
func (o *ParamHandler) EvaluateDouble(name string) (v float64, err error) {
	p, ok := o.lookup[name]
	if !ok {
		return 0, chk.Err("no parameter named %q", name)
	}
	if p.typ != DoubleParam {
		return 0, chk.Err("parameter %q is not a double", name)
	}
	err = o.evaluate(p)
	if err != nil {
		return
	}
	if d, ok := p.data.(*float64); ok {
		return *d, nil
	}
	return strconv.ParseFloat(p.value, 64)
}

// evaluate resolves one parameter, recursing through references
func (o *ParamHandler) evaluate(p *Parameter) error {
	if o.tryEvaluate(p) {
		return nil
	}
	if len(o.resolving) >= maxResolveDepth {
		return chk.Err("parameter %q: reference chain deeper than %d, assuming cycle", p.name, maxResolveDepth)
	}
	for _, n := range o.resolving {
		if n == p.name {
			return chk.Err("parameter %q: reference cycle detected via %v", p.name, o.resolving)
		}
	}
	o.resolving = append(o.resolving, p.name)
	defer func() { o.resolving = o.resolving[:len(o.resolving)-1] }()

	switch p.typ {
	case DoubleParam:
		v, err := o.resolveDouble(p.value)
		if err != nil {
			return chk.Err("parameter %q: %v", p.name, err)
		}
		if d, ok := p.data.(*float64); ok {
			*d = v
		}
		return nil
	case IntParam, BoolParam, StringParam:
		raw, err := o.resolveRaw(p.value)
		if err != nil {
			return chk.Err("parameter %q: %v", p.name, err)
		}
		save := p.value
		p.value = raw
		if o.tryEvaluate(p) {
			p.value = save
			return nil
		}
		p.value = save
		return chk.Err("parameter %q: reference %q resolved to incompatible value %q", p.name, save, raw)
	}
	return chk.Err("parameter %q: cannot evaluate value %q", p.name, p.value)
}

// resolveDouble resolves a non-literal double value: a sibling parameter, a
// system parameter up the hierarchy, an aliased or dotted variable, or an
// expression handed to the inline script evaluator
func (o *ParamHandler) resolveDouble(ref string) (float64, error) {
	ref = strings.TrimSpace(ref)
	if v, err := strconv.ParseFloat(ref, 64); err == nil {
		return v, nil
	}

	// sibling parameter in the same component
	if p, ok := o.lookup[ref]; ok {
		if err := o.evaluate(p); err != nil {
			return 0, err
		}
		if d, okd := p.data.(*float64); okd {
			return *d, nil
		}
		return strconv.ParseFloat(p.value, 64)
	}

	// owning system and its ancestors
	for sys := o.ownerSystem(); sys != nil; sys = sys.SystemParent() {
		if v, ok := sys.resolveParamOrVariable(ref); ok {
			return v, nil
		}
	}

	// expression through the inline script evaluator
	if o.owner != nil && o.owner.engine != nil && o.owner.engine.evaluator != nil {
		scope := o.ownerSystem()
		if scope == nil {
			scope = asSystem(o.owner.self)
		}
		if scope != nil {
			if v, err := o.owner.engine.evaluator.EvalExpression(ref, scope); err == nil {
				return v, nil
			}
		}
	}
	return 0, chk.Err("cannot resolve reference %q", ref)
}

// resolveRaw resolves a non-literal value for the non-double types; only
// parameter references are meaningful here
func (o *ParamHandler) resolveRaw(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := o.lookup[ref]; ok {
		if err := o.evaluate(p); err != nil {
			return "", err
		}
		return o.rawFromData(p), nil
	}
	for sys := o.ownerSystem(); sys != nil; sys = sys.SystemParent() {
		if p := sys.params.lookup[ref]; p != nil {
			if err := sys.params.evaluate(p); err != nil {
				return "", err
			}
			return sys.params.rawFromData(p), nil
		}
	}
	return "", chk.Err("cannot resolve reference %q", ref)
}

// ownerSystem returns the system whose scope governs reference lookups: the
// parent system, or the owner itself when the owner is a system
func (o *ParamHandler) ownerSystem() *System {
	if o.owner == nil {
		return nil
	}
	if o.owner.parent != nil {
		return o.owner.parent
	}
	return asSystem(o.owner.self)
}

// EvaluateParameters evaluates every parameter; errors go to the bus
func (o *ParamHandler) EvaluateParameters() bool {
	ok := true
	for _, p := range o.params {
		if err := o.evaluate(p); err != nil {
			o.addErr(err.Error())
			ok = false
		}
	}
	return ok
}

// CheckParameters re-checks the needs-evaluation set; the first parameter
// that fails evaluation is returned by name. Called right before simulation.
func (o *ParamHandler) CheckParameters() (failed string, ok bool) {
	for _, p := range o.params {
		if !o.needsEvaluation[p.name] {
			continue
		}
		if err := o.evaluate(p); err != nil {
			return p.name, false
		}
	}
	return "", true
}

// addErr posts an error message on the owner's bus
func (o *ParamHandler) addErr(text string) {
	if o.owner != nil {
		o.owner.AddErrorMessage(text)
	}
}
