// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// VariableSpec names one node variable by its full (component, port,
// variable) triple within a system
type VariableSpec struct {
	Component string
	Port      string
	Variable  string
}

// AliasHandler maps system-scoped alias strings to variable triples
type AliasHandler struct {
	owner   *System
	aliases map[string]VariableSpec
}

// newAliasHandler returns an empty handler owned by sys
func newAliasHandler(sys *System) (o *AliasHandler) {
	o = new(AliasHandler)
	o.owner = sys
	o.aliases = make(map[string]VariableSpec)
	return
}

// SetVariableAlias installs an alias for a variable triple. Any existing
// alias with the same name is replaced, and any other alias already naming
// the same triple is removed; aliases are unique within a system.
func (o *AliasHandler) SetVariableAlias(alias, comp, port, variable string) bool {
	if alias == "" {
		return false
	}
	spec := VariableSpec{Component: comp, Port: port, Variable: variable}
	for a, s := range o.aliases {
		if s == spec && a != alias {
			delete(o.aliases, a)
		}
	}
	o.aliases[alias] = spec

	// also record on the port so that the variable knows its alias
	if o.owner != nil {
		if c := o.owner.SubComponent(comp); c != nil {
			if p := c.Base().Port(port); p != nil {
				n := p.Node()
				if n == nil && len(p.SubPorts()) > 0 {
					n = p.SubPorts()[0].Node()
				}
				if n != nil {
					if id := n.DataIDFromName(variable); id >= 0 {
						p.SetVariableAlias(alias, id)
					}
				}
			}
		}
	}
	return true
}

// HasAlias tells whether an alias exists
func (o *AliasHandler) HasAlias(alias string) bool {
	_, ok := o.aliases[alias]
	return ok
}

// VariableSpec resolves an alias to its variable triple
func (o *AliasHandler) VariableSpec(alias string) (spec VariableSpec, ok bool) {
	spec, ok = o.aliases[alias]
	return
}

// RemoveAlias drops one alias
func (o *AliasHandler) RemoveAlias(alias string) {
	delete(o.aliases, alias)
}

// Aliases returns all alias names
func (o *AliasHandler) Aliases() (res []string) {
	for a := range o.aliases {
		res = append(res, a)
	}
	return
}

// ComponentRenamed rewrites all aliases referring to a renamed component
func (o *AliasHandler) ComponentRenamed(oldName, newName string) {
	for a, s := range o.aliases {
		if s.Component == oldName {
			s.Component = newName
			o.aliases[a] = s
		}
	}
}

// ComponentRemoved deletes all aliases referring to a removed component
func (o *AliasHandler) ComponentRemoved(name string) {
	for a, s := range o.aliases {
		if s.Component == name {
			delete(o.aliases, a)
		}
	}
}
