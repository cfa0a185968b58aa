// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "github.com/cpmech/gosl/io"

// NameTag records what occupies a reserved name; ports, subcomponents and
// system parameters share one flat namespace within a system
type NameTag int

// name tags
const (
	ComponentNameTag NameTag = iota
	SystemPortNameTag
	SysParamNameTag
	ReservedNameTag
)

// reserveUniqueName takes a name in the system namespace, appending a
// numeric suffix when the wanted name is occupied, and returns the name
// actually reserved
func (o *System) reserveUniqueName(want string, tag NameTag) string {
	name := want
	for i := 1; ; i++ {
		if _, taken := o.reservedNames[name]; !taken {
			break
		}
		name = io.Sf("%s_%d", want, i)
	}
	o.reservedNames[name] = tag
	return name
}

// unReserveName frees a reserved name
func (o *System) unReserveName(name string) {
	delete(o.reservedNames, name)
}

// HasReservedName tells whether a name is occupied in this system
func (o *System) HasReservedName(name string) bool {
	_, taken := o.reservedNames[name]
	return taken
}

// ReserveName occupies a name without attaching anything to it; the loader
// uses this to hold names while models load
func (o *System) ReserveName(name string) string {
	return o.reserveUniqueName(name, ReservedNameTag)
}
