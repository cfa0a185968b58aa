// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package quantity maps physical quantity names to their base units
package quantity

// Register holds the quantity => base unit table and the alias table.
// The register is immutable once built; engines may share one instance.
type Register struct {
	quantity2baseUnit map[string]string // e.g. "Pressure" => "Pa"
	aliases           map[string]string // e.g. "Length" => "Position"
}

// NewRegister returns a register loaded with the built-in quantities
func NewRegister() (o *Register) {
	o = new(Register)
	o.quantity2baseUnit = make(map[string]string)
	o.aliases = make(map[string]string)

	o.register("Pressure", "Pa")
	o.register("Flow", "m^3/s")

	o.register("Force", "N")
	o.register("Position", "m")
	o.register("Velocity", "m/s")
	o.register("Acceleration", "m/s^2")

	o.register("Torque", "Nm")
	o.register("Angle", "rad")

	o.register("Voltage", "V")
	o.register("Current", "A")

	o.register("Momentum", "kg m/s")
	o.register("Energy", "J")
	o.register("Power", "J/s")

	o.register("Mass", "kg")
	o.register("Area", "m^2")
	o.register("Volume", "m^3")
	o.register("Displacement", "m^3/rev")

	o.register("Density", "kg/m^3")

	o.register("Frequency", "Hz")
	o.register("AngularVelocity", "rad/s")
	o.register("Time", "s")

	o.register("Temperature", "K")

	o.register("Resistance", "Ohm")

	o.registerAlias("Pressure", "Stress")
	o.registerAlias("Position", "Length")
	return
}

// register adds one quantity => base unit pair
func (o *Register) register(quantity, baseUnit string) {
	o.quantity2baseUnit[quantity] = baseUnit
}

// registerAlias adds one alias => quantity pair
func (o *Register) registerAlias(quantity, alias string) {
	o.aliases[alias] = quantity
}

// LookupByAlias translates a quantity alias to its original name;
// unregistered aliases are returned unchanged
func (o *Register) LookupByAlias(alias string) string {
	if q, ok := o.aliases[alias]; ok {
		return q
	}
	return alias
}

// Have tells whether a quantity (or quantity alias) is registered
func (o *Register) Have(quantity string) bool {
	_, ok := o.quantity2baseUnit[o.LookupByAlias(quantity)]
	return ok
}

// LookupBaseUnit returns the base unit of a quantity (or alias),
// or an empty string if the quantity is not registered
func (o *Register) LookupBaseUnit(quantity string) string {
	return o.quantity2baseUnit[o.LookupByAlias(quantity)]
}

// Resolve resolves quantity and base unit from a string containing either of
// the two. A quantity alias is preserved if given as input. Both results are
// empty if the input is neither a quantity nor a base unit.
func (o *Register) Resolve(quantityOrBaseUnit string) (quantity, baseUnit string) {
	real := o.LookupByAlias(quantityOrBaseUnit)
	if bu, ok := o.quantity2baseUnit[real]; ok {
		return quantityOrBaseUnit, bu
	}
	for q, bu := range o.quantity2baseUnit {
		if bu == quantityOrBaseUnit {
			return q, bu
		}
	}
	return "", ""
}

// CheckIfQuantityOrUnit classifies a free string through Resolve: a known
// quantity or alias (kept as given) or a registered base unit yields
// (quantity, baseUnit, true); anything else is treated as a plain unit and
// yields ("", input, false)
func (o *Register) CheckIfQuantityOrUnit(quantityOrUnit string) (quantity, unitOrBaseUnit string, isQuantity bool) {
	q, bu := o.Resolve(quantityOrUnit)
	if q == "" {
		return "", quantityOrUnit, false
	}
	return q, bu, true
}

// defaultRegister is shared by engines that do not own a private table
var defaultRegister = NewRegister()

// Default returns the shared built-in register
func Default() *Register {
	return defaultRegister
}
