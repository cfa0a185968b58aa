// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comps

import (
	"github.com/hopsan/gohopsan/core"
)

func init() {
	core.RegisterCreatorFunction("MechanicSpringC", func() core.Component { return new(MechanicSpringC) })
	core.RegisterCreatorFunction("MechanicTranslationalMass", func() core.Component { return new(MechanicTranslationalMass) })
}

// MechanicSpringC is a C-type translational spring between two mechanic nodes
type MechanicSpringC struct {
	core.ComponentBase

	k float64

	p1, p2   *core.Port
	v1, v2   *float64
	c1, c2   *float64
	zc1, zc2 *float64
	zc       float64
}

// Configure installs two power ports and the stiffness constant
func (o *MechanicSpringC) Configure() {
	o.SetCQSType(core.CType)
	o.AddConstant("k", "Spring stiffness", "N/m", 100, &o.k)
	o.p1 = o.AddPowerPort("P1", core.NodeMechanicType)
	o.p2 = o.AddPowerPort("P2", core.NodeMechanicType)
}

// Initialize computes the impedance and primes the waves
func (o *MechanicSpringC) Initialize(startT, stopT float64) bool {
	o.v1 = o.p1.NodeDataPtr(core.NMVelocity)
	o.c1 = o.p1.NodeDataPtr(core.NMWave)
	o.zc1 = o.p1.NodeDataPtr(core.NMZc)
	o.v2 = o.p2.NodeDataPtr(core.NMVelocity)
	o.c2 = o.p2.NodeDataPtr(core.NMWave)
	o.zc2 = o.p2.NodeDataPtr(core.NMZc)

	o.zc = o.k * o.Timestep()
	*o.c1 = o.p1.ReadSafe(core.NMForce) + o.zc**o.v1
	*o.c2 = o.p2.ReadSafe(core.NMForce) + o.zc**o.v2
	*o.zc1 = o.zc
	*o.zc2 = o.zc
	return true
}

// SimulateOneStep advances the spring transmission line
func (o *MechanicSpringC) SimulateOneStep(stopT float64) {
	c10 := *o.c2 + 2*o.zc**o.v2
	c20 := *o.c1 + 2*o.zc**o.v1
	*o.c1 = c10
	*o.c2 = c20
	*o.zc1 = o.zc
	*o.zc2 = o.zc
}

// MechanicTranslationalMass is a Q-type rigid mass with viscous friction
// between two mechanic nodes
type MechanicTranslationalMass struct {
	core.ComponentBase

	m float64
	b float64

	p1, p2   *core.Port
	v1, v2   *float64
	f1, f2   *float64
	x1, x2   *float64
	c1, c2   *float64
	zc1, zc2 *float64
}

// Configure installs two power ports and the mass constants
func (o *MechanicTranslationalMass) Configure() {
	o.SetCQSType(core.QType)
	o.AddConstant("m", "Mass", "Mass", 1, &o.m)
	o.AddConstant("B", "Viscous friction", "Ns/m", 0, &o.b)
	o.p1 = o.AddPowerPort("P1", core.NodeMechanicType)
	o.p2 = o.AddPowerPort("P2", core.NodeMechanicType)
}

// Initialize binds node data
func (o *MechanicTranslationalMass) Initialize(startT, stopT float64) bool {
	o.v1 = o.p1.NodeDataPtr(core.NMVelocity)
	o.f1 = o.p1.NodeDataPtr(core.NMForce)
	o.x1 = o.p1.NodeDataPtr(core.NMPosition)
	o.c1 = o.p1.NodeDataPtr(core.NMWave)
	o.zc1 = o.p1.NodeDataPtr(core.NMZc)
	o.v2 = o.p2.NodeDataPtr(core.NMVelocity)
	o.f2 = o.p2.NodeDataPtr(core.NMForce)
	o.x2 = o.p2.NodeDataPtr(core.NMPosition)
	o.c2 = o.p2.NodeDataPtr(core.NMWave)
	o.zc2 = o.p2.NodeDataPtr(core.NMZc)
	return true
}

// SimulateOneStep integrates the equation of motion against the incoming waves
func (o *MechanicTranslationalMass) SimulateOneStep(stopT float64) {
	dt := o.Timestep()
	v2 := (o.m / dt * *o.v2 + *o.c1 - *o.c2) / (o.m/dt + o.b + *o.zc1 + *o.zc2)
	v1 := -v2
	*o.v1 = v1
	*o.v2 = v2
	*o.f1 = *o.c1 + *o.zc1*v1
	*o.f2 = *o.c2 + *o.zc2*v2
	*o.x1 -= v2 * dt
	*o.x2 += v2 * dt
}
