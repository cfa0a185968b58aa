// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"github.com/cpmech/gosl/chk"

	"github.com/hopsan/gohopsan/quantity"
)

// defaultQuantities is the shared quantity register consulted when node data
// characteristics and parameters are declared with a quantity-or-unit string
var defaultQuantities = quantity.Default()

// built-in node type names
const (
	NodeEmptyType     = "NodeEmpty"
	NodeSignalType    = "NodeSignal"
	NodeHydraulicType = "NodeHydraulic"
	NodeMechanicType  = "NodeMechanic"
	NodeElectricType  = "NodeElectric"
)

// Data ids in NodeSignal
const (
	NSValue = 0
)

// Data ids in NodeHydraulic
const (
	NHFlow = iota
	NHPressure
	NHTemperature
	NHWave
	NHZc
	NHHeatFlow
)

// Data ids in NodeMechanic
const (
	NMVelocity = iota
	NMForce
	NMPosition
	NMWave
	NMZc
	NMEquivMass
)

// Data ids in NodeElectric
const (
	NECurrent = iota
	NEVoltage
	NEWave
	NEZc
)

// nodeConstructors holds all available node types; nodeType => maker
var nodeConstructors = make(map[string]func() *Node)

// RegisterNodeType registers a node constructor under a type name
func RegisterNodeType(nodeType string, maker func() *Node) {
	nodeConstructors[nodeType] = maker
}

// HaveNodeType tells whether a node type name is registered
func HaveNodeType(nodeType string) bool {
	_, ok := nodeConstructors[nodeType]
	return ok
}

// newNode creates a fresh unowned node of the given registered type
func newNode(nodeType string) (o *Node) {
	maker, ok := nodeConstructors[nodeType]
	if !ok {
		chk.Panic("cannot create node of unregistered type %q", nodeType)
	}
	return maker()
}

func init() {
	RegisterNodeType(NodeEmptyType, func() *Node {
		return newNodeWith(NodeEmptyType, 0)
	})
	RegisterNodeType(NodeSignalType, func() *Node {
		o := newNodeWith(NodeSignalType, 1)
		o.setData(NSValue, "Value", "y", "", DefaultVar)
		o.desc[NSValue].ModifiableQuantity = true
		return o
	})
	RegisterNodeType(NodeHydraulicType, func() *Node {
		o := newNodeWith(NodeHydraulicType, 6)
		o.setData(NHFlow, "Flow", "q", "Flow", FlowVar)
		o.setData(NHPressure, "Pressure", "p", "Pressure", IntensityVar)
		o.setData(NHTemperature, "Temperature", "T", "K", HiddenVar)
		o.setData(NHWave, "WaveVariable", "c", "Pressure", TLMVar)
		o.setData(NHZc, "CharImpedance", "Zc", "Pa s/m^3", TLMVar)
		o.setData(NHHeatFlow, "HeatFlow", "Qdot", "W", HiddenVar)
		o.values[NHPressure] = 1e5
		o.values[NHWave] = 1e5
		return o
	})
	RegisterNodeType(NodeMechanicType, func() *Node {
		o := newNodeWith(NodeMechanicType, 6)
		o.setData(NMVelocity, "Velocity", "v", "Velocity", FlowVar)
		o.setData(NMForce, "Force", "f", "Force", IntensityVar)
		o.setData(NMPosition, "Position", "x", "Position", DefaultVar)
		o.setData(NMWave, "WaveVariable", "c", "Force", TLMVar)
		o.setData(NMZc, "CharImpedance", "Zc", "N s/m", TLMVar)
		o.setData(NMEquivMass, "EquivalentMass", "me", "Mass", HiddenVar)
		o.values[NMEquivMass] = 1
		return o
	})
	RegisterNodeType(NodeElectricType, func() *Node {
		o := newNodeWith(NodeElectricType, 4)
		o.setData(NECurrent, "Current", "i", "Current", FlowVar)
		o.setData(NEVoltage, "Voltage", "u", "Voltage", IntensityVar)
		o.setData(NEWave, "WaveVariable", "c", "Voltage", TLMVar)
		o.setData(NEZc, "CharImpedance", "Zc", "V/A", TLMVar)
		return o
	})
}
