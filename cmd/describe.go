// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hopsan/gohopsan/core"
)

// portInfo describes one port in the YAML dump
type portInfo struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	NodeType  string `yaml:"nodeType"`
	Connected bool   `yaml:"connected"`
}

// paramInfo describes one parameter in the YAML dump
type paramInfo struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Type  string `yaml:"type"`
	Unit  string `yaml:"unit,omitempty"`
}

// compInfo describes one component in the YAML dump
type compInfo struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	CQS        string      `yaml:"cqs"`
	Ports      []portInfo  `yaml:"ports,omitempty"`
	Parameters []paramInfo `yaml:"parameters,omitempty"`
	Children   []compInfo  `yaml:"children,omitempty"`
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the demonstration model tree as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := core.NewEngine()
		defer drainMessages(engine)
		nVolumes, _ := cmd.Flags().GetInt("volumes")
		sys, err := buildDemoModel(engine, nVolumes, viper.GetFloat64("timestep"))
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(describeComponent(sys))
	},
}

func init() {
	describeCmd.Flags().Int("volumes", 10, "number of volume/orifice pairs in the demo model")
	rootCmd.AddCommand(describeCmd)
}

// describeComponent builds the YAML description of a component and, for
// systems, of everything below it
func describeComponent(c core.Component) (info compInfo) {
	b := c.Base()
	info.Name = b.Name()
	info.Type = b.TypeName()
	info.CQS = b.CQSType().String()
	for _, p := range b.Ports() {
		info.Ports = append(info.Ports, portInfo{
			Name:      p.Name(),
			Kind:      p.Kind().String(),
			NodeType:  p.NodeType(),
			Connected: p.IsConnected(),
		})
	}
	for _, p := range b.Parameters().Parameters() {
		if p.IsStartValue() {
			continue
		}
		info.Parameters = append(info.Parameters, paramInfo{
			Name:  p.Name(),
			Value: p.Value(),
			Type:  p.Type().String(),
			Unit:  p.Unit(),
		})
	}
	if s := asSystemComponent(c); s != nil {
		for _, child := range s.SubComponents() {
			info.Children = append(info.Children, describeComponent(child))
		}
	}
	return
}

// asSystemComponent returns the system behind a component, or nil
func asSystemComponent(c core.Component) *core.System {
	if s, ok := c.(*core.System); ok {
		return s
	}
	return nil
}
