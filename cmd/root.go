// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cmd implements the gohopsan command line interface
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hopsan/gohopsan/core"
	"github.com/hopsan/gohopsan/msg"
)

var log *zap.SugaredLogger

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "gohopsan",
	Short: "Time-domain simulation of lumped physical systems",
	Long: `gohopsan simulates lumped physical systems (hydraulic, mechanic,
electric, signal) with the transmission-line-method decoupling technique.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Float64("timestep", 1e-3, "simulation timestep [s]")
	rootCmd.PersistentFlags().Float64("stop-time", 1.0, "simulation stop time [s]")
	rootCmd.PersistentFlags().Int("samples", 1024, "requested number of log samples")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	viper.BindPFlag("timestep", rootCmd.PersistentFlags().Lookup("timestep"))
	viper.BindPFlag("stop-time", rootCmd.PersistentFlags().Lookup("stop-time"))
	viper.BindPFlag("samples", rootCmd.PersistentFlags().Lookup("samples"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetEnvPrefix("GOHOPSAN")
	viper.AutomaticEnv()
}

// setupLogging builds the zap logger
func setupLogging() error {
	cfg := zap.NewDevelopmentConfig()
	if !viper.GetBool("debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	log = l.Sugar()
	return nil
}

// drainMessages forwards all queued engine messages to the logger
func drainMessages(engine *core.Engine) {
	for engine.Messages().CheckMessages() > 0 {
		m, ok := engine.Messages().GetMessage()
		if !ok {
			break
		}
		switch m.Kind {
		case msg.Warning:
			log.Warnw(m.Text, "tag", m.Tag)
		case msg.Error, msg.Fatal:
			log.Errorw(m.Text, "tag", m.Tag)
		case msg.Debug:
			log.Debugw(m.Text, "tag", m.Tag)
		default:
			log.Infow(m.Text, "tag", m.Tag)
		}
	}
}
