// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hopsan/gohopsan/core"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the simulation core version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(core.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
