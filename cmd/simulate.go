// Copyright 2026 The Gohopsan Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hopsan/gohopsan/core"
)

// logRow is one exported CSV row in long format: one variable of one node
// at one logged time stamp
type logRow struct {
	Time     float64 `csv:"time"`
	Variable string  `csv:"variable"`
	Value    float64 `csv:"value"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the built-in demonstration model",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Int("volumes", 10, "number of volume/orifice pairs in the demo model")
	simulateCmd.Flags().Int("threads", 1, "number of worker threads (1 = single-threaded)")
	simulateCmd.Flags().String("algorithm", "offline", "parallel algorithm: offline|pool|stealing|parfor|grouped")
	simulateCmd.Flags().String("csv", "", "write the logged node data of the first node to this CSV file")

	viper.BindPFlag("volumes", simulateCmd.Flags().Lookup("volumes"))
	viper.BindPFlag("threads", simulateCmd.Flags().Lookup("threads"))
	viper.BindPFlag("algorithm", simulateCmd.Flags().Lookup("algorithm"))
	viper.BindPFlag("csv", simulateCmd.Flags().Lookup("csv"))

	rootCmd.AddCommand(simulateCmd)
}

// parseAlgorithm maps the flag value to a parallel algorithm
func parseAlgorithm(name string) (core.ParallelAlgorithm, error) {
	switch name {
	case "offline":
		return core.OfflineScheduling, nil
	case "pool":
		return core.TaskPoolScheduling, nil
	case "stealing":
		return core.TaskStealingScheduling, nil
	case "parfor":
		return core.ParallelForScheduling, nil
	case "grouped":
		return core.GroupedParallelForScheduling, nil
	}
	return 0, errors.Errorf("unknown parallel algorithm %q", name)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	dt := viper.GetFloat64("timestep")
	stopT := viper.GetFloat64("stop-time")
	samples := viper.GetInt("samples")
	threads := viper.GetInt("threads")

	engine := core.NewEngine()
	defer drainMessages(engine)

	sys, err := buildDemoModel(engine, viper.GetInt("volumes"), dt)
	if err != nil {
		return err
	}
	sys.SetNumLogSamples(samples)

	if !sys.Initialize(0, stopT) {
		drainMessages(engine)
		return errors.New("initialization failed")
	}

	if threads > 1 {
		alg, err := parseAlgorithm(viper.GetString("algorithm"))
		if err != nil {
			return err
		}
		log.Infow("simulating", "stopTime", stopT, "threads", threads, "algorithm", alg.String())
		sys.SimulateMultiThreaded(0, stopT, threads, false, alg)
	} else {
		log.Infow("simulating", "stopTime", stopT, "threads", 1)
		sys.Simulate(stopT)
	}
	sys.Finalize()

	log.Infow("simulation done", "steps", sys.TotalSteps(), "loggedSamples", len(sys.LogTimes()))

	if path := viper.GetString("csv"); path != "" {
		if err := exportFirstNodeCSV(sys, path); err != nil {
			return errors.Wrap(err, "exporting CSV")
		}
		log.Infof("wrote %s", path)
	}
	return nil
}

// exportFirstNodeCSV writes the log matrix of the system's first logged
// node together with the time vector
func exportFirstNodeCSV(sys *core.System, path string) error {
	var rows []*logRow
	times := sys.LogTimes()
	for _, n := range sys.Nodes() {
		if !n.IsLoggingEnabled() || len(n.LogData()) == 0 {
			continue
		}
		for i, t := range times {
			for _, d := range n.DataDescriptions() {
				rows = append(rows, &logRow{Time: t, Variable: d.Name, Value: n.LogData()[i][d.ID]})
			}
		}
		break
	}
	if len(rows) == 0 {
		return errors.New("no logged node data to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}
