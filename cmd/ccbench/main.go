// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/bench"
	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/config"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/config/environment"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

// globalFlags are shared by every command.
type globalFlags struct {
	ConfigFile      string
	HardwareProfile string
	Verbose         bool
}

func (flags *globalFlags) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", flags.ConfigFile,
		"Profiler config file (YAML or JSON). Defaults to $"+environment.ConfigFileEnv+".")
	cmd.PersistentFlags().StringVar(&flags.HardwareProfile, "hw-profile", flags.HardwareProfile,
		"Hardware profile used for calibration fallbacks and warm-up. Detected when unset.")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", flags.Verbose,
		"Enable verbose logging")
}

// logger builds the zap-backed logger under --verbose and discards logs
// otherwise. The returned function flushes buffered entries.
func (flags *globalFlags) logger() (logr.Logger, func()) {
	if !flags.Verbose {
		return logr.Discard(), func() {}
	}

	zapLog, err := zap.NewDevelopment()
	if err != nil {
		return logr.Discard(), func() {}
	}
	logger := zapr.NewLogger(zapLog)
	bench.SetRegistryLogger(logger.WithName("bench.registry"))
	return logger, func() { _ = zapLog.Sync() }
}

// load reads the config file, if any, and resolves the profiler settings.
func (flags *globalFlags) load(logger logr.Logger) (config.File, config.Resolved, error) {
	path := flags.ConfigFile
	if path == "" {
		path = environment.GetConfigFile()
	}

	var f config.File
	if path != "" {
		var err error
		if f, err = config.LoadFile(path, logger); err != nil {
			return f, config.Resolved{}, err
		}
	}

	resolved, err := config.Resolve(f, config.Options{
		HardwareProfile: flags.HardwareProfile,
		Detect:          hwprofile.Table.Detect,
		Logger:          logger,
	})
	return f, resolved, err
}

func newRootCmd() *cobra.Command {
	global := &globalFlags{}
	flags := newRunFlags()

	cmd := &cobra.Command{
		Use:   "ccbench",
		Short: "Measure core-to-core latency of contended atomic operations.",
		Long: `Runs one memory operation in turn on a source and a target core and times
every turn with a calibrated cycle counter. Each core prints its raw samples,
a deviation report and a summary line:

  Core <id> : avg <cycles> abs dev <cycles> std dev <cycles> 0-10% avg <cycles> (<n> samples)`,
		Example: `  # CAS between cores 0 and 1
  ccbench --test CAS --cores 2 --cores_array [0,1] --repetitions 10000

  # Benchmark every pair of cores 0-3 and write CSV
  ccbench sweep --cpus 0-3 -o pairs.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sync := global.logger()
			defer sync()

			_, resolved, err := global.load(logger)
			if err != nil {
				return err
			}

			o, err := flags.ToOptions(resolved, cmd.OutOrStdout(), logger)
			if err != nil {
				return err
			}
			_, err = bench.Run(cmd.Context(), o)
			return err
		},
	}

	global.AddFlags(cmd)
	flags.AddFlags(cmd)

	cmd.AddCommand(newSweepCmd(global))
	cmd.AddCommand(newProfilesCmd(global))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
