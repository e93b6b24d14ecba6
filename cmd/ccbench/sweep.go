// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/bench"
	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/config"
	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/sweep"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/config/environment"
)

type sweepFlags struct {
	Binary      string
	CPUs        string
	Timeout     time.Duration
	Output      string
	Test        string
	Repetitions int
}

func (flags *sweepFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.Binary, "binary", flags.Binary,
		"Benchmark binary run for each pair. Defaults to this executable.")
	cmd.Flags().StringVar(&flags.CPUs, "cpus", flags.CPUs,
		"Cores to sweep in kernel list format (e.g. 0-3,8). Defaults to the online cores.")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout,
		"Time limit for each pair.")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", flags.Output,
		"Write CSV to a file instead of stdout.")
	cmd.Flags().StringVarP(&flags.Test, "test", "t", flags.Test,
		"Test forwarded to every run.")
	cmd.Flags().IntVarP(&flags.Repetitions, "repetitions", "r", flags.Repetitions,
		"Repetitions forwarded to every run.")
}

// merge fills the flags the user did not set from the config file.
func (flags *sweepFlags) merge(cmd *cobra.Command, f config.Sweep) {
	if !cmd.Flags().Changed("binary") && f.Binary != "" {
		flags.Binary = f.Binary
	}
	if !cmd.Flags().Changed("cpus") && f.CPUs != "" {
		flags.CPUs = f.CPUs
	}
	if !cmd.Flags().Changed("timeout") && f.Timeout > 0 {
		flags.Timeout = f.Timeout
	}
	if !cmd.Flags().Changed("output") && f.Output != "" {
		flags.Output = f.Output
	}
}

func (flags *sweepFlags) ToOptions(logger logr.Logger) (sweep.Options, error) {
	if flags.Timeout <= 0 {
		return sweep.Options{}, fmt.Errorf("--timeout must be positive, got %s", flags.Timeout)
	}
	if flags.Repetitions < 0 {
		return sweep.Options{}, fmt.Errorf("--repetitions must not be negative, got %d", flags.Repetitions)
	}
	if flags.Test != "" {
		if _, err := bench.Get(flags.Test); err != nil {
			return sweep.Options{}, err
		}
	}

	binary := flags.Binary
	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			return sweep.Options{}, fmt.Errorf("failed to locate benchmark binary, set --binary: %w", err)
		}
		binary = self
	}

	cpus, err := sweep.CPUs(flags.CPUs, environment.GetHostPaths().Sys, logger)
	if err != nil {
		return sweep.Options{}, err
	}

	return sweep.Options{
		Binary:      binary,
		CPUs:        cpus,
		Test:        flags.Test,
		Repetitions: flags.Repetitions,
		Timeout:     flags.Timeout,
		Logger:      logger,
	}, nil
}

func newSweepCmd(global *globalFlags) *cobra.Command {
	flags := &sweepFlags{Timeout: sweep.DefaultTimeout}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Benchmark every ordered pair of cores and write CSV.",
		Example: `  # All online cores, default test
  ccbench sweep -o pairs.csv

  # FAI between cores 0, 2 and 4 with a custom binary
  ccbench sweep --binary ./ccbench-c --cpus 0,2,4 --test FAI --repetitions 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sync := global.logger()
			defer sync()

			f, _, err := global.load(logger)
			if err != nil {
				return err
			}
			flags.merge(cmd, f.Sweep)

			o, err := flags.ToOptions(logger)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if flags.Output != "" {
				file, err := os.Create(flags.Output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				out = file
			}
			o.Output = out

			stats, err := sweep.Run(cmd.Context(), o)
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d pairs failed\n", stats.Failed, stats.Pairs)
			}
			return nil
		},
	}

	flags.AddFlags(cmd)
	return cmd
}
