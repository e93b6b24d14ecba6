// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package main

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/bench"
	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/config"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cpu"
)

// runFlags will be converted to bench options.
type runFlags struct {
	Test        string
	Cores       int
	CoresArray  string
	Repetitions int
	Print       int
}

func newRunFlags() *runFlags {
	return &runFlags{
		Test:        bench.DefaultTest,
		Cores:       2,
		CoresArray:  "[0,1]",
		Repetitions: bench.DefaultRepetitions,
	}
}

func (flags *runFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.Test, "test", "t", flags.Test,
		fmt.Sprintf("Test to run, one of %v", bench.Names()))
	cmd.Flags().IntVarP(&flags.Cores, "cores", "c", flags.Cores,
		"Number of cores taking part. Only 2 is supported.")
	cmd.Flags().StringVarP(&flags.CoresArray, "cores_array", "x", flags.CoresArray,
		"Source and target core as [src,dst].")
	cmd.Flags().IntVarP(&flags.Repetitions, "repetitions", "r", flags.Repetitions,
		"Number of timed turns per core.")
	cmd.Flags().IntVarP(&flags.Print, "print", "p", flags.Print,
		"Number of raw samples printed per core.")
}

func (flags *runFlags) ToOptions(resolved config.Resolved, out io.Writer, logger logr.Logger) (bench.Options, error) {
	if flags.Cores != 2 {
		return bench.Options{}, fmt.Errorf("--cores must be 2, got %d", flags.Cores)
	}
	if flags.Repetitions <= 0 {
		return bench.Options{}, fmt.Errorf("--repetitions must be greater than zero, got %d", flags.Repetitions)
	}
	if flags.Print < 0 {
		return bench.Options{}, fmt.Errorf("--print must not be negative, got %d", flags.Print)
	}
	if _, err := bench.Get(flags.Test); err != nil {
		return bench.Options{}, err
	}

	source, target, err := cpu.ParseCoresArray(flags.CoresArray)
	if err != nil {
		return bench.Options{}, err
	}

	return bench.Options{
		Test:        flags.Test,
		Source:      source,
		Target:      target,
		Repetitions: flags.Repetitions,
		Print:       flags.Print,
		Profiler:    resolved.Profiler,
		Out:         out,
		Logger:      logger,
	}, nil
}
