// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package config

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/config/environment"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cycleprof"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

// DetectFunc identifies the host against a profile table.
type DetectFunc func(hwprofile.Table) (hwprofile.ID, string, error)

// Options controls how a File is resolved into a profiler configuration.
type Options struct {
	// HardwareProfile is the --hw-profile flag. It wins over everything else.
	HardwareProfile string

	// Detect identifies the host when no profile is named. Nil skips detection.
	Detect DetectFunc

	Logger logr.Logger
}

// Resolved is a complete profiler configuration.
type Resolved struct {
	Profiler cycleprof.Config
	Source   Source
	Model    string
}

// Resolve builds the profiler configuration from f. The hardware profile is
// taken from the flag, then CCBENCH_HW_PROFILE, then the file, then detection.
func Resolve(f File, opts Options) (Resolved, error) {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	logger = logger.WithName("config")

	table, err := hwprofile.DefaultTable().Merge(f.Profiles...)
	if err != nil {
		return Resolved{}, fmt.Errorf("invalid profiles: %w", err)
	}

	profiler := cycleprof.DefaultConfig()
	profiler.Profiles = table
	profiler.DisableWarmup = f.Profiler.DisableWarmup
	if f.Profiler.QualityThreshold != nil {
		profiler.QualityThreshold = *f.Profiler.QualityThreshold
	}
	if f.Profiler.MaxRetries != nil {
		profiler.MaxRetries = *f.Profiler.MaxRetries
	}
	if f.Profiler.MinDeltaAttempts != nil {
		profiler.MinDeltaAttempts = *f.Profiler.MinDeltaAttempts
	}

	resolved := Resolved{Source: SourceDefault}

	name, source := opts.HardwareProfile, SourceFlag
	if name == "" {
		name, source = environment.GetHardwareProfile(), SourceEnv
	}
	if name == "" {
		name, source = f.HardwareProfile, SourceFile
	}

	switch {
	case name != "":
		id, err := parseProfile(table, name)
		if err != nil {
			return Resolved{}, fmt.Errorf("hardware profile from %s: %w", source, err)
		}
		profiler.HardwareProfile = id
		resolved.Source = source
	case opts.Detect != nil:
		id, model, err := opts.Detect(table)
		if err != nil {
			// detection failure is not fatal, the conservative profile still works
			logger.Error(err, "failed to detect hardware profile")
			break
		}
		profiler.HardwareProfile = id
		resolved.Model = model
		resolved.Source = SourceDetected
	}

	if err := profiler.Validate(); err != nil {
		return Resolved{}, fmt.Errorf("invalid profiler config: %w", err)
	}

	resolved.Profiler = profiler
	logger.V(1).Info("resolved profiler config",
		"profile", profiler.HardwareProfile,
		"source", resolved.Source,
		"model", resolved.Model)
	return resolved, nil
}

// parseProfile accepts built-in names and IDs added by the file.
func parseProfile(table hwprofile.Table, name string) (hwprofile.ID, error) {
	if _, ok := table[hwprofile.ID(name)]; ok {
		return hwprofile.ID(name), nil
	}
	return hwprofile.Parse(name)
}
