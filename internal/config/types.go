// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package config

import (
	"time"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

// File is the on-disk profiler configuration. Unset fields keep the defaults.
//
//	hardware_profile: xeon
//	profiler:
//	  quality_threshold: 3
//	  max_retries: 10
//	  disable_warmup: false
//	profiles:
//	  - id: graviton3
//	    overhead: 24
//	    match: ["neoverse-v1"]
//	sweep:
//	  binary: ./ccbench
//	  timeout: 60s
type File struct {
	HardwareProfile string              `yaml:"hardware_profile"`
	Profiler        Profiler            `yaml:"profiler"`
	Profiles        []hwprofile.Profile `yaml:"profiles"`
	Sweep           Sweep               `yaml:"sweep"`
}

// Profiler holds calibration settings.
type Profiler struct {
	QualityThreshold *float64 `yaml:"quality_threshold"`
	MaxRetries       *int     `yaml:"max_retries"`
	MinDeltaAttempts *int     `yaml:"min_delta_attempts"`
	DisableWarmup    bool     `yaml:"disable_warmup"`
}

// Sweep holds defaults for the sweep subcommand.
type Sweep struct {
	Binary  string        `yaml:"binary"`
	CPUs    string        `yaml:"cpus"`
	Timeout time.Duration `yaml:"timeout"`
	Output  string        `yaml:"output"`
}

// Source records where the hardware profile came from.
type Source string

const (
	SourceFlag     Source = "flag"
	SourceEnv      Source = "env"
	SourceFile     Source = "file"
	SourceDetected Source = "detected"
	SourceDefault  Source = "default"
)
