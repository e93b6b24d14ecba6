// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cycleprof

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

const (
	// NumSlots is the number of sample slots every store carries.
	NumSlots = 4

	// UpLimit is the largest sample, in cycles, considered valid. Larger values
	// (and values that are negative as int64) are zeroed before analysis.
	UpLimit = 1500

	// DefaultQualityThreshold is the largest calibration quality percentage
	// accepted without a retry.
	DefaultQualityThreshold = 3.0

	// DefaultMaxRetries bounds the calibration rounds repeated after the first one.
	DefaultMaxRetries = 10

	// DefaultMinDeltaAttempts is the number of fenced back-to-back reads used by the
	// direct minimum delta measurement.
	DefaultMinDeltaAttempts = 64
)

// Common errors
var (
	ErrInvalidCapacity = errors.New("capacity must be greater than zero")
	ErrInvalidSlot     = fmt.Errorf("slot must be in [0, %d)", NumSlots)
	ErrInvalidIndex    = errors.New("index out of range for slot capacity")
)

// Config controls calibration.
type Config struct {
	// HardwareProfile selects the fallback overhead and warm-up length.
	HardwareProfile hwprofile.ID

	// Profiles is the hardware profile table. Nil means hwprofile.DefaultTable.
	Profiles hwprofile.Table

	// QualityThreshold is the largest quality percentage, 100*stddev/avg,
	// accepted for a calibration round.
	QualityThreshold float64

	// MaxRetries is the number of extra calibration rounds before falling back.
	MaxRetries int

	// MinDeltaAttempts is the number of reads taken by the direct measurement.
	MinDeltaAttempts int

	// DisableWarmup skips the warm-up spin even if the profile asks for one.
	DisableWarmup bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		HardwareProfile:  hwprofile.Unknown,
		Profiles:         hwprofile.DefaultTable(),
		QualityThreshold: DefaultQualityThreshold,
		MaxRetries:       DefaultMaxRetries,
		MinDeltaAttempts: DefaultMinDeltaAttempts,
	}
}

// ApplyDefaults fills unset fields that have no meaningful zero value.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.HardwareProfile == "" {
		c.HardwareProfile = defaults.HardwareProfile
	}
	if c.Profiles == nil {
		c.Profiles = defaults.Profiles
	}
	if c.MinDeltaAttempts == 0 {
		c.MinDeltaAttempts = defaults.MinDeltaAttempts
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	var result *multierror.Error

	if math.IsNaN(c.QualityThreshold) || c.QualityThreshold < 0 {
		result = multierror.Append(result, fmt.Errorf("quality threshold must be a non-negative number, got %v", c.QualityThreshold))
	}
	if c.MaxRetries < 0 {
		result = multierror.Append(result, fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries))
	}
	if c.MinDeltaAttempts < 0 {
		result = multierror.Append(result, fmt.Errorf("min delta attempts must not be negative, got %d", c.MinDeltaAttempts))
	}

	return result.ErrorOrNil()
}

func (c *Config) profile() hwprofile.Profile {
	table := c.Profiles
	if table == nil {
		table = hwprofile.DefaultTable()
	}
	p, _ := table.Lookup(c.HardwareProfile)
	return p
}
