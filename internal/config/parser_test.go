// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package config_test

import (
	"errors"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/config"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/config/environment"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cycleprof"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

func detectAs(id hwprofile.ID, model string) config.DetectFunc {
	return func(hwprofile.Table) (hwprofile.ID, string, error) {
		return id, model, nil
	}
}

func TestResolve_ProfilePrecedence(t *testing.T) {
	testCases := []struct {
		name     string
		flag     string
		env      string
		file     string
		detect   config.DetectFunc
		expected hwprofile.ID
		source   config.Source
	}{
		{name: "nothing", expected: hwprofile.Unknown, source: config.SourceDefault},
		{name: "detected", detect: detectAs(hwprofile.Ryzen53600, "AMD Ryzen 5 3600"), expected: hwprofile.Ryzen53600, source: config.SourceDetected},
		{name: "file beats detection", file: "opteron", detect: detectAs(hwprofile.Xeon, ""), expected: hwprofile.Opteron, source: config.SourceFile},
		{name: "env beats file", env: "niagara", file: "opteron", expected: hwprofile.Niagara, source: config.SourceEnv},
		{name: "flag beats env", flag: "xeon2", env: "niagara", file: "opteron", expected: hwprofile.Xeon2, source: config.SourceFlag},
		{name: "mixed case", flag: "I3-7020U", expected: hwprofile.I37020U, source: config.SourceFlag},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(environment.HardwareProfileEnv, tc.env)

			resolved, err := config.Resolve(config.File{HardwareProfile: tc.file}, config.Options{
				HardwareProfile: tc.flag,
				Detect:          tc.detect,
				Logger:          testr.New(t),
			})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resolved.Profiler.HardwareProfile)
			assert.Equal(t, tc.source, resolved.Source)
		})
	}
}

func TestResolve_DetectionFailureKeepsDefault(t *testing.T) {
	t.Setenv(environment.HardwareProfileEnv, "")

	resolved, err := config.Resolve(config.File{}, config.Options{
		Detect: func(hwprofile.Table) (hwprofile.ID, string, error) {
			return hwprofile.Unknown, "", errors.New("no cpuinfo")
		},
		Logger: testr.New(t),
	})
	require.NoError(t, err)
	assert.Equal(t, hwprofile.Unknown, resolved.Profiler.HardwareProfile)
	assert.Equal(t, config.SourceDefault, resolved.Source)
}

func TestResolve_UnknownProfile(t *testing.T) {
	t.Setenv(environment.HardwareProfileEnv, "")

	_, err := config.Resolve(config.File{}, config.Options{HardwareProfile: "pentium"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag")
}

func TestResolve_ProfilerSettings(t *testing.T) {
	t.Setenv(environment.HardwareProfileEnv, "")

	threshold, retries, attempts := 7.5, 3, 16
	f := config.File{
		HardwareProfile: "graviton3",
		Profiler: config.Profiler{
			QualityThreshold: &threshold,
			MaxRetries:       &retries,
			MinDeltaAttempts: &attempts,
			DisableWarmup:    true,
		},
		Profiles: []hwprofile.Profile{{ID: "graviton3", Overhead: 24}},
	}

	resolved, err := config.Resolve(f, config.Options{})
	require.NoError(t, err)

	p := resolved.Profiler
	assert.Equal(t, hwprofile.ID("graviton3"), p.HardwareProfile)
	assert.Equal(t, 7.5, p.QualityThreshold)
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 16, p.MinDeltaAttempts)
	assert.True(t, p.DisableWarmup)
	assert.Equal(t, 24.0, p.Profiles[hwprofile.ID("graviton3")].Overhead)
	assert.Equal(t, 20.0, p.Profiles[hwprofile.Xeon].Overhead, "built-in profiles are kept")
}

func TestResolve_Defaults(t *testing.T) {
	t.Setenv(environment.HardwareProfileEnv, "")

	resolved, err := config.Resolve(config.File{}, config.Options{})
	require.NoError(t, err)

	expected := cycleprof.DefaultConfig()
	assert.Equal(t, expected.QualityThreshold, resolved.Profiler.QualityThreshold)
	assert.Equal(t, expected.MaxRetries, resolved.Profiler.MaxRetries)
	assert.Equal(t, expected.MinDeltaAttempts, resolved.Profiler.MinDeltaAttempts)
	assert.False(t, resolved.Profiler.DisableWarmup)
}

func TestResolve_InvalidSettings(t *testing.T) {
	t.Setenv(environment.HardwareProfileEnv, "")

	retries := -1
	_, err := config.Resolve(config.File{Profiler: config.Profiler{MaxRetries: &retries}}, config.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")

	_, err = config.Resolve(config.File{Profiles: []hwprofile.Profile{{Overhead: 3}}}, config.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}
