// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/config"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "ccbench.yaml", `
hardware_profile: xeon2
profiler:
  quality_threshold: 5.5
  max_retries: 2
  disable_warmup: true
profiles:
  - id: graviton3
    overhead: 24
    match: ["neoverse-v1"]
sweep:
  binary: /usr/local/bin/ccbench
  timeout: 90s
`)

	f, err := config.LoadFile(path, testr.New(t))
	require.NoError(t, err)

	assert.Equal(t, "xeon2", f.HardwareProfile)
	require.NotNil(t, f.Profiler.QualityThreshold)
	assert.Equal(t, 5.5, *f.Profiler.QualityThreshold)
	require.NotNil(t, f.Profiler.MaxRetries)
	assert.Equal(t, 2, *f.Profiler.MaxRetries)
	assert.Nil(t, f.Profiler.MinDeltaAttempts)
	assert.True(t, f.Profiler.DisableWarmup)
	require.Len(t, f.Profiles, 1)
	assert.Equal(t, hwprofile.ID("graviton3"), f.Profiles[0].ID)
	assert.Equal(t, "/usr/local/bin/ccbench", f.Sweep.Binary)
	assert.Equal(t, 90*time.Second, f.Sweep.Timeout)
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "ccbench.json", `{"hardware_profile": "niagara", "profiler": {"max_retries": 0}}`)

	f, err := config.LoadFile(path, testr.New(t))
	require.NoError(t, err)
	assert.Equal(t, "niagara", f.HardwareProfile)
	require.NotNil(t, f.Profiler.MaxRetries)
	assert.Zero(t, *f.Profiler.MaxRetries)
}

func TestLoadFile_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
		content  string
		contains string
	}{
		{name: "unsupported extension", filename: "ccbench.toml", content: "a = 1", contains: "unsupported"},
		{name: "empty", filename: "empty.yaml", content: "\n  \n", contains: "empty"},
		{name: "unknown key", filename: "typo.yaml", content: "hardware_profle: xeon\n", contains: "hardware_profle"},
		{name: "bad duration", filename: "sweep.yaml", content: "sweep:\n  timeout: soon\n", contains: "unmarshal"},
		{name: "unknown profile key", filename: "profiles.yaml", content: "profiles:\n  - id: x\n    cycles: 3\n", contains: "cycles"},
		{name: "malformed", filename: "bad.yml", content: "profiles: [\n", contains: "unmarshal"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadFile(writeFile(t, tc.filename, tc.content), testr.New(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}

	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), testr.New(t))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_Empty(t *testing.T) {
	f, err := config.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.File{}, f)
}
