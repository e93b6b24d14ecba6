// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package testutil provides helpers that skip tests the host cannot run.
package testutil

import (
	"os"
	"runtime"
	"testing"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cpu"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cycles"
)

// RequireLinux skips the test if not running on Linux.
func RequireLinux(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("Test requires Linux")
	}
}

// RequireLinuxFilesystem verifies that /proc and /sys are available.
func RequireLinuxFilesystem(t *testing.T) {
	t.Helper()
	RequireLinux(t)

	if _, err := os.Stat("/proc/self"); err != nil {
		t.Skipf("Test requires /proc filesystem: %v", err)
	}
	if _, err := os.Stat("/sys/devices/system/cpu"); err != nil {
		t.Skipf("Test requires /sys filesystem: %v", err)
	}
}

// RequireCores returns n cores this process may be pinned to, skipping the
// test if there are fewer.
func RequireCores(t *testing.T, n int) []int {
	t.Helper()

	cores, err := cpu.Allowed()
	if err != nil {
		t.Skipf("Failed to read allowed cores: %v", err)
	}
	if len(cores) < n {
		t.Skipf("Test requires %d cores, %d allowed", n, len(cores))
	}
	return cores[:n]
}

// RequireCycleCounter skips the test unless the cycle counter is the
// hardware time stamp counter.
func RequireCycleCounter(t *testing.T) {
	t.Helper()
	if source := cycles.Source(); source != "rdtsc" {
		t.Skipf("Test requires an invariant time stamp counter, using %s", source)
	}
}
