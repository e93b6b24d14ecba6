// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package environment provides utilities for extracting configuration from environment variables
package environment

import (
	"os"
	"strings"
)

const (
	// HardwareProfileEnv overrides the detected hardware profile.
	HardwareProfileEnv = "CCBENCH_HW_PROFILE"

	// ConfigFileEnv names a profiler config file used when --config is not set.
	ConfigFileEnv = "CCBENCH_CONFIG"
)

// GetHardwareProfile returns the hardware profile name from CCBENCH_HW_PROFILE,
// lower-cased. Returns empty string if not set.
func GetHardwareProfile() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(HardwareProfileEnv)))
}

// GetConfigFile returns the profiler config path from CCBENCH_CONFIG.
// Returns empty string if not set.
func GetConfigFile() string {
	return strings.TrimSpace(os.Getenv(ConfigFileEnv))
}

// HostPaths contains the host filesystem paths for containerized environments
type HostPaths struct {
	Sys string // Path to /sys (e.g., /host/sys in containers)
}

// GetHostPaths returns the host filesystem paths from environment variables,
// with defaults if not set.
func GetHostPaths() HostPaths {
	paths := HostPaths{
		Sys: "/sys",
	}

	if sysPath := os.Getenv("HOST_SYS"); sysPath != "" {
		paths.Sys = sysPath
	}

	return paths
}
