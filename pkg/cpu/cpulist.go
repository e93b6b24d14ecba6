// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package cpu parses core selections and pins the calling thread to a core.
package cpu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrInvalidCoreList  = errors.New("invalid core list")
	ErrInvalidCoresPair = errors.New("invalid cores array")
)

// ParseCPUList parses a Linux kernel CPU list such as "0,2-4,7" into core ids,
// in input order. An empty string yields an empty, non-nil slice.
//
// This is the format of /sys/devices/system/cpu/online and of the sweep --cpus flag.
func ParseCPUList(cpuList string) ([]int, error) {
	cpuList = strings.TrimSpace(cpuList)
	if cpuList == "" {
		return []int{}, nil
	}

	var cpus []int
	for _, part := range strings.Split(cpuList, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		first, last, isRange := strings.Cut(part, "-")
		start, err := parseCore(first)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCoreList, part)
		}
		if !isRange {
			cpus = append(cpus, start)
			continue
		}

		end, err := parseCore(last)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCoreList, part)
		}
		if start > end {
			return nil, fmt.Errorf("%w (start > end): %s", ErrInvalidCoreList, part)
		}

		// "5-5" is accepted as [5]
		for cpu := start; cpu <= end; cpu++ {
			cpus = append(cpus, cpu)
		}
	}

	return cpus, nil
}

// ParseCoresArray parses the "[src,dst]" pair taken by --cores_array. The
// brackets are optional.
func ParseCoresArray(s string) (source, target int, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: want [src,dst], got %q", ErrInvalidCoresPair, s)
	}

	if source, err = parseCore(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: source %q", ErrInvalidCoresPair, parts[0])
	}
	if target, err = parseCore(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: target %q", ErrInvalidCoresPair, parts[1])
	}
	return source, target, nil
}

// Online returns the online cores listed under sysPath (usually "/sys").
func Online(sysPath string) ([]int, error) {
	path := filepath.Join(sysPath, "devices", "system", "cpu", "online")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read online cores: %w", err)
	}

	cpus, err := ParseCPUList(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cpus, nil
}

func parseCore(s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative core %d", v)
	}
	return int(v), nil
}
