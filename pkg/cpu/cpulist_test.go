// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCPUList(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []int
		wantErr  bool
	}{
		{name: "empty", input: "", expected: []int{}},
		{name: "whitespace", input: " \n", expected: []int{}},
		{name: "single", input: "3", expected: []int{3}},
		{name: "range", input: "0-3", expected: []int{0, 1, 2, 3}},
		{name: "mixed", input: "0,2-4,7", expected: []int{0, 2, 3, 4, 7}},
		{name: "single element range", input: "5-5", expected: []int{5}},
		{name: "trailing newline from sysfs", input: "0-1\n", expected: []int{0, 1}},
		{name: "empty parts are skipped", input: "1,,2,", expected: []int{1, 2}},
		{name: "order is kept", input: "6,1", expected: []int{6, 1}},
		{name: "reversed range", input: "4-2", wantErr: true},
		{name: "not a number", input: "a", wantErr: true},
		{name: "bad range end", input: "1-x", wantErr: true},
		{name: "too many dashes", input: "1-2-3", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cpus, err := ParseCPUList(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoreList)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cpus)
		})
	}
}

func TestParseCoresArray(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		source  int
		target  int
		wantErr bool
	}{
		{name: "bracketed", input: "[0,1]", source: 0, target: 1},
		{name: "spaces", input: " [ 4 , 12 ] ", source: 4, target: 12},
		{name: "bare", input: "3,2", source: 3, target: 2},
		{name: "same core", input: "[5,5]", source: 5, target: 5},
		{name: "one core", input: "[1]", wantErr: true},
		{name: "three cores", input: "[1,2,3]", wantErr: true},
		{name: "not a number", input: "[a,1]", wantErr: true},
		{name: "negative", input: "[0,-1]", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			source, target, err := ParseCoresArray(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoresPair)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.source, source)
			assert.Equal(t, tc.target, target)
		})
	}
}

func TestOnline(t *testing.T) {
	sys := t.TempDir()
	dir := filepath.Join(sys, "devices", "system", "cpu")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "online"), []byte("0-2,4\n"), 0o644))

	cpus, err := Online(sys)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 4}, cpus)

	_, err = Online(filepath.Join(sys, "missing"))
	assert.Error(t, err)
}
