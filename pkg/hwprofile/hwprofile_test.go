// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package hwprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected ID
		wantErr  bool
	}{
		{name: "empty is unknown", input: "", expected: Unknown},
		{name: "exact", input: "xeon", expected: Xeon},
		{name: "case insensitive", input: "OPTERON2", expected: Opteron2},
		{name: "dash for underscore", input: "i3-7020u", expected: I37020U},
		{name: "surrounding whitespace", input: "  niagara ", expected: Niagara},
		{name: "not a profile", input: "pentium", expected: Unknown, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	expected := map[ID]float64{
		Opteron:    64,
		Opteron2:   68,
		Xeon:       20,
		Xeon2:      20,
		Niagara:    76,
		Ryzen53600: 32,
		I37020U:    25,
		Unknown:    ConservativeOverhead,
	}
	require.Len(t, table, len(expected))
	for id, overhead := range expected {
		p, ok := table.Lookup(id)
		assert.True(t, ok, id)
		assert.Equal(t, overhead, p.Overhead, id)
	}

	assert.Zero(t, table[Unknown].WarmupSpins, "unknown hardware must not spin")
	assert.Equal(t, DefaultWarmupSpins, table[Xeon].WarmupSpins)

	// callers get their own copy
	table[Xeon] = Profile{ID: Xeon, Overhead: 1}
	assert.Equal(t, 20.0, DefaultTable()[Xeon].Overhead)
}

func TestLookupFallsBackToUnknown(t *testing.T) {
	p, ok := DefaultTable().Lookup("m1-max")
	assert.False(t, ok)
	assert.Equal(t, Unknown, p.ID)
	assert.Equal(t, ConservativeOverhead, p.Overhead)

	p, ok = Table{}.Lookup(Xeon)
	assert.False(t, ok)
	assert.Equal(t, ConservativeOverhead, p.Overhead)
}

func TestMatch(t *testing.T) {
	table := DefaultTable()

	testCases := []struct {
		model    string
		expected ID
	}{
		{"Intel(R) Xeon(R) CPU E5-2680 v4 @ 2.40GHz", Xeon},
		{"Intel(R) Xeon(R) Platinum 8375C CPU @ 2.90GHz", Xeon2},
		{"AMD Opteron(tm) Processor 8431", Opteron},
		{"AMD Opteron(tm) Processor 6172", Opteron2},
		{"AMD Ryzen 5 3600 6-Core Processor", Ryzen53600},
		{"Intel(R) Core(TM) i3-7020U CPU @ 2.30GHz", I37020U},
		{"UltraSPARC T2", Niagara},
		{"Apple M2", Unknown},
		{"", Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.model, func(t *testing.T) {
			assert.Equal(t, tc.expected, table.Match(tc.model))
		})
	}
}

func TestMerge(t *testing.T) {
	t.Run("overrides and additions", func(t *testing.T) {
		table, err := DefaultTable().Merge(
			Profile{ID: Xeon, Overhead: 22, WarmupSpins: 10},
			Profile{ID: "graviton3", Overhead: 24, Match: []string{"neoverse-v1"}},
		)
		require.NoError(t, err)

		assert.Equal(t, 22.0, table[Xeon].Overhead)
		assert.Equal(t, uint64(10), table[Xeon].WarmupSpins)
		assert.Equal(t, 24.0, table["graviton3"].Overhead)
		assert.Equal(t, ID("graviton3"), table.Match("Neoverse-V1"))
		assert.Equal(t, 64.0, table[Opteron].Overhead, "untouched entries are kept")
	})

	t.Run("nothing to merge", func(t *testing.T) {
		table, err := DefaultTable().Merge()
		require.NoError(t, err)
		assert.Equal(t, DefaultTable(), table)
	})

	t.Run("receiver is not modified", func(t *testing.T) {
		base := DefaultTable()
		_, err := base.Merge(Profile{ID: Xeon, Overhead: 1})
		require.NoError(t, err)
		assert.Equal(t, 20.0, base[Xeon].Overhead)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := DefaultTable().Merge(Profile{Overhead: 3})
		assert.Error(t, err)
	})
}
