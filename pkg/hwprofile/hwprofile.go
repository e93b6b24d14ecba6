// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package hwprofile maps known hardware to the measurement overhead, in cycles,
// of two back-to-back cycle counter reads. The values are used when calibration
// on the running machine cannot produce a usable number.
package hwprofile

import (
	"fmt"
	"sort"
	"strings"
)

// ID identifies a hardware profile
type ID string

const (
	Opteron    ID = "opteron"
	Opteron2   ID = "opteron2"
	Xeon       ID = "xeon"
	Xeon2      ID = "xeon2"
	Niagara    ID = "niagara"
	Ryzen53600 ID = "ryzen53600"
	I37020U    ID = "i3_7020U"
	Unknown    ID = "unknown"
)

const (
	// ConservativeOverhead is used whenever nothing better is known.
	ConservativeOverhead = 32.0

	// DefaultWarmupSpins is the busy-loop length that pushes frequency-scaled
	// parts to their maximum clock before calibration.
	DefaultWarmupSpins uint64 = 200_000_000
)

// Profile describes one hardware entry.
type Profile struct {
	ID ID `yaml:"id"`
	// Overhead is the default cost in cycles of two consecutive counter reads.
	Overhead float64 `yaml:"overhead"`
	// WarmupSpins is the spin loop run before calibrating. Zero disables it.
	WarmupSpins uint64 `yaml:"warmup_spins"`
	// Match holds case-insensitive substrings of the CPU model name.
	Match []string `yaml:"match,omitempty"`
}

// Table is a set of hardware profiles keyed by ID.
type Table map[ID]Profile

// DefaultTable returns the built-in profile table. Every call returns a fresh copy.
func DefaultTable() Table {
	return Table{
		Opteron:    {ID: Opteron, Overhead: 64, Match: []string{"opteron(tm) processor 8"}},
		Opteron2:   {ID: Opteron2, Overhead: 68, WarmupSpins: DefaultWarmupSpins, Match: []string{"opteron"}},
		Xeon:       {ID: Xeon, Overhead: 20, WarmupSpins: DefaultWarmupSpins, Match: []string{"xeon(r) cpu e5"}},
		Xeon2:      {ID: Xeon2, Overhead: 20, WarmupSpins: DefaultWarmupSpins, Match: []string{"xeon"}},
		Niagara:    {ID: Niagara, Overhead: 76, Match: []string{"ultrasparc t", "sparc-t"}},
		Ryzen53600: {ID: Ryzen53600, Overhead: 32, Match: []string{"ryzen 5 3600"}},
		I37020U:    {ID: I37020U, Overhead: 25, WarmupSpins: DefaultWarmupSpins, Match: []string{"i3-7020u"}},
		Unknown:    {ID: Unknown, Overhead: ConservativeOverhead},
	}
}

// Parse converts a user supplied profile name to an ID. Matching ignores case and
// treats '-' and '_' alike. The empty string parses to Unknown.
func Parse(name string) (ID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unknown, nil
	}
	norm := normalize(name)
	for id := range DefaultTable() {
		if normalize(string(id)) == norm {
			return id, nil
		}
	}
	return Unknown, fmt.Errorf("unknown hardware profile %q (known: %s)", name, strings.Join(Known(), ", "))
}

// Known returns the sorted IDs of the built-in profiles.
func Known() []string {
	ids := make([]string, 0, len(DefaultTable()))
	for id := range DefaultTable() {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	return ids
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}

// Lookup returns the profile for id. Unrecognized IDs resolve to the Unknown entry,
// and a table without an Unknown entry still yields the conservative overhead.
func (t Table) Lookup(id ID) (Profile, bool) {
	if p, ok := t[id]; ok {
		return p, true
	}
	if p, ok := t[Unknown]; ok {
		return p, false
	}
	return Profile{ID: Unknown, Overhead: ConservativeOverhead}, false
}

// Match returns the first profile whose match strings occur in the model name.
// More specific entries (longer match strings) win over generic ones.
func (t Table) Match(modelName string) ID {
	model := strings.ToLower(modelName)

	best, bestLen := Unknown, 0
	for _, id := range t.sortedIDs() {
		for _, m := range t[id].Match {
			m = strings.ToLower(m)
			if m != "" && strings.Contains(model, m) && len(m) > bestLen {
				best, bestLen = id, len(m)
			}
		}
	}
	return best
}

func (t Table) sortedIDs() []ID {
	ids := make([]ID, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Profiles returns the table entries sorted by ID.
func (t Table) Profiles() []Profile {
	out := make([]Profile, 0, len(t))
	for _, id := range t.sortedIDs() {
		out = append(out, t[id])
	}
	return out
}

// Merge returns a copy of t with profiles applied on top.
func (t Table) Merge(profiles ...Profile) (Table, error) {
	out := make(Table, len(t)+len(profiles))
	for id, p := range t {
		out[id] = p
	}
	for i, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("profile %d: id is required", i)
		}
		out[p.ID] = p
	}
	return out, nil
}
