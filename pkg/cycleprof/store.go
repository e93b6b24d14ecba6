// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package cycleprof is a cycle-level profiler for short instruction sequences.
//
// A Store is owned by exactly one worker. It holds NumSlots fixed-capacity sample
// arrays and a calibrated correction: the cost of two back-to-back counter reads,
// which callers subtract from their own measurements. Nothing in a Store is safe
// for concurrent use; concurrent workers each create their own.
package cycleprof

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-logr/logr"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cycles"
)

// Store is a per-worker sample store.
type Store struct {
	id      int
	counter cycles.Counter
	config  Config
	logger  logr.Logger
	out     io.Writer
	report  *ReportWriter

	slots      [][]uint64
	starts     [NumSlots]uint64
	capacity   int
	correction uint64
	quality    float64
}

type Option func(s *Store)

// WithLogger sets the structured logger.
func WithLogger(logger logr.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithOutput sets where calibration diagnostics and reports are printed.
// Defaults to os.Stdout.
func WithOutput(out io.Writer) Option {
	return func(s *Store) {
		s.out = out
	}
}

// WithCounter replaces the host cycle counter.
func WithCounter(counter cycles.Counter) Option {
	return func(s *Store) {
		s.counter = counter
	}
}

// WithID sets the worker id printed in front of report lines.
func WithID(id int) Option {
	return func(s *Store) {
		s.id = id
	}
}

// WithConfig sets the calibration configuration.
func WithConfig(config Config) Option {
	return func(s *Store) {
		s.config = config
	}
}

// New creates a store with capacity samples per slot and calibrates it.
func New(capacity int, opts ...Option) (*Store, error) {
	s := &Store{
		counter: cycles.TSC{},
		config:  DefaultConfig(),
		logger:  logr.Discard(),
		out:     os.Stdout,
		quality: math.NaN(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.config.ApplyDefaults()
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profiler config: %w", err)
	}

	s.logger = s.logger.WithName("cycleprof").WithValues("worker", s.id)
	s.report = NewReportWriter(s.out, s.id)

	if _, err := s.Init(capacity); err != nil {
		return nil, err
	}
	return s, nil
}

// Init discards every slot, reallocates them with capacity entries and
// recalibrates the correction, which it returns.
func (s *Store) Init(capacity int) (uint64, error) {
	if capacity <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return s.calibrate(capacity), nil
}

func (s *Store) allocate(capacity int) {
	s.slots = make([][]uint64, NumSlots)
	for i := range s.slots {
		s.slots[i] = make([]uint64, capacity)
	}
	s.starts = [NumSlots]uint64{}
	s.capacity = capacity
}

// Start records the counter reading that opens a measurement in slot.
func (s *Store) Start(slot int) {
	s.starts[slot] = s.counter.Read()
}

// End stores the ticks elapsed since the matching Start at index of slot.
// The correction is not subtracted.
func (s *Store) End(slot, index int) {
	s.slots[slot][index] = s.counter.Read() - s.starts[slot]
}

// ID returns the worker id.
func (s *Store) ID() int {
	return s.id
}

// Correction returns the calibrated overhead of one measurement, always > 0.
func (s *Store) Correction() uint64 {
	return s.correction
}

// Quality returns the quality percentage of the last calibration round, NaN if
// it could not be computed.
func (s *Store) Quality() float64 {
	return s.quality
}

// Capacity returns the number of entries of each slot.
func (s *Store) Capacity() int {
	return s.capacity
}

// NumSlots returns the number of slots.
func (s *Store) NumSlots() int {
	return len(s.slots)
}

// Slot returns the live sample array of slot. Analyze modifies it in place.
func (s *Store) Slot(slot int) ([]uint64, error) {
	if slot < 0 || slot >= len(s.slots) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSlot, slot)
	}
	return s.slots[slot], nil
}

// Collect prints the first printCount raw samples of slot, analyzes its first
// count samples and prints the report.
func (s *Store) Collect(slot, count, printCount int) (Summary, error) {
	samples, err := s.Slot(slot)
	if err != nil {
		return Summary{}, err
	}
	if count < 0 || count > len(samples) {
		return Summary{}, fmt.Errorf("%w: count %d, capacity %d", ErrInvalidIndex, count, len(samples))
	}

	samples = samples[:count]
	if printCount > 0 {
		s.report.Samples(samples, printCount)
	}

	summary := Analyze(samples)
	s.report.Summary(summary)

	s.logger.V(1).Info("collected slot",
		"slot", slot,
		"samples", summary.NumVals,
		"avg", summary.Avg,
		"stdDev", summary.StdDev)

	return summary, nil
}
