// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cycleprof

import (
	"fmt"
	"math"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cycles"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/hwprofile"
)

// calibrate measures the overhead of the Start/End pair into slot 0 and sets the
// correction. Rounds are repeated while their quality is above the threshold;
// when retries run out the median of the last round, then the hardware profile,
// stand in. The result is sanitized so the correction is always positive.
func (s *Store) calibrate(capacity int) uint64 {
	s.allocate(capacity)
	s.correction = 0

	profile := s.config.profile()
	if profile.WarmupSpins > 0 && !s.config.DisableWarmup {
		s.logger.V(1).Info("warming up core", "profile", profile.ID, "spins", profile.WarmupSpins)
		cycles.Spin(profile.WarmupSpins)
	}

	samples := s.slots[0]

	var summary Summary
	q := math.NaN()
	accepted := false
	failures := 0
	attempts := 0
	for attempts <= s.config.MaxRetries {
		attempts++
		s.measureRound(samples)

		summary = Analyze(samples)
		q = quality(summary)

		// NaN never passes
		if q <= s.config.QualityThreshold {
			accepted = true
			break
		}

		failures++
		s.logger.V(1).Info("calibration round rejected", "attempt", attempts, "avg", summary.Avg, "quality", q)
		if failures == 2 {
			s.warnf("avg correction is %.1f with std deviation: %.1f%%. Recalculating.",
				summary.Avg, finiteOr(q, 0))
		}
	}

	avg := summary.Avg
	if !accepted {
		avg = s.fallbackAverage(samples, profile)
	}

	correction := s.sanitize(avg)
	if correction == 0 {
		correction = s.enforcePositive()
	}
	if correction == 0 {
		panic(fmt.Sprintf("cycleprof: worker %d calibrated a non-positive correction", s.id))
	}

	s.correction = correction
	s.quality = q

	fmt.Fprintf(s.out, "* set correction: %d (std deviation: %.1f%%)\n", correction, finiteOr(q, 0))
	s.logger.Info("calibrated",
		"correction", correction,
		"quality", finiteOr(q, 0),
		"attempts", attempts,
		"profile", profile.ID,
		"source", s.counterSource())

	return correction
}

// counterSource names the tick source, or the counter's type when one was injected.
func (s *Store) counterSource() string {
	if _, ok := s.counter.(cycles.TSC); ok {
		return cycles.Source()
	}
	return fmt.Sprintf("%T", s.counter)
}

func (s *Store) measureRound(samples []uint64) {
	for i := range samples {
		s.Start(0)
		s.End(0, i)
	}
}

func (s *Store) fallbackAverage(samples []uint64, profile hwprofile.Profile) float64 {
	s.warnf("setting correction manually")

	if median, ok := MedianNonZero(samples); ok && median > 0 {
		s.warnf("using median correction of %.1f cycles after repeated retries.", median)
		return median
	}

	if profile.ID == hwprofile.Unknown {
		s.warnf("unknown architecture; using conservative correction default of %.0f cycles.", profile.Overhead)
	} else {
		s.warnf("using %s profile correction default of %.0f cycles.", profile.ID, profile.Overhead)
	}
	return profile.Overhead
}

// sanitize turns a measured average into a positive integer correction. Only
// an average that rounds to zero and a degenerate counter can yield 0.
func (s *Store) sanitize(avg float64) uint64 {
	switch {
	case math.IsNaN(avg) || math.IsInf(avg, 0):
		avg = hwprofile.ConservativeOverhead
		s.warnf("measured correction is non-finite; using conservative default of %.0f.", avg)
	case avg <= 0:
		if d := s.minimumDelta(); d > 0 {
			avg = float64(d)
			s.warnf("measured correction <= 0; using direct counter delta of %d.", d)
		} else {
			avg = hwprofile.ConservativeOverhead
			s.warnf("measured correction <= 0; using conservative default of %.0f.", avg)
		}
	case avg < 1:
		avg = 1
		s.warnf("measured correction < 1; clamping to %.0f.", avg)
	}

	if avg >= float64(math.MaxUint64) {
		s.warnf("measured correction >= %d; clamping", uint64(math.MaxUint64))
		return math.MaxUint64
	}

	correction := uint64(avg + 0.5)
	if correction == 0 {
		correction = 1
		s.warnf("rounded correction was 0; clamping to %d", correction)
	}
	return correction
}

func (s *Store) enforcePositive() uint64 {
	if d := s.minimumDelta(); d > 0 {
		s.warnf("enforcing positive correction via direct counter delta of %d cycles.", d)
		return d
	}

	correction := uint64(hwprofile.ConservativeOverhead)
	s.warnf("falling back to conservative correction of %d cycles.", correction)
	return correction
}

// minimumDelta returns the smallest positive difference between two fenced
// back-to-back counter reads, or 0 if the counter never advanced.
func (s *Store) minimumDelta() uint64 {
	best := uint64(math.MaxUint64)
	for i := 0; i < s.config.MinDeltaAttempts; i++ {
		start := s.counter.Read()
		cycles.Fence()
		end := s.counter.Read()

		// a backwards step wraps to a huge unsigned value
		if d := end - start; int64(d) > 0 && d < best {
			best = d
		}
	}

	if best == math.MaxUint64 {
		return 0
	}
	return best
}

func (s *Store) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(s.out, "* warning: %s\n", msg)
	s.logger.V(1).Info("calibration fallback", "detail", msg)
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
