// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cycleprof

import (
	"math"
	"slices"
)

// BandID indexes the five deviation bands of a Summary.
type BandID int

const (
	Band10   BandID = iota // within 10% of the mean
	Band25                 // 10-25%
	Band50                 // 25-50%
	Band75                 // 50-75%
	BandRest               // beyond 75%

	NumBands = 5
)

var bandCutoffs = [NumBands - 1]float64{0.10, 0.25, 0.50, 0.75}

// String returns the report label of the band
func (b BandID) String() string {
	switch b {
	case Band10:
		return "0-10%"
	case Band25:
		return "10-25%"
	case Band50:
		return "25-50%"
	case Band75:
		return "50-75%"
	case BandRest:
		return "75-100%"
	default:
		return "unknown"
	}
}

// Band holds the statistics of the samples whose absolute deviation from the
// global mean falls into one band. Deviations inside a band are measured from the
// band's own mean. An empty band has NaN statistics.
type Band struct {
	Count  uint64
	Avg    float64
	AbsDev float64
	StdDev float64
}

// Summary is the result of analyzing a sample array. It holds no reference to
// the samples it was computed from.
type Summary struct {
	NumVals uint64
	Avg     float64
	AbsDev  float64
	StdDev  float64

	Min    float64
	MinIdx uint64
	Max    float64
	MaxIdx uint64

	Bands [NumBands]Band
}

// Band returns the statistics of band b.
func (s Summary) Band(b BandID) Band {
	return s.Bands[b]
}

// BandTotal returns the number of samples across all bands, always NumVals.
func (s Summary) BandTotal() uint64 {
	var n uint64
	for _, b := range s.Bands {
		n += b.Count
	}
	return n
}

// Clip zeroes samples outside [0, UpLimit] and reports how many were changed.
func Clip(samples []uint64) int {
	clipped := 0
	for i, v := range samples {
		if int64(v) < 0 || v > UpLimit {
			samples[i] = 0
			clipped++
		}
	}
	return clipped
}

// bandOf classifies a sample by its absolute deviation from avg. The cutoffs are
// inclusive upper bounds relative to the global average.
func bandOf(ad float64, cutoffs *[NumBands - 1]float64) BandID {
	for i, c := range cutoffs {
		if ad <= c {
			return BandID(i)
		}
	}
	return BandRest
}

// Analyze computes the deviation summary of samples.
//
// Samples outside [0, UpLimit] are zeroed in place and still counted, so a high
// rate of invalid samples drags the mean down. An empty input produces NaN
// statistics.
//
// Min and max are tracked in a single if/else-if chain seeded with max=0 and
// min=MaxFloat64: a sample that raises the maximum is never considered for the
// minimum. Existing baselines depend on this, e.g. a strictly increasing input
// never sets Min.
func Analyze(samples []uint64) Summary {
	n := len(samples)
	s := Summary{NumVals: uint64(n)}

	Clip(samples)
	var sum uint64
	for _, v := range samples {
		sum += v
	}

	avg := float64(sum) / float64(n)
	s.Avg = avg

	var cutoffs [NumBands - 1]float64
	for i, c := range bandCutoffs {
		cutoffs[i] = c * avg
	}

	maxVal, minVal := 0.0, math.MaxFloat64
	var maxIdx, minIdx uint64

	var bandSums [NumBands]uint64
	var sumAbsDev, sumSqDev float64
	for i, raw := range samples {
		v := float64(raw)
		ad := math.Abs(v - avg)

		if v > maxVal {
			maxVal = v
			maxIdx = uint64(i)
		} else if v < minVal {
			minVal = v
			minIdx = uint64(i)
		}

		b := bandOf(ad, &cutoffs)
		s.Bands[b].Count++
		bandSums[b] += raw

		sumAbsDev += ad
		sumSqDev += ad * ad
	}

	s.Min, s.MinIdx = minVal, minIdx
	s.Max, s.MaxIdx = maxVal, maxIdx

	for b := range s.Bands {
		s.Bands[b].Avg = float64(bandSums[b]) / float64(s.Bands[b].Count)
	}

	// second pass: dispersion of each band around its own mean
	var bandAbs, bandSq [NumBands]float64
	for _, raw := range samples {
		v := float64(raw)
		b := bandOf(math.Abs(v-avg), &cutoffs)
		ad := math.Abs(v - s.Bands[b].Avg)
		bandAbs[b] += ad
		bandSq[b] += ad * ad
	}

	for b := range s.Bands {
		count := float64(s.Bands[b].Count)
		s.Bands[b].AbsDev = bandAbs[b] / count
		s.Bands[b].StdDev = math.Sqrt(bandSq[b] / count)
	}

	s.AbsDev = sumAbsDev / float64(n)
	s.StdDev = math.Sqrt(sumSqDev / float64(n))

	return s
}

// MedianNonZero returns the median of the non-zero samples without modifying
// them. The second result is false, and the median NaN, when every sample is zero.
func MedianNonZero(samples []uint64) (float64, bool) {
	scratch := make([]uint64, 0, len(samples))
	for _, v := range samples {
		if v != 0 {
			scratch = append(scratch, v)
		}
	}

	n := len(scratch)
	if n == 0 {
		return math.NaN(), false
	}

	slices.Sort(scratch)
	if n%2 == 0 {
		return (float64(scratch[n/2-1]) + float64(scratch[n/2])) / 2, true
	}
	return float64(scratch[n/2]), true
}

// quality returns 100*(1-(avg-stddev)/avg), the spread of a calibration round
// relative to its mean. It is NaN when avg is zero or not finite.
func quality(s Summary) float64 {
	if math.IsNaN(s.Avg) || math.IsInf(s.Avg, 0) || s.Avg == 0 {
		return math.NaN()
	}
	return 100 * (1 - (s.Avg-s.StdDev)/s.Avg)
}
