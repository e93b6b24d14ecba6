// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cycleprof

import (
	"fmt"
	"io"
)

// ReportWriter renders samples and summaries in the fixed text layout consumed by
// the benchmark tooling. Every report line carries the worker id prefix.
type ReportWriter struct {
	out io.Writer
	id  int
}

// NewReportWriter returns a ReportWriter for worker id writing to out.
func NewReportWriter(out io.Writer, id int) *ReportWriter {
	return &ReportWriter{out: out, id: id}
}

func (w *ReportWriter) line(format string, args ...any) {
	fmt.Fprintf(w.out, "[%02d] ", w.id)
	fmt.Fprintf(w.out, format, args...)
	fmt.Fprintln(w.out)
}

// Samples prints the first n samples on one line.
func (w *ReportWriter) Samples(samples []uint64, n int) {
	if n > len(samples) {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		// signed, so wrapped deltas are visible as negative values
		fmt.Fprintf(w.out, "[%3d: %4d] ", i, int64(samples[i]))
	}
}

// Summary prints the global statistics followed by one line per deviation band.
func (w *ReportWriter) Summary(s Summary) {
	fmt.Fprintf(w.out, "\n ---- statistics:\n")
	w.line("    avg : %-10.1f abs dev : %-10.1f std dev : %-10.1f num     : %d",
		s.Avg, s.AbsDev, s.StdDev, s.NumVals)
	w.line("    min : %-10.1f (element: %6d)    max     : %-10.1f (element: %6d)",
		s.Min, s.MinIdx, s.Max, s.MaxIdx)

	for b := Band10; b <= BandRest; b++ {
		band := s.Bands[b]
		share := 100 * (1 - float64(s.NumVals-band.Count)/float64(s.NumVals))
		spread := 100 * (1 - (band.Avg-band.StdDev)/band.Avg)
		w.line("%7s : %-10d ( %5.1f%%  |  avg:  %6.1f  |  abs dev: %6.1f  |  std dev: %6.1f = %5.1f%% )",
			b, band.Count, share, band.Avg, band.AbsDev, band.StdDev, spread)
	}
	fmt.Fprintln(w.out)
}
