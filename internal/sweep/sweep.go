// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package sweep runs the benchmark binary over every ordered pair of cores and
// collects the per-core averages into CSV.
package sweep

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/go-logr/logr"
)

const DefaultTimeout = 60 * time.Second

var (
	ErrNoPairs       = errors.New("at least two cores are needed for a sweep")
	ErrMissingResult = errors.New("benchmark output is missing core results")
)

// Header is the first CSV record.
var Header = []string{"source_core", "target_core", "core_a", "avg_a", "core_b", "avg_b"}

var coreLine = regexp.MustCompile(`^Core (\d+) : avg (\S+)`)

// Runner executes the benchmark binary and returns its standard output.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// ExecRunner runs binary as a child process.
func ExecRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if stderr.Len() > 0 {
			return out, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return out, err
	}
	return out, nil
}

// Options configures a sweep.
type Options struct {
	Binary      string
	CPUs        []int
	Test        string
	Repetitions int
	// Timeout bounds each benchmark run.
	Timeout time.Duration

	Output io.Writer
	Runner Runner
	Logger logr.Logger
}

// Stats summarizes a sweep.
type Stats struct {
	Pairs  int
	Failed int
}

// CoreResult is one "Core N : avg X" line.
type CoreResult struct {
	Core int
	Avg  float64
}

// Pair is an ordered (source, target) core pair.
type Pair struct {
	Source int
	Target int
}

// Pairs returns every ordered pair of distinct cores, grouped by source.
func Pairs(cpus []int) []Pair {
	var pairs []Pair
	for _, src := range cpus {
		for _, dst := range cpus {
			if src != dst {
				pairs = append(pairs, Pair{Source: src, Target: dst})
			}
		}
	}
	return pairs
}

// Args returns the benchmark arguments for one pair.
func (o *Options) Args(p Pair) []string {
	args := []string{
		"--cores", "2",
		"--cores_array", fmt.Sprintf("[%d,%d]", p.Source, p.Target),
	}
	if o.Test != "" {
		args = append(args, "--test", o.Test)
	}
	if o.Repetitions > 0 {
		args = append(args, "--repetitions", strconv.Itoa(o.Repetitions))
	}
	return args
}

// ParseOutput extracts the core result lines in output order.
func ParseOutput(output []byte) ([]CoreResult, error) {
	var results []CoreResult

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := coreLine.FindSubmatch(bytes.TrimSpace(scanner.Bytes()))
		if m == nil {
			continue
		}

		core, err := strconv.Atoi(string(m[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid core in %q: %w", scanner.Text(), err)
		}
		avg, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid average in %q: %w", scanner.Text(), err)
		}
		results = append(results, CoreResult{Core: core, Avg: avg})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read benchmark output: %w", err)
	}
	return results, nil
}

// Run benchmarks every pair in turn and writes one CSV record per pair. A
// failed pair is recorded with empty result fields and the sweep continues.
func Run(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats

	pairs := Pairs(opts.CPUs)
	if len(pairs) == 0 {
		return stats, fmt.Errorf("%w: got %v", ErrNoPairs, opts.CPUs)
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	logger = logger.WithName("sweep")

	w := csv.NewWriter(opts.Output)
	if err := w.Write(Header); err != nil {
		return stats, fmt.Errorf("failed to write CSV header: %w", err)
	}

	logger.Info("starting sweep", "cpus", opts.CPUs, "pairs", len(pairs), "binary", opts.Binary)
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			w.Flush()
			return stats, err
		}

		stats.Pairs++
		record, err := runPair(ctx, &opts, p)
		if err != nil {
			stats.Failed++
			logger.Error(err, "benchmark failed", "source", p.Source, "target", p.Target)
		} else {
			logger.V(1).Info("benchmark done", "source", p.Source, "target", p.Target, "record", record)
		}

		if err := w.Write(record); err != nil {
			return stats, fmt.Errorf("failed to write CSV record: %w", err)
		}
		// flush per pair so partial sweeps are usable
		w.Flush()
		if err := w.Error(); err != nil {
			return stats, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	logger.Info("sweep finished", "pairs", stats.Pairs, "failed", stats.Failed)
	return stats, nil
}

func runPair(ctx context.Context, opts *Options, p Pair) ([]string, error) {
	record := []string{strconv.Itoa(p.Source), strconv.Itoa(p.Target), "", "", "", ""}

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	output, err := opts.Runner(runCtx, opts.Binary, opts.Args(p)...)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return record, fmt.Errorf("timed out after %s: %w", opts.Timeout, err)
		}
		return record, err
	}

	results, err := ParseOutput(output)
	if err != nil {
		return record, err
	}
	if len(results) < 2 {
		return record, fmt.Errorf("%w: found %d", ErrMissingResult, len(results))
	}

	for i, r := range results[:2] {
		record[2+2*i] = strconv.Itoa(r.Core)
		record[3+2*i] = strconv.FormatFloat(r.Avg, 'f', -1, 64)
	}
	return record, nil
}
