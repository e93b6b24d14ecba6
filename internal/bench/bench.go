// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package bench measures core-to-core latency of contended memory operations.
// Two workers, pinned to the source and target cores, take turns running the
// selected operation on one shared cache line and time every turn with their
// own cycle profiler.
package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cpu"
	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cycleprof"
)

const (
	DefaultRepetitions = 10000
	DefaultTest        = "CAS"

	cacheLineSize = 64

	// spins between context checks while waiting for a turn
	spinCheckInterval = 1 << 12
)

var ErrInvalidRepetitions = errors.New("repetitions must be greater than zero")

// Options selects what to run and where.
type Options struct {
	Test        string
	Source      int
	Target      int
	Repetitions int
	// Print is the number of raw samples printed per core.
	Print int

	Profiler cycleprof.Config
	Out      io.Writer
	Logger   logr.Logger
}

// Result is the outcome of one worker.
type Result struct {
	Core       int
	Correction uint64
	Checksum   uint64
	Summary    cycleprof.Summary
}

// Avg returns the mean latency with the profiler correction removed.
func (r Result) Avg() float64 {
	return r.Summary.Avg - float64(r.Correction)
}

// Line renders the result as the per-core summary line parsed by the sweep.
func (r Result) Line() string {
	band := r.Summary.Band(cycleprof.Band10)
	return fmt.Sprintf("Core %d : avg %.1f abs dev %.1f std dev %.1f 0-10%% avg %.1f (%d samples)",
		r.Core, r.Avg(), r.Summary.AbsDev, r.Summary.StdDev,
		band.Avg-float64(r.Correction), band.Count)
}

// line holds the turn counter and the contended word on separate cache lines.
type line struct {
	turn atomic.Uint64
	_    [cacheLineSize - 8]byte
	word uint64
	_    [cacheLineSize - 8]byte
}

// Run executes the test between the source and target cores and prints each
// worker's report followed by the per-core summary lines.
func Run(ctx context.Context, opts Options) ([2]Result, error) {
	var results [2]Result

	test, err := Get(opts.Test)
	if err != nil {
		return results, err
	}
	if opts.Repetitions <= 0 {
		return results, fmt.Errorf("%w: got %d", ErrInvalidRepetitions, opts.Repetitions)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	logger = logger.WithName("bench")

	logger.Info("starting test",
		"test", test.Name,
		"source", opts.Source,
		"target", opts.Target,
		"repetitions", opts.Repetitions)

	var shared line
	var reports [2]bytes.Buffer
	cores := [2]int{opts.Source, opts.Target}

	g, gctx := errgroup.WithContext(ctx)
	for i := range cores {
		w := &worker{
			turn:   uint64(i),
			core:   cores[i],
			test:   test,
			shared: &shared,
			opts:   opts,
			out:    &reports[i],
			logger: logger.WithValues("core", cores[i]),
		}
		g.Go(func() error {
			r, err := w.run(gctx)
			if err != nil {
				return fmt.Errorf("core %d: %w", w.core, err)
			}
			results[w.turn] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	for i := range reports {
		if _, err := reports[i].WriteTo(opts.Out); err != nil {
			return results, fmt.Errorf("failed to write report: %w", err)
		}
	}
	for _, r := range results {
		fmt.Fprintln(opts.Out, r.Line())
	}

	return results, nil
}

type worker struct {
	// turn is 0 for the source and 1 for the target
	turn   uint64
	core   int
	test   Test
	shared *line
	opts   Options
	out    io.Writer
	logger logr.Logger
}

func (w *worker) run(ctx context.Context) (Result, error) {
	unpin, err := cpu.Pin(w.core)
	if err != nil {
		return Result{}, err
	}
	defer unpin()

	store, err := cycleprof.New(w.opts.Repetitions,
		cycleprof.WithID(w.core),
		cycleprof.WithConfig(w.opts.Profiler),
		cycleprof.WithOutput(w.out),
		cycleprof.WithLogger(w.logger),
	)
	if err != nil {
		return Result{}, err
	}

	var checksum uint64
	for rep := 0; rep < w.opts.Repetitions; rep++ {
		turn := uint64(2*rep) + w.turn
		if err := w.wait(ctx, turn); err != nil {
			return Result{}, err
		}

		store.Start(0)
		checksum += w.test.Op(&w.shared.word, turn)
		store.End(0, rep)

		w.shared.turn.Add(1)
	}

	summary, err := store.Collect(0, w.opts.Repetitions, w.opts.Print)
	if err != nil {
		return Result{}, err
	}

	w.logger.V(1).Info("worker done", "avg", summary.Avg, "correction", store.Correction(), "checksum", checksum)
	return Result{
		Core:       store.ID(),
		Correction: store.Correction(),
		Checksum:   checksum,
		Summary:    summary,
	}, nil
}

// wait spins until the shared turn counter reaches turn.
func (w *worker) wait(ctx context.Context, turn uint64) error {
	for spins := 1; w.shared.turn.Load() != turn; spins++ {
		if spins%spinCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}
	return nil
}
