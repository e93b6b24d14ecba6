// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package cycles reads the cheapest monotonic cycle counter available on the host.
//
// On amd64 hosts with an invariant time-stamp counter it is read with RDTSC.
// Everything else falls back to CLOCK_MONOTONIC_RAW in nanoseconds on Linux and
// to the Go monotonic clock elsewhere, so "cycles" are only cycles with RDTSC.
package cycles

import "sync/atomic"

// Counter is a monotonically increasing tick source.
type Counter interface {
	Read() uint64
}

// TSC is the host cycle counter.
type TSC struct{}

// Read returns the current counter value.
func (TSC) Read() uint64 {
	return readCounter()
}

var (
	fenceWord uint32
	spinSink  uint64
)

// Fence orders the memory operations around it. A locked read-modify-write is a
// full barrier on every architecture Go supports.
func Fence() {
	atomic.AddUint32(&fenceWord, 0)
}

// Spin busy-loops for n iterations. It is used to pull a core out of a low
// frequency state before timing anything.
func Spin(n uint64) {
	var acc uint64
	for i := uint64(0); i < n; i++ {
		acc += i
	}
	atomic.StoreUint64(&spinSink, acc)
}
