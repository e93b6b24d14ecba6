// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cycleprof

// scriptedCounter replays a delta sequence: every second read advances the
// clock by the next delta, so each Start/End pair measures one scripted value.
type scriptedCounter struct {
	deltas []uint64
	now    uint64
	next   int
	open   bool
	reads  int
}

func newScriptedCounter(deltas ...uint64) *scriptedCounter {
	return &scriptedCounter{deltas: deltas, now: 1_000_000}
}

func (c *scriptedCounter) Read() uint64 {
	c.reads++
	if !c.open {
		c.open = true
		return c.now
	}
	c.open = false
	c.now += c.deltas[c.next%len(c.deltas)]
	c.next++
	return c.now
}

// replay switches to a new delta sequence.
func (c *scriptedCounter) replay(deltas ...uint64) {
	c.deltas = deltas
	c.next = 0
}

type counterFunc func() uint64

func (f counterFunc) Read() uint64 { return f() }
