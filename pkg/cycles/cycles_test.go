// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package cycles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadIsMonotonic(t *testing.T) {
	var c Counter = TSC{}

	prev := c.Read()
	for i := 0; i < 1000; i++ {
		Fence()
		cur := c.Read()
		assert.GreaterOrEqual(t, cur, prev, "counter went backwards at read %d", i)
		prev = cur
	}
}

func TestReadAdvances(t *testing.T) {
	var c Counter = TSC{}

	start := c.Read()
	Spin(1_000_000)
	assert.Greater(t, c.Read(), start)
}

func TestClockFallbackAdvances(t *testing.T) {
	start := readClock()
	Spin(1_000_000)
	assert.Greater(t, readClock(), start)
}

func TestSource(t *testing.T) {
	assert.Contains(t, []string{"rdtsc", clockSource}, Source())
}
