// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package bench

import "sync/atomic"

func init() {
	Register(Test{
		Name:        "CAS",
		Description: "compare-and-swap on the shared line",
		Op: func(word *uint64, turn uint64) uint64 {
			if atomic.CompareAndSwapUint64(word, turn, turn+1) {
				return turn + 1
			}
			return 0
		},
	})
	Register(Test{
		Name:        "FAI",
		Description: "fetch-and-increment on the shared line",
		Op: func(word *uint64, _ uint64) uint64 {
			return atomic.AddUint64(word, 1)
		},
	})
	Register(Test{
		Name:        "TAS",
		Description: "test-and-set on the shared line, released when already set",
		Op: func(word *uint64, _ uint64) uint64 {
			if atomic.SwapUint64(word, 1) == 1 {
				atomic.StoreUint64(word, 0)
				return 0
			}
			return 1
		},
	})
	Register(Test{
		Name:        "LOAD",
		Description: "load of the shared line",
		Op: func(word *uint64, _ uint64) uint64 {
			return atomic.LoadUint64(word)
		},
	})
}
