// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

//go:build amd64

package cycles

import "github.com/templexxx/tsc"

var useTSC = tsc.Supported()

func readCounter() uint64 {
	if useTSC {
		return tsc.RDTSC()
	}
	return readClock()
}

// Source names the tick source backing Read.
func Source() string {
	if useTSC {
		return "rdtsc"
	}
	return clockSource
}
