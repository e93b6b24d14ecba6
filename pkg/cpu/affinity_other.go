// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

//go:build !linux

package cpu

import "runtime"

// Pin locks the calling goroutine to its OS thread. Thread affinity is only
// supported on Linux, so core is not enforced.
func Pin(core int) (func(), error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}

// Allowed returns every core reported by the runtime.
func Allowed() ([]int, error) {
	cores := make([]int, runtime.NumCPU())
	for i := range cores {
		cores[i] = i
	}
	return cores, nil
}
