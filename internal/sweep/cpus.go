// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package sweep

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/AlexJonesCodes/altered-ccbench-fork/pkg/cpu"
)

// CPUs resolves the cores to sweep: the explicit list if given, otherwise the
// online cores under sysPath, otherwise the cores this process may run on.
func CPUs(list, sysPath string, logger logr.Logger) ([]int, error) {
	if list != "" {
		cpus, err := cpu.ParseCPUList(list)
		if err != nil {
			return nil, fmt.Errorf("invalid --cpus: %w", err)
		}
		return cpus, nil
	}

	cpus, err := cpu.Online(sysPath)
	if err == nil {
		return cpus, nil
	}
	logger.V(1).Info("online cores unavailable, using affinity mask", "error", err.Error())

	return cpu.Allowed()
}
