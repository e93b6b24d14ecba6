// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package hwprofile

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
)

// ModelName returns the model name of the first processor reported by the host.
func ModelName() (string, error) {
	infos, err := cpu.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read cpu info: %w", err)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no processors reported")
	}
	return infos[0].ModelName, nil
}

// Detect matches the host CPU against t. Hosts that cannot be identified map to Unknown.
func (t Table) Detect() (ID, string, error) {
	model, err := ModelName()
	if err != nil {
		return Unknown, "", err
	}
	return t.Match(model), model, nil
}
