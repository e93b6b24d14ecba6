// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AlexJonesCodes/altered-ccbench-fork/internal/config"
)

func newProfilesCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List hardware profiles and the one selected for this host.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sync := global.logger()
			defer sync()

			_, resolved, err := global.load(logger)
			if err != nil {
				return err
			}
			return printProfiles(cmd.OutOrStdout(), resolved)
		},
	}
}

func printProfiles(out io.Writer, resolved config.Resolved) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tOVERHEAD\tWARMUP SPINS\tMATCH")
	for _, p := range resolved.Profiler.Profiles.Profiles() {
		marker := ""
		if p.ID == resolved.Profiler.HardwareProfile {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%.0f\t%d\t%s\n", p.ID, marker, p.Overhead, p.WarmupSpins, strings.Join(p.Match, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nselected: %s (%s)", resolved.Profiler.HardwareProfile, resolved.Source)
	if resolved.Model != "" {
		fmt.Fprintf(out, ", model %q", resolved.Model)
	}
	fmt.Fprintln(out)
	return nil
}
