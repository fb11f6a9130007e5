// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

func currentBuild() buildInfo {
	return buildInfo{Version: version, Commit: commit, Date: date, GoVersion: runtime.Version()}
}

func (b buildInfo) String() string {
	return fmt.Sprintf("plotwise %s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print plotwise build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := currentBuild()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
			return err
		},
	}
	cmd.Flags().Bool("json", false, "print build information as JSON")
	return cmd
}
