// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Query a running server's health and graph stats endpoints.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", "", "server address to check (default: networking.listen)")

	return cmd
}

// serverAddress returns the --address flag or the configured listen address.
func serverAddress(cmd *cobra.Command) string {
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		return addr
	}
	return viper.GetString("networking.listen")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr := serverAddress(cmd)
	out := cmd.OutOrStdout()

	c := newAPIClient(addr)
	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := c.getJSON("/health", &health); err != nil {
		if pwerr.HasCode(err, pwerr.CodeCLIServerNotRunning) {
			_, _ = fmt.Fprintf(out, "Server at %s is not running (connection refused)\n", addr)
			return nil
		}
		_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, err)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Server at %s: %s (version %s)\n", addr, health.Status, health.Version)

	var stats store.Stats
	if err := c.getJSON("/api/v1/stats", &stats); err != nil {
		_, _ = fmt.Fprintf(out, "Stats unavailable: %s\n", err)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Graph: %d nodes, %d edges\n", stats.Nodes, stats.Edges)
	for _, t := range graph.EntityTypes() {
		_, _ = fmt.Fprintf(out, "  %-12s %d\n", t, stats.NodesByType[t])
	}
	return nil
}
