// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plotwise-dev/plotwise/internal/seed"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the plant catalog into the graph store",
		Long: "Upsert seasons, soil types, sun exposures, plants and their relationships. " +
			"Without --dataset the built-in catalog is used. Re-running is safe.",
		RunE: runSeed,
	}

	cmd.Flags().String("dataset", "", "path to a YAML catalog (default: built-in)")
	cmd.Flags().Bool("json", false, "print the seed report as JSON")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("dataset")
	if path == "" {
		path = viper.GetString("seed.dataset")
	}
	ds, err := seed.Load(path)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	report, err := seed.NewSeeder(st, seed.WithLogger(slog.Default())).Run(cmd.Context(), ds)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, report)
	}

	_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Seeded %d nodes and %d edges into %s",
		report.NodesWritten, report.EdgesWritten, cfg.DatabasePath())))
	for _, d := range report.Dangling {
		_, _ = fmt.Fprintln(out, warnStyle.Render("  dangling: "+d.String()))
	}
	_, _ = fmt.Fprintln(out, dimStyle.Render("run "+report.RunID+" in "+report.Duration.String()))
	return nil
}
