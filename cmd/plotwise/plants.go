// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotwise-dev/plotwise/internal/recommend"
)

func newPlantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "Find plants suited to a plot",
		Long: "List plants that thrive in the given soil type, need the given sun exposure " +
			"and grow best in the given season. Omitted filters do not constrain the result.",
		Example: "  plotwise plants --soil brown-earth --season spring",
		Args:    cobra.NoArgs,
		RunE:    runPlants,
	}

	cmd.Flags().String("soil", "", "soil type id")
	cmd.Flags().String("sun", "", "sun exposure id")
	cmd.Flags().String("season", "", "season id")
	cmd.Flags().Bool("json", false, "print results as JSON")

	return cmd
}

func runPlants(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	soil, _ := cmd.Flags().GetString("soil")
	sun, _ := cmd.Flags().GetString("sun")
	season, _ := cmd.Flags().GetString("season")
	criteria := recommend.Criteria{SoilType: soil, SunExposure: sun, Season: season}

	plants, err := recommend.New(st).FindPlantsBySuitability(cmd.Context(), criteria)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, plants)
	}

	if len(plants) == 0 {
		_, _ = fmt.Fprintln(out, dimStyle.Render("No plants match."))
		return nil
	}
	_, _ = fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d plant(s)", len(plants))))
	for _, p := range plants {
		_, _ = fmt.Fprintf(out, "  %-14s %s\n", p.ID, displayName(p.ID, p.Properties))
	}
	return nil
}
