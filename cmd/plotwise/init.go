// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotwise-dev/plotwise/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  "Write a commented plotwise.yaml with every default. An existing file is kept unless --force is given.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	cmd.Flags().String("path", "", "where to write the config (default: ~/.config/plotwise/plotwise.yaml)")
	cmd.Flags().Bool("force", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	force, _ := cmd.Flags().GetBool("force")

	written, err := config.WriteDefault(path, force)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !written {
		_, _ = fmt.Fprintln(out, dimStyle.Render("Config already exists at "+path+" (use --force to overwrite)"))
		return nil
	}
	_, _ = fmt.Fprintln(out, successStyle.Render("Config written to "+path))
	_, _ = fmt.Fprintln(out, "Run "+labelStyle.Render("plotwise seed")+" then "+labelStyle.Render("plotwise serve")+" to get started.")
	return nil
}
