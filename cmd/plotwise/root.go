// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plotwise-dev/plotwise/internal/config"
	"github.com/plotwise-dev/plotwise/internal/store"
	_ "github.com/plotwise-dev/plotwise/internal/store/memory" // register memory backend
	_ "github.com/plotwise-dev/plotwise/internal/store/sqlite" // register sqlite backend
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// NewRootCmd creates the root plotwise command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "plotwise",
		Short:         "Plotwise - plant suitability and companion planting",
		Long:          "Plotwise keeps a graph of plants, soils, sun exposures and seasons and recommends plants that suit a plot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), viper.GetBool("verbose"))
			return nil
		},
	}

	// Global flags; these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newInitCmd(),
		newSeedCmd(),
		newPlantsCmd(),
		newNodeCmd(),
		newNeighborsCmd(),
		newServeCmd(),
		newStatusCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return pwerr.Errorf(pwerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted so viper never matches the bare
		// ./plotwise binary.
		v.SetConfigName("plotwise")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/plotwise")
		v.AddConfigPath("/etc/plotwise")
		// No config file is fine; parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return pwerr.Errorf(pwerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
		}
	}

	if err := v.BindPFlag("data_dir", cmd.Root().PersistentFlags().Lookup("data-dir")); err != nil {
		return pwerr.Errorf(pwerr.CodeCLISetupFailure, "binding data-dir flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return pwerr.Errorf(pwerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// setupLogging installs a text slog handler on w; verbose enables debug.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves the effective configuration from the global viper.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// openStore opens the configured graph store. The caller closes it.
func openStore(cfg *config.Config) (store.GraphStore, error) {
	st, err := store.Open(store.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.DatabasePath(),
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("opened graph store", "backend", cfg.Storage.Backend, "path", cfg.DatabasePath())
	return st, nil
}
