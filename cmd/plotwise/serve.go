// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plotwise-dev/plotwise/internal/metrics"
	"github.com/plotwise-dev/plotwise/internal/recommend"
	"github.com/plotwise-dev/plotwise/internal/seed"
	"github.com/plotwise-dev/plotwise/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plant API over HTTP",
		Long:  "Open the graph store, optionally seed it, and serve the recommendation and graph API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().Bool("seed", false, "seed the catalog before serving")
	_ = viper.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("seed.on_start", cmd.Flags().Lookup("seed"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	logger := slog.Default()

	var m *metrics.Collector
	if cfg.Networking.Metrics {
		m = metrics.New()
	}

	if cfg.Seed.OnStart {
		ds, err := seed.Load(cfg.Seed.Dataset)
		if err != nil {
			return err
		}
		if _, err := seed.NewSeeder(st, seed.WithLogger(logger), seed.WithMetrics(m)).Run(ctx, ds); err != nil {
			return err
		}
	}

	if m != nil {
		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		m.SetGraphStats(stats)
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		Version:     version,
		Logger:      logger,
		Metrics:     m,
	})
	if err != nil {
		return err
	}

	engine := recommend.New(st, recommend.WithLogger(logger), recommend.WithMetrics(m))
	svc, err := server.NewServices(engine, st)
	if err != nil {
		return err
	}
	srv.RegisterServices(svc)

	logger.Info("starting plotwise",
		"listen", cfg.Networking.Listen,
		"backend", cfg.Storage.Backend,
		"verbose", cfg.Verbose,
	)
	return srv.Start(ctx)
}
