// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/metrics"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// Report summarises one seeding run.
type Report struct {
	RunID        string        `json:"run_id"`
	NodesWritten int           `json:"nodes_written"`
	EdgesWritten int           `json:"edges_written"`
	Dangling     []DanglingRef `json:"dangling"`
	Duration     time.Duration `json:"duration"`
}

// Seeder writes datasets into a GraphStore with plain upserts, so running
// the same dataset twice leaves the graph unchanged. Edges dropped from a
// dataset are not removed from the store.
type Seeder struct {
	store   store.GraphStore
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets the logger for run progress and dangling references.
func WithLogger(l *slog.Logger) Option {
	return func(s *Seeder) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records run outcomes and write counts on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Seeder) {
		s.metrics = m
	}
}

// NewSeeder creates a Seeder writing to st.
func NewSeeder(st store.GraphStore, opts ...Option) *Seeder {
	s := &Seeder{store: st, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run validates ds and writes reference nodes (Season, SoilType,
// SunExposure), then Plant nodes, then plant edges. It stops at the first
// failed write; writes made before the failure are kept.
func (s *Seeder) Run(ctx context.Context, ds *Dataset) (Report, error) {
	report, err := s.run(ctx, ds)
	s.metrics.ObserveSeed(report.NodesWritten, report.EdgesWritten, err)
	return report, err
}

func (s *Seeder) run(ctx context.Context, ds *Dataset) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := s.logger.With(slog.String("run_id", report.RunID))

	if errs := ds.Validate(); len(errs) > 0 {
		return report, pwerr.Wrap(errors.Join(errs...), pwerr.CodeSeedDatasetInvalid,
			"dataset failed validation", pwerr.Field("problems", len(errs)))
	}

	report.Dangling = ds.DanglingRefs()
	for _, d := range report.Dangling {
		log.Warn("dangling reference in dataset",
			slog.String("plant", d.PlantID),
			slog.String("relation", string(d.Relation)),
			slog.String("target", d.TargetID),
		)
	}

	references := []struct {
		typ  graph.EntityType
		refs []Reference
	}{
		{graph.EntitySeason, ds.Seasons},
		{graph.EntitySoilType, ds.SoilTypes},
		{graph.EntitySunExposure, ds.SunExposures},
	}
	for _, group := range references {
		for _, r := range group.refs {
			if err := s.writeNode(ctx, r.node(group.typ)); err != nil {
				return report, err
			}
			report.NodesWritten++
		}
	}

	for _, p := range ds.Plants {
		if err := s.writeNode(ctx, p.node()); err != nil {
			return report, err
		}
		report.NodesWritten++
	}

	for _, p := range ds.Plants {
		for _, e := range p.edges() {
			if err := ctx.Err(); err != nil {
				return report, pwerr.Wrap(err, pwerr.CodeSeedWriteFailure, "seeding cancelled")
			}
			if err := s.store.UpsertEdge(ctx, e); err != nil {
				return report, pwerr.Wrap(err, pwerr.CodeSeedWriteFailure,
					"writing edge "+e.ID, pwerr.FieldEdgeID(e.ID))
			}
			report.EdgesWritten++
		}
	}

	report.Duration = time.Since(start)
	log.Info("seed complete",
		slog.Int("nodes", report.NodesWritten),
		slog.Int("edges", report.EdgesWritten),
		slog.Int("dangling", len(report.Dangling)),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Seeder) writeNode(ctx context.Context, n *graph.Node) error {
	if err := ctx.Err(); err != nil {
		return pwerr.Wrap(err, pwerr.CodeSeedWriteFailure, "seeding cancelled")
	}
	if err := s.store.UpsertNode(ctx, n); err != nil {
		return pwerr.Wrap(err, pwerr.CodeSeedWriteFailure,
			"writing "+string(n.Type)+" node "+n.ID, pwerr.FieldNodeID(n.ID))
	}
	return nil
}
