// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

// Package recommend answers conditional plant queries over the graph store.
package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/metrics"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// Plant is a recommendation result.
type Plant struct {
	ID         string           `json:"id"`
	Properties graph.Properties `json:"properties"`
}

// Ref identifies a related node by id and display name.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PlantProfile is a plant together with its growing conditions.
type PlantProfile struct {
	Plant
	SoilTypes    []Ref   `json:"soil_types"`
	SunExposures []Ref   `json:"sun_exposures"`
	Seasons      []Ref   `json:"seasons"`
	Companions   []Plant `json:"companions"`
}

// Engine evaluates recommendation queries against a GraphStore.
type Engine struct {
	store   store.GraphStore
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for query tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every suitability query on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine over s. The caller keeps ownership of s.
func New(s store.GraphStore, opts ...Option) *Engine {
	e := &Engine{store: s, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// FindPlantsBySuitability returns the plants that satisfy every non-empty
// criterion, sorted by id. An unknown criterion value yields no plants.
func (e *Engine) FindPlantsBySuitability(ctx context.Context, c Criteria) ([]Plant, error) {
	conditions := c.conditions()
	nodes, err := e.store.FindNodes(ctx, store.NodeQuery{
		Type:       graph.EntityPlant,
		Conditions: conditions,
	})
	if err != nil {
		e.metrics.ObservePlantQuery(len(conditions), 0, err)
		return nil, pwerr.Wrap(err, pwerr.CodeRecommendQueryFailure, "finding plants by suitability")
	}

	plants := toPlants(nodes)
	e.metrics.ObservePlantQuery(len(conditions), len(plants), nil)
	e.logger.DebugContext(ctx, "plant suitability query",
		slog.String("soil_type", c.SoilType),
		slog.String("sun_exposure", c.SunExposure),
		slog.String("season", c.Season),
		slog.Int("results", len(plants)),
	)
	return plants, nil
}

// Companions returns the plants plantID grows well with. Unknown plants
// have no companions.
func (e *Engine) Companions(ctx context.Context, plantID string) ([]Plant, error) {
	neighbors, err := e.store.GetOutgoingNeighbors(ctx, plantID)
	if err != nil {
		return nil, pwerr.Wrap(err, pwerr.CodeRecommendQueryFailure,
			"listing companions of "+plantID, pwerr.FieldNodeID(plantID))
	}

	companions := make([]Plant, 0)
	for _, n := range neighbors {
		if n.EdgeType == graph.RelGrowsWellWith && n.Node.Type == graph.EntityPlant {
			companions = append(companions, Plant{ID: n.Node.ID, Properties: n.Node.Properties})
		}
	}
	sortPlants(companions)
	return companions, nil
}

// Profile loads a plant and groups its outgoing relations. ok is false
// when plantID does not name a Plant node.
func (e *Engine) Profile(ctx context.Context, plantID string) (*PlantProfile, bool, error) {
	node, ok, err := e.store.GetNode(ctx, plantID)
	if err != nil {
		return nil, false, pwerr.Wrap(err, pwerr.CodeRecommendQueryFailure,
			"loading plant "+plantID, pwerr.FieldNodeID(plantID))
	}
	if !ok || node.Type != graph.EntityPlant {
		return nil, false, nil
	}

	neighbors, err := e.store.GetOutgoingNeighbors(ctx, plantID)
	if err != nil {
		return nil, false, pwerr.Wrap(err, pwerr.CodeRecommendQueryFailure,
			"loading relations of "+plantID, pwerr.FieldNodeID(plantID))
	}

	p := &PlantProfile{
		Plant:        Plant{ID: node.ID, Properties: node.Properties},
		SoilTypes:    []Ref{},
		SunExposures: []Ref{},
		Seasons:      []Ref{},
		Companions:   []Plant{},
	}
	for _, n := range neighbors {
		ref := Ref{ID: n.Node.ID, Name: n.Node.Properties.String("name")}
		switch {
		case n.EdgeType == graph.RelThrivesIn && n.Node.Type == graph.EntitySoilType:
			p.SoilTypes = append(p.SoilTypes, ref)
		case n.EdgeType == graph.RelNeeds && n.Node.Type == graph.EntitySunExposure:
			p.SunExposures = append(p.SunExposures, ref)
		case n.EdgeType == graph.RelGrowsBestIn && n.Node.Type == graph.EntitySeason:
			p.Seasons = append(p.Seasons, ref)
		case n.EdgeType == graph.RelGrowsWellWith && n.Node.Type == graph.EntityPlant:
			p.Companions = append(p.Companions, Plant{ID: n.Node.ID, Properties: n.Node.Properties})
		}
	}
	sortRefs(p.SoilTypes)
	sortRefs(p.SunExposures)
	sortRefs(p.Seasons)
	sortPlants(p.Companions)

	return p, true, nil
}

func toPlants(nodes []*graph.Node) []Plant {
	seen := make(map[string]struct{}, len(nodes))
	plants := make([]Plant, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		plants = append(plants, Plant{ID: n.ID, Properties: n.Properties})
	}
	sortPlants(plants)
	return plants
}

func sortPlants(p []Plant) {
	sort.Slice(p, func(i, j int) bool { return p[i].ID < p[j].ID })
}

func sortRefs(r []Ref) {
	sort.Slice(r, func(i, j int) bool { return r[i].ID < r[j].ID })
}
