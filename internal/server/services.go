// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package server

import (
	"context"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/recommend"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// Services holds dependencies injected into route handlers.
// Each field is an interface so handlers can be tested against stubs.
type Services struct {
	plants PlantService
	graph  GraphService
}

// NewServices creates a Services instance. Both services are required.
func NewServices(plants PlantService, graph GraphService) (*Services, error) {
	if plants == nil {
		return nil, pwerr.New(pwerr.CodeServerConfigInvalid, "plant service is required")
	}
	if graph == nil {
		return nil, pwerr.New(pwerr.CodeServerConfigInvalid, "graph service is required")
	}
	return &Services{plants: plants, graph: graph}, nil
}

// Plants returns the recommendation service.
func (s *Services) Plants() PlantService {
	return s.plants
}

// Graph returns the read-only graph service.
func (s *Services) Graph() GraphService {
	return s.graph
}

// PlantService answers recommendation queries. *recommend.Engine
// implements it.
type PlantService interface {
	FindPlantsBySuitability(ctx context.Context, c recommend.Criteria) ([]recommend.Plant, error)
	Companions(ctx context.Context, plantID string) ([]recommend.Plant, error)
	Profile(ctx context.Context, plantID string) (*recommend.PlantProfile, bool, error)
}

// GraphService is the read side of store.GraphStore.
type GraphService interface {
	GetNode(ctx context.Context, id string) (*graph.Node, bool, error)
	GetNodesByType(ctx context.Context, t graph.EntityType) ([]*graph.Node, error)
	GetOutgoingNeighbors(ctx context.Context, nodeID string) ([]graph.Neighbor, error)
	Stats(ctx context.Context) (store.Stats, error)
}

var (
	_ PlantService = (*recommend.Engine)(nil)
	_ GraphService = (store.GraphStore)(nil)
)
