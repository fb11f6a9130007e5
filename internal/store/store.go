// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package store

import (
	"context"

	"github.com/plotwise-dev/plotwise/internal/graph"
)

// GraphStore persists nodes and directed edges and answers the fixed set
// of lookups the seeder and recommendation engine need. Implementations
// perform no validation of node or relation types and never enforce that
// an edge's endpoints exist.
type GraphStore interface {
	// UpsertNode replaces any node with the same id.
	UpsertNode(ctx context.Context, node *graph.Node) error
	// UpsertEdge derives the edge id from (source, type, target) and
	// replaces any edge with that id.
	UpsertEdge(ctx context.Context, edge *graph.Edge) error

	// GetNode reports ok=false with a nil error when id has no record.
	GetNode(ctx context.Context, id string) (node *graph.Node, ok bool, err error)
	GetNodesByType(ctx context.Context, t graph.EntityType) ([]*graph.Node, error)
	// GetOutgoingNeighbors skips edges whose target node does not exist.
	GetOutgoingNeighbors(ctx context.Context, nodeID string) ([]graph.Neighbor, error)

	// FindNodes returns the distinct nodes of q.Type satisfying every
	// condition in q.Conditions.
	FindNodes(ctx context.Context, q NodeQuery) ([]*graph.Node, error)

	Stats(ctx context.Context) (Stats, error)

	Close() error
}
