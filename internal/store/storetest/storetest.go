// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

// Package storetest holds the behaviour every GraphStore backend must
// share. Backend tests call Run with a constructor for a fresh store.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// NewStoreFunc returns an empty store. Run closes it.
type NewStoreFunc func(t *testing.T) store.GraphStore

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore NewStoreFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.GraphStore)
	}{
		{"NodeRoundTrip", testNodeRoundTrip},
		{"GetNodeMissing", testGetNodeMissing},
		{"UpsertNodeReplaces", testUpsertNodeReplaces},
		{"NilPropertiesReadBackEmpty", testNilProperties},
		{"UpsertNodeSerializationFailure", testNodeSerializationFailure},
		{"UpsertEdgeIdempotent", testUpsertEdgeIdempotent},
		{"UpsertEdgeIgnoresCallerID", testUpsertEdgeIgnoresCallerID},
		{"UpsertEdgeSerializationFailure", testEdgeSerializationFailure},
		{"EdgesWithLookalikeIDsStayDistinct", testLookalikeEdges},
		{"DanglingEdgeTolerated", testDanglingEdge},
		{"GetNodesByType", testGetNodesByType},
		{"OutgoingNeighbors", testOutgoingNeighbors},
		{"FindNodes", testFindNodes},
		{"Stats", testStats},
		{"ConcurrentUpserts", testConcurrentUpserts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustNode(t *testing.T, s store.GraphStore, id string, typ graph.EntityType, props graph.Properties) {
	t.Helper()
	require.NoError(t, s.UpsertNode(context.Background(), &graph.Node{ID: id, Type: typ, Properties: props}))
}

func mustEdge(t *testing.T, s store.GraphStore, source string, rel graph.RelationType, target string) {
	t.Helper()
	require.NoError(t, s.UpsertEdge(context.Background(), graph.NewEdge(source, rel, target, nil)))
}

func ids(nodes []*graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func testNodeRoundTrip(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "tomato", graph.EntityPlant, graph.Properties{
		"name":    "Tomato",
		"spacing": 45,
		"tags":    []string{"fruit", "tender"},
	})

	got, ok, err := s.GetNode(ctx, "tomato")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tomato", got.ID)
	assert.Equal(t, graph.EntityPlant, got.Type)
	assert.Equal(t, "Tomato", got.Properties["name"])
	// Numbers come back the way JSON decodes them.
	assert.Equal(t, float64(45), got.Properties["spacing"])
	assert.Equal(t, []any{"fruit", "tender"}, got.Properties["tags"])
}

func testGetNodeMissing(t *testing.T, s store.GraphStore) {
	got, ok, err := s.GetNode(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func testUpsertNodeReplaces(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "kale", graph.EntityPlant, graph.Properties{"name": "Kale", "hardy": true})
	mustNode(t, s, "kale", graph.EntityPlant, graph.Properties{"name": "Curly Kale"})

	got, ok, err := s.GetNode(ctx, "kale")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, graph.Properties{"name": "Curly Kale"}, got.Properties)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Nodes)
}

func testNilProperties(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "winter", graph.EntitySeason, nil)

	got, ok, err := s.GetNode(ctx, "winter")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, got.Properties)
	assert.Empty(t, got.Properties)
}

func testNodeSerializationFailure(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	err := s.UpsertNode(ctx, &graph.Node{
		ID:         "broken",
		Type:       graph.EntityPlant,
		Properties: graph.Properties{"ch": make(chan int)},
	})
	require.Error(t, err)
	assert.True(t, pwerr.IsSerialization(err))
	assert.True(t, pwerr.HasCode(err, pwerr.CodeStoreNodeUpsertSerialization))
	assert.Equal(t, "broken", pwerr.FieldsOf(err)["node_id"])

	_, ok, err := s.GetNode(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, ok, "failed upsert must not store the node")
}

func testUpsertEdgeIdempotent(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "leek", graph.EntityPlant, nil)
	mustNode(t, s, "clay", graph.EntitySoilType, nil)

	require.NoError(t, s.UpsertEdge(ctx, graph.NewEdge("leek", graph.RelThrivesIn, "clay", graph.Properties{"note": "first"})))
	require.NoError(t, s.UpsertEdge(ctx, graph.NewEdge("leek", graph.RelThrivesIn, "clay", graph.Properties{"note": "second"})))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Edges)

	neighbors, err := s.GetOutgoingNeighbors(ctx, "leek")
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, graph.RelThrivesIn, neighbors[0].EdgeType)
	assert.Equal(t, "second", neighbors[0].EdgeProperties["note"])
}

func testUpsertEdgeIgnoresCallerID(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "leek", graph.EntityPlant, nil)
	mustNode(t, s, "autumn", graph.EntitySeason, nil)

	require.NoError(t, s.UpsertEdge(ctx, &graph.Edge{ID: "custom", Source: "leek", Target: "autumn", Type: graph.RelGrowsBestIn}))
	mustEdge(t, s, "leek", graph.RelGrowsBestIn, "autumn")

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Edges, "both upserts address leek/GROWS_BEST_IN/autumn")
}

func testEdgeSerializationFailure(t *testing.T, s store.GraphStore) {
	err := s.UpsertEdge(context.Background(),
		graph.NewEdge("a", graph.RelNeeds, "b", graph.Properties{"fn": func() {}}))
	require.Error(t, err)
	assert.True(t, pwerr.IsSerialization(err))
	assert.True(t, pwerr.HasCode(err, pwerr.CodeStoreEdgeUpsertSerialization))
	assert.Equal(t, "a/NEEDS/b", pwerr.FieldsOf(err)["edge_id"])
}

func testLookalikeEdges(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	for _, id := range []string{"a", "c", "a-NEEDS-b", "b-NEEDS-c", "a/NEEDS/b", "b/NEEDS/c"} {
		mustNode(t, s, id, graph.EntitySunExposure, nil)
	}

	require.NoError(t, s.UpsertEdge(ctx, graph.NewEdge("a", graph.RelNeeds, "b-NEEDS-c", graph.Properties{"n": "first"})))
	require.NoError(t, s.UpsertEdge(ctx, graph.NewEdge("a-NEEDS-b", graph.RelNeeds, "c", graph.Properties{"n": "second"})))
	mustEdge(t, s, "a", graph.RelNeeds, "b/NEEDS/c")
	mustEdge(t, s, "a/NEEDS/b", graph.RelNeeds, "c")

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Edges)

	targets := func(source string) map[string]any {
		t.Helper()
		neighbors, err := s.GetOutgoingNeighbors(ctx, source)
		require.NoError(t, err)
		out := make(map[string]any, len(neighbors))
		for _, n := range neighbors {
			out[n.Node.ID] = n.EdgeProperties["n"]
		}
		return out
	}
	assert.Equal(t, map[string]any{"b-NEEDS-c": "first", "b/NEEDS/c": nil}, targets("a"))
	assert.Equal(t, map[string]any{"c": "second"}, targets("a-NEEDS-b"))
	assert.Equal(t, map[string]any{"c": nil}, targets("a/NEEDS/b"))

	find := func(target string) []string {
		t.Helper()
		found, err := s.FindNodes(ctx, store.NodeQuery{
			Type: graph.EntitySunExposure,
			Conditions: []store.EdgeCondition{
				{Relation: graph.RelNeeds, TargetID: target, TargetType: graph.EntitySunExposure},
			},
		})
		require.NoError(t, err)
		return ids(found)
	}
	assert.Equal(t, []string{"a"}, find("b-NEEDS-c"))
	assert.Equal(t, []string{"a-NEEDS-b", "a/NEEDS/b"}, find("c"))
}

func testDanglingEdge(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "carrot", graph.EntityPlant, nil)
	mustEdge(t, s, "carrot", graph.RelThrivesIn, "sandy")

	neighbors, err := s.GetOutgoingNeighbors(ctx, "carrot")
	require.NoError(t, err)
	assert.Empty(t, neighbors)

	found, err := s.FindNodes(ctx, store.NodeQuery{
		Type: graph.EntityPlant,
		Conditions: []store.EdgeCondition{
			{Relation: graph.RelThrivesIn, TargetID: "sandy", TargetType: graph.EntitySoilType},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, found)

	// The edge resolves once its target exists.
	mustNode(t, s, "sandy", graph.EntitySoilType, graph.Properties{"name": "Sandy"})
	neighbors, err = s.GetOutgoingNeighbors(ctx, "carrot")
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "sandy", neighbors[0].Node.ID)
}

func testGetNodesByType(t *testing.T, s store.GraphStore) {
	ctx := context.Background()

	none, err := s.GetNodesByType(ctx, graph.EntityPlant)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	mustNode(t, s, "pea", graph.EntityPlant, nil)
	mustNode(t, s, "bean", graph.EntityPlant, nil)
	mustNode(t, s, "loam", graph.EntitySoilType, nil)

	plants, err := s.GetNodesByType(ctx, graph.EntityPlant)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bean", "pea"}, ids(plants))
	for _, p := range plants {
		assert.Equal(t, graph.EntityPlant, p.Type)
	}
}

func testOutgoingNeighbors(t *testing.T, s store.GraphStore) {
	ctx := context.Background()

	none, err := s.GetOutgoingNeighbors(ctx, "ghost")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	mustNode(t, s, "potato", graph.EntityPlant, nil)
	mustNode(t, s, "bean", graph.EntityPlant, nil)
	mustNode(t, s, "full-sun", graph.EntitySunExposure, nil)
	mustEdge(t, s, "potato", graph.RelNeeds, "full-sun")
	mustEdge(t, s, "potato", graph.RelGrowsWellWith, "bean")
	// Incoming edges are not neighbors of the target.
	mustEdge(t, s, "bean", graph.RelGrowsWellWith, "potato")

	neighbors, err := s.GetOutgoingNeighbors(ctx, "potato")
	require.NoError(t, err)
	require.Len(t, neighbors, 2)

	got := map[string]graph.RelationType{}
	for _, n := range neighbors {
		got[n.Node.ID] = n.EdgeType
	}
	assert.Equal(t, map[string]graph.RelationType{
		"full-sun": graph.RelNeeds,
		"bean":     graph.RelGrowsWellWith,
	}, got)
}

func testFindNodes(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "clay", graph.EntitySoilType, nil)
	mustNode(t, s, "full-sun", graph.EntitySunExposure, nil)
	mustNode(t, s, "winter", graph.EntitySeason, nil)
	for _, id := range []string{"cabbage", "leek", "lettuce"} {
		mustNode(t, s, id, graph.EntityPlant, nil)
	}
	mustEdge(t, s, "cabbage", graph.RelThrivesIn, "clay")
	mustEdge(t, s, "cabbage", graph.RelNeeds, "full-sun")
	mustEdge(t, s, "cabbage", graph.RelGrowsBestIn, "winter")
	mustEdge(t, s, "leek", graph.RelThrivesIn, "clay")
	mustEdge(t, s, "leek", graph.RelGrowsBestIn, "winter")
	mustEdge(t, s, "lettuce", graph.RelNeeds, "full-sun")

	clay := store.EdgeCondition{Relation: graph.RelThrivesIn, TargetID: "clay", TargetType: graph.EntitySoilType}
	sun := store.EdgeCondition{Relation: graph.RelNeeds, TargetID: "full-sun", TargetType: graph.EntitySunExposure}
	winter := store.EdgeCondition{Relation: graph.RelGrowsBestIn, TargetID: "winter", TargetType: graph.EntitySeason}

	tests := []struct {
		name       string
		conditions []store.EdgeCondition
		want       []string
	}{
		{"no conditions", nil, []string{"cabbage", "leek", "lettuce"}},
		{"single", []store.EdgeCondition{clay}, []string{"cabbage", "leek"}},
		{"two", []store.EdgeCondition{clay, winter}, []string{"cabbage", "leek"}},
		{"all three", []store.EdgeCondition{clay, sun, winter}, []string{"cabbage"}},
		{"duplicate condition", []store.EdgeCondition{sun, sun}, []string{"cabbage", "lettuce"}},
		{"unknown target", []store.EdgeCondition{{Relation: graph.RelThrivesIn, TargetID: "peat", TargetType: graph.EntitySoilType}}, []string{}},
		{"wrong target type", []store.EdgeCondition{{Relation: graph.RelThrivesIn, TargetID: "clay", TargetType: graph.EntitySeason}}, []string{}},
		{"wrong relation", []store.EdgeCondition{{Relation: graph.RelNeeds, TargetID: "clay", TargetType: graph.EntitySoilType}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindNodes(ctx, store.NodeQuery{Type: graph.EntityPlant, Conditions: tt.conditions})
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func testStats(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "pea", graph.EntityPlant, nil)
	mustNode(t, s, "bean", graph.EntityPlant, nil)
	mustNode(t, s, "spring", graph.EntitySeason, nil)
	mustEdge(t, s, "pea", graph.RelGrowsBestIn, "spring")
	mustEdge(t, s, "pea", graph.RelGrowsWellWith, "bean")

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, 2, stats.NodesByType[graph.EntityPlant])
	assert.Equal(t, 1, stats.NodesByType[graph.EntitySeason])
}

func testConcurrentUpserts(t *testing.T, s store.GraphStore) {
	ctx := context.Background()
	mustNode(t, s, "loam", graph.EntitySoilType, nil)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("plant-%d", i)
			errs <- s.UpsertNode(ctx, &graph.Node{ID: id, Type: graph.EntityPlant})
			errs <- s.UpsertEdge(ctx, graph.NewEdge(id, graph.RelThrivesIn, "loam", nil))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	found, err := s.FindNodes(ctx, store.NodeQuery{
		Type:       graph.EntityPlant,
		Conditions: []store.EdgeCondition{{Relation: graph.RelThrivesIn, TargetID: "loam", TargetType: graph.EntitySoilType}},
	})
	require.NoError(t, err)
	assert.Len(t, found, workers)
}
