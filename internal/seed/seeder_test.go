// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package seed_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/metrics"
	"github.com/plotwise-dev/plotwise/internal/recommend"
	"github.com/plotwise-dev/plotwise/internal/seed"
	"github.com/plotwise-dev/plotwise/internal/store"
	"github.com/plotwise-dev/plotwise/internal/store/memory"
	"github.com/plotwise-dev/plotwise/internal/store/sqlite"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func newSQLiteStore(t *testing.T) store.GraphStore {
	t.Helper()
	gs, err := sqlite.NewGraphStore(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gs.Close() })
	return gs
}

// snapshot reads every node and its outgoing edges.
func snapshot(t *testing.T, s store.GraphStore) map[string][]graph.Neighbor {
	t.Helper()
	ctx := context.Background()
	out := make(map[string][]graph.Neighbor)
	for _, typ := range graph.EntityTypes() {
		nodes, err := s.GetNodesByType(ctx, typ)
		require.NoError(t, err)
		for _, n := range nodes {
			neighbors, err := s.GetOutgoingNeighbors(ctx, n.ID)
			require.NoError(t, err)
			out[n.ID] = neighbors
		}
	}
	return out
}

func TestSeeder_CabbageScenario(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	ds := &seed.Dataset{
		Seasons:      []seed.Reference{{ID: "spring", Name: "Spring"}},
		SoilTypes:    []seed.Reference{{ID: "brown-earth", Name: "Brown earth"}},
		SunExposures: []seed.Reference{{ID: "full-sun", Name: "Full sun"}},
		Plants: []seed.PlantRecord{{
			ID:          "cabbage",
			Name:        "Cabbage",
			Properties:  map[string]any{"family": "Brassicaceae"},
			SoilTypes:   []string{"brown-earth"},
			SunExposure: []string{"full-sun"},
			Seasons:     []string{"spring"},
		}},
	}

	report, err := seed.NewSeeder(s).Run(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 4, report.NodesWritten)
	assert.Equal(t, 3, report.EdgesWritten)
	assert.Empty(t, report.Dangling)

	plants, err := recommend.New(s).FindPlantsBySuitability(ctx, recommend.Criteria{SoilType: "brown-earth", Season: "spring"})
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "cabbage", plants[0].ID)
	assert.Equal(t, "Cabbage", plants[0].Properties["name"])
	assert.Equal(t, "Brassicaceae", plants[0].Properties["family"])
}

func TestSeeder_WritesNameAndDescription(t *testing.T) {
	ctx := context.Background()
	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()

	ds := &seed.Dataset{
		SoilTypes: []seed.Reference{{
			ID:          "chalk",
			Name:        "Chalk",
			Description: "Shallow and alkaline.",
			Properties:  map[string]any{"ph": "alkaline"},
		}},
	}
	_, err := seed.NewSeeder(s).Run(ctx, ds)
	require.NoError(t, err)

	got, ok, err := s.GetNode(ctx, "chalk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, graph.EntitySoilType, got.Type)
	assert.Equal(t, graph.Properties{
		"name":        "Chalk",
		"description": "Shallow and alkaline.",
		"ph":          "alkaline",
	}, got.Properties)

	// The dataset record is not modified by seeding.
	assert.NotContains(t, ds.SoilTypes[0].Properties, "name")
}

func TestSeeder_Idempotent(t *testing.T) {
	ctx := context.Background()
	ds, err := seed.Default()
	require.NoError(t, err)

	for name, s := range map[string]store.GraphStore{
		"sqlite": newSQLiteStore(t),
		"memory": memory.NewGraphStore(),
	} {
		t.Run(name, func(t *testing.T) {
			seeder := seed.NewSeeder(s)

			first, err := seeder.Run(ctx, ds)
			require.NoError(t, err)
			statsOnce, err := s.Stats(ctx)
			require.NoError(t, err)
			before := snapshot(t, s)

			second, err := seeder.Run(ctx, ds)
			require.NoError(t, err)
			statsTwice, err := s.Stats(ctx)
			require.NoError(t, err)

			assert.NotEqual(t, first.RunID, second.RunID)
			assert.Equal(t, statsOnce, statsTwice)
			assert.Equal(t, before, snapshot(t, s))

			wantNodes, wantEdges := ds.Counts()
			assert.Equal(t, wantNodes, statsTwice.Nodes)
			assert.Equal(t, wantEdges, statsTwice.Edges)
		})
	}
}

func TestSeeder_DanglingReferencesAreWrittenAndReported(t *testing.T) {
	ctx := context.Background()
	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	ds := &seed.Dataset{
		SoilTypes: []seed.Reference{{ID: "clay"}},
		Plants: []seed.PlantRecord{{
			ID:         "leek",
			SoilTypes:  []string{"clay"},
			Companions: []string{"carrot"},
		}},
	}

	report, err := seed.NewSeeder(s, seed.WithLogger(logger)).Run(ctx, ds)
	require.NoError(t, err)
	require.Len(t, report.Dangling, 1)
	assert.Equal(t, "carrot", report.Dangling[0].TargetID)
	assert.Equal(t, 2, report.EdgesWritten)
	assert.Contains(t, logs.String(), "dangling reference in dataset")
	assert.Contains(t, logs.String(), "target=carrot")

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Edges, "dangling edge is stored")

	// Seeding the missing plant later resolves the edge.
	_, err = seed.NewSeeder(s).Run(ctx, &seed.Dataset{Plants: []seed.PlantRecord{{ID: "carrot"}}})
	require.NoError(t, err)
	companions, err := recommend.New(s).Companions(ctx, "leek")
	require.NoError(t, err)
	require.Len(t, companions, 1)
	assert.Equal(t, "carrot", companions[0].ID)
}

func TestSeeder_RepeatedReferenceCountsOnce(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	ds := &seed.Dataset{
		SoilTypes: []seed.Reference{{ID: "clay"}},
		Seasons:   []seed.Reference{{ID: "clay-season"}},
		Plants: []seed.PlantRecord{{
			ID:        "leek",
			SoilTypes: []string{"clay", "clay"},
			Seasons:   []string{"clay-season", "clay-season"},
			// The same target under another relation is a separate edge.
			Companions: []string{"clay"},
		}},
	}

	_, wantEdges := ds.Counts()
	assert.Equal(t, 3, wantEdges)

	report, err := seed.NewSeeder(s).Run(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, wantEdges, report.EdgesWritten)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.EdgesWritten, stats.Edges)
}

func TestSeeder_StaleEdgesRemain(t *testing.T) {
	ctx := context.Background()
	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()
	seeder := seed.NewSeeder(s)

	v1 := &seed.Dataset{
		Seasons: []seed.Reference{{ID: "spring"}, {ID: "summer"}},
		Plants:  []seed.PlantRecord{{ID: "pea", Seasons: []string{"spring", "summer"}}},
	}
	v2 := &seed.Dataset{
		Seasons: []seed.Reference{{ID: "spring"}, {ID: "summer"}},
		Plants:  []seed.PlantRecord{{ID: "pea", Seasons: []string{"spring"}}},
	}

	_, err := seeder.Run(ctx, v1)
	require.NoError(t, err)
	_, err = seeder.Run(ctx, v2)
	require.NoError(t, err)

	plants, err := recommend.New(s).FindPlantsBySuitability(ctx, recommend.Criteria{Season: "summer"})
	require.NoError(t, err)
	assert.Len(t, plants, 1, "edges removed from a dataset stay in the store")
}

func TestSeeder_InvalidDataset(t *testing.T) {
	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()

	ds := &seed.Dataset{Plants: []seed.PlantRecord{{ID: "pea"}, {ID: "pea"}}}
	_, err := seed.NewSeeder(s).Run(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeSeedDatasetInvalid))
	assert.Contains(t, err.Error(), `duplicate id "pea"`)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Nodes, "nothing is written for an invalid dataset")
}

func TestSeeder_WriteFailure(t *testing.T) {
	ctx := context.Background()
	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()

	ds := &seed.Dataset{
		Plants: []seed.PlantRecord{{ID: "bad", Properties: map[string]any{"ch": make(chan int)}}},
	}
	_, err := seed.NewSeeder(s).Run(ctx, ds)
	require.Error(t, err)
	assert.True(t, pwerr.IsSerialization(err), "store classification survives wrapping")
	assert.Equal(t, "bad", pwerr.FieldsOf(err)["node_id"])
}

func TestSeeder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()

	ds, err := seed.Default()
	require.NoError(t, err)

	report, err := seed.NewSeeder(s).Run(ctx, ds)
	require.Error(t, err)
	assert.Zero(t, report.NodesWritten)
}

func TestSeeder_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	s := memory.NewGraphStore()
	defer func() { _ = s.Close() }()

	ds := &seed.Dataset{
		Seasons: []seed.Reference{{ID: "spring", Name: "Spring"}},
		Plants:  []seed.PlantRecord{{ID: "pea", Seasons: []string{"spring"}}, {ID: "pea"}},
	}
	seeder := seed.NewSeeder(s, seed.WithMetrics(m))

	_, err := seeder.Run(context.Background(), ds)
	require.Error(t, err)

	ds.Plants = ds.Plants[:1]
	_, err = seeder.Run(context.Background(), ds)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `plotwise_seed_runs_total{status="error"} 1`)
	assert.Contains(t, body, `plotwise_seed_runs_total{status="ok"} 1`)
	assert.Contains(t, body, `plotwise_seed_writes_total{kind="node"} 2`)
	assert.Contains(t, body, `plotwise_seed_writes_total{kind="edge"} 1`)
}
