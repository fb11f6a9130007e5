// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package sqlite_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/store"
	"github.com/plotwise-dev/plotwise/internal/store/sqlite"
	"github.com/plotwise-dev/plotwise/internal/store/storetest"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func TestGraphStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.GraphStore {
		gs, err := sqlite.NewGraphStore(testDBPath(t, "graph"))
		require.NoError(t, err)
		return gs
	})
}

func TestGraphStore_InMemoryConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.GraphStore {
		gs, err := sqlite.NewGraphStore(sqlite.MemoryPath)
		require.NoError(t, err)
		return gs
	})
}

func TestNewGraphStore_EmptyPath(t *testing.T) {
	_, err := sqlite.NewGraphStore("")
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeStoreInvalidInput))
}

func TestNewGraphStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "garden.db")

	gs, err := sqlite.NewGraphStore(path)
	require.NoError(t, err)
	defer func() { _ = gs.Close() }()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewGraphStore_PathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.db")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := sqlite.NewGraphStore(path)
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeStoreDatabaseFailure))
}

func TestGraphStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "reopen")

	gs, err := sqlite.NewGraphStore(path)
	require.NoError(t, err)
	require.NoError(t, gs.UpsertNode(ctx, &graph.Node{ID: "leek", Type: graph.EntityPlant, Properties: graph.Properties{"name": "Leek"}}))
	require.NoError(t, gs.UpsertNode(ctx, &graph.Node{ID: "clay", Type: graph.EntitySoilType}))
	require.NoError(t, gs.UpsertEdge(ctx, graph.NewEdge("leek", graph.RelThrivesIn, "clay", nil)))
	require.NoError(t, gs.Close())

	gs, err = sqlite.NewGraphStore(path)
	require.NoError(t, err)
	defer func() { _ = gs.Close() }()

	got, ok, err := gs.GetNode(ctx, "leek")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Leek", got.Properties["name"])

	neighbors, err := gs.GetOutgoingNeighbors(ctx, "leek")
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "clay", neighbors[0].Node.ID)
}

// corrupt rewrites a properties column behind the store's back.
func corrupt(t *testing.T, path, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.Exec(query, args...)
	require.NoError(t, err)
}

func TestGraphStore_CorruptNodeProperties(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "corrupt-node")

	gs, err := sqlite.NewGraphStore(path)
	require.NoError(t, err)
	defer func() { _ = gs.Close() }()

	require.NoError(t, gs.UpsertNode(ctx, &graph.Node{ID: "chalk", Type: graph.EntitySoilType}))
	corrupt(t, path, `UPDATE nodes SET properties = ? WHERE id = ?`, "{not json", "chalk")

	_, ok, err := gs.GetNode(ctx, "chalk")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, pwerr.IsCorrupt(err))
	assert.False(t, pwerr.IsNotFound(err), "corrupt data must not look like a missing node")
	assert.Equal(t, "chalk", pwerr.FieldsOf(err)["node_id"])

	_, err = gs.GetNodesByType(ctx, graph.EntitySoilType)
	require.Error(t, err)
	assert.True(t, pwerr.IsCorrupt(err))
}

func TestGraphStore_CorruptEdgeProperties(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "corrupt-edge")

	gs, err := sqlite.NewGraphStore(path)
	require.NoError(t, err)
	defer func() { _ = gs.Close() }()

	require.NoError(t, gs.UpsertNode(ctx, &graph.Node{ID: "pea", Type: graph.EntityPlant}))
	require.NoError(t, gs.UpsertNode(ctx, &graph.Node{ID: "spring", Type: graph.EntitySeason}))
	require.NoError(t, gs.UpsertEdge(ctx, graph.NewEdge("pea", graph.RelGrowsBestIn, "spring", nil)))
	corrupt(t, path, `UPDATE edges SET properties = ? WHERE id = ?`, "[1,", "pea/GROWS_BEST_IN/spring")

	_, err = gs.GetOutgoingNeighbors(ctx, "pea")
	require.Error(t, err)
	assert.True(t, pwerr.IsCorrupt(err))
	assert.Equal(t, "pea/GROWS_BEST_IN/spring", pwerr.FieldsOf(err)["edge_id"])
}

func TestGraphStore_NullPropertiesReadBackEmpty(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t, "null-props")

	gs, err := sqlite.NewGraphStore(path)
	require.NoError(t, err)
	defer func() { _ = gs.Close() }()

	require.NoError(t, gs.UpsertNode(ctx, &graph.Node{ID: "loam", Type: graph.EntitySoilType}))
	corrupt(t, path, `UPDATE nodes SET properties = 'null' WHERE id = ?`, "loam")

	got, ok, err := gs.GetNode(ctx, "loam")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, got.Properties)
	assert.Empty(t, got.Properties)
}

func TestOpen_SQLiteBackend(t *testing.T) {
	gs, err := store.Open(store.Config{Backend: "sqlite", Path: testDBPath(t, "factory")})
	require.NoError(t, err)
	require.NoError(t, gs.Close())
}
