// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/recommend"
	"github.com/plotwise-dev/plotwise/internal/seed"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// seededDataDir seeds the built-in catalog into a fresh SQLite data dir.
func seededDataDir(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	_, _, err := execute(t, "seed", "--data-dir", dataDir)
	require.NoError(t, err)
	return dataDir
}

func TestSeedCommand(t *testing.T) {
	dataDir := t.TempDir()
	out, _, err := execute(t, "seed", "--data-dir", dataDir)
	require.NoError(t, err)

	ds, err := seed.Default()
	require.NoError(t, err)
	nodes, edges := ds.Counts()
	assert.Contains(t, out, "Seeded")
	assert.Contains(t, out, filepath.Join(dataDir, "plotwise.db"))

	// A second run reports the same counts.
	out, _, err = execute(t, "seed", "--data-dir", dataDir, "--json")
	require.NoError(t, err)
	var report seed.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, nodes, report.NodesWritten)
	assert.Equal(t, edges, report.EdgesWritten)
	assert.Empty(t, report.Dangling)
}

func TestSeedCommand_CustomDatasetWithDanglingRef(t *testing.T) {
	dataset := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(dataset, []byte(`
seasons:
  - id: spring
soil_types:
  - id: loam
plants:
  - id: mint
    soil_types: [loam, marl]
    seasons: [spring]
`), 0o644))

	out, _, err := execute(t, "seed", "--data-dir", t.TempDir(), "--dataset", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 nodes and 3 edges")
	assert.Contains(t, out, "dangling")
	assert.Contains(t, out, "marl")
}

func TestSeedCommand_MissingDataset(t *testing.T) {
	_, _, err := execute(t, "seed", "--data-dir", t.TempDir(), "--dataset", "/nonexistent/catalog.yaml")
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeSeedDatasetReadFailure))
}

func TestPlantsCommand(t *testing.T) {
	dataDir := seededDataDir(t)

	out, _, err := execute(t, "plants", "--data-dir", dataDir, "--soil", "brown-earth", "--season", "spring")
	require.NoError(t, err)
	assert.Contains(t, out, "cabbage")
	assert.Contains(t, out, "Cabbage")
}

func TestPlantsCommand_JSON(t *testing.T) {
	dataDir := seededDataDir(t)

	out, _, err := execute(t, "plants", "--data-dir", dataDir, "--soil", "peat", "--sun", "partial-shade", "--json")
	require.NoError(t, err)

	var plants []recommend.Plant
	require.NoError(t, json.Unmarshal([]byte(out), &plants))
	require.NotEmpty(t, plants)
	ids := make([]string, 0, len(plants))
	for _, p := range plants {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "blueberry")
	assert.IsIncreasing(t, ids)
}

func TestPlantsCommand_NoMatch(t *testing.T) {
	dataDir := seededDataDir(t)

	out, _, err := execute(t, "plants", "--data-dir", dataDir, "--soil", "moon-dust")
	require.NoError(t, err)
	assert.Contains(t, out, "No plants match.")
}

func TestPlantsCommand_EmptyStore(t *testing.T) {
	out, _, err := execute(t, "plants", "--data-dir", t.TempDir(), "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestNodeCommand(t *testing.T) {
	dataDir := seededDataDir(t)

	out, _, err := execute(t, "node", "chalk", "--data-dir", dataDir, "--json")
	require.NoError(t, err)

	var node graph.Node
	require.NoError(t, json.Unmarshal([]byte(out), &node))
	assert.Equal(t, graph.EntitySoilType, node.Type)
	assert.Equal(t, "alkaline", node.Properties["ph"])

	out, _, err = execute(t, "node", "chalk", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "SoilType")
	assert.Contains(t, out, "ph=alkaline")
}

func TestNodeCommand_NotFound(t *testing.T) {
	dataDir := seededDataDir(t)

	_, _, err := execute(t, "node", "triffid", "--data-dir", dataDir)
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeCLINodeNotFound))
	assert.Equal(t, "triffid", pwerr.FieldsOf(err)["node_id"])
}

func TestNodeCommand_RequiresID(t *testing.T) {
	_, _, err := execute(t, "node", "--data-dir", t.TempDir())
	require.Error(t, err)
}

func TestNeighborsCommand(t *testing.T) {
	dataDir := seededDataDir(t)

	out, _, err := execute(t, "neighbors", "basil", "--data-dir", dataDir, "--json")
	require.NoError(t, err)

	var neighbors []graph.Neighbor
	require.NoError(t, json.Unmarshal([]byte(out), &neighbors))
	got := map[string]graph.RelationType{}
	for _, n := range neighbors {
		got[n.Node.ID] = n.EdgeType
	}
	assert.Equal(t, graph.RelGrowsWellWith, got["tomato"])
	assert.Equal(t, graph.RelThrivesIn, got["loam"])

	_, _, err = execute(t, "neighbors", "triffid", "--data-dir", dataDir)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeCLINodeNotFound))
}

func TestNeighborsCommand_NoEdges(t *testing.T) {
	dataDir := seededDataDir(t)

	out, _, err := execute(t, "neighbors", "spring", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "No outgoing edges.")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "plotwise.yaml")

	out, _, err := execute(t, "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to "+path)
	require.FileExists(t, path)

	require.NoError(t, os.WriteFile(path, []byte("data_dir: ./mine\n"), 0o644))
	out, _, err = execute(t, "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data_dir: ./mine\n", string(data))

	_, _, err = execute(t, "init", "--path", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "data_dir: ./mine\n", string(data))
}
