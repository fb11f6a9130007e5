// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// Compile-time interface check.
var _ store.GraphStore = (*GraphStore)(nil)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// GraphStore implements store.GraphStore backed by SQLite, keeping nodes
// and edges in two tables with their properties as JSON text.
type GraphStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewGraphStore opens (or creates) a SQLite database at dbPath and
// initialises the nodes and edges tables with their secondary indexes.
func NewGraphStore(dbPath string) (*GraphStore, error) {
	if dbPath == "" {
		return nil, pwerr.New(pwerr.CodeStoreInvalidInput, "sqlite database path is required")
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}
	if dbPath == MemoryPath {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrateGraph(db); err != nil {
		_ = db.Close()
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "migrating graph tables: %w", err)
	}

	return &GraphStore{db: db, logger: slog.Default()}, nil
}

func migrateGraph(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);

-- No foreign keys: edges may reference nodes that are seeded later.
CREATE TABLE IF NOT EXISTS edges (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	target     TEXT NOT NULL,
	type       TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE(source, type, target)
);

CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source, type, target);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
CREATE INDEX IF NOT EXISTS idx_edges_type_target ON edges(type, target);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (g *GraphStore) Close() error {
	return g.db.Close()
}

// UpsertNode inserts the node or replaces the type and properties of an
// existing node with the same id.
func (g *GraphStore) UpsertNode(ctx context.Context, node *graph.Node) error {
	props, err := encodeProperties(node.Properties)
	if err != nil {
		return pwerr.Wrap(err, pwerr.CodeStoreNodeUpsertSerialization,
			"encoding properties of node "+node.ID, pwerr.FieldNodeID(node.ID))
	}

	now := formatTime(time.Now())
	const q = `INSERT INTO nodes (id, type, properties, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	type = excluded.type,
	properties = excluded.properties,
	updated_at = excluded.updated_at`

	if _, err := g.db.ExecContext(ctx, q, node.ID, string(node.Type), props, now, now); err != nil {
		return pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "upserting node %s: %w", node.ID, err)
	}
	return nil
}

// UpsertEdge inserts the edge or replaces the properties of the existing
// edge with the same (source, type, target) triple. The edge id is always
// derived from the triple; a caller-supplied id is ignored.
func (g *GraphStore) UpsertEdge(ctx context.Context, edge *graph.Edge) error {
	id := graph.EdgeID(edge.Source, edge.Type, edge.Target)

	props, err := encodeProperties(edge.Properties)
	if err != nil {
		return pwerr.Wrap(err, pwerr.CodeStoreEdgeUpsertSerialization,
			"encoding properties of edge "+id, pwerr.FieldEdgeID(id))
	}

	now := formatTime(time.Now())
	const q = `INSERT INTO edges (id, source, target, type, properties, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source, type, target) DO UPDATE SET
	id = excluded.id,
	properties = excluded.properties,
	updated_at = excluded.updated_at`

	if _, err := g.db.ExecContext(ctx, q, id, edge.Source, edge.Target, string(edge.Type), props, now, now); err != nil {
		return pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "upserting edge %s: %w", id, err)
	}
	return nil
}

// GetNode looks up a node by id. A missing node is reported through ok.
func (g *GraphStore) GetNode(ctx context.Context, id string) (*graph.Node, bool, error) {
	const q = `SELECT id, type, properties FROM nodes WHERE id = ?`

	var row nodeRow
	err := g.db.QueryRowContext(ctx, q, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "getting node %s: %w", id, err)
	}

	node, err := row.toGraph()
	if err != nil {
		return nil, false, err
	}
	return node, true, nil
}

// GetNodesByType returns all nodes whose type equals t.
func (g *GraphStore) GetNodesByType(ctx context.Context, t graph.EntityType) ([]*graph.Node, error) {
	const q = `SELECT id, type, properties FROM nodes WHERE type = ? ORDER BY id`

	rows, err := g.db.QueryContext(ctx, q, string(t))
	if err != nil {
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "listing %s nodes: %w", t, err)
	}
	return scanNodes(rows)
}

// GetOutgoingNeighbors returns the targets of all outgoing edges of nodeID
// together with each edge's type and properties. Dangling edges drop out
// of the inner join.
func (g *GraphStore) GetOutgoingNeighbors(ctx context.Context, nodeID string) ([]graph.Neighbor, error) {
	const q = `SELECT n.id, n.type, n.properties, e.id, e.type, e.properties
FROM edges e
JOIN nodes n ON n.id = e.target
WHERE e.source = ?
ORDER BY e.type, n.id`

	rows, err := g.db.QueryContext(ctx, q, nodeID)
	if err != nil {
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "getting neighbors of %s: %w", nodeID, err)
	}
	defer func() { _ = rows.Close() }()

	neighbors := make([]graph.Neighbor, 0)
	for rows.Next() {
		var (
			nr        nodeRow
			edgeID    string
			edgeType  string
			edgeProps string
		)
		if err := rows.Scan(&nr.ID, &nr.Type, &nr.Properties, &edgeID, &edgeType, &edgeProps); err != nil {
			return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "scanning neighbor row: %w", err)
		}

		node, err := nr.toGraph()
		if err != nil {
			return nil, err
		}
		props, err := decodeProperties(edgeProps)
		if err != nil {
			return nil, pwerr.Wrap(err, pwerr.CodeStorePropertiesCorrupt,
				"decoding properties of edge "+edgeID, pwerr.FieldEdgeID(edgeID))
		}

		neighbors = append(neighbors, graph.Neighbor{
			Node:           node,
			EdgeType:       graph.RelationType(edgeType),
			EdgeProperties: props,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "iterating neighbors: %w", err)
	}

	return neighbors, nil
}

// FindNodes runs a single query over nodes of q.Type with one EXISTS
// clause per condition. The target of each condition must be an existing
// node of the condition's target type.
func (g *GraphStore) FindNodes(ctx context.Context, q store.NodeQuery) ([]*graph.Node, error) {
	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(`SELECT n.id, n.type, n.properties FROM nodes n WHERE n.type = ?`)
	args = append(args, string(q.Type))

	for _, c := range q.Conditions {
		qb.WriteString(`
	AND EXISTS (
		SELECT 1 FROM edges e
		JOIN nodes t ON t.id = e.target
		WHERE e.source = n.id AND e.type = ? AND e.target = ? AND t.type = ?
	)`)
		args = append(args, string(c.Relation), c.TargetID, string(c.TargetType))
	}
	qb.WriteString(`
ORDER BY n.id`)

	rows, err := g.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "finding %s nodes: %w", q.Type, err)
	}

	nodes, err := scanNodes(rows)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "find nodes",
		slog.String("type", string(q.Type)),
		slog.Int("conditions", len(q.Conditions)),
		slog.Int("matches", len(nodes)),
	)
	return nodes, nil
}

// Stats counts nodes per type and edges.
func (g *GraphStore) Stats(ctx context.Context) (store.Stats, error) {
	stats := store.Stats{NodesByType: make(map[graph.EntityType]int)}

	// Edges first: the node rows below hold the only :memory: connection
	// until they are closed.
	if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&stats.Edges); err != nil {
		return stats, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "counting edges: %w", err)
	}

	rows, err := g.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM nodes GROUP BY type`)
	if err != nil {
		return stats, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "counting nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return stats, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "scanning node count: %w", err)
		}
		stats.NodesByType[graph.EntityType(t)] = n
		stats.Nodes += n
	}
	if err := rows.Err(); err != nil {
		return stats, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "iterating node counts: %w", err)
	}

	return stats, nil
}

func scanNodes(rows *sql.Rows) ([]*graph.Node, error) {
	defer func() { _ = rows.Close() }()

	nodes := make([]*graph.Node, 0)
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "scanning node row: %w", err)
		}
		node, err := row.toGraph()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, pwerr.Errorf(pwerr.CodeStoreDatabaseFailure, "iterating nodes: %w", err)
	}
	return nodes, nil
}
