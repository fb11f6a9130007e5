// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

// Package memory provides an in-process GraphStore. Properties are kept
// as encoded JSON so reads behave like the sqlite backend: every caller
// gets its own copy and numbers come back as float64.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/store"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

var _ store.GraphStore = (*GraphStore)(nil)

func init() {
	store.RegisterBackend("memory", func(store.Config) (store.GraphStore, error) {
		return NewGraphStore(), nil
	})
}

type nodeRecord struct {
	typ   graph.EntityType
	props []byte
}

// edgeKey identifies an edge by its triple.
type edgeKey struct {
	source string
	typ    graph.RelationType
	target string
}

func (k edgeKey) id() string {
	return graph.EdgeID(k.source, k.typ, k.target)
}

// GraphStore is a map-backed GraphStore guarded by a single RWMutex.
type GraphStore struct {
	mu       sync.RWMutex
	nodes    map[string]nodeRecord
	edges    map[edgeKey][]byte // encoded properties
	outgoing map[string]map[edgeKey]struct{}
	closed   bool
}

// NewGraphStore creates an empty store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes:    make(map[string]nodeRecord),
		edges:    make(map[edgeKey][]byte),
		outgoing: make(map[string]map[edgeKey]struct{}),
	}
}

// Close drops all data. Later calls fail.
func (s *GraphStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.nodes = nil
	s.edges = nil
	s.outgoing = nil
	return nil
}

func (s *GraphStore) checkOpen() error {
	if s.closed {
		return pwerr.New(pwerr.CodeStoreDatabaseFailure, "memory graph store is closed")
	}
	return nil
}

func (s *GraphStore) UpsertNode(_ context.Context, node *graph.Node) error {
	props, err := encode(node.Properties)
	if err != nil {
		return pwerr.Wrap(err, pwerr.CodeStoreNodeUpsertSerialization,
			"encoding properties of node "+node.ID, pwerr.FieldNodeID(node.ID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.nodes[node.ID] = nodeRecord{typ: node.Type, props: props}
	return nil
}

func (s *GraphStore) UpsertEdge(_ context.Context, edge *graph.Edge) error {
	key := edgeKey{source: edge.Source, typ: edge.Type, target: edge.Target}

	props, err := encode(edge.Properties)
	if err != nil {
		return pwerr.Wrap(err, pwerr.CodeStoreEdgeUpsertSerialization,
			"encoding properties of edge "+key.id(), pwerr.FieldEdgeID(key.id()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.edges[key] = props
	keys, ok := s.outgoing[edge.Source]
	if !ok {
		keys = make(map[edgeKey]struct{})
		s.outgoing[edge.Source] = keys
	}
	keys[key] = struct{}{}
	return nil
}

func (s *GraphStore) GetNode(_ context.Context, id string) (*graph.Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}

	rec, ok := s.nodes[id]
	if !ok {
		return nil, false, nil
	}
	node, err := rec.toGraph(id)
	if err != nil {
		return nil, false, err
	}
	return node, true, nil
}

func (s *GraphStore) GetNodesByType(_ context.Context, t graph.EntityType) ([]*graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	return s.collect(func(id string, rec nodeRecord) bool {
		return rec.typ == t
	})
}

func (s *GraphStore) GetOutgoingNeighbors(_ context.Context, nodeID string) ([]graph.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	neighbors := make([]graph.Neighbor, 0, len(s.outgoing[nodeID]))
	for key := range s.outgoing[nodeID] {
		target, ok := s.nodes[key.target]
		if !ok {
			continue
		}

		node, err := target.toGraph(key.target)
		if err != nil {
			return nil, err
		}
		props, err := decode(s.edges[key])
		if err != nil {
			return nil, pwerr.Wrap(err, pwerr.CodeStorePropertiesCorrupt,
				"decoding properties of edge "+key.id(), pwerr.FieldEdgeID(key.id()))
		}

		neighbors = append(neighbors, graph.Neighbor{
			Node:           node,
			EdgeType:       key.typ,
			EdgeProperties: props,
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].EdgeType != neighbors[j].EdgeType {
			return neighbors[i].EdgeType < neighbors[j].EdgeType
		}
		return neighbors[i].Node.ID < neighbors[j].Node.ID
	})
	return neighbors, nil
}

func (s *GraphStore) FindNodes(_ context.Context, q store.NodeQuery) ([]*graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	return s.collect(func(id string, rec nodeRecord) bool {
		if rec.typ != q.Type {
			return false
		}
		for _, c := range q.Conditions {
			if _, ok := s.edges[edgeKey{source: id, typ: c.Relation, target: c.TargetID}]; !ok {
				return false
			}
			target, ok := s.nodes[c.TargetID]
			if !ok || target.typ != c.TargetType {
				return false
			}
		}
		return true
	})
}

func (s *GraphStore) Stats(_ context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.Stats{NodesByType: make(map[graph.EntityType]int)}
	if err := s.checkOpen(); err != nil {
		return stats, err
	}

	for _, rec := range s.nodes {
		stats.NodesByType[rec.typ]++
	}
	stats.Nodes = len(s.nodes)
	stats.Edges = len(s.edges)
	return stats, nil
}

// collect returns the matching nodes sorted by id. Callers hold s.mu.
func (s *GraphStore) collect(match func(id string, rec nodeRecord) bool) ([]*graph.Node, error) {
	ids := make([]string, 0)
	for id, rec := range s.nodes {
		if match(id, rec) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	nodes := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		node, err := s.nodes[id].toGraph(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (r nodeRecord) toGraph(id string) (*graph.Node, error) {
	props, err := decode(r.props)
	if err != nil {
		return nil, pwerr.Wrap(err, pwerr.CodeStorePropertiesCorrupt,
			"decoding properties of node "+id, pwerr.FieldNodeID(id))
	}
	return &graph.Node{ID: id, Type: r.typ, Properties: props}, nil
}

func encode(p graph.Properties) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func decode(data []byte) (graph.Properties, error) {
	props := graph.Properties{}
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, err
	}
	if props == nil {
		props = graph.Properties{}
	}
	return props, nil
}
