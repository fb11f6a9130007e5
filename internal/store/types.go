// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package store

import "github.com/plotwise-dev/plotwise/internal/graph"

// EdgeCondition requires an outgoing edge of Relation to the node TargetID,
// which must exist and have type TargetType.
type EdgeCondition struct {
	Relation   graph.RelationType
	TargetID   string
	TargetType graph.EntityType
}

// NodeQuery selects nodes of Type that satisfy all Conditions. With no
// conditions every node of Type matches.
type NodeQuery struct {
	Type       graph.EntityType
	Conditions []EdgeCondition
}

// Stats is a point-in-time summary of the graph.
type Stats struct {
	NodesByType map[graph.EntityType]int `json:"nodes_by_type"`
	Nodes       int                      `json:"nodes"`
	Edges       int                      `json:"edges"`
}
