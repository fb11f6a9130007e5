// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

// Package graph defines the property graph model shared by the store
// backends, the seeder and the recommendation engine.
package graph

import (
	"fmt"
	"net/url"
	"sort"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// EntityType discriminates nodes. The set is closed.
type EntityType string

const (
	EntityPlant       EntityType = "Plant"
	EntitySoilType    EntityType = "SoilType"
	EntitySunExposure EntityType = "SunExposure"
	EntitySeason      EntityType = "Season"
)

var validEntityTypes = map[EntityType]bool{
	EntityPlant:       true,
	EntitySoilType:    true,
	EntitySunExposure: true,
	EntitySeason:      true,
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	return validEntityTypes[t]
}

// EntityTypes returns every entity type, reference types first.
func EntityTypes() []EntityType {
	return []EntityType{EntitySeason, EntitySoilType, EntitySunExposure, EntityPlant}
}

// ParseEntityType converts user input into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", pwerr.New(pwerr.CodeGraphEntityTypeInvalid,
			fmt.Sprintf("unknown entity type %q, want one of %v", s, EntityTypes()))
	}
	return t, nil
}

// RelationType labels a directed edge. The set is closed.
type RelationType string

const (
	RelThrivesIn     RelationType = "THRIVES_IN"
	RelNeeds         RelationType = "NEEDS"
	RelGrowsBestIn   RelationType = "GROWS_BEST_IN"
	RelGrowsWellWith RelationType = "GROWS_WELL_WITH"
)

var validRelationTypes = map[RelationType]bool{
	RelThrivesIn:     true,
	RelNeeds:         true,
	RelGrowsBestIn:   true,
	RelGrowsWellWith: true,
}

// Valid reports whether r is one of the known relation types.
func (r RelationType) Valid() bool {
	return validRelationTypes[r]
}

// RelationTypes returns every relation type.
func RelationTypes() []RelationType {
	return []RelationType{RelThrivesIn, RelNeeds, RelGrowsBestIn, RelGrowsWellWith}
}

// ParseRelationType converts user input into a RelationType.
func ParseRelationType(s string) (RelationType, error) {
	r := RelationType(s)
	if !r.Valid() {
		return "", pwerr.New(pwerr.CodeGraphRelationTypeInvalid,
			fmt.Sprintf("unknown relation type %q, want one of %v", s, RelationTypes()))
	}
	return r, nil
}

// Properties is the schema-less property bag carried by nodes and edges.
// Values must be JSON-serializable.
type Properties map[string]any

// Clone returns a shallow copy; nil becomes an empty map.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the value at key if it is a string.
func (p Properties) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is a typed entity with a globally unique id.
type Node struct {
	ID         string     `json:"id"`
	Type       EntityType `json:"type"`
	Properties Properties `json:"properties"`
}

// Edge is a typed, directed relationship between two node ids. The target
// is not required to exist.
type Edge struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	Type       RelationType `json:"type"`
	Properties Properties   `json:"properties"`
}

// EdgeID derives the stable identifier of the (source, type, target)
// triple as "source/TYPE/target". Each part is path-escaped, so no two
// distinct triples share an id.
func EdgeID(source string, rel RelationType, target string) string {
	return url.PathEscape(source) + "/" + url.PathEscape(string(rel)) + "/" + url.PathEscape(target)
}

// NewEdge builds an edge with its derived id.
func NewEdge(source string, rel RelationType, target string, props Properties) *Edge {
	return &Edge{
		ID:         EdgeID(source, rel, target),
		Source:     source,
		Target:     target,
		Type:       rel,
		Properties: props,
	}
}

// Neighbor is the result of a 1-hop outgoing lookup: the target node plus
// the edge that reached it.
type Neighbor struct {
	Node           *Node        `json:"node"`
	EdgeType       RelationType `json:"edge_type"`
	EdgeProperties Properties   `json:"edge_properties"`
}
