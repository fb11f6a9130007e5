// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

// Package seed loads the static plant catalog and writes it into a
// GraphStore.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plotwise-dev/plotwise/internal/graph"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// Reference is a Season, SoilType or SunExposure entry.
type Reference struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Properties  map[string]any `yaml:"properties,omitempty"`
}

// PlantRecord is a catalog plant with its cross-references by id.
type PlantRecord struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Properties  map[string]any `yaml:"properties,omitempty"`
	SoilTypes   []string       `yaml:"soil_types,omitempty"`
	SunExposure []string       `yaml:"sun_exposure,omitempty"`
	Seasons     []string       `yaml:"seasons,omitempty"`
	Companions  []string       `yaml:"companions,omitempty"`
}

// Dataset is the full seed input.
type Dataset struct {
	Seasons      []Reference   `yaml:"seasons"`
	SoilTypes    []Reference   `yaml:"soil_types"`
	SunExposures []Reference   `yaml:"sun_exposures"`
	Plants       []PlantRecord `yaml:"plants"`
}

// DanglingRef is a plant cross-reference to an id that the dataset does
// not define with the expected type.
type DanglingRef struct {
	PlantID  string             `json:"plant_id"`
	Relation graph.RelationType `json:"relation"`
	TargetID string             `json:"target_id"`
}

func (d DanglingRef) String() string {
	return graph.EdgeID(d.PlantID, d.Relation, d.TargetID)
}

// Default returns the embedded UK kitchen-garden catalog.
func Default() (*Dataset, error) {
	return Parse(defaultCatalog)
}

// Load reads path, or returns the embedded catalog when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// LoadFile reads and parses a YAML dataset.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pwerr.Wrapf(err, pwerr.CodeSeedDatasetReadFailure, "reading dataset %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML dataset. Unknown keys are rejected.
func Parse(data []byte) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, pwerr.Wrapf(err, pwerr.CodeSeedDatasetInvalidFormat, "parsing dataset")
	}
	return &ds, nil
}

// Validate reports every empty or duplicated id. Node ids share one
// namespace, so a Season and a Plant may not use the same id. Unknown
// cross-references are not errors; see DanglingRefs.
func (ds *Dataset) Validate() []error {
	var errs []error
	seen := make(map[string]string)

	check := func(kind string, i int, id string) {
		if id == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: id is required", kind, i))
			return
		}
		if prev, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%s[%d]: duplicate id %q (already used by %s)", kind, i, id, prev))
			return
		}
		seen[id] = kind
	}

	for i, r := range ds.Seasons {
		check("seasons", i, r.ID)
	}
	for i, r := range ds.SoilTypes {
		check("soil_types", i, r.ID)
	}
	for i, r := range ds.SunExposures {
		check("sun_exposures", i, r.ID)
	}
	for i, p := range ds.Plants {
		check("plants", i, p.ID)
	}

	return errs
}

// DanglingRefs lists plant cross-references whose target is not defined
// in the dataset under the type the relation expects. Seeding still
// writes these edges.
func (ds *Dataset) DanglingRefs() []DanglingRef {
	ids := func(refs []Reference) map[string]struct{} {
		m := make(map[string]struct{}, len(refs))
		for _, r := range refs {
			m[r.ID] = struct{}{}
		}
		return m
	}
	known := map[graph.RelationType]map[string]struct{}{
		graph.RelThrivesIn:     ids(ds.SoilTypes),
		graph.RelNeeds:         ids(ds.SunExposures),
		graph.RelGrowsBestIn:   ids(ds.Seasons),
		graph.RelGrowsWellWith: make(map[string]struct{}, len(ds.Plants)),
	}
	for _, p := range ds.Plants {
		known[graph.RelGrowsWellWith][p.ID] = struct{}{}
	}

	var dangling []DanglingRef
	for _, p := range ds.Plants {
		for _, e := range p.edges() {
			if _, ok := known[e.Type][e.Target]; !ok {
				dangling = append(dangling, DanglingRef{PlantID: p.ID, Relation: e.Type, TargetID: e.Target})
			}
		}
	}
	return dangling
}

// Counts returns the number of nodes and edges the dataset describes.
func (ds *Dataset) Counts() (nodes, edges int) {
	nodes = len(ds.Seasons) + len(ds.SoilTypes) + len(ds.SunExposures) + len(ds.Plants)
	for _, p := range ds.Plants {
		edges += len(p.edges())
	}
	return nodes, edges
}

func (r Reference) node(t graph.EntityType) *graph.Node {
	props := graph.Properties(r.Properties).Clone()
	if r.Name != "" {
		props["name"] = r.Name
	}
	if r.Description != "" {
		props["description"] = r.Description
	}
	return &graph.Node{ID: r.ID, Type: t, Properties: props}
}

func (p PlantRecord) node() *graph.Node {
	props := graph.Properties(p.Properties).Clone()
	if p.Name != "" {
		props["name"] = p.Name
	}
	return &graph.Node{ID: p.ID, Type: graph.EntityPlant, Properties: props}
}

// edges returns the plant's outgoing edges in relation order. A target
// listed twice under one relation yields one edge.
func (p PlantRecord) edges() []*graph.Edge {
	groups := []struct {
		rel     graph.RelationType
		targets []string
	}{
		{graph.RelThrivesIn, p.SoilTypes},
		{graph.RelNeeds, p.SunExposure},
		{graph.RelGrowsBestIn, p.Seasons},
		{graph.RelGrowsWellWith, p.Companions},
	}

	var edges []*graph.Edge
	for _, g := range groups {
		seen := make(map[string]struct{}, len(g.targets))
		for _, target := range g.targets {
			if _, dup := seen[target]; dup {
				continue
			}
			seen[target] = struct{}{}
			edges = append(edges, graph.NewEdge(p.ID, g.rel, target, nil))
		}
	}
	return edges
}
