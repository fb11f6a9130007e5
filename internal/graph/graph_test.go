// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package graph_test

import (
	"testing"

	"github.com/plotwise-dev/plotwise/internal/graph"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeID_Deterministic(t *testing.T) {
	a := graph.EdgeID("cabbage", graph.RelThrivesIn, "brown-earth")
	b := graph.EdgeID("cabbage", graph.RelThrivesIn, "brown-earth")
	assert.Equal(t, a, b)
	assert.Equal(t, "cabbage/THRIVES_IN/brown-earth", a)

	// Direction and relation both participate in the id.
	assert.NotEqual(t, a, graph.EdgeID("brown-earth", graph.RelThrivesIn, "cabbage"))
	assert.NotEqual(t, a, graph.EdgeID("cabbage", graph.RelNeeds, "brown-earth"))
}

func TestEdgeID_DistinctTriples(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]string
	}{
		{"separator in target vs source", [3]string{"a", "NEEDS", "b/NEEDS/c"}, [3]string{"a/NEEDS/b", "NEEDS", "c"}},
		{"hyphenated ids", [3]string{"a", "NEEDS", "b-NEEDS-c"}, [3]string{"a-NEEDS-b", "NEEDS", "c"}},
		{"escaped form as literal id", [3]string{"a%2Fb", "NEEDS", "c"}, [3]string{"a/b", "NEEDS", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := graph.EdgeID(tt.a[0], graph.RelationType(tt.a[1]), tt.a[2])
			b := graph.EdgeID(tt.b[0], graph.RelationType(tt.b[1]), tt.b[2])
			assert.NotEqual(t, a, b)
		})
	}
}

func TestNewEdge_SetsDerivedID(t *testing.T) {
	e := graph.NewEdge("leek", graph.RelGrowsBestIn, "autumn", nil)
	assert.Equal(t, graph.EdgeID("leek", graph.RelGrowsBestIn, "autumn"), e.ID)
	assert.Equal(t, "leek", e.Source)
	assert.Equal(t, "autumn", e.Target)
}

func TestParseEntityType(t *testing.T) {
	for _, et := range graph.EntityTypes() {
		got, err := graph.ParseEntityType(string(et))
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}

	_, err := graph.ParseEntityType("plant")
	require.Error(t, err, "entity types are case-sensitive")
	assert.True(t, pwerr.IsInvalidInput(err))
}

func TestParseRelationType(t *testing.T) {
	for _, rt := range graph.RelationTypes() {
		got, err := graph.ParseRelationType(string(rt))
		require.NoError(t, err)
		assert.Equal(t, rt, got)
	}

	_, err := graph.ParseRelationType("LIKES")
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeGraphRelationTypeInvalid))
}

func TestEntityTypes_ReferenceTypesFirst(t *testing.T) {
	types := graph.EntityTypes()
	require.Len(t, types, 4)
	assert.Equal(t, graph.EntityPlant, types[len(types)-1])
}

func TestProperties_Helpers(t *testing.T) {
	var nilProps graph.Properties
	clone := nilProps.Clone()
	assert.NotNil(t, clone)
	assert.Empty(t, clone)

	p := graph.Properties{"name": "Cabbage", "spacing_cm": 45.0}
	assert.Equal(t, "Cabbage", p.String("name"))
	assert.Equal(t, "", p.String("spacing_cm"))
	assert.Equal(t, []string{"name", "spacing_cm"}, p.Keys())

	c := p.Clone()
	c["name"] = "Kale"
	assert.Equal(t, "Cabbage", p["name"])
}
