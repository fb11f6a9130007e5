// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package recommend

import (
	"github.com/plotwise-dev/plotwise/internal/graph"
	"github.com/plotwise-dev/plotwise/internal/store"
)

// FilterKey names one optional criterion of a suitability query.
type FilterKey int

const (
	FilterSoilType FilterKey = iota
	FilterSunExposure
	FilterSeason

	filterKeyCount
)

type filterRule struct {
	name       string
	relation   graph.RelationType
	targetType graph.EntityType
}

// filterRules maps every FilterKey to the edge a matching plant must have.
var filterRules = [...]filterRule{
	FilterSoilType:    {name: "soilType", relation: graph.RelThrivesIn, targetType: graph.EntitySoilType},
	FilterSunExposure: {name: "sunExposure", relation: graph.RelNeeds, targetType: graph.EntitySunExposure},
	FilterSeason:      {name: "season", relation: graph.RelGrowsBestIn, targetType: graph.EntitySeason},
}

// Fails to compile when a FilterKey has no rule or a rule has no key.
var _ = [1]struct{}{}[len(filterRules)-int(filterKeyCount)]

// FilterKeys lists every filter key in table order.
func FilterKeys() []FilterKey {
	keys := make([]FilterKey, 0, filterKeyCount)
	for k := FilterKey(0); k < filterKeyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}

// String returns the query parameter name of the key.
func (k FilterKey) String() string {
	if k < 0 || k >= filterKeyCount {
		return "unknown"
	}
	return filterRules[k].name
}

// Relation returns the relation the key is evaluated through.
func (k FilterKey) Relation() graph.RelationType {
	return filterRules[k].relation
}

// TargetType returns the entity type the filter value must identify.
func (k FilterKey) TargetType() graph.EntityType {
	return filterRules[k].targetType
}

// Criteria selects plants by exact, case-sensitive reference ids. Empty
// fields are ignored.
type Criteria struct {
	SoilType    string `json:"soilType,omitempty"`
	SunExposure string `json:"sunExposure,omitempty"`
	Season      string `json:"season,omitempty"`
}

// Value returns the criterion for key.
func (c Criteria) Value(key FilterKey) string {
	switch key {
	case FilterSoilType:
		return c.SoilType
	case FilterSunExposure:
		return c.SunExposure
	case FilterSeason:
		return c.Season
	default:
		return ""
	}
}

// IsEmpty reports whether no criterion is set.
func (c Criteria) IsEmpty() bool {
	return len(c.conditions()) == 0
}

func (c Criteria) conditions() []store.EdgeCondition {
	conds := make([]store.EdgeCondition, 0, filterKeyCount)
	for _, key := range FilterKeys() {
		v := c.Value(key)
		if v == "" {
			continue
		}
		conds = append(conds, store.EdgeCondition{
			Relation:   key.Relation(),
			TargetID:   v,
			TargetType: key.TargetType(),
		})
	}
	return conds
}
