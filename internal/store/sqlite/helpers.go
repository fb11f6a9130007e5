// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package sqlite

import (
	"encoding/json"
	"time"

	"github.com/plotwise-dev/plotwise/internal/graph"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// nodeRow holds the columns of a node query.
// Column order: id, type, properties.
type nodeRow struct {
	ID         string
	Type       string
	Properties string
}

func (r *nodeRow) scanArgs() []any {
	return []any{&r.ID, &r.Type, &r.Properties}
}

func (r *nodeRow) toGraph() (*graph.Node, error) {
	props, err := decodeProperties(r.Properties)
	if err != nil {
		return nil, pwerr.Wrap(err, pwerr.CodeStorePropertiesCorrupt,
			"decoding properties of node "+r.ID, pwerr.FieldNodeID(r.ID))
	}
	return &graph.Node{
		ID:         r.ID,
		Type:       graph.EntityType(r.Type),
		Properties: props,
	}, nil
}

// encodeProperties marshals a property bag; nil is stored as "{}".
func encodeProperties(p graph.Properties) (string, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeProperties never returns a nil map on success.
func decodeProperties(s string) (graph.Properties, error) {
	props := graph.Properties{}
	if s == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, err
	}
	if props == nil {
		// Stored literal "null".
		props = graph.Properties{}
	}
	return props, nil
}

// formatTime serialises a time for storage as RFC3339Nano in UTC.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
