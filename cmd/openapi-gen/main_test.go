// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSpec(t *testing.T) {
	spec, err := generateSpec()
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(spec, &doc))

	assert.Equal(t, "Plotwise", doc.Info.Title)
	for _, path := range []string{"/health", "/api/v1/plants", "/api/v1/plants/{id}", "/api/v1/nodes/{id}/neighbors", "/api/v1/stats"} {
		assert.Contains(t, doc.Paths, path)
	}
}
