// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func TestServeCommand_SeedsAndServes(t *testing.T) {
	t.Setenv("PLOTWISE_STORAGE_BACKEND", "memory")
	viper.Reset()
	t.Cleanup(viper.Reset)

	addr := closedAddr(t)
	root := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs([]string{"serve", "--listen", addr, "--seed"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	var plants struct {
		Count int `json:"count"`
	}
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/v1/plants?soilType=brown-earth")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&plants) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Positive(t, plants.Count)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `plotwise_seed_runs_total{status="ok"} 1`)
	assert.Contains(t, string(body), `route="/api/v1/plants"`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	assert.Contains(t, errOut.String(), "seed complete")
	assert.Contains(t, errOut.String(), "starting plotwise")
}

func TestServeCommand_InvalidListen(t *testing.T) {
	_, _, err := execute(t, "serve", "--data-dir", t.TempDir(), "--listen", "no-port")
	require.Error(t, err)
	assert.True(t, pwerr.HasCode(err, pwerr.CodeConfigValidateInvalidValue))
}
