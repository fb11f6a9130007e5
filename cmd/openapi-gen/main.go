// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plotwise-dev/plotwise/internal/recommend"
	"github.com/plotwise-dev/plotwise/internal/server"
	"github.com/plotwise-dev/plotwise/internal/store/memory"
	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec registers every route against an empty memory store and
// returns the OpenAPI document huma derives from the handler types.
func generateSpec() ([]byte, error) {
	st := memory.NewGraphStore()
	defer func() { _ = st.Close() }()

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, pwerr.Errorf(pwerr.CodeCLISetupFailure, "creating server: %w", err)
	}

	svc, err := server.NewServices(recommend.New(st), st)
	if err != nil {
		return nil, pwerr.Errorf(pwerr.CodeCLISetupFailure, "creating services: %w", err)
	}
	srv.RegisterServices(svc)

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}
