// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package sqlite

import (
	"github.com/plotwise-dev/plotwise/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", newGraphStore)
}

func newGraphStore(cfg store.Config) (store.GraphStore, error) {
	return NewGraphStore(cfg.Path)
}
