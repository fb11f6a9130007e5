// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package store

import (
	"sort"
	"sync"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// DefaultBackend is used when Config.Backend is empty.
const DefaultBackend = "sqlite"

// Factory opens a GraphStore for the given configuration.
type Factory func(cfg Config) (GraphStore, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Backends lists the registered backend names.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveBackend(cfg Config) string {
	if cfg.Backend == "" {
		return DefaultBackend
	}
	return cfg.Backend
}

// Open creates the GraphStore selected by cfg. The caller owns the
// returned store and must Close it.
func Open(cfg Config) (GraphStore, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, pwerr.New(pwerr.CodeStoreBackendUnsupported,
			"unsupported storage backend: "+backend, pwerr.FieldBackend(backend))
	}

	return factory(cfg)
}
