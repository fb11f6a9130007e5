// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package store

// Config controls which backend Open uses and where it keeps its data.
type Config struct {
	Backend string // "sqlite" (default) or "memory".
	Path    string // Database file for sqlite; ":memory:" is accepted. Ignored by memory.
}
