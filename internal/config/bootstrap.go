// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

//go:embed plotwise.yaml.default
var DefaultConfigYAML []byte

// DefaultConfigPath returns ~/.config/plotwise/plotwise.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", pwerr.Errorf(pwerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "plotwise", "plotwise.yaml"), nil
}

// WriteDefault writes the commented default config to path. An existing
// file is only replaced when force is set. It reports whether it wrote.
func WriteDefault(path string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, pwerr.Errorf(pwerr.CodeConfigLoadReadFailure, "creating config directory: %w", err)
	}

	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		return false, pwerr.Errorf(pwerr.CodeConfigLoadReadFailure, "writing config %s: %w", path, err)
	}

	slog.Info("created default config", "path", path)
	return true, nil
}
