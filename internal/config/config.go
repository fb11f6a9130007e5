// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plotwise Contributors

package config

import (
	"errors"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	pwerr "github.com/plotwise-dev/plotwise/pkg/errors"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "plotwise.db"

// Config is the top-level Plotwise configuration.
type Config struct {
	DataDir    string           `mapstructure:"data_dir"`
	Verbose    bool             `mapstructure:"verbose"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Networking NetworkingConfig `mapstructure:"networking"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

// StorageConfig selects the graph store backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// NetworkingConfig controls the HTTP listener.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	Metrics     bool     `mapstructure:"metrics"`
}

// SeedConfig controls where the catalog comes from and when it is loaded.
type SeedConfig struct {
	Dataset string `mapstructure:"dataset"`
	OnStart bool   `mapstructure:"on_start"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("verbose", false)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "")
	v.SetDefault("networking.listen", "127.0.0.1:8087")
	v.SetDefault("networking.cors_origins", []string{"http://localhost:4321"})
	v.SetDefault("networking.metrics", true)
	v.SetDefault("seed.dataset", "")
	v.SetDefault("seed.on_start", false)
}

// SetupEnv maps PLOTWISE_* environment variables onto config keys, e.g.
// PLOTWISE_STORAGE_BACKEND -> storage.backend.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("PLOTWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix PLOTWISE_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, pwerr.Errorf(pwerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the settings resolved by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, pwerr.Errorf(pwerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// DatabasePath returns storage.path, or plotwise.db inside data_dir.
func (c *Config) DatabasePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.DataDir, DatabaseFile)
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateNetworking()...)

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, memory], got %q",
			c.Storage.Backend,
		))
	}

	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" && c.DataDir == "" {
		errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue,
			"config: data_dir or storage.path must be set for the sqlite backend"))
	}

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Networking.Listen)
		if err != nil {
			errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue,
				"config: networking.listen must be a valid host:port address, got %q: %w",
				c.Networking.Listen, err,
			))
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue,
					"config: networking.listen port must be a number, got %q",
					portStr,
				))
			} else if port < 1 || port > 65535 {
				errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue,
					"config: networking.listen port must be between 1 and 65535, got %d",
					port,
				))
			}
		}
	}

	for i, origin := range c.Networking.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, pwerr.Errorf(pwerr.CodeConfigValidateInvalidValue,
				"config: networking.cors_origins[%d] must be \"*\" or an http(s) origin, got %q",
				i, origin,
			))
		}
	}

	return errs
}
