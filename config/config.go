// Copyright (c) 2026, The Sceneforge Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads editor configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Backend names a persistence gateway implementation.
type Backend string

const (
	// BackendMemory keeps records in process memory only.
	BackendMemory Backend = "memory"

	// BackendSQLite stores records in a local SQLite database.
	BackendSQLite Backend = "sqlite"
)

// Config is the editor configuration.
type Config struct {

	// Owner scopes all persisted records.
	Owner string `toml:"owner"`

	// Project scopes all persisted records within the owner.
	Project string `toml:"project"`

	// Store selects the persistence backend: memory or sqlite.
	Store Backend `toml:"store"`

	// Path is the sqlite database file, ignored by the memory backend.
	Path string `toml:"path"`

	// HistoryDepth bounds the undo stack; 0 means the default depth.
	HistoryDepth int `toml:"history-depth"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Owner:   "local",
		Project: "default",
		Store:   BackendSQLite,
		Path:    "sceneforge.db",
	}
}

// Load reads the TOML file at path, filling unset fields from
// [Default].  A missing file is not an error: the defaults are
// returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values, not reachability of the backend.
func (cfg *Config) Validate() error {
	switch cfg.Store {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	if cfg.Store == BackendSQLite && cfg.Path == "" {
		return errors.New("sqlite store requires a path")
	}
	if cfg.HistoryDepth < 0 {
		return fmt.Errorf("negative history depth %d", cfg.HistoryDepth)
	}
	return nil
}

// Save writes the configuration as TOML to path.
func (cfg *Config) Save(path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Scope returns the (owner, project) pair scoping persisted records.
func (cfg *Config) Scope() (owner, project string) {
	return cfg.Owner, cfg.Project
}
