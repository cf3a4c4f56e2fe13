/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package config loads the settings of the graphcache command: a YAML file overridden by
// GRAPHCACHE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/cache/keys"
	"github.com/botobag/graphcache/graphql/schema"
)

// Config holds the settings of a persisted cache.
type Config struct {
	// Path of the SQLite database
	Database string `yaml:"database" env:"GRAPHCACHE_DATABASE"`

	// Path of a schema introspection result (JSON), optional
	Schema string `yaml:"schema" env:"GRAPHCACHE_SCHEMA"`

	// Key field by typename for types not keyed by id or _id
	Keys map[string]string `yaml:"keys" env:"GRAPHCACHE_KEYS"`

	// Typenames whose objects are stored inside their parent
	Embedded []string `yaml:"embedded" env:"GRAPHCACHE_EMBEDDED"`

	ExactInvalidation bool `yaml:"exact_invalidation" env:"GRAPHCACHE_EXACT_INVALIDATION"`

	// One of debug, info, warn or error
	LogLevel string `yaml:"log_level" env:"GRAPHCACHE_LOG_LEVEL"`
}

// Default returns the settings used when neither the file nor the environment sets a value.
func Default() Config {
	return Config{
		Database: "graphcache.db",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path, if any, over the defaults and applies the environment on top.
func Load(path string) (Config, error) {
	config := Default()

	if len(path) > 0 {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(content, &config); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the settings.
func (config Config) Validate() error {
	if len(config.Database) == 0 {
		return fmt.Errorf("database path is required")
	}
	for _, typename := range config.Embedded {
		if _, ok := config.Keys[typename]; ok {
			return fmt.Errorf("type %q cannot both have a key field and be embedded", typename)
		}
	}
	if _, err := config.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (config Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q", config.LogLevel)
	}
	return level, nil
}

// KeyFuncs builds the key functions of the configured types.
func (config Config) KeyFuncs() map[string]keys.KeyFunc {
	if len(config.Keys) == 0 && len(config.Embedded) == 0 {
		return nil
	}
	result := make(map[string]keys.KeyFunc, len(config.Keys)+len(config.Embedded))
	for typename, field := range config.Keys {
		result[typename] = keys.Field(field)
	}
	for _, typename := range config.Embedded {
		result[typename] = keys.Embedded
	}
	return result
}

// LoadSchema reads the schema file. It returns nil when no schema is configured.
func (config Config) LoadSchema() (*schema.Schema, error) {
	if len(config.Schema) == 0 {
		return nil, nil
	}
	content, err := os.ReadFile(config.Schema)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := schema.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", config.Schema, err)
	}
	return s, nil
}

// CacheConfig builds the configuration of a cache from the settings. Storage is left to the caller.
func (config Config) CacheConfig(logger *slog.Logger) (cache.Config, error) {
	s, err := config.LoadSchema()
	if err != nil {
		return cache.Config{}, err
	}
	return cache.Config{
		Keys:              config.KeyFuncs(),
		Schema:            s,
		Logger:            logger,
		ExactInvalidation: config.ExactInvalidation,
	}, nil
}
