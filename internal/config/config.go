// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package config loads service configuration with koanf.
//
// Precedence, lowest to highest:
//  1. built-in defaults (defaultConfig)
//  2. optional YAML file (CONFIG_PATH, else config.yaml in the working
//     directory, else /etc/cropwise/config.yaml)
//  3. environment variables listed in envMappings
//
// Unknown environment variables are ignored.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Artifact   ArtifactConfig   `koanf:"artifact"`
	Regions    RegionsConfig    `koanf:"regions"`
	Encoder    EncoderConfig    `koanf:"encoder"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Cache      CacheConfig      `koanf:"cache"`
	Events     EventsConfig     `koanf:"events"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes" validate:"gt=0"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// ArtifactConfig locates the trained model artifact.
type ArtifactConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// Region sources.
const (
	RegionSourceCSV    = "csv"
	RegionSourceDuckDB = "duckdb"
)

// RegionsConfig locates the region climate table.
//
// Environment Variables:
//   - REGIONS_SOURCE: csv or duckdb (default: csv)
//   - REGIONS_PATH: CSV file path (source=csv)
//   - REGIONS_DUCKDB_PATH, REGIONS_TABLE: database file and table (source=duckdb)
type RegionsConfig struct {
	Source     string `koanf:"source" validate:"oneof=csv duckdb"`
	Path       string `koanf:"path"`
	DuckDBPath string `koanf:"duckdb_path"`
	Table      string `koanf:"table"`
}

// EncoderConfig controls persistence of encoder extensions.
type EncoderConfig struct {
	// BadgerPath is the BadgerDB directory. Empty keeps extensions in memory
	// only, so codes assigned to unseen values are lost on restart.
	BadgerPath     string        `koanf:"badger_path"`
	GCInterval     time.Duration `koanf:"gc_interval" validate:"gt=0"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio" validate:"gt=0,lt=1"`
	// MaxExtensions caps serving-time values per field; past it unseen
	// values get a hashed code and are not stored.
	MaxExtensions int `koanf:"max_extensions" validate:"gt=0"`
}

// Classifier kinds.
const (
	ClassifierForest = "forest"
	ClassifierRemote = "remote"
)

// ClassifierConfig selects the suitability classifier.
type ClassifierConfig struct {
	Kind     string        `koanf:"kind" validate:"oneof=forest remote"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
	// RateLimit is requests per second to the remote classifier; 0 disables.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	Burst     int     `koanf:"burst" validate:"gte=0"`
	// FallbackToLocal serves from the artifact forest while the remote
	// circuit is open.
	FallbackToLocal bool `koanf:"fallback_to_local"`
}

// CacheConfig controls the recommendation result cache.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl" validate:"gt=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

// EventsConfig controls event publishing.
type EventsConfig struct {
	Enabled     bool   `koanf:"enabled"`
	NATSURL     string `koanf:"nats_url"`
	TopicPrefix string `koanf:"topic_prefix"`
}

// LoggingConfig holds zerolog settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig mirrors suture's failure handling knobs.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gte=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gte=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gte=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
