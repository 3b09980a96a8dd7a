// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/cropwise/internal/validation"
)

// Validate checks field constraints, then the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.validateRegions(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	return c.validateEvents()
}

func (c *Config) validateRegions() error {
	switch c.Regions.Source {
	case RegionSourceCSV:
		if c.Regions.Path == "" {
			return fmt.Errorf("REGIONS_PATH is required when REGIONS_SOURCE=csv")
		}
	case RegionSourceDuckDB:
		if c.Regions.DuckDBPath == "" {
			return fmt.Errorf("REGIONS_DUCKDB_PATH is required when REGIONS_SOURCE=duckdb")
		}
		if c.Regions.Table == "" {
			return fmt.Errorf("REGIONS_TABLE is required when REGIONS_SOURCE=duckdb")
		}
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.Kind != ClassifierRemote {
		return nil
	}
	if c.Classifier.Endpoint == "" {
		return fmt.Errorf("CLASSIFIER_ENDPOINT is required when CLASSIFIER_KIND=remote")
	}
	return validateHTTPURL(c.Classifier.Endpoint, "CLASSIFIER_ENDPOINT")
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled || c.Events.NATSURL == "" {
		return nil
	}
	return validateNATSURL(c.Events.NATSURL)
}

// validateHTTPURL accepts absolute http(s) URLs with a host. Paths are
// allowed because the classifier endpoint names a route.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

func validateNATSURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("NATS_URL failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("NATS_URL scheme must be nats, tls, ws or wss, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("NATS_URL host is required")
	}
	return nil
}
