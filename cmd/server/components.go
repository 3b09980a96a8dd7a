// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/cropwise/internal/cache"
	"github.com/tomtom215/cropwise/internal/classifier"
	"github.com/tomtom215/cropwise/internal/config"
	"github.com/tomtom215/cropwise/internal/encoder"
	"github.com/tomtom215/cropwise/internal/events"
	"github.com/tomtom215/cropwise/internal/logging"
	"github.com/tomtom215/cropwise/internal/recommend"
	"github.com/tomtom215/cropwise/internal/refdata"
)

// components owns everything main has to close on the way out.
type components struct {
	engine *recommend.Engine
	store  *encoder.BadgerStore
	bus    *events.Bus
	cache  *cache.Cache[*recommend.Result]
}

func (c *components) Close() {
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	if c.cache != nil {
		c.cache.Close()
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing encoder store")
		}
	}
}

func buildComponents(ctx context.Context, cfg *config.Config) (_ *components, err error) {
	c := &components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	store, artifact, err := refdata.Load(ctx, cfg.Artifact.Path, regionSource(cfg.Regions))
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	if cfg.Events.Enabled {
		c.bus, err = events.New(events.Config{
			NATSURL:     cfg.Events.NATSURL,
			TopicPrefix: cfg.Events.TopicPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("create event bus: %w", err)
		}
		logging.Info().Bool("nats", cfg.Events.NATSURL != "").Msg("Event bus created")
	}

	encOpts := []encoder.Option{
		encoder.WithLogger(logging.WithComponent("encoder")),
		encoder.WithMaxExtensions(cfg.Encoder.MaxExtensions),
	}
	if cfg.Encoder.BadgerPath != "" {
		c.store, err = encoder.OpenBadgerStore(cfg.Encoder.BadgerPath)
		if err != nil {
			return nil, fmt.Errorf("open encoder store: %w", err)
		}
		encOpts = append(encOpts, encoder.WithStore(c.store))
	} else {
		logging.Warn().Msg("ENCODER_BADGER_PATH not set; codes for unseen values are kept in memory only")
	}
	if c.bus != nil {
		encOpts = append(encOpts, encoder.WithListener(c.bus.EncoderListener()))
	}
	enc, err := encoder.New(artifact.Encoders, encOpts...)
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}

	clf, err := buildClassifier(cfg.Classifier, artifact)
	if err != nil {
		return nil, err
	}

	var engineOpts []recommend.Option
	if cfg.Cache.Enabled {
		c.cache = cache.New[*recommend.Result](cfg.Cache.TTL, cfg.Cache.MaxEntries)
		engineOpts = append(engineOpts, recommend.WithCache(c.cache))
	}
	if c.bus != nil {
		engineOpts = append(engineOpts, recommend.WithEvents(c.bus))
	}

	c.engine, err = recommend.New(store, enc, clf, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return c, nil
}

func regionSource(cfg config.RegionsConfig) refdata.RegionSource {
	if cfg.Source == config.RegionSourceDuckDB {
		return refdata.RegionSource{Database: cfg.DuckDBPath, Table: cfg.Table}
	}
	return refdata.RegionSource{CSVPath: cfg.Path}
}

func buildClassifier(cfg config.ClassifierConfig, artifact *refdata.Artifact) (classifier.Classifier, error) {
	forest, forestErr := artifact.Forest()

	if cfg.Kind != config.ClassifierRemote {
		if forestErr != nil {
			return nil, fmt.Errorf("load forest: %w", forestErr)
		}
		logging.Info().Int("trees", len(forest.Trees)).Msg("Using artifact forest classifier")
		return forest, nil
	}

	opts := []classifier.RemoteOption{classifier.WithRemoteLogger(logging.WithComponent("classifier"))}
	switch {
	case !cfg.FallbackToLocal:
	case forestErr != nil:
		logging.Warn().Err(forestErr).Msg("Artifact forest unusable; remote classifier runs without fallback")
	default:
		opts = append(opts, classifier.WithFallback(forest))
	}

	remote, err := classifier.NewRemote(classifier.RemoteConfig{
		Endpoint:  cfg.Endpoint,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("create remote classifier: %w", err)
	}
	logging.Info().Str("endpoint", cfg.Endpoint).Msg("Using remote classifier")
	return remote, nil
}
