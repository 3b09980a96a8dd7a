// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package main is the entry point for the Cropwise recommendation server.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml and environment (koanf v2)
//  2. Reference data: model artifact (crops, encoders, forest) and the
//     region climate table, read through embedded DuckDB
//  3. Event bus (optional): in-process watermill pub/sub, forwarded to
//     NATS when NATS_URL is set
//  4. Encoder: artifact vocabularies, extended from BadgerDB when
//     ENCODER_BADGER_PATH is set
//  5. Classifier: the artifact forest, or a remote scorer behind a circuit
//     breaker with the forest as fallback
//  6. Engine and result cache
//  7. HTTP server under a suture supervisor tree
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the
// HTTP server gracefully, then the event bus, cache and encoder store are
// closed.
//
// # Example Usage
//
//	export ARTIFACT_PATH=/data/artifact.json
//	export REGIONS_PATH=/data/regions.csv
//	./cropwise
//
// With regions in DuckDB and a remote classifier:
//
//	export REGIONS_SOURCE=duckdb
//	export REGIONS_DUCKDB_PATH=/data/regions.duckdb
//	export CLASSIFIER_KIND=remote
//	export CLASSIFIER_ENDPOINT=http://model:9000/predict
//	./cropwise
package main
