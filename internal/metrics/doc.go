// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

/*
Package metrics provides Prometheus instrumentation for the recommendation service.

All collectors are registered with the default registry through promauto and
exposed by the API router at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: requests by method, endpoint and status code
  - api_request_duration_seconds: request latency by method and endpoint
  - api_active_requests: requests currently in flight

Recommendation Metrics:
  - recommendations_total: outcomes (success, no_candidates, internal_error, cache_hit)
  - recommendation_duration_seconds: end-to-end engine latency
  - recommendation_candidates_scored: crops scored per request
  - input_coercions_total: numeric inputs replaced by defaults, by field
  - region_lookups_total: region lookups by result (hit, miss)

Classifier Metrics:
  - classifier_duration_seconds: scoring latency by classifier kind
  - classifier_errors_total: scoring failures by classifier kind
  - circuit_breaker_state and circuit_breaker_requests_total for the remote classifier

Encoder Metrics:
  - encoder_extensions_total: values appended at serving time, by field
  - encoder_table_size: current number of codes, by field
  - encoder_persist_errors_total: failed writes to the extension store

Cache and Event Metrics:
  - recommendation_cache_hits_total / recommendation_cache_misses_total
  - events_published_total / events_failed_total by topic
*/
package metrics
