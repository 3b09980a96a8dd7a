// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

/*
Package middleware provides chi-compatible HTTP middleware shared by every
route: request ID propagation, Prometheus instrumentation and access
logging.

All middleware has the func(http.Handler) http.Handler shape so it can be
passed straight to chi's Router.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(500 * time.Millisecond))

Request IDs arriving in X-Request-ID are kept when they look sane and
replaced otherwise. The ID is echoed in the response header, stored in the
logging context and visible to chi's middleware.GetReqID.

Metrics are labelled with the matched chi route pattern, not the raw
path, so path parameters do not explode label cardinality.
*/
package middleware
