// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

/*
Package api exposes the recommendation engine over HTTP using the chi router.

Routes:

	GET  /                         service banner
	POST /recommend                form, multipart or JSON body; query string also read
	GET  /recommend                query string
	GET  /health/live              process is up
	GET  /health/ready             engine and reference data are loaded
	GET  /api/v1/encoder/{field}   current encoder table for district, taluq or season
	GET  /metrics                  Prometheus exposition

The /recommend endpoints return the bare recommendation object (or an
{error, location} pair) so existing front-ends keep working. Every other
JSON endpoint uses the APIResponse envelope.

Numeric inputs are coerced field by field: n, p and k fall back to 0 and ph
to "missing" when absent or unparseable, and each fallback on a non-empty
value increments input_coercions_total.
*/
package api
