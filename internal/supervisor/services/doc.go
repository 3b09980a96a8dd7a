// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package services adapts application components to suture.Service.
//
// Each wrapper translates a component lifecycle (ListenAndServe, a blocking
// Run, a periodic task) into Serve(ctx) error and implements fmt.Stringer so
// supervisor log lines name the service.
package services
