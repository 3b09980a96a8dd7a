// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

/*
Package encoder maps categorical field values (district, taluq, season) to the
stable integer codes the suitability classifier was trained on.

# Tables

Each field owns an append-only table seeded from the model artifact, where a
value's code is its index in the training-time class list. Values first seen
at serving time receive the next unused code for their field. Fields without
a table always encode to SentinelCode.

# Concurrency

A field's table is an immutable snapshot published through atomic.Pointer.
Lookups load the current snapshot and never block. Appends take the encoder
mutex, re-check the latest snapshot, then publish a copy containing the new
value. A reader therefore sees either the table before an append or the
table after it, never a partial one, and two racing appends of the same
value resolve to a single code.

# Persistence

An optional Store records every append. On construction the encoder replays
stored extensions on top of the artifact tables so codes assigned by a
previous process are reused. BadgerStore is the production implementation.
*/
package encoder
