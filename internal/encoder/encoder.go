// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package encoder

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cropwise/internal/metrics"
	"github.com/tomtom215/cropwise/internal/models"
)

// Categorical fields encoded for the classifier.
const (
	FieldDistrict = "district"
	FieldTaluq    = "taluq"
	FieldSeason   = "season"
)

// SentinelCode is returned for fields that have no table.
const SentinelCode = 0

// Once a field holds DefaultMaxExtensions serving-time values, further unseen
// values are hashed into [OverflowCodeBase, OverflowCodeBase+overflowSpan).
// Table codes always stay below OverflowCodeBase, so the ranges never meet.
const (
	DefaultMaxExtensions = 10000
	OverflowCodeBase     = 1 << 20
	overflowSpan         = 1 << 20
)

// ErrDuplicateValue is returned when a base table lists the same canonical
// value twice.
var ErrDuplicateValue = errors.New("duplicate categorical value")

// Extension records a value appended to a field's table at serving time.
type Extension struct {
	Field string `json:"field"`
	Code  int    `json:"code"`
	Value string `json:"value"`
}

// Store persists extensions across restarts.
type Store interface {
	Append(ext Extension) error
	Load() ([]Extension, error)
	Delete(exts ...Extension) error
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithStore persists and replays extensions through s.
func WithStore(s Store) Option {
	return func(e *Encoder) { e.store = s }
}

// WithLogger sets the encoder logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Encoder) { e.logger = logger }
}

// WithMaxExtensions caps serving-time values per field. n <= 0 keeps
// DefaultMaxExtensions.
func WithMaxExtensions(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxExtensions = n
		}
	}
}

// WithListener registers fn to be called after each new extension is published.
// fn runs outside the encoder lock.
func WithListener(fn func(Extension)) Option {
	return func(e *Encoder) { e.listeners = append(e.listeners, fn) }
}

// table is an immutable snapshot of one field. values[code] == value.
type table struct {
	codes  map[string]int
	values []string
}

func (t *table) with(value string) *table {
	codes := make(map[string]int, len(t.codes)+1)
	for k, v := range t.codes {
		codes[k] = v
	}
	values := make([]string, len(t.values), len(t.values)+1)
	copy(values, t.values)

	codes[value] = len(values)
	values = append(values, value)
	return &table{codes: codes, values: values}
}

// Encoder assigns stable integer codes to categorical values.
type Encoder struct {
	mu        sync.Mutex
	tables    map[string]*atomic.Pointer[table]
	base      map[string]int
	store     Store
	listeners []func(Extension)
	logger    zerolog.Logger

	maxExtensions int
}

// New builds an encoder from training-time class lists. Values are
// canonicalized; a list that canonicalizes to duplicates is rejected.
func New(base map[string][]string, opts ...Option) (*Encoder, error) {
	e := &Encoder{
		tables:        make(map[string]*atomic.Pointer[table], len(base)),
		base:          make(map[string]int, len(base)),
		logger:        zerolog.Nop(),
		maxExtensions: DefaultMaxExtensions,
	}
	for _, opt := range opts {
		opt(e)
	}

	for field, classes := range base {
		t := &table{codes: make(map[string]int, len(classes)), values: make([]string, 0, len(classes))}
		for _, raw := range classes {
			v := models.Canonicalize(raw)
			if _, dup := t.codes[v]; dup {
				return nil, fmt.Errorf("field %s value %q: %w", field, v, ErrDuplicateValue)
			}
			t.codes[v] = len(t.values)
			t.values = append(t.values, v)
		}
		ptr := &atomic.Pointer[table]{}
		ptr.Store(t)
		e.tables[models.Canonicalize(field)] = ptr
		e.base[models.Canonicalize(field)] = len(t.values)
	}

	if e.store != nil {
		if err := e.replay(); err != nil {
			return nil, err
		}
	}

	for field, ptr := range e.tables {
		metrics.EncoderTableSize.WithLabelValues(field).Set(float64(len(ptr.Load().values)))
	}
	return e, nil
}

// replay re-applies persisted extensions in code order. An extension is only
// accepted when it is the next code for its field and its value is not
// already present; anything else means the artifact changed underneath the
// store. Such entries are deleted so their slots can be reassigned and a
// later restart cannot resurrect them.
func (e *Encoder) replay() error {
	exts, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("load encoder extensions: %w", err)
	}
	sort.SliceStable(exts, func(i, j int) bool {
		if exts[i].Field != exts[j].Field {
			return exts[i].Field < exts[j].Field
		}
		return exts[i].Code < exts[j].Code
	})

	applied := 0
	var stale []Extension
	for _, ext := range exts {
		ptr, ok := e.tables[ext.Field]
		if !ok {
			e.logger.Warn().Str("field", ext.Field).Msg("Skipping stored extension for unknown field")
			stale = append(stale, ext)
			continue
		}
		cur := ptr.Load()
		value := models.Canonicalize(ext.Value)
		if _, exists := cur.codes[value]; exists || ext.Code != len(cur.values) {
			e.logger.Warn().
				Str("field", ext.Field).
				Str("value", value).
				Int("code", ext.Code).
				Int("next_code", len(cur.values)).
				Msg("Skipping stored extension that no longer fits the table")
			stale = append(stale, ext)
			continue
		}
		ptr.Store(cur.with(value))
		applied++
	}

	if len(stale) > 0 {
		if err := e.store.Delete(stale...); err != nil {
			// Append overwrites stale slots, so codes stay unique either way.
			metrics.EncoderPersistErrors.Inc()
			e.logger.Warn().Err(err).Int("stale", len(stale)).Msg("Failed to prune stale encoder extensions")
		} else {
			metrics.EncoderStalePruned.Add(float64(len(stale)))
		}
	}

	if applied > 0 {
		e.logger.Info().Int("extensions", applied).Msg("Replayed persisted encoder extensions")
	}
	return nil
}

// Encode returns the code for value in field, appending it if unseen.
// Once the field reaches its extension limit, unseen values get a hashed
// overflow code that is neither stored nor visible to Lookup.
func (e *Encoder) Encode(field, value string) int {
	ptr, ok := e.tables[models.Canonicalize(field)]
	if !ok {
		return SentinelCode
	}
	key := models.Canonicalize(value)
	if code, ok := ptr.Load().codes[key]; ok {
		return code
	}
	return e.extend(models.Canonicalize(field), ptr, key)
}

func (e *Encoder) extend(field string, ptr *atomic.Pointer[table], value string) int {
	e.mu.Lock()
	cur := ptr.Load()
	if code, ok := cur.codes[value]; ok {
		e.mu.Unlock()
		return code
	}
	if len(cur.values)-e.base[field] >= e.maxExtensions || len(cur.values) >= OverflowCodeBase {
		e.mu.Unlock()
		metrics.EncoderOverflow.WithLabelValues(field).Inc()
		return overflowCode(value)
	}

	ext := Extension{Field: field, Code: len(cur.values), Value: value}
	if e.store != nil {
		if err := e.store.Append(ext); err != nil {
			// The in-memory code stays valid for this process.
			metrics.EncoderPersistErrors.Inc()
			e.logger.Warn().Err(err).Str("field", field).Str("value", value).Msg("Failed to persist encoder extension")
		}
	}
	ptr.Store(cur.with(value))
	e.mu.Unlock()

	metrics.RecordEncoderExtension(field, ext.Code+1)
	e.logger.Debug().Str("field", field).Str("value", value).Int("code", ext.Code).Msg("Assigned code to unseen value")
	for _, fn := range e.listeners {
		fn(ext)
	}
	return ext.Code
}

// overflowCode maps value into the reserved overflow range. Distinct values
// may share a code; the result is identical across restarts and replicas.
func overflowCode(value string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(value))
	return OverflowCodeBase + int(h.Sum64()%overflowSpan)
}

// Lookup returns the code for value without extending the table.
func (e *Encoder) Lookup(field, value string) (int, bool) {
	ptr, ok := e.tables[models.Canonicalize(field)]
	if !ok {
		return SentinelCode, false
	}
	code, ok := ptr.Load().codes[models.Canonicalize(value)]
	return code, ok
}

// Fields returns the encoded field names in sorted order.
func (e *Encoder) Fields() []string {
	fields := make([]string, 0, len(e.tables))
	for f := range e.tables {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// HasField reports whether field has a table.
func (e *Encoder) HasField(field string) bool {
	_, ok := e.tables[models.Canonicalize(field)]
	return ok
}

// Size returns the number of codes assigned for field.
func (e *Encoder) Size(field string) int {
	ptr, ok := e.tables[models.Canonicalize(field)]
	if !ok {
		return 0
	}
	return len(ptr.Load().values)
}

// BaseSize returns the number of codes that came from the artifact.
func (e *Encoder) BaseSize(field string) int {
	return e.base[models.Canonicalize(field)]
}

// Snapshot returns the values of field ordered by code.
func (e *Encoder) Snapshot(field string) []string {
	ptr, ok := e.tables[models.Canonicalize(field)]
	if !ok {
		return nil
	}
	values := ptr.Load().values
	out := make([]string, len(values))
	copy(out, values)
	return out
}
