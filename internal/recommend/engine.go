// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package recommend runs the end-to-end scoring pipeline for one request:
// encode the categorical inputs, look up the region, build one feature
// vector per crop, score them in a single classifier call, fuse the
// probability with nutrient and pH similarity, and rank.
//
// The engine holds no per-request state. Reference data is immutable and the
// encoder publishes snapshots atomically, so Recommend is safe to call from
// any number of goroutines.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cropwise/internal/cache"
	"github.com/tomtom215/cropwise/internal/classifier"
	"github.com/tomtom215/cropwise/internal/encoder"
	"github.com/tomtom215/cropwise/internal/events"
	"github.com/tomtom215/cropwise/internal/features"
	"github.com/tomtom215/cropwise/internal/logging"
	"github.com/tomtom215/cropwise/internal/metrics"
	"github.com/tomtom215/cropwise/internal/models"
	"github.com/tomtom215/cropwise/internal/ranking"
	"github.com/tomtom215/cropwise/internal/refdata"
	"github.com/tomtom215/cropwise/internal/similarity"
)

// Outcome labels used for metrics and events.
const (
	OutcomeOK           = "ok"
	OutcomeCached       = "cached"
	OutcomeNoCandidates = "no_candidates"
	OutcomeError        = "error"
)

const cacheNamespace = "recommend"

// Engine scores and ranks crops for a query.
type Engine struct {
	store      *refdata.Store
	encoder    *encoder.Encoder
	classifier classifier.Classifier
	scorer     *similarity.Scorer
	cache      *cache.Cache[*Result]
	bus        *events.Bus
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache serves repeated queries from c.
func WithCache(c *cache.Cache[*Result]) Option {
	return func(e *Engine) { e.cache = c }
}

// WithEvents publishes a recommendation.served event per request.
func WithEvents(b *events.Bus) Option {
	return func(e *Engine) { e.bus = b }
}

// New builds an engine.
func New(store *refdata.Store, enc *encoder.Encoder, clf classifier.Classifier, opts ...Option) (*Engine, error) {
	if store == nil || enc == nil || clf == nil {
		return nil, errors.New("recommend: store, encoder and classifier are required")
	}
	e := &Engine{
		store:      store,
		encoder:    enc,
		classifier: clf,
		scorer:     similarity.NewScorer(store.NPKMaxSum()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Encoder exposes the categorical encoder for diagnostics.
func (e *Engine) Encoder() *encoder.Encoder {
	return e.encoder
}

// Store exposes the reference data.
func (e *Engine) Store() *refdata.Store {
	return e.store
}

// ClassifierKind reports which classifier backs the engine.
func (e *Engine) ClassifierKind() string {
	return e.classifier.Kind()
}

// cacheKey holds every input that influences the result, in canonical form.
type cacheKey struct {
	District string   `json:"d"`
	Taluq    string   `json:"t"`
	Soil     string   `json:"s"`
	Season   string   `json:"se"`
	N        float64  `json:"n"`
	P        float64  `json:"p"`
	K        float64  `json:"k"`
	PH       *float64 `json:"ph,omitempty"`
}

//nolint:gocritic // hugeParam: query passed by value for immutability
func keyFor(q models.UserQuery) string {
	return cache.GenerateKey(cacheNamespace, cacheKey{
		District: models.Canonicalize(q.District),
		Taluq:    models.Canonicalize(q.Taluq),
		Soil:     models.Canonicalize(q.SoilType),
		Season:   features.NormalizeSeason(q.Season),
		N:        q.N,
		P:        q.P,
		K:        q.K,
		PH:       q.PH,
	})
}

// Recommend returns the primary crop and an optional alternative.
//
// Errors are *NoCandidatesError when the crop table yields nothing to rank
// and *InternalError for anything unexpected, including panics.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, q models.UserQuery) (res *Result, err error) {
	start := time.Now()
	q = finite(q)
	logger := e.requestLogger(ctx, q)
	candidates := -1
	cached := false

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Recovered panic in recommendation pipeline")
			res, err = nil, &InternalError{Op: "recommend", Err: fmt.Errorf("panic: %v", r)}
		}
		e.observe(ctx, logger, q, res, err, candidates, cached, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return nil, &InternalError{Op: "recommend", Err: err}
	}

	var key string
	if e.cache != nil {
		key = keyFor(q)
		if hit, ok := e.cache.Get(key); ok {
			metrics.CacheHits.Inc()
			cached, candidates = true, hit.Candidates
			return hit, nil
		}
		metrics.CacheMisses.Inc()
	}

	scored, err := e.score(ctx, logger, q)
	if err != nil {
		return nil, err
	}
	candidates = len(scored)

	primary, alt, err := ranking.Select(scored)
	if errors.Is(err, ranking.ErrNoCandidates) {
		return nil, &NoCandidatesError{District: q.District, Taluq: q.Taluq}
	}
	if err != nil {
		return nil, &InternalError{Op: "rank", Err: err}
	}

	res = newResult(models.Canonicalize(q.District), models.Canonicalize(q.Taluq), primary, alt, candidates)
	if e.cache != nil {
		e.cache.Set(key, res)
	}
	return res, nil
}

// finite replaces non-finite nutrient values with their coercion defaults.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func finite(q models.UserQuery) models.UserQuery {
	for _, v := range []*float64{&q.N, &q.P, &q.K} {
		if models.Float(*v) == nil {
			*v = 0
		}
	}
	if q.PH != nil {
		q.PH = models.Float(*q.PH)
	}
	return q
}

// score builds, classifies and scores one candidate per crop.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) score(ctx context.Context, logger zerolog.Logger, q models.UserQuery) ([]models.CandidateScore, error) {
	crops := e.store.Crops()
	if len(crops) == 0 {
		return nil, nil
	}

	fctx := features.NewContext(&q, e.region(logger, q), e.codes(q))

	vectors := make([]models.FeatureVector, len(crops))
	for i := range crops {
		vectors[i] = fctx.Build(&crops[i])
	}

	probs, err := e.predict(ctx, vectors)
	if err != nil {
		return nil, &InternalError{Op: "classifier", Err: err}
	}

	scored := make([]models.CandidateScore, len(crops))
	for i := range crops {
		sim := e.scorer.Score(&q, &crops[i])
		scored[i] = models.CandidateScore{
			Crop:        &crops[i],
			Probability: probs[i],
			NPKNorm:     sim.NPKNorm,
			PHNorm:      sim.PHNorm,
			FinalScore:  ranking.FinalScore(probs[i], sim.NPKNorm, sim.PHNorm),
			Yield:       crops[i].YieldPerArea,
			Price:       crops[i].PricePerUnit,
		}
	}
	return scored, nil
}

// codes encodes the categorical inputs once per request.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) codes(q models.UserQuery) features.Codes {
	return features.Codes{
		District: e.encoder.Encode(encoder.FieldDistrict, q.District),
		Taluq:    e.encoder.Encode(encoder.FieldTaluq, q.Taluq),
		Season:   e.encoder.Encode(encoder.FieldSeason, features.NormalizeSeason(q.Season)),
	}
}

// region returns the matching climate row, or nil on a miss.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) region(logger zerolog.Logger, q models.UserQuery) *models.RegionProfile {
	r, ok := e.store.Region(q.Location())
	metrics.RecordRegionLookup(ok)
	if !ok {
		logger.Debug().Msg("No region row for location; climate features default to 0")
		return nil
	}
	return r
}

func (e *Engine) predict(ctx context.Context, vectors []models.FeatureVector) ([]float64, error) {
	start := time.Now()
	probs, err := e.classifier.PredictSuitability(ctx, vectors)
	if err == nil {
		err = classifier.CheckProbabilities(probs, len(vectors))
	}
	metrics.RecordClassifierCall(e.classifier.Kind(), time.Since(start), err)
	return probs, err
}

//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) requestLogger(ctx context.Context, q models.UserQuery) zerolog.Logger {
	return logging.Ctx(ctx).With().
		Str("district", q.District).
		Str("taluq", q.Taluq).
		Str("season", q.Season).
		Logger()
}

// observe records metrics, logs and the served event for one call.
//
//nolint:gocritic // hugeParam: query passed by value for immutability
func (e *Engine) observe(ctx context.Context, logger zerolog.Logger, q models.UserQuery, res *Result, err error, candidates int, cached bool, dur time.Duration) {
	outcome := OutcomeOK
	var nc *NoCandidatesError
	switch {
	case errors.As(err, &nc):
		outcome = OutcomeNoCandidates
	case err != nil:
		outcome = OutcomeError
	case cached:
		outcome = OutcomeCached
	}

	scoredNow := candidates
	if cached {
		scoredNow = -1
	}
	metrics.RecordRecommendation(outcome, scoredNow, dur)

	ev := logger.Debug()
	if outcome == OutcomeError {
		ev = logger.Error().Err(err)
	}
	ev.Str("outcome", outcome).Int("candidates", candidates).Dur("duration", dur).Msg("Recommendation complete")

	if e.bus == nil {
		return
	}
	served := events.RecommendationServed{
		RequestID:  logging.RequestIDFromContext(ctx),
		District:   models.Canonicalize(q.District),
		Taluq:      models.Canonicalize(q.Taluq),
		Season:     features.NormalizeSeason(q.Season),
		Outcome:    outcome,
		Candidates: max(candidates, 0),
		Cached:     cached,
		Duration:   dur.Seconds(),
		At:         time.Now().UTC(),
	}
	if res != nil {
		served.Crop = res.Primary.Crop
		served.FinalScore = res.Primary.FinalScore
		if res.AlternativeRec != nil {
			served.Alternative = res.AlternativeRec.Crop
		}
	}
	_ = e.bus.Publish(ctx, events.TopicRecommendationServed, served)
}
