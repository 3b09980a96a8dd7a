// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cropwise/internal/metrics"
	"github.com/tomtom215/cropwise/internal/models"
)

// maxResponseBytes bounds the scoring service response body.
const maxResponseBytes = 4 << 20

// RemoteConfig configures the HTTP scoring client.
type RemoteConfig struct {
	// Endpoint receives POST {"vectors": [[...], ...]} and answers
	// {"probabilities": [...]}.
	Endpoint string

	// Timeout bounds one HTTP call. Default 5s.
	Timeout time.Duration

	// RateLimit is the maximum outbound calls per second; 0 disables limiting.
	RateLimit float64

	// Burst is the limiter burst size. Default 1.
	Burst int

	// BreakerName labels circuit breaker metrics. Default "classifier-remote".
	BreakerName string
}

type scoreRequest struct {
	Features []string    `json:"features"`
	Vectors  [][]float64 `json:"vectors"`
}

type scoreResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// Remote scores vectors through an external HTTP service guarded by a
// circuit breaker and an outbound rate limiter.
type Remote struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]float64]
	name     string
	fallback Classifier
	logger   zerolog.Logger
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithFallback scores locally with c while the circuit is open.
func WithFallback(c Classifier) RemoteOption {
	return func(r *Remote) { r.fallback = c }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// WithRemoteLogger sets the client logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithRemoteLogger(logger zerolog.Logger) RemoteOption {
	return func(r *Remote) { r.logger = logger }
}

// NewRemote creates a remote classifier client.
//
// Circuit breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewRemote(cfg RemoteConfig, opts ...RemoteOption) (*Remote, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("remote classifier endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "classifier-remote"
	}

	r := &Remote{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		name:     cfg.BreakerName,
		logger:   zerolog.Nop(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(r)
	}

	metrics.CircuitBreakerState.WithLabelValues(r.name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(0)

	r.cb = gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        r.name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
	return r, nil
}

// Kind implements Classifier.
func (r *Remote) Kind() string { return KindRemote }

// State returns the circuit breaker state.
func (r *Remote) State() gobreaker.State { return r.cb.State() }

// PredictSuitability implements Classifier.
func (r *Remote) PredictSuitability(ctx context.Context, vectors []models.FeatureVector) ([]float64, error) {
	if len(vectors) == 0 {
		return []float64{}, nil
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for classifier rate limit: %w", err)
		}
	}

	probs, err := r.cb.Execute(func() ([]float64, error) {
		return r.call(ctx, vectors)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
			if r.fallback != nil {
				r.logger.Debug().Err(err).Msg("Remote classifier unavailable, scoring locally")
				return r.fallback.PredictSuitability(ctx, vectors)
			}
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(float64(r.cb.Counts().ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(0)
	return probs, nil
}

func (r *Remote) call(ctx context.Context, vectors []models.FeatureVector) ([]float64, error) {
	req := scoreRequest{
		Features: models.FeatureNames[:],
		Vectors:  make([][]float64, len(vectors)),
	}
	for i := range vectors {
		req.Vectors[i] = vectors[i].Slice()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal score request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call scoring service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read score response: %w", err)
	}

	var out scoreResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode score response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service returned status %d: %s", resp.StatusCode, out.Error)
	}
	if err := CheckProbabilities(out.Probabilities, len(vectors)); err != nil {
		return nil, err
	}
	return out.Probabilities, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
