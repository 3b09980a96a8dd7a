// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package classifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cropwise/internal/models"
)

func scoringServer(t *testing.T, handler func(req scoreRequest) (int, scoreResponse)) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, resp := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRemote_PredictSuitability(t *testing.T) {
	t.Parallel()

	srv, calls := scoringServer(t, func(req scoreRequest) (int, scoreResponse) {
		if len(req.Features) != models.FeatureCount {
			t.Errorf("features = %v, want %d names", req.Features, models.FeatureCount)
		}
		probs := make([]float64, len(req.Vectors))
		for i, v := range req.Vectors {
			probs[i] = v[models.FeatureSoilMatch] * 0.8
		}
		return http.StatusOK, scoreResponse{Probabilities: probs}
	})

	r, err := NewRemote(RemoteConfig{Endpoint: srv.URL, BreakerName: "test-remote-ok"})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	vectors := make([]models.FeatureVector, 3)
	vectors[2][models.FeatureSoilMatch] = 1

	probs, err := r.PredictSuitability(context.Background(), vectors)
	if err != nil {
		t.Fatalf("PredictSuitability() error = %v", err)
	}
	if len(probs) != 3 || probs[2] != 0.8 || probs[0] != 0 {
		t.Errorf("probs = %v, want [0 0 0.8]", probs)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 batched call", calls.Load())
	}
	if r.Kind() != KindRemote {
		t.Errorf("Kind() = %q, want %q", r.Kind(), KindRemote)
	}
}

func TestRemote_RejectsBadResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		resp   scoreResponse
		want   error
	}{
		{"wrong length", http.StatusOK, scoreResponse{Probabilities: []float64{0.5}}, ErrLengthMismatch},
		{"out of range", http.StatusOK, scoreResponse{Probabilities: []float64{0.5, 1.5}}, ErrInvalidProbability},
		{"server error", http.StatusInternalServerError, scoreResponse{Error: "model not loaded"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := scoringServer(t, func(scoreRequest) (int, scoreResponse) { return tt.status, tt.resp })
			r, err := NewRemote(RemoteConfig{Endpoint: srv.URL, BreakerName: "test-remote-" + tt.name})
			if err != nil {
				t.Fatalf("NewRemote() error = %v", err)
			}
			_, err = r.PredictSuitability(context.Background(), make([]models.FeatureVector, 2))
			if err == nil {
				t.Fatal("PredictSuitability() error = nil, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("PredictSuitability() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemote_OpenCircuitFallsBack(t *testing.T) {
	t.Parallel()

	srv, calls := scoringServer(t, func(scoreRequest) (int, scoreResponse) {
		return http.StatusServiceUnavailable, scoreResponse{Error: "overloaded"}
	})

	fallback := Func(func(models.FeatureVector) (float64, error) { return 0.42, nil })
	r, err := NewRemote(
		RemoteConfig{Endpoint: srv.URL, BreakerName: "test-remote-fallback"},
		WithFallback(fallback),
	)
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	vectors := make([]models.FeatureVector, 1)
	for i := 0; i < 10; i++ {
		if _, err := r.PredictSuitability(context.Background(), vectors); err == nil {
			t.Fatalf("call %d succeeded against failing server", i)
		}
	}
	if r.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", r.State())
	}

	probs, err := r.PredictSuitability(context.Background(), vectors)
	if err != nil {
		t.Fatalf("PredictSuitability() with open circuit error = %v", err)
	}
	if probs[0] != 0.42 {
		t.Errorf("fallback probability = %v, want 0.42", probs[0])
	}
	if calls.Load() != 10 {
		t.Errorf("server calls = %d, want 10 (open circuit must not call out)", calls.Load())
	}
}

func TestRemote_RateLimitHonorsContext(t *testing.T) {
	t.Parallel()

	srv, _ := scoringServer(t, func(req scoreRequest) (int, scoreResponse) {
		return http.StatusOK, scoreResponse{Probabilities: make([]float64, len(req.Vectors))}
	})
	r, err := NewRemote(RemoteConfig{Endpoint: srv.URL, RateLimit: 0.001, Burst: 1, BreakerName: "test-remote-rate"})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	vectors := make([]models.FeatureVector, 1)
	if _, err := r.PredictSuitability(context.Background(), vectors); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.PredictSuitability(ctx, vectors); err == nil {
		t.Error("second call within limit window succeeded, want rate limit error")
	}
}

func TestNewRemote_RequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewRemote(RemoteConfig{}); err == nil {
		t.Error("NewRemote() error = nil, want missing endpoint error")
	}
}

func TestRemote_EmptyBatch(t *testing.T) {
	t.Parallel()

	r, err := NewRemote(RemoteConfig{Endpoint: "http://127.0.0.1:0", BreakerName: "test-remote-empty"})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}
	probs, err := r.PredictSuitability(context.Background(), nil)
	if err != nil || len(probs) != 0 {
		t.Errorf("PredictSuitability(nil) = %v, %v, want empty, nil", probs, err)
	}
}
