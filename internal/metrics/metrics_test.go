// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/recommend", "200"))

	RecordAPIRequest("POST", "/recommend", "200", 12*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/recommend", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name       string
		outcome    string
		candidates int
	}{
		{name: "success", outcome: "success", candidates: 22},
		{name: "no candidates", outcome: "no_candidates", candidates: 0},
		{name: "cache hit skips histogram", outcome: "cache_hit", candidates: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(tt.outcome))
			RecordRecommendation(tt.outcome, tt.candidates, time.Millisecond)
			after := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(tt.outcome))
			if after-before != 1 {
				t.Errorf("recommendations_total{outcome=%q} delta = %v, want 1", tt.outcome, after-before)
			}
		})
	}
}

func TestRecordClassifierCall(t *testing.T) {
	before := testutil.ToFloat64(ClassifierErrors.WithLabelValues("remote"))

	RecordClassifierCall("remote", time.Millisecond, nil)
	RecordClassifierCall("remote", time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(ClassifierErrors.WithLabelValues("remote")) - before; got != 1 {
		t.Errorf("classifier_errors_total delta = %v, want 1", got)
	}

	m := &dto.Metric{}
	observer, err := ClassifierDuration.GetMetricWithLabelValues("remote")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	if err := observer.(interface{ Write(*dto.Metric) error }).Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.GetHistogram().GetSampleCount() < 2 {
		t.Errorf("classifier_duration_seconds sample count = %d, want >= 2", m.GetHistogram().GetSampleCount())
	}
}

func TestRecordRegionLookup(t *testing.T) {
	hits := testutil.ToFloat64(RegionLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(RegionLookups.WithLabelValues("miss"))

	RecordRegionLookup(true)
	RecordRegionLookup(false)
	RecordRegionLookup(false)

	if got := testutil.ToFloat64(RegionLookups.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RegionLookups.WithLabelValues("miss")) - misses; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

func TestRecordEncoderExtension(t *testing.T) {
	RecordEncoderExtension("soil", 7)
	if got := testutil.ToFloat64(EncoderTableSize.WithLabelValues("soil")); got != 7 {
		t.Errorf("encoder_table_size{field=soil} = %v, want 7", got)
	}
}

func TestRecordEvent(t *testing.T) {
	ok := testutil.ToFloat64(EventsPublished.WithLabelValues("test.topic"))
	failed := testutil.ToFloat64(EventsFailed.WithLabelValues("test.topic"))

	RecordEvent("test.topic", nil)
	RecordEvent("test.topic", errors.New("closed"))

	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("test.topic")) - ok; got != 1 {
		t.Errorf("published delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EventsFailed.WithLabelValues("test.topic")) - failed; got != 1 {
		t.Errorf("failed delta = %v, want 1", got)
	}
}
