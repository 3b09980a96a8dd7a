// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

// Package events publishes engine activity through Watermill.
//
// Events always travel over an in-memory gochannel pub/sub. A Watermill
// router consumes them: the audit handler writes each one to the structured
// log, and when a NATS URL is configured a forwarding handler republishes
// them to NATS core subjects under the configured prefix. Publishing never
// blocks or fails the request that produced the event.
package events

import (
	"time"

	"github.com/tomtom215/cropwise/internal/encoder"
)

// Topics.
const (
	TopicRecommendationServed = "recommendation.served"
	TopicEncoderExtended      = "encoder.extended"
)

// Topics lists every topic the bus carries.
var Topics = []string{TopicRecommendationServed, TopicEncoderExtended}

// RecommendationServed is emitted after a request completes.
type RecommendationServed struct {
	RequestID   string    `json:"request_id,omitempty"`
	District    string    `json:"district"`
	Taluq       string    `json:"taluq"`
	Season      string    `json:"season"`
	Outcome     string    `json:"outcome"`
	Crop        string    `json:"crop,omitempty"`
	Alternative string    `json:"alternative,omitempty"`
	FinalScore  float64   `json:"final_score,omitempty"`
	Candidates  int       `json:"candidates"`
	Cached      bool      `json:"cached"`
	Duration    float64   `json:"duration_seconds"`
	At          time.Time `json:"at"`
}

// EncoderExtended is emitted when a categorical value gets a new code.
type EncoderExtended struct {
	Field string    `json:"field"`
	Code  int       `json:"code"`
	Value string    `json:"value"`
	At    time.Time `json:"at"`
}

// NewEncoderExtended converts an encoder extension into an event.
func NewEncoderExtended(ext encoder.Extension) EncoderExtended {
	return EncoderExtended{Field: ext.Field, Code: ext.Code, Value: ext.Value, At: time.Now().UTC()}
}
