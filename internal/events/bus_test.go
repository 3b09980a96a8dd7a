// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/cropwise/internal/encoder"
	"github.com/tomtom215/cropwise/internal/logging"
)

func newTestBus(t *testing.T, cfg Config) *Bus {
	t.Helper()
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return b
}

func startNATS(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	if err != nil {
		t.Fatalf("create NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()
	b := newTestBus(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := b.Subscribe(ctx, TopicRecommendationServed)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	reqCtx := logging.ContextWithRequestID(ctx, "req-1")
	want := RecommendationServed{District: "mysuru", Taluq: "hunsur", Outcome: "ok", Crop: "ragi", Candidates: 5}
	if err := b.Publish(reqCtx, TopicRecommendationServed, want); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if got := msg.Metadata.Get("request_id"); got != "req-1" {
			t.Errorf("request_id = %q, want req-1", got)
		}
		var got RecommendationServed
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.Crop != "ragi" || got.Candidates != 5 {
			t.Errorf("payload = %+v", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_EncoderListener(t *testing.T) {
	t.Parallel()
	b := newTestBus(t, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := b.Subscribe(ctx, TopicEncoderExtended)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	b.EncoderListener()(encoder.Extension{Field: "district", Code: 31, Value: "coastal"})

	select {
	case msg := <-msgs:
		msg.Ack()
		var got EncoderExtended
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.Field != "district" || got.Code != 31 || got.Value != "coastal" {
			t.Errorf("payload = %+v", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_NilAndClosed(t *testing.T) {
	t.Parallel()

	var nilBus *Bus
	if err := nilBus.Publish(context.Background(), TopicEncoderExtended, EncoderExtended{}); err != nil {
		t.Errorf("nil Publish() error = %v", err)
	}

	b, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	err = b.Publish(context.Background(), TopicEncoderExtended, EncoderExtended{})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrClosed", err)
	}
}

func TestBus_ForwardsToNATS(t *testing.T) {
	t.Parallel()
	ns := startNATS(t)

	nc, err := natsgo.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync("cropwise." + TopicRecommendationServed)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	b := newTestBus(t, Config{NATSURL: ns.ClientURL(), TopicPrefix: "cropwise."})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	select {
	case <-b.Running():
	case <-time.After(10 * time.Second):
		t.Fatal("router did not start")
	}

	if err := b.Publish(ctx, TopicRecommendationServed, RecommendationServed{Crop: "sugarcane", Outcome: "ok"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	msg, err := sub.NextMsg(10 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg() error = %v", err)
	}
	var got RecommendationServed
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Crop != "sugarcane" {
		t.Errorf("Crop = %q, want sugarcane", got.Crop)
	}

	cancel()
	select {
	case err := <-runErr:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Error("Run() did not return after cancel")
	}
}
