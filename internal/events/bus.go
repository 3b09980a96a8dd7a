// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/cropwise/internal/encoder"
	"github.com/tomtom215/cropwise/internal/logging"
	"github.com/tomtom215/cropwise/internal/metrics"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// Config configures the bus.
type Config struct {
	// NATSURL enables forwarding to NATS core when set.
	NATSURL string

	// TopicPrefix is prepended to NATS subjects, e.g. "cropwise.".
	TopicPrefix string

	// Buffer is the per-subscriber channel buffer. Default 256.
	Buffer int64

	// CloseTimeout bounds how long handlers may drain on shutdown.
	CloseTimeout time.Duration
}

// Bus publishes events and routes them to the audit log and NATS.
type Bus struct {
	pubsub    *gochannel.GoChannel
	router    *message.Router
	forwarder message.Publisher
	logger    watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// New builds the bus and registers its handlers. Call Run to start routing.
func New(cfg Config) (*Bus, error) {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	logger := watermill.NewSlogLogger(slog.New(logging.NewSlogHandlerWithLogger(logging.WithComponent("events"))))

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.Buffer}, logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	b := &Bus{pubsub: pubsub, router: router, logger: logger}

	for _, topic := range Topics {
		router.AddConsumerHandler("audit."+topic, topic, pubsub, b.audit)
	}

	if cfg.NATSURL != "" {
		pub, err := newNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		b.forwarder = pub

		retry := middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          logger,
		}
		for _, topic := range Topics {
			h := router.AddHandler("forward."+topic, topic, pubsub, cfg.TopicPrefix+topic, pub, forward)
			h.AddMiddleware(retry.Middleware)
		}
	}
	return b, nil
}

func newNATSPublisher(url string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	opts := []natsgo.Option{
		natsgo.Name("cropwise"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return pub, nil
}

// Run routes events until ctx is cancelled or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once handlers are subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Subscribe returns a raw subscription to topic. Used by tests and tools.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Publish encodes payload and publishes it to topic. A nil bus discards the
// event. Errors are logged and counted; callers may ignore them.
func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	if b == nil {
		return nil
	}

	err := b.publish(ctx, topic, payload)
	metrics.RecordEvent(topic, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
	return err
}

func (b *Bus) publish(ctx context.Context, topic string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	return b.pubsub.Publish(topic, msg)
}

// EncoderListener returns a callback suitable for encoder.WithListener.
func (b *Bus) EncoderListener() func(encoder.Extension) {
	return func(ext encoder.Extension) {
		_ = b.Publish(context.Background(), TopicEncoderExtended, NewEncoderExtended(ext))
	}
}

// Close stops the router and releases the transports.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	if err := b.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := b.pubsub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pubsub: %w", err))
	}
	if b.forwarder != nil {
		if err := b.forwarder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close NATS publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) audit(msg *message.Message) error {
	logging.Info().
		Str("topic", message.SubscribeTopicFromCtx(msg.Context())).
		Str("event_id", msg.UUID).
		Str("request_id", msg.Metadata.Get("request_id")).
		RawJSON("payload", msg.Payload).
		Msg("Event")
	return nil
}

func forward(msg *message.Message) ([]*message.Message, error) {
	return []*message.Message{msg.Copy()}, nil
}
