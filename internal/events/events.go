// Package events provides an in-process pub/sub bus built on Watermill's
// Go channel transport.
//
// Every subscriber receives every message published to its topic after it
// subscribed. Messages published to a topic with no subscribers are dropped.
// A handler is called up to the subscription's attempt count with doubling
// backoff; the message is acked either way, so redelivery never loops.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	defaultRetryDelay = time.Second
	shutdownTimeout   = 30 * time.Second
	outputBuffer      = 64
)

// Handler processes a single message.
type Handler func(ctx context.Context, msg *message.Message) error

// Bus is an in-process event bus.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *slog.Logger
	wg     sync.WaitGroup

	// RetryDelay is the wait before the second attempt; it doubles after
	// each further failure.
	RetryDelay time.Duration
}

// NewBus creates a Bus that logs through log.
func NewBus(log *slog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: outputBuffer,
	}, &slogAdapter{log: log})

	return &Bus{pubsub: pubsub, log: log, RetryDelay: defaultRetryDelay}
}

// Publish encodes payload as JSON and publishes it to topic. It returns once
// the message is handed to the transport; handlers run asynchronously.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: encode %s payload: %w", topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}

	b.log.DebugContext(ctx, "event published", "topic", topic, "message_id", msg.UUID)
	return nil
}

// Subscribe registers handler for topic. Each message is handled up to
// attempts times (at least once). Failures after the last attempt are
// logged and the message is acked.
//
// The subscription ends when ctx is cancelled or the bus is closed.
// Close waits for in-flight handlers.
func (b *Bus) Subscribe(ctx context.Context, topic string, attempts int, handler Handler) error {
	ch, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	attempts = max(attempts, 1)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for msg := range ch {
			if err := retryWithBackoff(ctx, msg, handler, attempts, b.RetryDelay, b.log); err != nil {
				b.log.ErrorContext(ctx, "event handler failed",
					"topic", topic,
					"message_id", msg.UUID,
					"error", err,
				)
			}
			msg.Ack()
		}
	}()

	return nil
}

// retryWithBackoff calls handler up to attempts times with exponential backoff.
// Returns nil on first success; returns the last error after all attempts.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	baseDelay time.Duration,
	log *slog.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt < attempts {
			log.WarnContext(ctx, "event handler failed, retrying",
				"attempt", attempt,
				"max_attempts", attempts,
				"next_delay", delay,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
}

// Close stops all subscriptions and waits (up to 30s) for in-flight handlers.
func (b *Bus) Close() error {
	if err := b.pubsub.Close(); err != nil {
		return fmt.Errorf("events: close pubsub: %w", err)
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		b.log.Error("events: timed out waiting for in-flight handlers to complete")
	}
	return nil
}

// slogAdapter bridges slog to watermill.LoggerAdapter.
type slogAdapter struct{ log *slog.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
