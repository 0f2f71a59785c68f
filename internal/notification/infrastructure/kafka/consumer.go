package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	orderdom "github.com/dmehra2102/artisan-marketplace/internal/order/domain"
	"github.com/dmehra2102/artisan-marketplace/pkg/idempotency"
	"github.com/dmehra2102/artisan-marketplace/pkg/outbox"
	"github.com/dmehra2102/artisan-marketplace/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderPlacedHandler interface {
	OnOrderPlaced(ctx context.Context, ev orderdom.OrderPlaced) error
}

type Consumer struct {
	log        *slog.Logger
	reader     Reader
	handler    OrderPlacedHandler
	idem       *idempotency.Store
	tracer     trace.Tracer
	retryBase  time.Duration
	retryLimit time.Duration
}

type ConsumerOption func(*Consumer)

// WithRetryBackoff sets the first and the largest wait between attempts at
// a message whose handler failed.
func WithRetryBackoff(base, limit time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.retryBase = base
		c.retryLimit = limit
	}
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, handler OrderPlacedHandler, idem *idempotency.Store, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		log:        log,
		reader:     reader,
		handler:    handler,
		idem:       idem,
		tracer:     otel.Tracer("notification-consumer"),
		retryBase:  500 * time.Millisecond,
		retryLimit: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled. A message is committed only once it
// was handled or found unusable; a failing handler is retried with backoff
// and its offset stays uncommitted, so a restart redelivers it.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.process(ctx, msg); err != nil {
			c.log.Info("consumer stopping with uncommitted message",
				"partition", msg.Partition, "offset", msg.Offset)
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "partition", msg.Partition, "err", err)
		}
	}
}

// process retries msg until it is handled. It only fails when ctx ends.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	wait := c.retryBase
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, msg)
		if err == nil {
			return nil
		}
		c.log.Warn("message handling failed, retrying",
			"partition", msg.Partition, "offset", msg.Offset, "attempt", attempt, "backoff", wait, "err", err)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, c.retryLimit)
	}
}

// handle returns an error only when trying again may succeed.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	if t := tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader); t != orderdom.EventOrderPlaced {
		c.log.Debug("event ignored", "type", t)
		return nil
	}

	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		// Redis being down must not stop notifications; the insert is
		// idempotent on its own.
		c.log.Warn("idempotency check failed", "key", key, "err", err)
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return nil
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeOrderPlaced")
	defer span.End()

	var ev orderdom.OrderPlaced
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.log.Error("unmarshal failed, message dropped", "key", key, "err", err)
		span.RecordError(err)
		return nil
	}
	span.SetAttributes(attribute.String("order.id", ev.OrderID.String()))

	if err := c.handler.OnOrderPlaced(msgCtx, ev); err != nil {
		span.RecordError(err)
		// The next attempt must not be taken for a duplicate.
		if relErr := c.idem.Release(ctx, key); relErr != nil {
			c.log.Warn("idempotency release failed", "key", key, "err", relErr)
		}
		return fmt.Errorf("notify sellers for order %s: %w", ev.OrderID, err)
	}
	return nil
}
