package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/Domenick1991/airreservation/internal/log"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	backOff func() backoff.BackOff
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}), defaultBackOff)
}

func newConsumer(reader messageReader, backOff func() backoff.BackOff) *Consumer {
	return &Consumer{reader: reader, backOff: backOff}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithMaxRetries(b, 5)
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads until ctx is done. A message is committed once the handler
// succeeds or gives up after retries; malformed messages are logged and
// committed. Messages in flight at shutdown are left uncommitted and are
// delivered again.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ReservationEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		logger := log.FromContext(ctx).WithField("partition", msg.Partition).WithField("offset", msg.Offset)

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			logger.WithError(err).Warn("skipping malformed reservation event")
		} else if err := c.handle(ctx, handler, event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.WithError(err).WithField("event_id", event.ID.String()).Error("reservation event dropped after retries")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.WithError(err).Warn("failed to commit reservation event")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler func(context.Context, ReservationEvent) error, event ReservationEvent) error {
	return backoff.RetryNotify(
		func() error { return handler(ctx, event) },
		backoff.WithContext(c.backOff(), ctx),
		func(err error, next time.Duration) {
			log.FromContext(ctx).WithError(err).WithField("retry_in", next).Warn("reservation event handler failed")
		},
	)
}

func DecodeEvent(data []byte) (ReservationEvent, error) {
	var event ReservationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ReservationEvent{}, err
	}
	if event.Type == "" {
		return ReservationEvent{}, errors.New("event type is empty")
	}
	return event, nil
}
