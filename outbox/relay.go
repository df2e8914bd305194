package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is what the relay needs from a Kafka producer. *kafka.Writer
// satisfies it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter builds a producer that routes each message by its own Topic
// field, keyed so events for one order land on one partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// Relay drains the outbox to Kafka on a fixed interval. A record is marked
// sent only after the broker acks it, so a crash between the two replays
// the record next round: at-least-once.
type Relay struct {
	DB       *sql.DB
	Writer   MessageWriter
	Logger   *zap.Logger
	Interval time.Duration
	Batch    int
}

// Run loops until ctx is cancelled. Errors are logged and retried on the
// next tick rather than terminating the relay.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := r.Drain(ctx); err != nil {
				r.Logger.Warn("outbox drain failed", zap.Error(err))
			} else if n > 0 {
				r.Logger.Info("outbox drained", zap.Int("events", n))
			}
		}
	}
}

// Drain sends pending records in order and returns how many were delivered.
// It stops at the first failure so ordering per key is preserved.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	recs, err := FetchPending(ctx, r.DB, r.Batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range recs {
		msg := kafka.Message{
			Topic: rec.Topic,
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(rec.EventID)},
			},
		}
		if err := r.Writer.WriteMessages(ctx, msg); err != nil {
			return sent, err
		}
		if err := MarkSent(ctx, r.DB, rec.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
