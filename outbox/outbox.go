// Package outbox implements a transactional outbox: events are written in
// the same database transaction as the state change they describe, then a
// relay drains them to Kafka. Delivery is at-least-once; consumers dedupe
// on event_id.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// TopicOrderPlaced carries one event per committed order.
const TopicOrderPlaced = "orders.placed"

// OrderPlaced is the payload published when an order commits. Total is the
// exact decimal string, never a float.
type OrderPlaced struct {
	OrderID   int64             `json:"order_id"`
	UserID    int64             `json:"user_id"`
	Total     string            `json:"total"`
	Items     []OrderPlacedItem `json:"items"`
	OrderedAt time.Time         `json:"ordered_at"`
}

type OrderPlacedItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// Record is one outbox row.
type Record struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}

// Querier is the subset of database/sql the outbox needs; both *sql.DB and
// *sql.Tx satisfy it, so Insert can join the caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Insert queues an event. Run it on the transaction that commits the state
// change so the event exists exactly when the change does.
func Insert(ctx context.Context, q Querier, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		eventID, topic, key, data)
	return err
}

// FetchPending returns up to limit unsent records, oldest first.
func FetchPending(ctx context.Context, q Querier, limit int) ([]Record, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, event_id, topic, key, payload FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkSent stamps a record as delivered.
func MarkSent(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `UPDATE outbox SET sent_at = now() WHERE id = $1`, id)
	return err
}
