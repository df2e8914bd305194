package store

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/outbox"
)

// CreateOrder persists a priced draft atomically: the stock reservations,
// the order row, its items and the outbox event commit together or not at
// all. A failure on any line rolls everything back, so other transactions
// never observe a partial placement.
func (s *PostgresStore) CreateOrder(ctx context.Context, draft OrderDraft) (OrderRow, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return OrderRow{}, persistErr("begin order", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Reserve in ascending product id so two orders touching the same
	// products cannot deadlock. Items keep their cart order below.
	reserve := make([]OrderItemRow, len(draft.Items))
	copy(reserve, draft.Items)
	slices.SortFunc(reserve, func(a, b OrderItemRow) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	led := Ledger{Q: tx}
	for _, it := range reserve {
		if err := led.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			return OrderRow{}, err
		}
	}

	order := OrderRow{UserID: draft.UserID, Total: draft.Total}
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, total) VALUES ($1, $2) RETURNING id, ordered_at`,
		draft.UserID, draft.Total,
	).Scan(&order.ID, &order.OrderedAt); err != nil {
		return OrderRow{}, persistErr("insert order", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return OrderRow{}, persistErr("insert order items", err)
	}
	defer stmt.Close()

	for _, it := range draft.Items {
		if _, err := stmt.ExecContext(ctx, order.ID, it.ProductID, it.Quantity, it.Price); err != nil {
			return OrderRow{}, persistErr("insert order items", err)
		}
	}
	order.Items = draft.Items

	event := outbox.OrderPlaced{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total.String(),
		OrderedAt: order.OrderedAt,
		Items:     make([]outbox.OrderPlacedItem, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		event.Items = append(event.Items, outbox.OrderPlacedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.String(),
		})
	}
	key := strconv.FormatInt(order.ID, 10)
	if err := outbox.Insert(ctx, tx, uuid.NewString(), outbox.TopicOrderPlaced, key, event); err != nil {
		return OrderRow{}, persistErr("queue order event", err)
	}

	if err := tx.Commit(); err != nil {
		return OrderRow{}, persistErr("commit order", err)
	}
	committed = true
	return order, nil
}

// GetOrder returns one order with its items in insertion order.
func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (OrderRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total, o.ordered_at, i.product_id, i.quantity, i.price
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE o.id = $1
		ORDER BY i.id`,
		id)
	if err != nil {
		return OrderRow{}, persistErr("get order", err)
	}
	defer rows.Close()

	var order OrderRow
	for rows.Next() {
		var it OrderItemRow
		if err := rows.Scan(&order.ID, &order.UserID, &order.Total, &order.OrderedAt,
			&it.ProductID, &it.Quantity, &it.Price); err != nil {
			return OrderRow{}, persistErr("get order", err)
		}
		order.Items = append(order.Items, it)
	}
	if err := rows.Err(); err != nil {
		return OrderRow{}, persistErr("get order", err)
	}
	// Every order has at least one item, so no rows means no order.
	if len(order.Items) == 0 {
		return OrderRow{}, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersByUser returns a user's orders, oldest first, items included.
func (s *PostgresStore) ListOrdersByUser(ctx context.Context, userID int64) ([]OrderRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total, o.ordered_at, i.product_id, i.quantity, i.price
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.id, i.id`,
		userID)
	if err != nil {
		return nil, persistErr("list orders", err)
	}
	defer rows.Close()

	out := []OrderRow{}
	for rows.Next() {
		var (
			oid, uid  int64
			total     decimal.Decimal
			orderedAt time.Time
			it        OrderItemRow
		)
		if err := rows.Scan(&oid, &uid, &total, &orderedAt,
			&it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, persistErr("list orders", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != oid {
			out = append(out, OrderRow{ID: oid, UserID: uid, Total: total, OrderedAt: orderedAt})
		}
		last := &out[len(out)-1]
		last.Items = append(last.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list orders", err)
	}
	return out, nil
}
