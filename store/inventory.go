package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Ledger applies stock movements through Q, which may be a *sql.DB or an
// open *sql.Tx. Every movement is a single conditional UPDATE, so two
// reservations racing for the last unit are serialized by the database and
// exactly one wins; stock can never be observed below zero.
type Ledger struct {
	Q Querier
}

// Reserve atomically takes qty units of a product. It never reads stock
// first: the decrement and the availability check are one statement, and a
// statement that matches no row leaves the row untouched.
func (l Ledger) Reserve(ctx context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve: quantity must be positive, got %d", qty)
	}
	res, err := l.Q.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
		qty, productID)
	if err != nil {
		return persistErr("reserve stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("reserve stock", err)
	}
	if n == 1 {
		return nil
	}

	// No row matched: the product is missing or short. Read it to tell the
	// two apart; either way nothing was changed.
	var available int
	err = l.Q.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return persistErr("reserve stock", err)
	}
	return &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
}

// Release returns qty units to a product, the inverse of Reserve. Callers
// running Reserve inside a transaction roll the whole transaction back
// instead; Release is for reservations made outside one.
func (l Ledger) Release(ctx context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release: quantity must be positive, got %d", qty)
	}
	res, err := l.Q.ExecContext(ctx,
		`UPDATE products SET stock = stock + $1 WHERE id = $2`,
		qty, productID)
	if err != nil {
		return persistErr("release stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("release stock", err)
	}
	if n == 0 {
		return &ProductNotFoundError{ProductID: productID}
	}
	return nil
}

// Stock returns the current stock for a product.
func (l Ledger) Stock(ctx context.Context, productID int64) (int, error) {
	var stock int
	err := l.Q.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return 0, persistErr("get stock", err)
	}
	return stock, nil
}
