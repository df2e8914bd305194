package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrReviewNotFound  = errors.New("review not found")

	// ErrInsufficientStock is returned when a reservation finds fewer units
	// than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateReview is returned when a user reviews the same product
	// twice; the reviews table enforces one review per (product, user).
	ErrDuplicateReview = errors.New("product already reviewed by this user")

	// ErrProductOrdered is returned when a delete would orphan order items.
	// Committed orders are immutable, so the rows stay.
	ErrProductOrdered = errors.New("product appears in existing orders")

	// ErrPersistenceFailure wraps driver and connection errors so callers
	// can treat them uniformly while the cause stays visible in logs.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// InsufficientStockError carries what a failed reservation saw. Unwraps to
// ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ProductNotFoundError identifies the missing product. Unwraps to
// ErrProductNotFound.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, op, err)
}

// Postgres error codes: unique_violation and foreign_key_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isFKViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
