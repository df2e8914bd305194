// Package pricing computes order totals from a cart and a catalog snapshot.
// It is pure: callers supply the unit prices and nothing here touches the
// database, so the same inputs always price to the same quote.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned when a cart line requests zero or a
	// negative number of units.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrProductNotFound is returned when a cart line references a product
	// missing from the catalog snapshot.
	ErrProductNotFound = errors.New("product not found")
)

// InvalidQuantityError reports the offending line. Unwraps to
// ErrInvalidQuantity.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be positive, got %d for product %d", e.Quantity, e.ProductID)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// ProductNotFoundError reports the missing product. Unwraps to
// ErrProductNotFound.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

// Item is one cart line: a product reference and a requested quantity.
type Item struct {
	ProductID int64
	Quantity  int
}

// Line is a priced cart line. Total is UnitPrice * Quantity, exact.
type Line struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Quote is the result of pricing a cart. Lines preserve the input order.
type Quote struct {
	Lines []Line
	Total decimal.Decimal
}

// Price prices items against catalog, a map of product id to unit price.
// Lines are checked in input order and the first bad line decides the
// error; on the same line a non-positive quantity wins over a missing
// product. All arithmetic is fixed-point decimal.
func Price(items []Item, catalog map[int64]decimal.Decimal) (Quote, error) {
	q := Quote{
		Lines: make([]Line, 0, len(items)),
		Total: decimal.Zero,
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return Quote{}, &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		unit, ok := catalog[it.ProductID]
		if !ok {
			return Quote{}, &ProductNotFoundError{ProductID: it.ProductID}
		}
		total := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
		q.Lines = append(q.Lines, Line{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			Total:     total,
		})
		q.Total = q.Total.Add(total)
	}
	return q, nil
}
