package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceExactDecimalTotals(t *testing.T) {
	// 3 * 0.10 must be exactly 0.30, not 0.30000000000000004.
	catalog := map[int64]decimal.Decimal{
		1: dec("0.10"),
		2: dec("19.99"),
	}
	items := []Item{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	}

	q, err := Price(items, catalog)
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	require.True(t, q.Lines[0].Total.Equal(dec("0.30")), "got %s", q.Lines[0].Total)
	require.True(t, q.Lines[1].Total.Equal(dec("39.98")), "got %s", q.Lines[1].Total)
	require.True(t, q.Total.Equal(dec("40.28")), "got %s", q.Total)
}

func TestPricePreservesInputOrder(t *testing.T) {
	catalog := map[int64]decimal.Decimal{
		7: dec("1.00"),
		3: dec("2.00"),
		5: dec("3.00"),
	}
	items := []Item{
		{ProductID: 7, Quantity: 1},
		{ProductID: 3, Quantity: 1},
		{ProductID: 5, Quantity: 1},
	}

	q, err := Price(items, catalog)
	require.NoError(t, err)
	require.Equal(t, int64(7), q.Lines[0].ProductID)
	require.Equal(t, int64(3), q.Lines[1].ProductID)
	require.Equal(t, int64(5), q.Lines[2].ProductID)
}

func TestPriceInvalidQuantity(t *testing.T) {
	catalog := map[int64]decimal.Decimal{1: dec("5.00")}

	for _, qty := range []int{0, -1, -100} {
		_, err := Price([]Item{{ProductID: 1, Quantity: qty}}, catalog)
		require.ErrorIs(t, err, ErrInvalidQuantity, "qty %d", qty)

		var iq *InvalidQuantityError
		require.ErrorAs(t, err, &iq)
		require.Equal(t, int64(1), iq.ProductID)
		require.Equal(t, qty, iq.Quantity)
	}
}

func TestPriceMissingProduct(t *testing.T) {
	catalog := map[int64]decimal.Decimal{1: dec("5.00")}

	_, err := Price([]Item{{ProductID: 42, Quantity: 1}}, catalog)
	require.ErrorIs(t, err, ErrProductNotFound)

	var nf *ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, int64(42), nf.ProductID)
}

func TestPriceFirstBadLineWins(t *testing.T) {
	catalog := map[int64]decimal.Decimal{1: dec("5.00")}

	// Line order decides which error surfaces.
	_, err := Price([]Item{
		{ProductID: 99, Quantity: 1}, // missing product, first
		{ProductID: 1, Quantity: 0},  // invalid quantity, second
	}, catalog)
	require.ErrorIs(t, err, ErrProductNotFound)

	// Invalid quantity beats a missing product on the same line.
	_, err = Price([]Item{{ProductID: 99, Quantity: 0}}, catalog)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPriceEmptyCartIsZero(t *testing.T) {
	// The service rejects empty carts before pricing; the calculator itself
	// treats an empty cart as a zero quote.
	q, err := Price(nil, nil)
	require.NoError(t, err)
	require.Empty(t, q.Lines)
	require.True(t, q.Total.IsZero())
}

func TestPriceDuplicateLinesPricedIndependently(t *testing.T) {
	catalog := map[int64]decimal.Decimal{1: dec("2.50")}

	q, err := Price([]Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 1, Quantity: 3},
	}, catalog)
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	require.True(t, q.Total.Equal(dec("12.50")), "got %s", q.Total)
}

func TestPriceDeterministic(t *testing.T) {
	catalog := map[int64]decimal.Decimal{
		1: dec("9.99"),
		2: dec("0.01"),
	}
	items := []Item{
		{ProductID: 1, Quantity: 7},
		{ProductID: 2, Quantity: 13},
	}

	first, err := Price(items, catalog)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Price(items, catalog)
		require.NoError(t, err)
		require.True(t, first.Total.Equal(again.Total))
	}

	var wantErr error
	_, wantErr = Price([]Item{{ProductID: 1, Quantity: -2}}, catalog)
	for i := 0; i < 10; i++ {
		_, err := Price([]Item{{ProductID: 1, Quantity: -2}}, catalog)
		require.Equal(t, wantErr.Error(), err.Error())
		require.True(t, errors.Is(err, ErrInvalidQuantity))
	}
}
