package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestReserve_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	// One conditional UPDATE, no prior read.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`)).
		WithArgs(3, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	led := Ledger{Q: db}
	if err := led.Reserve(context.Background(), 10, 3); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserve_InsufficientStock(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	// The guarded UPDATE matches nothing, then the follow-up read reports
	// what was available.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`)).
		WithArgs(5, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1`)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

	led := Ledger{Q: db}
	err := led.Reserve(context.Background(), 10, 5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var short *InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("expected *InsufficientStockError, got %T", err)
	}
	if short.ProductID != 10 || short.Requested != 5 || short.Available != 3 {
		t.Fatalf("unexpected error detail: %+v", short)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserve_ProductNotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`)).
		WithArgs(1, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	led := Ledger{Q: db}
	err := led.Reserve(context.Background(), 99, 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	var missing *ProductNotFoundError
	if !errors.As(err, &missing) || missing.ProductID != 99 {
		t.Fatalf("expected product id 99 in error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserve_RejectsNonPositiveQty(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	led := Ledger{Q: db}
	for _, qty := range []int{0, -2} {
		// No DB expectations set: a bad quantity must not reach the database.
		if err := led.Reserve(context.Background(), 1, qty); err == nil {
			t.Fatalf("expected error for qty %d", qty)
		}
	}
}

func TestRelease_SuccessAndMissing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock + $1 WHERE id = $2`)).
		WithArgs(2, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	led := Ledger{Q: db}
	if err := led.Release(context.Background(), 7, 2); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock + $1 WHERE id = $2`)).
		WithArgs(2, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := led.Release(context.Background(), 8, 2); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStock(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(17))

	led := Ledger{Q: db}
	got, err := led.Stock(context.Background(), 4)
	if err != nil {
		t.Fatalf("Stock failed: %v", err)
	}
	if got != 17 {
		t.Fatalf("expected stock 17, got %d", got)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	if _, err := led.Stock(context.Background(), 5); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
