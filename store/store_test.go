package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestCreateStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO stores (name, owner_id) VALUES ($1, $2) RETURNING id`)).
		WithArgs("Books & More", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	row, err := s.CreateStore(context.Background(), "Books & More", 7)
	if err != nil {
		t.Fatalf("CreateStore failed: %v", err)
	}
	if row.ID != 3 || row.OwnerID != 7 || row.TotalProducts != 0 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetStore_WithProductCount(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.name, s.owner_id, COUNT(p.id)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "count"}).
			AddRow(int64(3), "Books & More", int64(7), 12))

	row, err := s.GetStore(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetStore failed: %v", err)
	}
	if row.TotalProducts != 12 {
		t.Fatalf("expected 12 products, got %d", row.TotalProducts)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.name, s.owner_id, COUNT(p.id)`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "count"}))

	if _, err := s.GetStore(context.Background(), 99); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListStores(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	rows := sqlmock.NewRows([]string{"id", "name", "owner_id", "count"}).
		AddRow(int64(1), "A", int64(1), 2).
		AddRow(int64(2), "B", int64(2), 0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.name, s.owner_id, COUNT(p.id)`)).
		WillReturnRows(rows)

	got, err := s.ListStores(context.Background())
	if err != nil {
		t.Fatalf("ListStores failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].TotalProducts != 0 {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStore_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE stores SET name = $1 WHERE id = $2`)).
		WithArgs("New Name", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := s.UpdateStore(context.Background(), 42, "New Name"); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStore_ReturnsFreshRow(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE stores SET name = $1 WHERE id = $2`)).
		WithArgs("Renamed", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.name, s.owner_id, COUNT(p.id)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "count"}).
			AddRow(int64(3), "Renamed", int64(7), 5))

	row, err := s.UpdateStore(context.Background(), 3, "Renamed")
	if err != nil {
		t.Fatalf("UpdateStore failed: %v", err)
	}
	if row.Name != "Renamed" || row.TotalProducts != 5 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteStore_BlockedByOrderHistory(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM stores WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnError(&pq.Error{Code: "23503"})

	if err := s.DeleteStore(context.Background(), 3); !errors.Is(err, ErrProductOrdered) {
		t.Fatalf("expected ErrProductOrdered, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM stores WHERE id = $1`)).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeleteStore(context.Background(), 4); err != nil {
		t.Fatalf("DeleteStore failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
