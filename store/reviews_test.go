package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestCreateReview(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`)).
		WithArgs(int64(10), int64(7), 5, "great").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))

	row, err := s.CreateReview(context.Background(), ReviewRow{
		ProductID: 10, UserID: 7, Rating: 5, Comment: "great",
	})
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if row.ID != 1 || row.Rating != 5 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateReview_Duplicate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	// Second review by the same user trips the UNIQUE constraint.
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WithArgs(int64(10), int64(7), 4, "again").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := s.CreateReview(context.Background(), ReviewRow{
		ProductID: 10, UserID: 7, Rating: 4, Comment: "again",
	})
	if !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateReview_MissingProduct(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WithArgs(int64(99), int64(7), 4, "").
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := s.CreateReview(context.Background(), ReviewRow{ProductID: 99, UserID: 7, Rating: 4})
	var missing *ProductNotFoundError
	if !errors.As(err, &missing) || missing.ProductID != 99 {
		t.Fatalf("expected ProductNotFoundError for 99, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListReviews(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	createdAt := time.Now()
	rows := sqlmock.NewRows([]string{"id", "product_id", "user_id", "rating", "comment", "created_at"}).
		AddRow(int64(1), int64(10), int64(7), 5, "great", createdAt).
		AddRow(int64(2), int64(10), int64(8), 3, "ok", createdAt)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM reviews WHERE product_id = $1 ORDER BY id`)).
		WithArgs(int64(10)).
		WillReturnRows(rows)

	got, err := s.ListReviews(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListReviews failed: %v", err)
	}
	if len(got) != 2 || got[0].Rating != 5 || got[1].UserID != 8 {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateReview_Partial(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	rating := 2
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reviews SET rating = $1 WHERE id = $2`)).
		WithArgs(rating, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, product_id, user_id, rating, comment, created_at FROM reviews WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "rating", "comment", "created_at"}).
			AddRow(int64(1), int64(10), int64(7), 2, "great", time.Now()))

	row, err := s.UpdateReview(context.Background(), 1, ReviewUpdate{Rating: &rating})
	if err != nil {
		t.Fatalf("UpdateReview failed: %v", err)
	}
	if row.Rating != 2 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteReview_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reviews WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteReview(context.Background(), 9); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
