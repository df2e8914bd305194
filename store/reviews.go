package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateReview inserts a review and returns the full row. The UNIQUE
// (product_id, user_id) constraint rejects a second review from the same
// user; the FK rejects reviews of missing products.
func (s *PostgresStore) CreateReview(ctx context.Context, r ReviewRow) (ReviewRow, error) {
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		r.ProductID, r.UserID, r.Rating, r.Comment,
	).Scan(&r.ID, &r.CreatedAt)
	if isUniqueViolation(err) {
		return ReviewRow{}, ErrDuplicateReview
	}
	if isFKViolation(err) {
		return ReviewRow{}, &ProductNotFoundError{ProductID: r.ProductID}
	}
	if err != nil {
		return ReviewRow{}, persistErr("create review", err)
	}
	return r, nil
}

// GetReview returns one review.
func (s *PostgresStore) GetReview(ctx context.Context, id int64) (ReviewRow, error) {
	var r ReviewRow
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, product_id, user_id, rating, comment, created_at FROM reviews WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewRow{}, ErrReviewNotFound
	}
	if err != nil {
		return ReviewRow{}, persistErr("get review", err)
	}
	return r, nil
}

// ListReviews returns a product's reviews, oldest first.
func (s *PostgresStore) ListReviews(ctx context.Context, productID int64) ([]ReviewRow, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY id`,
		productID)
	if err != nil {
		return nil, persistErr("list reviews", err)
	}
	defer rows.Close()

	out := []ReviewRow{}
	for rows.Next() {
		var r ReviewRow
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, persistErr("list reviews", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list reviews", err)
	}
	return out, nil
}

// ReviewUpdate carries the fields to change; nil means keep.
type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

// UpdateReview applies upd and returns the fresh row.
func (s *PostgresStore) UpdateReview(ctx context.Context, id int64, upd ReviewUpdate) (ReviewRow, error) {
	var (
		sets []string
		args []any
	)
	if upd.Rating != nil {
		args = append(args, *upd.Rating)
		sets = append(sets, fmt.Sprintf("rating = $%d", len(args)))
	}
	if upd.Comment != nil {
		args = append(args, *upd.Comment)
		sets = append(sets, fmt.Sprintf("comment = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetReview(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE reviews SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return ReviewRow{}, persistErr("update review", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ReviewRow{}, persistErr("update review", err)
	}
	if n == 0 {
		return ReviewRow{}, ErrReviewNotFound
	}
	return s.GetReview(ctx, id)
}

// DeleteReview removes a review.
func (s *PostgresStore) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete review", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("delete review", err)
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
