package service

import (
	"context"

	"go.uber.org/zap"

	"storefront/store"
)

func (s *Service) CreateReview(ctx context.Context, callerID, productID int64, rating int, comment string) (ReviewDTO, error) {
	if rating < 1 || rating > 5 {
		return ReviewDTO{}, invalid("rating must be between 1 and 5")
	}

	row, err := s.store.CreateReview(ctx, store.ReviewRow{
		ProductID: productID,
		UserID:    callerID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return ReviewDTO{}, err
	}
	s.logger.Info("review created",
		zap.Int64("review_id", row.ID),
		zap.Int64("product_id", productID),
		zap.Int("rating", rating))
	return reviewDTO(row), nil
}

func (s *Service) GetReview(ctx context.Context, id int64) (ReviewDTO, error) {
	row, err := s.store.GetReview(ctx, id)
	if err != nil {
		return ReviewDTO{}, err
	}
	return reviewDTO(row), nil
}

// ListReviews returns a product's reviews. The product must exist; a missing
// product is a not-found, not an empty list.
func (s *Service) ListReviews(ctx context.Context, productID int64) ([]ReviewDTO, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]ReviewDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, reviewDTO(r))
	}
	return out, nil
}

func (s *Service) UpdateReview(ctx context.Context, callerID, id int64, patch ReviewPatch) (ReviewDTO, error) {
	if patch.Rating != nil && (*patch.Rating < 1 || *patch.Rating > 5) {
		return ReviewDTO{}, invalid("rating must be between 1 and 5")
	}
	if err := s.requireReviewAuthor(ctx, callerID, id); err != nil {
		return ReviewDTO{}, err
	}

	row, err := s.store.UpdateReview(ctx, id, store.ReviewUpdate{
		Rating:  patch.Rating,
		Comment: patch.Comment,
	})
	if err != nil {
		return ReviewDTO{}, err
	}
	return reviewDTO(row), nil
}

func (s *Service) DeleteReview(ctx context.Context, callerID, id int64) error {
	if err := s.requireReviewAuthor(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.logger.Info("review deleted", zap.Int64("review_id", id))
	return nil
}

// requireReviewAuthor loads the review and rejects callers who did not
// write it.
func (s *Service) requireReviewAuthor(ctx context.Context, callerID, reviewID int64) error {
	row, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if row.UserID != callerID {
		return ErrPermissionDenied
	}
	return nil
}
