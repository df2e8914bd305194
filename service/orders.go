package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/pricing"
	"storefront/store"
)

// PlaceOrder runs the placement pipeline: validate the cart, price it
// against a catalog snapshot, then hand the priced draft to the store,
// which reserves stock and persists everything in one transaction. Any
// failure leaves no trace; the caller can simply retry.
func (s *Service) PlaceOrder(ctx context.Context, callerID int64, items []CartItem) (OrderDTO, error) {
	ctx, span := s.tracer.Start(ctx, "PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.user_id", callerID),
		attribute.Int("order.lines", len(items)),
	)

	if len(items) == 0 {
		return OrderDTO{}, s.placementFailed(span, callerID, ErrEmptyCart)
	}
	span.AddEvent("validated")

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.store.ProductsByIDs(ctx, ids)
	if err != nil {
		return OrderDTO{}, s.placementFailed(span, callerID, err)
	}
	catalog := make(map[int64]decimal.Decimal, len(products))
	for _, p := range products {
		catalog[p.ID] = p.Price
	}

	lines := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	quote, err := pricing.Price(lines, catalog)
	if err != nil {
		return OrderDTO{}, s.placementFailed(span, callerID, err)
	}
	span.AddEvent("priced")

	draft := store.OrderDraft{
		UserID: callerID,
		Total:  quote.Total,
		Items:  make([]store.OrderItemRow, 0, len(quote.Lines)),
	}
	for _, l := range quote.Lines {
		draft.Items = append(draft.Items, store.OrderItemRow{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Total,
		})
	}

	row, err := s.store.CreateOrder(ctx, draft)
	if err != nil {
		return OrderDTO{}, s.placementFailed(span, callerID, err)
	}
	span.AddEvent("committed")
	span.SetAttributes(attribute.Int64("order.id", row.ID))

	s.metrics.Observe("placed")
	s.logger.Info("order placed",
		zap.Int64("order_id", row.ID),
		zap.Int64("user_id", callerID),
		zap.String("total", row.Total.String()),
		zap.Int("lines", len(row.Items)))
	return orderDTO(row), nil
}

// GetOrder returns an order to its owner.
func (s *Service) GetOrder(ctx context.Context, callerID, orderID int64) (OrderDTO, error) {
	row, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDTO{}, err
	}
	if row.UserID != callerID {
		return OrderDTO{}, ErrPermissionDenied
	}
	return orderDTO(row), nil
}

// ListMyOrders returns the caller's orders, oldest first.
func (s *Service) ListMyOrders(ctx context.Context, callerID int64) ([]OrderDTO, error) {
	rows, err := s.store.ListOrdersByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, orderDTO(r))
	}
	return out, nil
}

// placementFailed records the outcome on metrics, the span and the log,
// then passes err through untouched.
func (s *Service) placementFailed(span trace.Span, userID int64, err error) error {
	result := placementResult(err)
	s.metrics.Observe(result)
	span.RecordError(err)
	span.SetStatus(codes.Error, result)

	fields := []zap.Field{
		zap.Int64("user_id", userID),
		zap.String("reason", result),
		zap.Error(err),
	}
	if result == "failed" {
		s.logger.Error("order failed", fields...)
	} else {
		s.logger.Warn("order rejected", fields...)
	}
	return err
}

// placementResult buckets an error into a metric label.
func placementResult(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, pricing.ErrProductNotFound), errors.Is(err, store.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, store.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "failed"
	}
}
