package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/config"
	"storefront/metrics"
	"storefront/store"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	// ErrEmptyCart rejects a placement with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied rejects a caller acting on somebody else's row.
	ErrPermissionDenied = errors.New("permission denied")
)

// Deps bundles what a Service needs. Store is required; Logger and Tracer
// default to no-ops and Metrics to an unregistered collector, so tests can
// construct a Service from just a store.
type Deps struct {
	Store   store.Store
	Logger  *zap.Logger
	Metrics *metrics.OrderMetrics
	Tracer  trace.Tracer
}

type Service struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.OrderMetrics
	tracer  trace.Tracer
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewOrderMetrics(prometheus.NewRegistry())
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(config.ServiceName)
	}
	return &Service{store: d.Store, logger: d.Logger, metrics: d.Metrics, tracer: d.Tracer}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func (s *Service) CreateStore(ctx context.Context, callerID int64, name string) (StoreDTO, error) {
	if name == "" {
		return StoreDTO{}, invalid("name is required")
	}
	row, err := s.store.CreateStore(ctx, name, callerID)
	if err != nil {
		return StoreDTO{}, err
	}
	s.logger.Info("store created",
		zap.Int64("store_id", row.ID),
		zap.Int64("owner_id", callerID))
	return storeDTO(row), nil
}

func (s *Service) GetStore(ctx context.Context, id int64) (StoreDTO, error) {
	row, err := s.store.GetStore(ctx, id)
	if err != nil {
		return StoreDTO{}, err
	}
	return storeDTO(row), nil
}

func (s *Service) ListStores(ctx context.Context) ([]StoreDTO, error) {
	rows, err := s.store.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StoreDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, storeDTO(r))
	}
	return out, nil
}

func (s *Service) UpdateStore(ctx context.Context, callerID, id int64, name string) (StoreDTO, error) {
	if name == "" {
		return StoreDTO{}, invalid("name is required")
	}
	if err := s.requireStoreOwner(ctx, callerID, id); err != nil {
		return StoreDTO{}, err
	}
	row, err := s.store.UpdateStore(ctx, id, name)
	if err != nil {
		return StoreDTO{}, err
	}
	return storeDTO(row), nil
}

func (s *Service) DeleteStore(ctx context.Context, callerID, id int64) error {
	if err := s.requireStoreOwner(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.store.DeleteStore(ctx, id); err != nil {
		return err
	}
	s.logger.Info("store deleted",
		zap.Int64("store_id", id),
		zap.Int64("owner_id", callerID))
	return nil
}

// requireStoreOwner loads the store and rejects callers who do not own it.
func (s *Service) requireStoreOwner(ctx context.Context, callerID, storeID int64) error {
	row, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return err
	}
	if row.OwnerID != callerID {
		return ErrPermissionDenied
	}
	return nil
}
