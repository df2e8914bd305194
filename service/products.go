package service

import (
	"context"

	"go.uber.org/zap"

	"storefront/store"
)

func (s *Service) CreateProduct(ctx context.Context, callerID int64, in ProductInput) (ProductDTO, error) {
	if in.Name == "" {
		return ProductDTO{}, invalid("name is required")
	}
	if in.Price.IsNegative() {
		return ProductDTO{}, invalid("price must be >= 0")
	}
	if in.Stock < 0 {
		return ProductDTO{}, invalid("stock must be >= 0")
	}
	if err := s.requireStoreOwner(ctx, callerID, in.StoreID); err != nil {
		return ProductDTO{}, err
	}

	row, err := s.store.CreateProduct(ctx, store.ProductRow{
		StoreID:     in.StoreID,
		Name:        in.Name,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
	})
	if err != nil {
		return ProductDTO{}, err
	}
	s.logger.Info("product created",
		zap.Int64("product_id", row.ID),
		zap.Int64("store_id", row.StoreID))
	return productDTO(row), nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (ProductDTO, error) {
	row, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return ProductDTO{}, err
	}
	return productDTO(row), nil
}

func (s *Service) ListProducts(ctx context.Context, f store.ProductFilter) ([]ProductDTO, error) {
	if f.First < 0 || f.Offset < 0 {
		return nil, invalid("first and offset must be >= 0")
	}
	rows, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, productDTO(r))
	}
	return out, nil
}

func (s *Service) UpdateProduct(ctx context.Context, callerID, id int64, patch ProductPatch) (ProductDTO, error) {
	if patch.Name != nil && *patch.Name == "" {
		return ProductDTO{}, invalid("name cannot be empty")
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return ProductDTO{}, invalid("price must be >= 0")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return ProductDTO{}, invalid("stock must be >= 0")
	}
	if err := s.requireProductOwner(ctx, callerID, id); err != nil {
		return ProductDTO{}, err
	}

	row, err := s.store.UpdateProduct(ctx, id, store.ProductUpdate{
		Name:        patch.Name,
		Price:       patch.Price,
		Stock:       patch.Stock,
		Description: patch.Description,
	})
	if err != nil {
		return ProductDTO{}, err
	}
	return productDTO(row), nil
}

func (s *Service) DeleteProduct(ctx context.Context, callerID, id int64) error {
	if err := s.requireProductOwner(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// requireProductOwner loads the product's store and rejects callers who do
// not own it.
func (s *Service) requireProductOwner(ctx context.Context, callerID, productID int64) error {
	row, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return s.requireStoreOwner(ctx, callerID, row.StoreID)
}
