package service

import (
	"context"

	"storefront/store"
)

// ServiceInterface is what the HTTP layer depends on; *Service implements
// it. callerID is the authenticated user making the request.
type ServiceInterface interface {
	CreateStore(ctx context.Context, callerID int64, name string) (StoreDTO, error)
	GetStore(ctx context.Context, id int64) (StoreDTO, error)
	ListStores(ctx context.Context) ([]StoreDTO, error)
	UpdateStore(ctx context.Context, callerID, id int64, name string) (StoreDTO, error)
	DeleteStore(ctx context.Context, callerID, id int64) error

	CreateProduct(ctx context.Context, callerID int64, in ProductInput) (ProductDTO, error)
	GetProduct(ctx context.Context, id int64) (ProductDTO, error)
	ListProducts(ctx context.Context, f store.ProductFilter) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, callerID, id int64, patch ProductPatch) (ProductDTO, error)
	DeleteProduct(ctx context.Context, callerID, id int64) error

	CreateReview(ctx context.Context, callerID, productID int64, rating int, comment string) (ReviewDTO, error)
	GetReview(ctx context.Context, id int64) (ReviewDTO, error)
	ListReviews(ctx context.Context, productID int64) ([]ReviewDTO, error)
	UpdateReview(ctx context.Context, callerID, id int64, patch ReviewPatch) (ReviewDTO, error)
	DeleteReview(ctx context.Context, callerID, id int64) error

	PlaceOrder(ctx context.Context, callerID int64, items []CartItem) (OrderDTO, error)
	GetOrder(ctx context.Context, callerID, orderID int64) (OrderDTO, error)
	ListMyOrders(ctx context.Context, callerID int64) ([]OrderDTO, error)
}
