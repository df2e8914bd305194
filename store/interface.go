package store

import "context"

// Store is the persistence surface the service layer depends on.
// *PostgresStore implements it; tests swap in fakes.
type Store interface {
	CreateStore(ctx context.Context, name string, ownerID int64) (StoreRow, error)
	GetStore(ctx context.Context, id int64) (StoreRow, error)
	ListStores(ctx context.Context) ([]StoreRow, error)
	UpdateStore(ctx context.Context, id int64, name string) (StoreRow, error)
	DeleteStore(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p ProductRow) (ProductRow, error)
	GetProduct(ctx context.Context, id int64) (ProductRow, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]ProductRow, error)
	ProductsByIDs(ctx context.Context, ids []int64) ([]ProductRow, error)
	UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) (ProductRow, error)
	DeleteProduct(ctx context.Context, id int64) error

	CreateReview(ctx context.Context, r ReviewRow) (ReviewRow, error)
	GetReview(ctx context.Context, id int64) (ReviewRow, error)
	ListReviews(ctx context.Context, productID int64) ([]ReviewRow, error)
	UpdateReview(ctx context.Context, id int64, upd ReviewUpdate) (ReviewRow, error)
	DeleteReview(ctx context.Context, id int64) error

	CreateOrder(ctx context.Context, draft OrderDraft) (OrderRow, error)
	GetOrder(ctx context.Context, id int64) (OrderRow, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]OrderRow, error)

	Close() error
}
