package service

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/store"
)

// DTOs returned to the HTTP layer. Money fields are decimal and serialize
// as exact strings.

type StoreDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	OwnerID       int64  `json:"owner_id"`
	TotalProducts int    `json:"total_products"`
}

type ProductDTO struct {
	ID            int64           `json:"id"`
	StoreID       int64           `json:"store_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Description   string          `json:"description"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}

type ReviewDTO struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderItemDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderDTO struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Items     []OrderItemDTO  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	OrderedAt time.Time       `json:"ordered_at"`
}

// Input shapes. The HTTP layer decodes request bodies straight into these.

// CartItem is one line of a placement request.
type CartItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type ProductInput struct {
	StoreID     int64           `json:"store_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
}

// ProductPatch carries the fields to change; nil means keep.
type ProductPatch struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Description *string          `json:"description"`
}

type ReviewPatch struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func storeDTO(r store.StoreRow) StoreDTO {
	return StoreDTO{ID: r.ID, Name: r.Name, OwnerID: r.OwnerID, TotalProducts: r.TotalProducts}
}

func productDTO(r store.ProductRow) ProductDTO {
	return ProductDTO{
		ID:            r.ID,
		StoreID:       r.StoreID,
		Name:          r.Name,
		Price:         r.Price,
		Stock:         r.Stock,
		Description:   r.Description,
		AverageRating: r.AverageRating,
		ReviewCount:   r.ReviewCount,
	}
}

func reviewDTO(r store.ReviewRow) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func orderDTO(r store.OrderRow) OrderDTO {
	dto := OrderDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		Total:     r.Total,
		OrderedAt: r.OrderedAt,
		Items:     make([]OrderItemDTO, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return dto
}
