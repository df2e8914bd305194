// Package handler is the HTTP layer over the service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storefront/pricing"
	"storefront/service"
	"storefront/store"
)

// Handler is the HTTP layer that talks to service.ServiceInterface.
type Handler struct {
	svc    service.ServiceInterface
	logger *zap.Logger
}

// NewHandler returns a Handler instance.
func NewHandler(s service.ServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: s, logger: logger}
}

// RegisterRoutes registers all routes on the provided router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Stores
	r.HandleFunc("/stores", h.CreateStore).Methods("POST")
	r.HandleFunc("/stores", h.ListStores).Methods("GET")
	r.HandleFunc("/stores/{id}", h.GetStore).Methods("GET")
	r.HandleFunc("/stores/{id}", h.UpdateStore).Methods("PATCH")
	r.HandleFunc("/stores/{id}", h.DeleteStore).Methods("DELETE")

	// Products
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	r.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PATCH")
	r.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE")

	// Reviews
	r.HandleFunc("/products/{id}/reviews", h.CreateReview).Methods("POST")
	r.HandleFunc("/products/{id}/reviews", h.ListReviews).Methods("GET")
	r.HandleFunc("/reviews/{id}", h.GetReview).Methods("GET")
	r.HandleFunc("/reviews/{id}", h.UpdateReview).Methods("PATCH")
	r.HandleFunc("/reviews/{id}", h.DeleteReview).Methods("DELETE")

	// Orders
	r.HandleFunc("/orders", h.PlaceOrder).Methods("POST")
	r.HandleFunc("/orders", h.ListMyOrders).Methods("GET")
	r.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// callerID returns the authenticated user id the edge proxy sets in
// X-User-ID. Authentication itself happens upstream; an absent or mangled
// header is a 401 here.
func callerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceErr maps service, pricing and store errors onto HTTP
// responses. Insufficient-stock and product-not-found bodies carry the
// product id so clients can point at the offending cart line.
func (h *Handler) writeServiceErr(w http.ResponseWriter, err error) {
	var (
		short    *store.InsufficientStockError
		missing  *store.ProductNotFoundError
		unpriced *pricing.ProductNotFoundError
		badQty   *pricing.InvalidQuantityError
	)
	switch {
	case errors.As(err, &short):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": short.ProductID,
			"requested":  short.Requested,
			"available":  short.Available,
		})
	case errors.As(err, &badQty):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "quantity must be positive",
			"product_id": badQty.ProductID,
			"quantity":   badQty.Quantity,
		})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      "product not found",
			"product_id": missing.ProductID,
		})
	case errors.As(err, &unpriced):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      "product not found",
			"product_id": unpriced.ProductID,
		})
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, pricing.ErrInvalidQuantity):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		writeErr(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrStoreNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, pricing.ErrProductNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicateReview),
		errors.Is(err, store.ErrProductOrdered):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}
