package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MiulesiKulasekara/cart-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CartHandler struct {
	service  *service.CartService
	validate *validator.Validate
	timeout  time.Duration
}

func NewCartHandler(svc *service.CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service:  svc,
		validate: validator.New(),
		timeout:  timeout,
	}
}

type MergeItemDTO struct {
	ProductID string `json:"product_id" validate:"required"`
	Count     int    `json:"count" validate:"required,gt=0"`
}

type MergeCartRequestDTO struct {
	Items []MergeItemDTO `json:"items" validate:"required,min=1,dive"`
}

type ApplyCouponRequestDTO struct {
	Coupon string `json:"coupon" validate:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// MergeCart handles POST /api/cart.
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req MergeCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_cart_data", "items must be a non-empty list of {product_id, count > 0}")
		return
	}

	items := make([]service.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.ItemRequest{ProductID: it.ProductID, Count: it.Count}
	}

	cart, err := h.service.MergeCart(ctx, ownerFromContext(r.Context()), items, tokenFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// GetCart handles GET /api/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.service.GetCart(ctx, ownerFromContext(r.Context()), tokenFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// EmptyCart handles DELETE /api/cart. Deleting an absent cart is a
// success with a null body.
func (h *CartHandler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	removed, err := h.service.EmptyCart(ctx, ownerFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, removed)
}

// ApplyCoupon handles POST /api/cart/coupon.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ApplyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_coupon", "coupon is required")
		return
	}

	discounted, err := h.service.ApplyCoupon(ctx, ownerFromContext(r.Context()), req.Coupon, tokenFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]float64{"discounted_total": discounted})
}

// RemoveItem handles DELETE /api/cart/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	cart, err := h.service.RemoveItem(ctx, ownerFromContext(r.Context()), productID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCartData):
		respondError(w, http.StatusBadRequest, "invalid_cart_data", err.Error())
	case errors.Is(err, service.ErrInvalidCoupon):
		respondError(w, http.StatusBadRequest, "invalid_coupon", err.Error())
	case errors.Is(err, service.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("cart operation failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
