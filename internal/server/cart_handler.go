package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cart"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

type CartHandler struct {
	sync    *cart.Synchronizer
	timeout time.Duration
}

func NewCartHandler(sync *cart.Synchronizer, timeout time.Duration) *CartHandler {
	return &CartHandler{sync: sync, timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items   []domain.CartItem  `json:"items"`
	Summary domain.CartSummary `json:"summary"`
	Message string             `json:"message,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	items, err := h.sync.Cart(ctx, userID)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items, Summary: domain.Summarize(items)})
}

func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	summary, err := h.sync.Summary(ctx, userID)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid request", map[string]string{"product_id": "must be positive"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid request", map[string]string{"quantity": "must be between 1 and 99"})
		return
	}

	if err := h.sync.AddItem(ctx, userID, req.ProductID, req.Quantity, req.Size); err != nil {
		handleCartError(w, err)
		return
	}

	items, err := h.sync.Cart(ctx, userID)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, CartResponseDTO{Items: items, Summary: domain.Summarize(items), Message: "Item added to cart"})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid request", map[string]string{"item_id": "required"})
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid request", map[string]string{"quantity": "must be between 1 and 99"})
		return
	}

	if err := h.sync.UpdateQuantity(ctx, userID, itemID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}

	items, err := h.sync.Cart(ctx, userID)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items, Summary: domain.Summarize(items), Message: "Cart updated"})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid request", map[string]string{"item_id": "required"})
		return
	}

	if err := h.sync.RemoveItem(ctx, userID, itemID); err != nil {
		handleCartError(w, err)
		return
	}

	items, err := h.sync.Cart(ctx, userID)
	if err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items, Summary: domain.Summarize(items), Message: "Item removed"})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	if err := h.sync.Clear(ctx, userID); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{Items: nil, Summary: domain.CartSummary{}, Message: "Cart cleared"})
}
