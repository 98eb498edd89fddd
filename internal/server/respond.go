package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/api"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cart"
)

// ErrorBody is the error contract of the storefront API: a user-facing
// message plus optional field-level validation failures.
type ErrorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	respondJSON(w, status, ErrorBody{Message: message, Errors: fields})
}

// handleCartError maps synchronizer and cart API failures onto HTTP
// statuses, keeping the most specific message available.
func handleCartError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, err.Error(), map[string]string{"quantity": "must be a positive integer"})
	case errors.As(err, &apiErr):
		respondError(w, apiErr.Status, apiErr.UserMessage(), apiErr.Fields)
	case errors.Is(err, api.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "cart service is temporarily unavailable", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "cart request timed out", nil)
	default:
		respondError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
