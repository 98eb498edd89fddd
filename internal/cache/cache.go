package cache

import (
	"context"
	"errors"
	"time"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

// CartView is the locally held picture of one user's cart: the item list
// plus its derived summary, stamped with when it was last confirmed
// against the remote API.
type CartView struct {
	Items     []domain.CartItem  `json:"items"`
	Summary   domain.CartSummary `json:"summary"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Clone deep-copies the view so a snapshot survives later mutations.
func (v *CartView) Clone() *CartView {
	if v == nil {
		return nil
	}
	return &CartView{
		Items:     domain.CloneItems(v.Items),
		Summary:   v.Summary,
		FetchedAt: v.FetchedAt,
	}
}

// Fresh reports whether the view is recent enough to serve without a
// round trip.
func (v *CartView) Fresh(window time.Duration) bool {
	return v != nil && time.Since(v.FetchedAt) < window
}

type CartCache interface {
	Get(ctx context.Context, userID string) (*CartView, error)
	Set(ctx context.Context, userID string, view *CartView) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
