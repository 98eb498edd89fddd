package cart

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cache"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/notify"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// DefaultFreshness is how long a cached view is served without asking
// the remote API again. Writes always invalidate, so this only bounds
// read staleness across rapid page renders.
const DefaultFreshness = 30 * time.Second

// RemoteCart is the slice of the cart API the synchronizer needs.
// Mutations return the server's user-feedback message.
type RemoteCart interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	GetSummary(ctx context.Context) (domain.CartSummary, error)
	AddItem(ctx context.Context, productID int64, quantity int, size string) (string, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (string, error)
	RemoveItem(ctx context.Context, itemID string) (string, error)
	ClearCart(ctx context.Context) (string, error)
}

// Synchronizer keeps a local cart view responsive while the remote API
// stays authoritative. Every mutation snapshots the view, applies the
// optimistic command, calls the remote, then either invalidates and
// refetches (success) or restores the snapshot verbatim and notifies the
// user (failure). Each operation is attempted once; retries live in the
// transport underneath RemoteCart.
type Synchronizer struct {
	remote    RemoteCart
	store     cache.CartCache
	notifier  notify.Notifier
	log       logrus.FieldLogger
	freshness time.Duration
	sfg       singleflight.Group // collapses concurrent refetches per user
}

func NewSynchronizer(remote RemoteCart, store cache.CartCache, notifier notify.Notifier, log logrus.FieldLogger, freshness time.Duration) *Synchronizer {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Synchronizer{
		remote:    remote,
		store:     store,
		notifier:  notifier,
		log:       log,
		freshness: freshness,
	}
}

// View returns the current cart view, serving the cache while it is
// fresh and refetching otherwise.
func (s *Synchronizer) View(ctx context.Context, userID string) (*cache.CartView, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		view, err := s.store.Get(ctx, userID)
		if err == nil && view.Fresh(s.freshness) {
			return view, nil
		}
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).Warn("cart cache get failed")
		}
		return s.refresh(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*cache.CartView), nil
}

// Cart returns the current item list.
func (s *Synchronizer) Cart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	view, err := s.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	return view.Items, nil
}

// Summary is always the pure fold over the current items, never a stored
// figure of its own.
func (s *Synchronizer) Summary(ctx context.Context, userID string) (domain.CartSummary, error) {
	view, err := s.View(ctx, userID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return domain.Summarize(view.Items), nil
}

func (s *Synchronizer) AddItem(ctx context.Context, userID string, productID int64, quantity int, size string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, addItemCommand(productID, quantity, size), func(ctx context.Context) (string, error) {
		return s.remote.AddItem(ctx, productID, quantity, size)
	})
}

func (s *Synchronizer) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, updateQuantityCommand(itemID, quantity), func(ctx context.Context) (string, error) {
		return s.remote.UpdateQuantity(ctx, itemID, quantity)
	})
}

func (s *Synchronizer) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.mutate(ctx, userID, removeItemCommand(itemID), func(ctx context.Context) (string, error) {
		return s.remote.RemoveItem(ctx, itemID)
	})
}

func (s *Synchronizer) Clear(ctx context.Context, userID string) error {
	return s.mutate(ctx, userID, clearCommand(), func(ctx context.Context) (string, error) {
		return s.remote.ClearCart(ctx)
	})
}

// mutate runs one optimistic mutation. Overlapping mutations on the same
// line are last-write-wins: each rollback restores the snapshot taken
// when its own command started, and any success converges the view via
// the authoritative refetch.
func (s *Synchronizer) mutate(ctx context.Context, userID string, cmd Command, call func(context.Context) (string, error)) error {
	view, err := s.View(ctx, userID)
	if err != nil {
		s.notifier.Notify(ctx, userID, notify.LevelError, userMessage(err))
		return err
	}
	snapshot := view.Clone()

	optimistic := &cache.CartView{
		Items:     cmd.Apply(domain.CloneItems(view.Items)),
		FetchedAt: view.FetchedAt,
	}
	optimistic.Summary = domain.Summarize(optimistic.Items)
	if errSet := s.store.Set(ctx, userID, optimistic); errSet != nil {
		s.log.WithError(errSet).Warn("optimistic cache set failed")
	}

	msg, errCall := call(ctx)
	if errCall != nil {
		restored := &cache.CartView{
			Items:     Rollback(snapshot.Items)(optimistic.Items),
			Summary:   snapshot.Summary,
			FetchedAt: snapshot.FetchedAt,
		}
		if errSet := s.store.Set(ctx, userID, restored); errSet != nil {
			s.log.WithError(errSet).Error("rollback cache set failed")
		}
		s.log.WithError(errCall).WithField("command", cmd.Name).Warn("cart mutation failed, rolled back")
		s.notifier.Notify(ctx, userID, notify.LevelError, userMessage(errCall))
		return errCall
	}

	// The optimistic state is provisional. Drop it and refetch so any
	// server-side adjustment shows up within one round trip.
	invalidate(s, userID)
	if _, errRefresh := s.refresh(ctx, userID); errRefresh != nil {
		s.log.WithError(errRefresh).Warn("post-mutation refetch failed")
	}

	if msg != "" {
		s.notifier.Notify(ctx, userID, notify.LevelInfo, msg)
	}
	return nil
}

// refresh fetches the authoritative cart, recomputes the summary from
// the items, and caches the result. The remote summary endpoint is read
// only to spot drift.
func (s *Synchronizer) refresh(ctx context.Context, userID string) (*cache.CartView, error) {
	remoteCart, err := s.remote.GetCart(ctx)
	if err != nil {
		return nil, err
	}

	view := &cache.CartView{
		Items:     remoteCart.Items,
		Summary:   domain.Summarize(remoteCart.Items),
		FetchedAt: time.Now(),
	}

	if remoteSummary, errSum := s.remote.GetSummary(ctx); errSum == nil {
		if remoteSummary != view.Summary {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"local":   view.Summary,
				"remote":  remoteSummary,
			}).Warn("cart summary drift between fold and remote")
		}
	} else {
		s.log.WithError(errSum).Debug("cart summary fetch failed")
	}

	if errSet := s.store.Set(ctx, userID, view); errSet != nil {
		s.log.WithError(errSet).Warn("cart cache set failed")
	}
	return view, nil
}

func invalidate(s *Synchronizer, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, userID); err != nil {
		s.log.WithError(err).Warn("cart cache invalidate failed")
	}
}

type userMessager interface {
	UserMessage() string
}

func userMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "Could not update your cart. Please try again."
}
