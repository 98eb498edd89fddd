package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/api"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cache"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/notify"
)

type mockRemote struct {
	m        sync.RWMutex
	items    []domain.CartItem
	prices   map[int64]int64
	err      error         // returned by every mutation while set
	gate     chan struct{} // when set, AddItem blocks until closed
	getCalls int
	nextID   int
}

func (r *mockRemote) GetCart(context.Context) (*domain.Cart, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.getCalls++
	return &domain.Cart{UserID: "u1", Items: domain.CloneItems(r.items), UpdatedAt: time.Now()}, nil
}

func (r *mockRemote) GetSummary(context.Context) (domain.CartSummary, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return domain.Summarize(r.items), nil
}

func (r *mockRemote) AddItem(_ context.Context, productID int64, quantity int, size string) (string, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return "", r.err
	}
	for i := range r.items {
		if r.items[i].ProductID == productID && r.items[i].Size == size {
			r.items[i].Quantity += quantity
			return "Item added to cart", nil
		}
	}
	r.nextID++
	r.items = append(r.items, domain.CartItem{
		ID:        fmt.Sprintf("line-%d", r.nextID),
		ProductID: productID,
		Name:      fmt.Sprintf("product %d", productID),
		UnitPrice: r.prices[productID],
		Quantity:  quantity,
		Size:      size,
		InStock:   true,
	})
	return "Item added to cart", nil
}

func (r *mockRemote) UpdateQuantity(_ context.Context, itemID string, quantity int) (string, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return "", r.err
	}
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items[i].Quantity = quantity
			return "Cart updated", nil
		}
	}
	return "", fmt.Errorf("item not found")
}

func (r *mockRemote) RemoveItem(_ context.Context, itemID string) (string, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return "", r.err
	}
	for i, it := range r.items {
		if it.ID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return "Item removed", nil
		}
	}
	return "", fmt.Errorf("item not found")
}

func (r *mockRemote) ClearCart(context.Context) (string, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.items = nil
	return "Cart cleared", nil
}

func (r *mockRemote) setErr(err error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.err = err
}

type mockNotifier struct {
	m      sync.Mutex
	levels []notify.Level
	msgs   []string
}

func (n *mockNotifier) Notify(_ context.Context, _ string, level notify.Level, message string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.levels = append(n.levels, level)
	n.msgs = append(n.msgs, message)
}

func (n *mockNotifier) errorMessages() []string {
	n.m.Lock()
	defer n.m.Unlock()
	var out []string
	for i, l := range n.levels {
		if l == notify.LevelError {
			out = append(out, n.msgs[i])
		}
	}
	return out
}

func newTestSynchronizer(t *testing.T, remote *mockRemote) (*Synchronizer, *cache.MemoryStore, *mockNotifier) {
	t.Helper()
	store := cache.NewMemoryStore()
	t.Cleanup(store.Close)
	notifier := &mockNotifier{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewSynchronizer(remote, store, notifier, log, DefaultFreshness), store, notifier
}

func TestSummaryEqualsFold_AfterOperationSequence(t *testing.T) {
	remote := &mockRemote{prices: map[int64]int64{1: 1999, 2: 4550}}
	sut, _, _ := newTestSynchronizer(t, remote)
	ctx := context.Background()

	require.NoError(t, sut.AddItem(ctx, "u1", 1, 2, ""))
	require.NoError(t, sut.AddItem(ctx, "u1", 2, 1, ""))

	items, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, sut.UpdateQuantity(ctx, "u1", items[0].ID, 5))
	require.NoError(t, sut.RemoveItem(ctx, "u1", items[1].ID))

	items, err = sut.Cart(ctx, "u1")
	require.NoError(t, err)
	summary, err := sut.Summary(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, domain.Summarize(items), summary)
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, 5, summary.TotalQuantity)
	assert.Equal(t, int64(5*1999), summary.TotalPrice)
}

func TestAddThenRemove_RoundTrip(t *testing.T) {
	remote := &mockRemote{prices: map[int64]int64{1: 1999}}
	sut, _, _ := newTestSynchronizer(t, remote)
	ctx := context.Background()

	before, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, before)

	require.NoError(t, sut.AddItem(ctx, "u1", 1, 2, ""))
	items, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, sut.RemoveItem(ctx, "u1", items[0].ID))

	after, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, after)
	summary, err := sut.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.CartSummary{}, summary)
}

func TestClear_Idempotent(t *testing.T) {
	remote := &mockRemote{prices: map[int64]int64{1: 1999}}
	sut, _, _ := newTestSynchronizer(t, remote)
	ctx := context.Background()

	require.NoError(t, sut.AddItem(ctx, "u1", 1, 3, ""))

	require.NoError(t, sut.Clear(ctx, "u1"))
	first, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, sut.Clear(ctx, "u1"))
	second, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)

	assert.Empty(t, first)
	assert.Equal(t, first, second)
}

func TestMutationFailure_RollsBackToSnapshot(t *testing.T) {
	remote := &mockRemote{prices: map[int64]int64{1: 1999}}
	sut, store, notifier := newTestSynchronizer(t, remote)
	ctx := context.Background()

	require.NoError(t, sut.AddItem(ctx, "u1", 1, 2, ""))
	pre, err := store.Get(ctx, "u1")
	require.NoError(t, err)

	remote.setErr(&api.APIError{Status: 422, Message: "Only 1 left in stock"})
	err = sut.UpdateQuantity(ctx, "u1", pre.Items[0].ID, 99)
	require.Error(t, err)

	post, errGet := store.Get(ctx, "u1")
	require.NoError(t, errGet)
	assert.Equal(t, pre.Items, post.Items)
	assert.Equal(t, pre.Summary, post.Summary)

	require.NotEmpty(t, notifier.errorMessages())
	assert.Equal(t, "Only 1 left in stock", notifier.errorMessages()[0])
}

func TestClearFailure_RestoresItems(t *testing.T) {
	remote := &mockRemote{prices: map[int64]int64{1: 1999, 2: 4550}}
	sut, _, notifier := newTestSynchronizer(t, remote)
	ctx := context.Background()

	require.NoError(t, sut.AddItem(ctx, "u1", 1, 1, ""))
	require.NoError(t, sut.AddItem(ctx, "u1", 2, 2, ""))
	pre, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)

	remote.setErr(fmt.Errorf("connection reset"))
	require.Error(t, sut.Clear(ctx, "u1"))

	post, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pre, post)
	assert.Contains(t, notifier.errorMessages()[0], "Could not update your cart")
}

func TestUpdateQuantity_RejectsNonPositive(t *testing.T) {
	remote := &mockRemote{}
	sut, _, notifier := newTestSynchronizer(t, remote)

	assert.ErrorIs(t, sut.UpdateQuantity(context.Background(), "u1", "line-1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, sut.UpdateQuantity(context.Background(), "u1", "line-1", -3), ErrInvalidQuantity)
	assert.Empty(t, notifier.msgs)
	assert.Zero(t, remote.getCalls)
}

func TestOptimisticState_VisibleBeforeRemoteResolves(t *testing.T) {
	gate := make(chan struct{})
	remote := &mockRemote{prices: map[int64]int64{1: 1999}, gate: gate}
	sut, store, _ := newTestSynchronizer(t, remote)
	ctx := context.Background()

	// warm the view so mutate does not need a remote read first
	_, err := sut.Cart(ctx, "u1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- sut.AddItem(ctx, "u1", 1, 2, "") }()

	require.Eventually(t, func() bool {
		view, errGet := store.Get(ctx, "u1")
		return errGet == nil && len(view.Items) == 1 && view.Items[0].Quantity == 2
	}, time.Second, 10*time.Millisecond, "optimistic line not visible")

	close(gate)
	require.NoError(t, <-done)

	// the provisional id is replaced by the server's on refetch
	view, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "line-1", view.Items[0].ID)
	assert.Equal(t, int64(1999), view.Items[0].UnitPrice)
}

func TestView_ServesCacheWithinFreshnessWindow(t *testing.T) {
	remote := &mockRemote{}
	sut, _, _ := newTestSynchronizer(t, remote)
	ctx := context.Background()

	_, err := sut.View(ctx, "u1")
	require.NoError(t, err)
	_, err = sut.View(ctx, "u1")
	require.NoError(t, err)

	remote.m.RLock()
	defer remote.m.RUnlock()
	assert.Equal(t, 1, remote.getCalls)
}
