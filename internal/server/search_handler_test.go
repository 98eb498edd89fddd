package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/search"
)

func newSearchHandler(t *testing.T) *SearchHandler {
	t.Helper()
	ix := search.NewIndex()
	ix.Update([]domain.Product{
		{ID: "1", Name: "Ashwagandha Capsules", Category: "adaptogens", Price: 1999, InStock: true},
		{ID: "2", Name: "Ashwagandha Powder", Category: "adaptogens", Price: 2999, InStock: false},
		{ID: "3", Name: "Omega-3 Fish Oil", Category: "oils", Price: 4550, InStock: true},
	})
	h := NewSearchHandler(ix, 5*time.Millisecond)
	t.Cleanup(h.Close)
	return h
}

func doSearch(t *testing.T, h *SearchHandler, target string) (*httptest.ResponseRecorder, search.Result) {
	t.Helper()
	recorder := httptest.NewRecorder()
	h.Search(recorder, httptest.NewRequest("GET", target, nil))
	var res search.Result
	if recorder.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
	}
	return recorder, res
}

func TestSearch_TextQuery(t *testing.T) {
	recorder, res := doSearch(t, newSearchHandler(t), "/search?q=ash")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 2, res.ResultCount)
	assert.Equal(t, 3, res.Total)
}

func TestSearch_InStockFalseIsARealConstraint(t *testing.T) {
	_, res := doSearch(t, newSearchHandler(t), "/search?in_stock=false")

	require.Len(t, res.Items, 1)
	assert.Equal(t, "2", res.Items[0].ID)
}

func TestSearch_OmittedFilterNotApplied(t *testing.T) {
	_, res := doSearch(t, newSearchHandler(t), "/search")

	assert.Equal(t, 3, res.ResultCount)
}

func TestSearch_SortAndTruncate(t *testing.T) {
	_, res := doSearch(t, newSearchHandler(t), "/search?sort=price-low&max_results=2")

	require.Len(t, res.Items, 2)
	assert.Equal(t, "1", res.Items[0].ID)
	assert.Equal(t, "2", res.Items[1].ID)
	assert.Equal(t, 3, res.ResultCount)
}

func TestSearch_InvalidParams(t *testing.T) {
	h := newSearchHandler(t)

	for _, target := range []string{
		"/search?min_price=abc",
		"/search?in_stock=maybe",
		"/search?sort=sideways",
		"/search?max_results=-1",
	} {
		recorder, _ := doSearch(t, h, target)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, target)
	}
}

func TestSuggest_DeliversDebouncedResult(t *testing.T) {
	h := newSearchHandler(t)

	recorder := httptest.NewRecorder()
	request := asUser(httptest.NewRequest("GET", "/search/suggest?q=omega", nil), "u1")
	h.Suggest(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var res search.Result
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
	require.Len(t, res.Items, 1)
	assert.Equal(t, "3", res.Items[0].ID)
}

func TestSuggest_IdleSessionQueriersEvicted(t *testing.T) {
	h := newSearchHandler(t)

	for i := 0; i < 500; i++ {
		h.querierFor(fmt.Sprintf("guest-%d", i))
	}
	h.mu.Lock()
	require.Len(t, h.queriers, 500)
	// age every session past the idle TTL
	for _, sq := range h.queriers {
		sq.lastSeen = time.Now().Add(-querierIdleTTL - time.Minute)
	}
	h.mu.Unlock()

	h.sweep()

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Empty(t, h.queriers)
}

func TestSweep_KeepsActiveSessions(t *testing.T) {
	h := newSearchHandler(t)

	h.querierFor("idle")
	h.querierFor("active")
	h.mu.Lock()
	h.queriers["idle"].lastSeen = time.Now().Add(-querierIdleTTL - time.Minute)
	h.mu.Unlock()

	h.sweep()

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.queriers, 1)
	assert.Contains(t, h.queriers, "active")
}

func TestSuggest_SameSessionReusesQuerier(t *testing.T) {
	h := newSearchHandler(t)

	first := h.querierFor("guest-abc")
	second := h.querierFor("guest-abc")
	assert.Same(t, first, second)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Len(t, h.queriers, 1)
}

func TestSuggest_RequiresIdentity(t *testing.T) {
	recorder := httptest.NewRecorder()
	newSearchHandler(t).Suggest(recorder, httptest.NewRequest("GET", "/search/suggest?q=x", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
