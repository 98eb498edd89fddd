package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/search"
)

const (
	// querierIdleTTL bounds how long a session keeps its debounced
	// querier after its last request. Session ids are client-supplied,
	// so entries must not outlive the traffic that created them.
	querierIdleTTL = 10 * time.Minute

	querierSweepInterval = time.Minute
)

type sessionQuerier struct {
	querier  *search.Querier
	lastSeen time.Time
}

type SearchHandler struct {
	index    *search.Index
	debounce time.Duration

	mu       sync.Mutex
	queriers map[string]*sessionQuerier // per session, for suggest

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

func NewSearchHandler(index *search.Index, debounce time.Duration) *SearchHandler {
	h := &SearchHandler{
		index:     index,
		debounce:  debounce,
		queriers:  make(map[string]*sessionQuerier),
		stopSweep: make(chan struct{}),
	}
	h.wg.Add(1)
	go h.sweepLoop()
	return h
}

// Close stops the idle sweep and any pending queries.
func (h *SearchHandler) Close() {
	close(h.stopSweep)
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sq := range h.queriers {
		sq.querier.Stop()
		delete(h.queriers, id)
	}
}

// Search answers a committed query (enter or page load) immediately.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, errs := queryFromRequest(r)
	if len(errs) > 0 {
		respondError(w, http.StatusBadRequest, "invalid search parameters", errs)
		return
	}
	respondJSON(w, http.StatusOK, h.index.Search(q))
}

// Suggest serves typeahead traffic. Rapid requests from one session are
// debounced; a request superseded by a newer keystroke returns 204 so
// the client simply drops it.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing user identity", nil)
		return
	}

	q, errs := queryFromRequest(r)
	if len(errs) > 0 {
		respondError(w, http.StatusBadRequest, "invalid search parameters", errs)
		return
	}
	if q.MaxResults <= 0 || q.MaxResults > 10 {
		q.MaxResults = 10
	}

	res, ok := <-h.querierFor(userID).Submit(r.Context(), q)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *SearchHandler) querierFor(userID string) *search.Querier {
	h.mu.Lock()
	defer h.mu.Unlock()
	sq, ok := h.queriers[userID]
	if !ok {
		sq = &sessionQuerier{querier: search.NewQuerier(h.index, h.debounce)}
		h.queriers[userID] = sq
	}
	sq.lastSeen = time.Now()
	return sq.querier
}

func (h *SearchHandler) sweepLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(querierSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.stopSweep:
			return
		}
	}
}

// sweep evicts queriers idle past the TTL and stops them so their
// pending goroutines exit.
func (h *SearchHandler) sweep() {
	cutoff := time.Now().Add(-querierIdleTTL)
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sq := range h.queriers {
		if sq.lastSeen.Before(cutoff) {
			sq.querier.Stop()
			delete(h.queriers, id)
		}
	}
}

func queryFromRequest(r *http.Request) (search.Query, map[string]string) {
	params := r.URL.Query()
	errs := make(map[string]string)

	q := search.Query{Text: params.Get("q")}

	// Pointer filters: only a present parameter becomes a constraint, so
	// in_stock=false stays distinct from no stock filter at all.
	if params.Has("category") {
		v := params.Get("category")
		q.Filters.Category = &v
	}
	if params.Has("brand") {
		v := params.Get("brand")
		q.Filters.Brand = &v
	}
	if params.Has("min_price") {
		if v, err := strconv.ParseInt(params.Get("min_price"), 10, 64); err == nil {
			q.Filters.MinPrice = &v
		} else {
			errs["min_price"] = "must be an integer"
		}
	}
	if params.Has("max_price") {
		if v, err := strconv.ParseInt(params.Get("max_price"), 10, 64); err == nil {
			q.Filters.MaxPrice = &v
		} else {
			errs["max_price"] = "must be an integer"
		}
	}
	if params.Has("in_stock") {
		if v, err := strconv.ParseBool(params.Get("in_stock")); err == nil {
			q.Filters.InStock = &v
		} else {
			errs["in_stock"] = "must be a boolean"
		}
	}
	if params.Has("featured") {
		if v, err := strconv.ParseBool(params.Get("featured")); err == nil {
			q.Filters.Featured = &v
		} else {
			errs["featured"] = "must be a boolean"
		}
	}
	if params.Has("sort") {
		switch v := params.Get("sort"); v {
		case domain.SortByName, domain.SortByPriceLow, domain.SortByPriceHigh, domain.SortByRating, domain.SortByPopularity:
			q.Filters.SortBy = v
		default:
			errs["sort"] = "unknown sort order"
		}
	}
	if params.Has("max_results") {
		if v, err := strconv.Atoi(params.Get("max_results")); err == nil && v > 0 {
			q.MaxResults = v
		} else {
			errs["max_results"] = "must be a positive integer"
		}
	}

	if len(errs) > 0 {
		return search.Query{}, errs
	}
	return q, nil
}
