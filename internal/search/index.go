package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

// DefaultMaxResults bounds the returned slice for display performance.
// The true match count is always reported alongside it.
const DefaultMaxResults = 100

type Query struct {
	Text       string
	Filters    domain.Filters
	MaxResults int
}

// Result carries the truncated item slice plus the counts the UI needs
// to render "showing N of M". ResultCount is the true match count before
// truncation; Total is the size of the indexed collection.
type Result struct {
	Items       []domain.Product `json:"items"`
	ResultCount int              `json:"result_count"`
	Total       int              `json:"total"`
}

// Index is a word-based inverted index over an in-memory product list.
// The first query term resolves through the index (prefix match on
// tokens); further terms narrow the candidate set by substring. It is
// rebuilt wholesale when the identity set of items changes, detected via
// an xxhash signature of the ids, never patched incrementally.
type Index struct {
	mu        sync.RWMutex
	items     []domain.Product
	texts     []string // lowercase name+description+tags per item
	postings  map[string][]int
	tokens    []string // sorted vocabulary, for prefix lookups
	signature uint64
	built     bool
}

func NewIndex() *Index {
	return &Index{postings: make(map[string][]int)}
}

// Update swaps in a new collection. The index is rebuilt only when the
// id set actually changed; it reports whether a rebuild happened.
func (ix *Index) Update(items []domain.Product) bool {
	sig := signatureOf(items)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if sig == ix.signature && ix.built {
		return false
	}
	ix.rebuild(items, sig)
	return true
}

func (ix *Index) rebuild(items []domain.Product, sig uint64) {
	ix.items = items
	ix.signature = sig
	ix.built = true
	ix.texts = make([]string, len(items))
	ix.postings = make(map[string][]int)

	for i, p := range items {
		text := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
		ix.texts[i] = text
		seen := make(map[string]bool)
		for _, tok := range strings.Fields(text) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			ix.postings[tok] = append(ix.postings[tok], i)
		}
	}

	ix.tokens = make([]string, 0, len(ix.postings))
	for tok := range ix.postings {
		ix.tokens = append(ix.tokens, tok)
	}
	sort.Strings(ix.tokens)
}

// Search runs the full pipeline: text match, conjunctive filters, stable
// sort, truncation.
func (ix *Index) Search(q Query) Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(q.Text))

	var candidates []int
	if len(terms) == 0 {
		candidates = make([]int, len(ix.items))
		for i := range ix.items {
			candidates[i] = i
		}
	} else {
		candidates = ix.lookupPrefix(terms[0])
		if len(candidates) == 0 {
			// no index entry for the first term, skip the scan entirely
			return Result{Total: len(ix.items)}
		}
		for _, term := range terms[1:] {
			kept := candidates[:0]
			for _, i := range candidates {
				if strings.Contains(ix.texts[i], term) {
					kept = append(kept, i)
				}
			}
			candidates = kept
		}
	}

	matched := make([]domain.Product, 0, len(candidates))
	for _, i := range candidates {
		if q.Filters.Match(ix.items[i]) {
			matched = append(matched, ix.items[i])
		}
	}

	sortProducts(matched, q.Filters.SortBy)

	count := len(matched)
	max := q.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}
	if len(matched) > max {
		matched = matched[:max]
	}

	return Result{Items: matched, ResultCount: count, Total: len(ix.items)}
}

// lookupPrefix unions the postings of every indexed token sharing the
// prefix, in original collection order.
func (ix *Index) lookupPrefix(prefix string) []int {
	start := sort.SearchStrings(ix.tokens, prefix)
	seen := make(map[int]bool)
	var out []int
	for i := start; i < len(ix.tokens) && strings.HasPrefix(ix.tokens[i], prefix); i++ {
		for _, pos := range ix.postings[ix.tokens[i]] {
			if !seen[pos] {
				seen[pos] = true
				out = append(out, pos)
			}
		}
	}
	sort.Ints(out)
	return out
}

func signatureOf(items []domain.Product) uint64 {
	d := xxhash.New()
	for _, p := range items {
		d.WriteString(p.ID)
		d.Write([]byte{0})
	}
	return d.Sum64()
}
