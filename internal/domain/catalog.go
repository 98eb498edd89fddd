package domain

// Product is a searchable catalog record. The search index treats it as
// immutable; a changed catalog is handed to the index wholesale.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Price       int64    `json:"price"` // cents
	InStock     bool     `json:"in_stock"`
	Featured    bool     `json:"featured"`
	Rating      float64  `json:"rating"`
	Popularity  int      `json:"popularity"`
	Tags        []string `json:"tags,omitempty"`
}

// Sort orders accepted by the search index.
const (
	SortByName       = "name"
	SortByPriceLow   = "price-low"
	SortByPriceHigh  = "price-high"
	SortByRating     = "rating"
	SortByPopularity = "popularity"
)

// Filters narrows a search result. Pointer fields distinguish "not
// applied" from an explicit falsy constraint: InStock == nil means no
// stock filter, *InStock == false keeps only out-of-stock items.
type Filters struct {
	Category *string `json:"category,omitempty"`
	Brand    *string `json:"brand,omitempty"`
	MinPrice *int64  `json:"min_price,omitempty"`
	MaxPrice *int64  `json:"max_price,omitempty"`
	InStock  *bool   `json:"in_stock,omitempty"`
	Featured *bool   `json:"featured,omitempty"`
	SortBy   string  `json:"sort_by,omitempty"`
}

// Match reports whether p satisfies every applied filter.
func (f Filters) Match(p Product) bool {
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	if f.Brand != nil && p.Brand != *f.Brand {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}
