package domain

import "time"

// CartItem is one line of the user's cart. ID identifies the cart entry
// itself, ProductID the product it points at. Quantity is at least 1 for
// as long as the line exists; removing a line deletes it outright.
type CartItem struct {
	ID         string `json:"id"`
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"` // cents
	Image      string `json:"image,omitempty"`
	Quantity   int    `json:"quantity"`
	Size       string `json:"size,omitempty"`
	InStock    bool   `json:"in_stock"`
	StockCount int    `json:"stock_count"`
}

type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartSummary is derived state. It is never stored or mutated on its own;
// callers obtain it through Summarize so it cannot drift from the items.
type CartSummary struct {
	ItemCount     int   `json:"item_count"`
	TotalQuantity int   `json:"total_quantity"`
	TotalPrice    int64 `json:"total_price"`
}

// Summarize folds the item list into its summary.
func Summarize(items []CartItem) CartSummary {
	var s CartSummary
	for _, it := range items {
		s.ItemCount++
		s.TotalQuantity += it.Quantity
		s.TotalPrice += it.UnitPrice * int64(it.Quantity)
	}
	return s
}

// CloneItems copies the item slice so snapshots stay untouched by later
// optimistic mutations.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
