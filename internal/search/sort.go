package search

import (
	"sort"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

// sortProducts orders in place. Sorts are stable so ties keep the
// original collection order. An unknown or empty key leaves the slice
// untouched.
func sortProducts(items []domain.Product, sortBy string) {
	switch sortBy {
	case domain.SortByName:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	case domain.SortByPriceLow:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case domain.SortByPriceHigh:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	case domain.SortByRating:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Rating > items[j].Rating })
	case domain.SortByPopularity:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Popularity > items[j].Popularity })
	}
}
