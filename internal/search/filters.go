package search

import (
	"math"
	"strings"
)

type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
)

// ParseSortKey returns relevance for anything it does not recognise.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortName:
		return SortName
	case SortPriceLow:
		return SortPriceLow
	case SortPriceHigh:
		return SortPriceHigh
	default:
		return SortRelevance
	}
}

// Filters narrow and order a search. An empty Category matches every
// category, and a NaN price bound is treated as no bound.
type Filters struct {
	Category string
	MinPrice float64
	MaxPrice float64
	SortBy   SortKey
}

func DefaultFilters() Filters {
	return Filters{
		MinPrice: 0,
		MaxPrice: math.Inf(1),
		SortBy:   SortRelevance,
	}
}

func (f *Filters) Reset() {
	*f = DefaultFilters()
}

func (f Filters) matches(category string, price float64) bool {
	if f.Category != "" && category != f.Category {
		return false
	}
	if !math.IsNaN(f.MinPrice) && price < f.MinPrice {
		return false
	}
	if !math.IsNaN(f.MaxPrice) && price > f.MaxPrice {
		return false
	}
	return true
}
