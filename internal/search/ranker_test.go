package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
)

func catalog() []entity.Product {
	return []entity.Product{
		{ID: "p1", Name: "iPhone 15", Description: "Latest Apple smartphone", Category: "electronics", Price: 1299.99},
		{ID: "p2", Name: "Scented Candle Set", Description: "Soy wax candles", Category: "home-living", Price: 34.99},
		{ID: "p3", Name: "Premium Wireless Headphones", Description: "Noise cancelling headphones", Category: "electronics", Price: 199.99},
		{ID: "p4", Name: "Ceramic Vase", Description: "Hand glazed", Category: "home-living", Price: 49.5},
	}
}

func ids(results []ScoredProduct) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestRankEmptyQuerySortsByPrice(t *testing.T) {
	filters := DefaultFilters()
	filters.SortBy = SortPriceLow

	results := Rank(catalog(), "", filters)
	assert.Equal(t, []string{"p2", "p4", "p3", "p1"}, ids(results))

	filters.SortBy = SortPriceHigh
	results = Rank(catalog(), "   ", filters)
	assert.Equal(t, []string{"p1", "p3", "p4", "p2"}, ids(results))
}

func TestRankEmptyQueryRelevanceKeepsInputOrder(t *testing.T) {
	results := Rank(catalog(), "", DefaultFilters())
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(results))
}

func TestRankEmptyQuerySortsByName(t *testing.T) {
	filters := DefaultFilters()
	filters.SortBy = SortName

	results := Rank(catalog(), "", filters)
	assert.Equal(t, []string{"p4", "p1", "p3", "p2"}, ids(results))
}

func TestRankSubstringMatchComesFirst(t *testing.T) {
	results := Rank(catalog(), "iphone", DefaultFilters())
	require.NotEmpty(t, results)
	assert.Equal(t, "p1", results[0].ID)
	assert.GreaterOrEqual(t, results[0].Similarity, 0.8)
}

func TestRankNameDominatesUnrelatedProduct(t *testing.T) {
	results := Rank(catalog(), "headphones", DefaultFilters())
	require.NotEmpty(t, results)
	assert.Equal(t, "p3", results[0].ID)

	for i, r := range results {
		if r.ID == "p2" {
			assert.Greater(t, i, 0)
		}
	}
}

func TestRankBonusesAddUp(t *testing.T) {
	results := Rank(catalog(), "wireless headphones", DefaultFilters())
	require.NotEmpty(t, results)
	assert.Equal(t, "p3", results[0].ID)
	// containment 0.8, two name tokens 0.6, one description token 0.2
	assert.InDelta(t, 1.6, results[0].Similarity, 1e-9)
}

func TestRankShortTokensGetNoBonus(t *testing.T) {
	r := NewRanker(nil)
	p := entity.Product{Name: "x", Description: "", Category: ""}
	assert.Equal(t, 0.0, r.Score(p, "q", queryTokens("q")))
}

func TestRankEmptyFieldsScoreZero(t *testing.T) {
	// unguarded, the empty description would match at 0.8 * DescriptionWeight
	assert.Equal(t, 0.8, Similarity("", "zzzz"))

	products := []entity.Product{
		{ID: "bare", Name: "Mug", Description: "", Category: ""},
		{ID: "full", Name: "Candle", Description: "Soy wax", Category: "home-living"},
	}
	r := NewRanker(nil)
	assert.Equal(t, 0.0, r.Score(products[0], "zzzz", queryTokens("zzzz")))
	assert.Empty(t, Rank(products, "zzzz", DefaultFilters()))

	results := Rank(products, "mug", DefaultFilters())
	assert.Equal(t, []string{"bare"}, ids(results))
}

func TestRankDropsLowScores(t *testing.T) {
	results := Rank(catalog(), "zzzz", DefaultFilters())
	assert.Empty(t, results)
}

func TestRankFiltersApplyWithAndWithoutQuery(t *testing.T) {
	filters := Filters{Category: "electronics", MinPrice: 500, MaxPrice: 2000, SortBy: SortRelevance}

	for _, q := range []string{"", "set", "iphone", "candle"} {
		for _, r := range Rank(catalog(), q, filters) {
			assert.GreaterOrEqual(t, r.Price, filters.MinPrice, q)
			assert.LessOrEqual(t, r.Price, filters.MaxPrice, q)
			assert.Equal(t, "electronics", r.Category, q)
			assert.NotEqual(t, "p2", r.ID, q)
		}
	}

	assert.Equal(t, []string{"p1"}, ids(Rank(catalog(), "", filters)))
}

func TestRankNaNBoundsMeanNoBound(t *testing.T) {
	filters := Filters{MinPrice: math.NaN(), MaxPrice: math.NaN()}
	assert.Len(t, Rank(catalog(), "", filters), 4)
}

func TestRankSortByKeyStillFiltersRelevance(t *testing.T) {
	filters := DefaultFilters()
	filters.SortBy = SortPriceLow

	results := Rank(catalog(), "candle", filters)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Greater(t, r.Similarity, RelevanceThreshold)
	}
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Price, results[i].Price)
	}
}

func TestRankWithLevenshteinStrategy(t *testing.T) {
	r := NewRanker(ParseStrategy(StrategyLevenshtein))
	results := r.Rank(catalog(), "iphone 15", DefaultFilters())
	require.NotEmpty(t, results)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, StrategyLevenshtein, r.Strategy().Name())
}

func TestFiltersReset(t *testing.T) {
	f := Filters{Category: "electronics", MinPrice: 10, MaxPrice: 20, SortBy: SortName}
	f.Reset()
	assert.Equal(t, "", f.Category)
	assert.Equal(t, 0.0, f.MinPrice)
	assert.True(t, math.IsInf(f.MaxPrice, 1))
	assert.Equal(t, SortRelevance, f.SortBy)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceHigh, ParseSortKey("PRICE-HIGH"))
	assert.Equal(t, SortName, ParseSortKey("name"))
	assert.Equal(t, SortRelevance, ParseSortKey("newest"))
}

func TestPaginate(t *testing.T) {
	results := Rank(catalog(), "", DefaultFilters())

	page, total := Paginate(results, 2, 3)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"p4"}, ids(page))

	page, _ = Paginate(results, 0, 2)
	assert.Equal(t, []string{"p1", "p2"}, ids(page))

	page, _ = Paginate(results, 5, 2)
	assert.Empty(t, page)
}
