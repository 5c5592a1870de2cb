package search

import (
	"sort"
	"strings"

	"storefront/internal/domain/entity"
)

// Field weights and bonuses applied to a query match. The threshold is the
// lowest total score a product needs to appear in results.
//
// An empty field scores 0 for every query. Plain similarity would rate it
// 0.8, since the empty string is contained in any query.
const (
	DescriptionWeight = 0.7
	CategoryWeight    = 0.5

	NameTokenBonus        = 0.3
	DescriptionTokenBonus = 0.2
	CategoryTokenBonus    = 0.1

	MinTokenLength     = 2
	RelevanceThreshold = 0.1
)

// ScoredProduct is a product together with its score for one query.
type ScoredProduct struct {
	entity.Product
	Similarity float64 `json:"similarity"`
}

type Ranker struct {
	strategy Strategy
}

func NewRanker(strategy Strategy) *Ranker {
	if strategy == nil {
		strategy = Positional{}
	}
	return &Ranker{strategy: strategy}
}

func (r *Ranker) Strategy() Strategy {
	return r.strategy
}

// Rank ranks products with the positional strategy.
func Rank(products []entity.Product, query string, filters Filters) []ScoredProduct {
	return NewRanker(Positional{}).Rank(products, query, filters)
}

// Rank filters products by category and price, scores them against query and
// orders them by filters.SortBy. With an empty query every product that passes
// the filters is returned with a zero score.
func (r *Ranker) Rank(products []entity.Product, query string, filters Filters) []ScoredProduct {
	query = strings.TrimSpace(query)
	results := make([]ScoredProduct, 0, len(products))

	if query == "" {
		for _, p := range products {
			if filters.matches(p.Category, p.Price) {
				results = append(results, ScoredProduct{Product: p})
			}
		}
		sortResults(results, filters.SortBy)
		return results
	}

	tokens := queryTokens(query)
	for _, p := range products {
		if !filters.matches(p.Category, p.Price) {
			continue
		}
		score := r.Score(p, query, tokens)
		if score > RelevanceThreshold {
			results = append(results, ScoredProduct{Product: p, Similarity: score})
		}
	}

	sortResults(results, filters.SortBy)
	return results
}

// Score is the best weighted field similarity plus the token bonuses.
func (r *Ranker) Score(p entity.Product, query string, tokens []string) float64 {
	nameScore := r.fieldScore(p.Name, query)
	descScore := r.fieldScore(p.Description, query) * DescriptionWeight
	categoryScore := r.fieldScore(p.Category, query) * CategoryWeight

	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)
	category := strings.ToLower(p.Category)

	bonus := 0.0
	for _, token := range tokens {
		if strings.Contains(name, token) {
			bonus += NameTokenBonus
		}
		if strings.Contains(desc, token) {
			bonus += DescriptionTokenBonus
		}
		if strings.Contains(category, token) {
			bonus += CategoryTokenBonus
		}
	}

	return max(nameScore, descScore, categoryScore) + bonus
}

// an empty field would otherwise count as contained in every query
func (r *Ranker) fieldScore(field, query string) float64 {
	if strings.TrimSpace(field) == "" {
		return 0
	}
	return r.strategy.Similarity(field, query)
}

func queryTokens(query string) []string {
	var tokens []string
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(token)) >= MinTokenLength {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func sortResults(results []ScoredProduct, key SortKey) {
	switch key {
	case SortName:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
		})
	case SortPriceLow:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Price < results[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Price > results[j].Price
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Similarity > results[j].Similarity
		})
	}
}

// Paginate returns the 1-based page of results and the total count.
func Paginate(results []ScoredProduct, page, pageSize int) ([]ScoredProduct, int) {
	total := len(results)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []ScoredProduct{}, total
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []ScoredProduct{}, total
	}
	end := min(start+pageSize, total)
	return results[start:end], total
}
