package search

import (
	"strings"
	"unicode/utf8"
)

// Strategy scores how alike two strings are, from 0 (unrelated) to 1 (equal).
type Strategy interface {
	Name() string
	Similarity(a, b string) float64
}

const (
	StrategyPositional  = "positional"
	StrategyLevenshtein = "levenshtein"
)

// ParseStrategy maps a strategy name to its implementation. Unknown names get
// the positional strategy.
func ParseStrategy(name string) Strategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyLevenshtein:
		return Levenshtein{}
	default:
		return Positional{}
	}
}

// Positional is the storefront's original heuristic: exact match, then
// containment, then word overlap, then per-index character agreement.
type Positional struct{}

func (Positional) Name() string { return StrategyPositional }

func (Positional) Similarity(a, b string) float64 {
	return Similarity(a, b)
}

// Similarity scores a against b with the positional strategy.
//
// Word matching counts the words of a, so the score is not commutative when
// the two strings have different word counts.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	matches := 0
	for _, wa := range wordsA {
		for _, wb := range wordsB {
			if strings.Contains(wb, wa) || strings.Contains(wa, wb) {
				matches++
				break
			}
		}
	}
	if matches > 0 {
		return 0.6 + float64(matches)/float64(max(len(wordsA), len(wordsB)))*0.2
	}

	ra := []rune(a)
	rb := []rune(b)
	longest := max(len(ra), len(rb))
	common := 0
	for i := 0; i < min(len(ra), len(rb)); i++ {
		if ra[i] == rb[i] {
			common++
		}
	}
	ratio := float64(common) / float64(longest)
	if ratio > 0.3 {
		return ratio
	}
	return 0
}

// Levenshtein scores by edit distance: 1 - distance/longer length.
type Levenshtein struct{}

func (Levenshtein) Name() string { return StrategyLevenshtein }

func (Levenshtein) Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(EditDistance(a, b))/float64(longest)
}

// EditDistance is the Levenshtein distance between a and b, counted in runes.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
