package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"a", "iPhone 15", "Premium Wireless Headphones", "çà et là"} {
		assert.Equal(t, 1.0, Similarity(s, s), s)
		assert.Equal(t, 1.0, Levenshtein{}.Similarity(s, s), s)
	}
}

func TestSimilarityIgnoresCase(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("IPHONE", "iphone"))
}

func TestSimilarityContainment(t *testing.T) {
	assert.Equal(t, 0.8, Similarity("iPhone 15", "iphone"))
	assert.Equal(t, 0.8, Similarity("iphone", "iPhone 15"))
}

func TestSimilarityWordMatches(t *testing.T) {
	// "wireless" matches, "speaker" does not: 0.6 + 1/2*0.2
	assert.InDelta(t, 0.7, Similarity("wireless speaker", "headphones wireless"), 1e-9)
}

func TestSimilarityWordMatchesAreAsymmetric(t *testing.T) {
	a := "red lamp"
	b := "lamp lamp shade"
	// a's words: only "lamp" matches -> 0.6 + 1/3*0.2
	assert.InDelta(t, 0.6+0.2/3, Similarity(a, b), 1e-9)
	// b's words: "lamp" twice -> 0.6 + 2/3*0.2
	assert.InDelta(t, 0.6+0.4/3, Similarity(b, a), 1e-9)
}

func TestSimilarityPositionalCharacters(t *testing.T) {
	// c-a-t vs c-a-r: 2 of 3 positions agree
	assert.InDelta(t, 2.0/3.0, Similarity("cat", "car"), 1e-9)
	assert.InDelta(t, 2.0/3.0, Similarity("car", "cat"), 1e-9)
	// 1 of 4 positions is under the cut-off
	assert.Equal(t, 0.0, Similarity("abcd", "axyz"))
}

func TestSimilarityTransposedStrings(t *testing.T) {
	// positional matching sees no agreement, edit distance sees two edits
	assert.Equal(t, 0.0, Similarity("ab", "ba"))
	assert.Equal(t, 0.0, Levenshtein{}.Similarity("ab", "ba"))
	assert.InDelta(t, 0.5, Levenshtein{}.Similarity("abcd", "bacd"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abcd", "bcda"))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 3, EditDistance("kitten", "sitting"))
	assert.Equal(t, 0, EditDistance("", ""))
	assert.Equal(t, 4, EditDistance("", "lamp"))
	assert.Equal(t, 1, EditDistance("café", "cafe"))
}

func TestLevenshteinSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Levenshtein{}.Similarity("", ""))
	assert.InDelta(t, 1-3.0/7.0, Levenshtein{}.Similarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, 0.0, Levenshtein{}.Similarity("", "lamp"))
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, StrategyLevenshtein, ParseStrategy("Levenshtein").Name())
	assert.Equal(t, StrategyPositional, ParseStrategy("positional").Name())
	assert.Equal(t, StrategyPositional, ParseStrategy("").Name())
	assert.Equal(t, StrategyPositional, ParseStrategy("soundex").Name())
}
