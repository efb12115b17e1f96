package dedup

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// normalizeDescription lowercases and strips punctuation so that
// "BigBasket, Grocery" and "bigbasket grocery" compare equal.
func normalizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenJaccard computes token-set overlap between two normalized
// strings: |intersection| / |union|.
func tokenJaccard(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// levenshteinRatio converts edit distance into a 0-1 similarity.
func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// DescriptionSimilarity returns a normalized 0-1 similarity between
// two free-text descriptions. Token overlap catches reordered words
// ("Grocery BigBasket" vs "BigBasket Grocery"); the edit-distance
// ratio catches small spelling variations. The stronger signal wins.
func DescriptionSimilarity(a, b string) float64 {
	na := normalizeDescription(a)
	nb := normalizeDescription(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	jaccard := tokenJaccard(na, nb)
	ratio := levenshteinRatio(na, nb)
	if jaccard > ratio {
		return jaccard
	}
	return ratio
}
