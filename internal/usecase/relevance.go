package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Token weights for relevance scoring. Numeric tokens (model numbers,
// storage sizes) disambiguate product variants, so they count more than
// generic words.
const (
	weightWord    = 1.0
	weightNumeric = 2.0

	// phraseBonus is the largest single contribution: the entire query
	// appearing verbatim in the product name is the strongest signal.
	phraseBonus = 0.3

	// tokenShare is the score mass distributed across token overlap
	tokenShare = 1.0 - phraseBonus

	// DefaultRelevanceFloor is the minimum score a listing must reach to
	// stay in the result set
	DefaultRelevanceFloor = 0.3
)

// stopWords are tokens that carry no signal for product matching
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"new": true, "buy": true, "online": true, "best": true, "price": true,
	"cheap": true, "deal": true, "sale": true, "shop": true, "free": true,
	"shipping": true, "official": true, "store": true,
}

// RelevanceScorer computes query/product-name similarity in [0,1]
type RelevanceScorer struct{}

// NewRelevanceScorer creates a relevance scorer
func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// Score returns a weighted keyword-overlap similarity between the query
// and a product name. Exact full-phrase matches contribute a fixed bonus;
// shared significant tokens contribute additively, normalized by the
// query's total token weight so the score stays in [0,1]. The score is
// monotonically non-decreasing in matched token weight.
func (s *RelevanceScorer) Score(query, productName string) float64 {
	if productName == "" {
		return 0
	}

	queryTokens := significantTokens(query)
	if len(queryTokens) == 0 {
		return 0
	}

	nameSet := make(map[string]bool)
	for _, token := range significantTokens(productName) {
		nameSet[token] = true
	}

	var totalWeight, matchedWeight float64
	for _, token := range queryTokens {
		weight := tokenWeight(token)
		totalWeight += weight
		if nameSet[token] {
			matchedWeight += weight
		}
	}

	if totalWeight == 0 {
		return 0
	}

	score := tokenShare * (matchedWeight / totalWeight)

	if containsPhrase(productName, query) {
		score += phraseBonus
	}

	if score > 1 {
		score = 1
	}
	return score
}

// significantTokens lowercases, strips punctuation and drops stop words
// and short non-numeric fragments
func significantTokens(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if stopWords[word] {
			continue
		}
		// Short tokens are noise unless they carry digits ("5g", "s24")
		if len(word) < 3 && !containsDigit(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// tokenWeight gives digit-bearing tokens double weight
func tokenWeight(token string) float64 {
	if containsDigit(token) {
		return weightNumeric
	}
	return weightWord
}

func containsDigit(s string) bool {
	for _, c := range s {
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}

// containsPhrase checks for a whole-query substring match after reducing
// both sides to their significant tokens, so stop words and punctuation
// don't defeat an otherwise exact match
func containsPhrase(name, query string) bool {
	queryPhrase := strings.Join(significantTokens(query), " ")
	if queryPhrase == "" {
		return false
	}
	namePhrase := strings.Join(significantTokens(name), " ")
	return strings.Contains(" "+namePhrase+" ", " "+queryPhrase+" ")
}
