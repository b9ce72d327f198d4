package usecase

import (
	"regexp"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

var namePunctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// normalizeProductName lowercases, strips punctuation and collapses
// whitespace so near-identical titles compare equal
func normalizeProductName(name string) string {
	normalized := strings.ToLower(name)
	normalized = namePunctuationRegex.ReplaceAllString(normalized, " ")
	return strings.Join(strings.Fields(normalized), " ")
}

// dedupeKey identifies a listing by where it is sold and what it claims
// to be
type dedupeKey struct {
	domain string
	name   string
}

// Dedupe collapses listings describing the same product on the same shop.
// When two listings share a key the winner has higher relevance, then
// lower price, then earlier source priority. Output preserves the input
// position of each surviving key, so the result is deterministic for a
// given input sequence.
func Dedupe(listings []domain.ScoredListing) []domain.ScoredListing {
	if len(listings) <= 1 {
		return listings
	}

	position := make(map[dedupeKey]int, len(listings))
	result := make([]domain.ScoredListing, 0, len(listings))

	for _, listing := range listings {
		key := dedupeKey{
			domain: registrableDomain(listing.Link),
			name:   normalizeProductName(listing.ProductName),
		}

		idx, exists := position[key]
		if !exists {
			position[key] = len(result)
			result = append(result, listing)
			continue
		}

		if betterListing(listing, result[idx]) {
			result[idx] = listing
		}
	}

	return result
}

// betterListing reports whether a should replace b under the dedup
// tie-break rules
func betterListing(a, b domain.ScoredListing) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.SourcePriority < b.SourcePriority
}
