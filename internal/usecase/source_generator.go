package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// commerceIntentSuffix is appended to web searches so organic results
// skew toward product listings instead of reviews and news
const commerceIntentSuffix = "buy online"

// SourceGenerator turns (query, country) into an ordered, deduplicated
// list of candidate sources. Strategy order is shopping search, web
// search, known-domain registry; the order doubles as the priority later
// stages use for tie-breaking.
type SourceGenerator struct {
	searchAPI domain.SearchAPIClient
	debug     bool
}

// NewSourceGenerator creates a source generator backed by the external
// URL-discovery API
func NewSourceGenerator(searchAPI domain.SearchAPIClient) *SourceGenerator {
	return &SourceGenerator{searchAPI: searchAPI}
}

// SetDebug toggles generation logging
func (g *SourceGenerator) SetDebug(enabled bool) {
	g.debug = enabled
}

// Generate produces the candidate sources for one query. Returns
// ErrUnsupportedCountry for unknown countries and propagates search API
// failures, since without candidates the query cannot proceed.
func (g *SourceGenerator) Generate(ctx context.Context, query, country string, limitHint int) ([]domain.SourceDescriptor, error) {
	profile, err := domain.ProfileFor(country)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	var sources []domain.SourceDescriptor

	// Strategy 1: shopping search on the localized search domain.
	// Shopping results are empirically higher-precision, so this
	// descriptor wins dedup conflicts below.
	sources = append(sources, domain.SourceDescriptor{
		URL:     fmt.Sprintf("https://%s/search?tbm=shop&q=%s", profile.SearchDomain, url.QueryEscape(query)),
		Origin:  domain.OriginShopping,
		Country: profile.Code,
		Label:   profile.SearchDomain,
	})

	// Strategy 2: organic web results with commerce intent appended
	candidates, err := g.searchAPI.Discover(ctx, query+" "+commerceIntentSuffix, profile.Name)
	if err != nil {
		return nil, err
	}
	for _, cand := range candidates {
		label := cand.Label
		if label == "" {
			label = registrableDomain(cand.Link)
		}
		sources = append(sources, domain.SourceDescriptor{
			URL:     cand.Link,
			Origin:  domain.OriginWebSearch,
			Country: profile.Code,
			Label:   label,
		})
	}

	// Strategy 3: synthesized search URLs for the country's known shops
	for _, knownDomain := range profile.KnownDomains {
		sources = append(sources, domain.SourceDescriptor{
			URL:     searchURLFor(knownDomain, query),
			Origin:  domain.OriginKnownDomain,
			Country: profile.Code,
			Label:   knownDomain,
		})
	}

	deduped := dedupeByDomain(sources)

	if limitHint > 0 && len(deduped) > limitHint {
		deduped = deduped[:limitHint]
	}

	for i := range deduped {
		deduped[i].Priority = i
	}

	if g.debug {
		log.Printf("[SOURCES] generated %d sources for %q in %s", len(deduped), query, profile.Code)
	}

	return deduped, nil
}

// dedupeByDomain keeps at most one descriptor per registrable domain,
// preferring the earliest strategy. Output order is stable.
func dedupeByDomain(sources []domain.SourceDescriptor) []domain.SourceDescriptor {
	seen := make(map[string]bool, len(sources))
	result := make([]domain.SourceDescriptor, 0, len(sources))

	for _, source := range sources {
		key := registrableDomain(source.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, source)
	}

	return result
}

// knownSearchPaths maps marketplaces onto their on-site search URL shape.
// Anything unlisted gets the common /search?q= convention.
var knownSearchPaths = map[string]string{
	"amazon":   "/s?k=%s",
	"ebay":     "/sch/i.html?_nkw=%s",
	"flipkart": "/search?q=%s",
	"walmart":  "/search?q=%s",
	"rakuten":  "/search/mall/%s/",
}

func searchURLFor(shopDomain, query string) string {
	escaped := url.QueryEscape(query)
	path := "/search?q=" + escaped

	for fragment, template := range knownSearchPaths {
		if strings.Contains(shopDomain, fragment) {
			path = fmt.Sprintf(template, escaped)
			break
		}
	}

	return "https://www." + shopDomain + path
}
