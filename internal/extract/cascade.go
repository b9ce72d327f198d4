package extract

import (
	"bytes"
	"log"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricescout/backend/internal/domain"
)

// candidate is a partially extracted listing produced by one strategy.
// Fields may be missing; the cascade decides completeness.
type candidate struct {
	name         string
	price        float64
	currency     string
	availability domain.Availability
	link         string
}

// strategyFunc inspects a parsed page and returns a candidate, or nil when
// the strategy finds nothing it understands
type strategyFunc func(doc *goquery.Document, source domain.SourceDescriptor) *candidate

type strategy struct {
	method domain.ExtractionMethod
	fn     strategyFunc
}

// Cascade applies extraction strategies in fixed priority order and
// returns the first complete listing. Structured data is tried first
// since, when present, it is more reliable than pattern matching; the
// cascade short-circuits on the first success.
type Cascade struct {
	strategies []strategy
	debug      bool
}

// NewCascade creates a cascade with the default strategy order:
// structured data, meta tags, site-specific patterns, generic patterns.
func NewCascade() *Cascade {
	return &Cascade{
		strategies: []strategy{
			{domain.MethodStructuredData, extractStructuredData},
			{domain.MethodMetaTag, extractMetaTags},
			{domain.MethodSitePattern, extractSitePattern},
			{domain.MethodGenericPattern, extractGenericPattern},
		},
	}
}

// SetDebug toggles per-strategy logging
func (c *Cascade) SetDebug(enabled bool) {
	c.debug = enabled
}

// Extract runs the cascade over raw page content. Returns ErrNoListing
// when no strategy yields a complete candidate; that is a per-source
// outcome the pipeline recovers from, not a failure.
func (c *Cascade) Extract(body []byte, source domain.SourceDescriptor) (*domain.ExtractedListing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.ErrNoListing
	}

	profile, profileErr := domain.ProfileFor(source.Country)

	for _, s := range c.strategies {
		cand := s.fn(doc, source)
		if cand == nil {
			continue
		}

		listing, ok := c.complete(cand, source, profile, profileErr == nil)
		if !ok {
			if c.debug {
				log.Printf("[EXTRACT] %s produced incomplete candidate for %s", s.method, source.URL)
			}
			continue
		}

		listing.Method = s.method
		if c.debug {
			log.Printf("[EXTRACT] %s extracted %q at %.2f %s from %s",
				s.method, listing.ProductName, listing.Price, listing.Currency, source.URL)
		}
		return listing, nil
	}

	return nil, domain.ErrNoListing
}

// complete validates a candidate and promotes it to a listing. A candidate
// is complete only with a non-empty name, a positive price and a currency
// that is explicit, symbol-inferred or supplied by the country hint.
func (c *Cascade) complete(cand *candidate, source domain.SourceDescriptor, profile domain.CountryProfile, haveProfile bool) (*domain.ExtractedListing, bool) {
	if cand.name == "" || cand.price <= 0 {
		return nil, false
	}

	currency := normalizeCurrency(cand.currency)
	if currency == "" && haveProfile {
		currency = profile.CurrencyHint
	}
	if currency == "" {
		return nil, false
	}

	link := cand.link
	if link == "" {
		link = source.URL
	}

	availability := cand.availability
	if availability == "" {
		availability = domain.UnknownStock
	}

	return &domain.ExtractedListing{
		Link:         link,
		Price:        cand.price,
		Currency:     currency,
		ProductName:  cand.name,
		SourceLabel:  source.Label,
		Availability: availability,
	}, true
}
