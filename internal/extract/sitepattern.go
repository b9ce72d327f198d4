package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricescout/backend/internal/domain"
)

// siteRules is a small set of selector rules tuned for one marketplace's
// markup. Selectors are tried in order; the first non-empty text wins.
type siteRules struct {
	priceSelectors []string
	nameSelectors  []string
	stockSelectors []string
}

// sitePatternRegistry maps a domain fragment to its rules. Matching is by
// substring on the request host, so "amazon." covers every amazon TLD.
var sitePatternRegistry = map[string]siteRules{
	"amazon.": {
		priceSelectors: []string{
			"span.a-price span.a-offscreen",
			".a-price-whole",
			"#priceblock_ourprice",
			"#priceblock_dealprice",
		},
		nameSelectors:  []string{"#productTitle", "#title span"},
		stockSelectors: []string{"#availability span"},
	},
	"ebay.": {
		priceSelectors: []string{
			".x-price-primary span.ux-textspans",
			"#prcIsum",
			"span[itemprop=price]",
		},
		nameSelectors: []string{"h1.x-item-title__mainTitle span", "#itemTitle"},
	},
	"walmart.com": {
		priceSelectors: []string{
			`span[itemprop="price"]`,
			`span[data-automation-id="product-price"]`,
		},
		nameSelectors: []string{`h1[itemprop="name"]`, "h1#main-title"},
	},
	"flipkart.com": {
		priceSelectors: []string{"div.Nx9bqj", "div._30jeq3"},
		nameSelectors:  []string{"span.VU-ZEz", "span.B_NuCI"},
	},
	"bestbuy.com": {
		priceSelectors: []string{
			`div[data-testid="customer-price"] span`,
			".priceView-hero-price span",
		},
		nameSelectors: []string{".sku-title h1", "h1.heading-5"},
	},
}

// extractSitePattern applies domain-specific selector rules when the
// source host is in the registry
func extractSitePattern(doc *goquery.Document, source domain.SourceDescriptor) *candidate {
	host := hostOf(source.URL)
	if host == "" {
		return nil
	}

	rules, ok := lookupSiteRules(host)
	if !ok {
		return nil
	}

	priceText := firstText(doc, rules.priceSelectors)
	if priceText == "" {
		return nil
	}
	price, parsed := parseAmount(priceText)
	if !parsed {
		return nil
	}

	name := firstText(doc, rules.nameSelectors)

	availability := domain.UnknownStock
	if stockText := firstText(doc, rules.stockSelectors); stockText != "" {
		availability = availabilityFromVisibleText(stockText)
	}

	return &candidate{
		name:         name,
		price:        price,
		currency:     currencyFromText(priceText),
		availability: availability,
	}
}

func lookupSiteRules(host string) (siteRules, bool) {
	for fragment, rules := range sitePatternRegistry {
		if strings.Contains(host, fragment) {
			return rules, true
		}
	}
	return siteRules{}, false
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// availabilityFromVisibleText maps human-readable stock phrases ("In
// Stock", "Currently unavailable", "Sold out") onto the domain enum
func availabilityFromVisibleText(s string) domain.Availability {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "out of stock") ||
		strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "sold out"):
		return domain.OutOfStock
	case strings.Contains(lower, "in stock") || strings.Contains(lower, "available"):
		return domain.InStock
	default:
		return domain.UnknownStock
	}
}
