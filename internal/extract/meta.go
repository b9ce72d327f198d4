package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricescout/backend/internal/domain"
)

// metaContent returns the content attribute of the first matching meta tag
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// extractMetaTags reads Open-Graph and merchant product meta tags. Many
// storefronts publish product:price:amount / og:title even when they omit
// JSON-LD.
func extractMetaTags(doc *goquery.Document, _ domain.SourceDescriptor) *candidate {
	priceText := metaContent(doc,
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
		`meta[itemprop="price"]`,
		`meta[name="twitter:data1"]`,
	)
	if priceText == "" {
		return nil
	}

	price, ok := parseAmount(priceText)
	if !ok {
		return nil
	}

	name := metaContent(doc,
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
		`meta[itemprop="name"]`,
	)
	if name == "" {
		name = strings.TrimSpace(doc.Find("title").First().Text())
	}

	currency := metaContent(doc,
		`meta[property="product:price:currency"]`,
		`meta[property="og:price:currency"]`,
		`meta[itemprop="priceCurrency"]`,
	)
	if currency == "" {
		currency = currencyFromText(priceText)
	}

	availability := metaContent(doc,
		`meta[property="product:availability"]`,
		`meta[property="og:availability"]`,
		`meta[itemprop="availability"]`,
	)

	link := metaContent(doc, `meta[property="og:url"]`)

	return &candidate{
		name:         name,
		price:        price,
		currency:     currency,
		availability: parseAvailability(availability),
		link:         link,
	}
}
