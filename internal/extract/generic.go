package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricescout/backend/internal/domain"
)

// Price-like token patterns for the last-resort strategy: a currency
// symbol followed by digits, or digits followed by an ISO code.
var (
	symbolPriceRegex = regexp.MustCompile(`[$€£₹¥₩₺]\s?\d[\d.,]*`)
	isoPriceRegex    = regexp.MustCompile(`(?i)\b(\d[\d.,]*)\s?(USD|EUR|GBP|INR|CAD|AUD|JPY|CNY|CHF|SEK|NOK|DKK|PLN|BRL|MXN|KRW|SGD|HKD|NZD|AED|TRY|ZAR)\b`)
	isoPrefixRegex   = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|INR|CAD|AUD|JPY|CNY|CHF|SEK|NOK|DKK|PLN|BRL|MXN|KRW|SGD|HKD|NZD|AED|TRY|ZAR)\s?(\d[\d.,]*)`)
)

// extractGenericPattern scans visible text for price-like tokens and pairs
// the first hit with the page's most prominent heading as the product name.
// Lowest-priority strategy; it only runs when everything else failed.
func extractGenericPattern(doc *goquery.Document, _ domain.SourceDescriptor) *candidate {
	// Script and style text would pollute the visible-text scan
	doc.Find("script, style, noscript").Remove()

	text := doc.Text()

	priceText := symbolPriceRegex.FindString(text)
	currency := ""

	if priceText != "" {
		currency = currencyFromText(priceText)
	} else if m := isoPriceRegex.FindStringSubmatch(text); m != nil {
		priceText = m[1]
		currency = strings.ToUpper(m[2])
	} else if m := isoPrefixRegex.FindStringSubmatch(text); m != nil {
		priceText = m[2]
		currency = strings.ToUpper(m[1])
	}

	if priceText == "" {
		return nil
	}

	price, ok := parseAmount(priceText)
	if !ok {
		return nil
	}

	return &candidate{
		name:     headingText(doc),
		price:    price,
		currency: currency,
	}
}

// headingText picks the most prominent nearby text to stand in for the
// product name: first h1, then og:title, then the document title.
func headingText(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
