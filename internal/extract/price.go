package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// recognizedCurrencies is the set of ISO-4217 codes the pipeline accepts.
// A listing whose currency resolves outside this set is rejected.
var recognizedCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "INR": true, "CAD": true,
	"AUD": true, "JPY": true, "CNY": true, "CHF": true, "SEK": true,
	"NOK": true, "DKK": true, "PLN": true, "BRL": true, "MXN": true,
	"KRW": true, "SGD": true, "HKD": true, "NZD": true, "AED": true,
	"TRY": true, "ZAR": true,
}

// currencySymbols maps unambiguous symbols to ISO codes. "$" and "¥" are
// deliberately absent: both are shared across currencies and are resolved
// from the country hint instead.
var currencySymbols = map[string]string{
	"€": "EUR",
	"£": "GBP",
	"₹": "INR",
	"₩": "KRW",
	"₺": "TRY",
}

var amountDigitsRegex = regexp.MustCompile(`\d[\d.,\s\x{00a0}]*`)

// IsRecognizedCurrency reports whether code is an accepted ISO-4217 code
func IsRecognizedCurrency(code string) bool {
	return recognizedCurrencies[strings.ToUpper(code)]
}

// normalizeCurrency upper-cases and validates a currency code, returning
// "" when it is not recognized
func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if recognizedCurrencies[code] {
		return code
	}
	return ""
}

// currencyFromText scans a price string for an unambiguous currency symbol
// or an explicit ISO code and returns the inferred currency, or ""
func currencyFromText(s string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(s, symbol) {
			return code
		}
	}
	upper := strings.ToUpper(s)
	for code := range recognizedCurrencies {
		if strings.Contains(upper, code) {
			return code
		}
	}
	return ""
}

// parseAmount extracts a positive numeric amount from a price string,
// handling both decimal conventions ("1,299.00" and "1.299,00"), thousands
// separators and embedded currency symbols. Returns 0, false when no
// positive amount can be parsed.
func parseAmount(s string) (float64, bool) {
	match := amountDigitsRegex.FindString(s)
	if match == "" {
		return 0, false
	}

	// Strip grouping spaces (including non-breaking) before separator logic
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, strings.TrimSpace(match))
	cleaned = strings.Trim(cleaned, ".,")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the later separator is the decimal point
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = normalizeSingleSeparator(cleaned, ",", lastComma)
	case lastDot >= 0:
		cleaned = normalizeSingleSeparator(cleaned, ".", lastDot)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

// normalizeSingleSeparator decides whether a lone "." or "," is a decimal
// point or a thousands separator. One or two trailing digits after a single
// separator reads as decimal ("79,99"); exactly three with more separators
// or a leading group reads as grouping ("79,900").
func normalizeSingleSeparator(s, sep string, lastIdx int) string {
	trailing := len(s) - lastIdx - 1
	multiple := strings.Count(s, sep) > 1

	if multiple || trailing == 3 {
		// Grouping separator ("1,299,000" or "79,900")
		return strings.ReplaceAll(s, sep, "")
	}
	if sep == "," {
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}

// parseAvailability maps schema.org/Open-Graph availability markers onto
// the domain enum
func parseAvailability(s string) domain.Availability {
	normalized := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	switch {
	case strings.Contains(normalized, "instock") ||
		strings.Contains(normalized, "limitedavailability") ||
		strings.Contains(normalized, "instoreonly") ||
		strings.Contains(normalized, "onlineonly"):
		return domain.InStock
	case strings.Contains(normalized, "outofstock") ||
		strings.Contains(normalized, "soldout") ||
		strings.Contains(normalized, "discontinued"):
		return domain.OutOfStock
	default:
		return domain.UnknownStock
	}
}
