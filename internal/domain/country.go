package domain

import (
	"sort"
	"strings"
)

// CountryProfile is a static registry entry describing how searches are
// localized for one country. The registry is read-only after process start,
// so concurrent reads need no synchronization.
type CountryProfile struct {
	Code         string
	Name         string
	SearchDomain string
	CurrencyHint string
	KnownDomains []string
}

// countryRegistry maps upper-case ISO-style country codes to their profile.
// "GB" is accepted as an alias for UK since callers commonly send it.
var countryRegistry = map[string]CountryProfile{
	"US": {
		Code: "US", Name: "United States",
		SearchDomain: "www.google.com",
		CurrencyHint: "USD",
		KnownDomains: []string{"amazon.com", "walmart.com", "bestbuy.com", "ebay.com", "target.com"},
	},
	"IN": {
		Code: "IN", Name: "India",
		SearchDomain: "www.google.co.in",
		CurrencyHint: "INR",
		KnownDomains: []string{"amazon.in", "flipkart.com", "croma.com", "reliancedigital.in"},
	},
	"UK": {
		Code: "UK", Name: "United Kingdom",
		SearchDomain: "www.google.co.uk",
		CurrencyHint: "GBP",
		KnownDomains: []string{"amazon.co.uk", "argos.co.uk", "currys.co.uk", "ebay.co.uk"},
	},
	"CA": {
		Code: "CA", Name: "Canada",
		SearchDomain: "www.google.ca",
		CurrencyHint: "CAD",
		KnownDomains: []string{"amazon.ca", "bestbuy.ca", "walmart.ca"},
	},
	"AU": {
		Code: "AU", Name: "Australia",
		SearchDomain: "www.google.com.au",
		CurrencyHint: "AUD",
		KnownDomains: []string{"amazon.com.au", "jbhifi.com.au", "ebay.com.au"},
	},
	"DE": {
		Code: "DE", Name: "Germany",
		SearchDomain: "www.google.de",
		CurrencyHint: "EUR",
		KnownDomains: []string{"amazon.de", "otto.de", "mediamarkt.de", "ebay.de"},
	},
	"FR": {
		Code: "FR", Name: "France",
		SearchDomain: "www.google.fr",
		CurrencyHint: "EUR",
		KnownDomains: []string{"amazon.fr", "fnac.com", "cdiscount.com"},
	},
	"JP": {
		Code: "JP", Name: "Japan",
		SearchDomain: "www.google.co.jp",
		CurrencyHint: "JPY",
		KnownDomains: []string{"amazon.co.jp", "rakuten.co.jp", "yodobashi.com"},
	},
	"CN": {
		Code: "CN", Name: "China",
		SearchDomain: "www.google.com.hk",
		CurrencyHint: "CNY",
		KnownDomains: []string{"jd.com", "tmall.com", "suning.com"},
	},
}

// countryAliases maps alternate codes onto registry keys
var countryAliases = map[string]string{
	"GB": "UK",
}

// ProfileFor looks up the country profile for a code (case-insensitive).
// Returns ErrUnsupportedCountry when the code is not registered.
func ProfileFor(code string) (CountryProfile, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := countryAliases[normalized]; ok {
		normalized = alias
	}
	profile, ok := countryRegistry[normalized]
	if !ok {
		return CountryProfile{}, ErrUnsupportedCountry
	}
	return profile, nil
}

// SupportedCountries returns the registered country codes in stable order
func SupportedCountries() []string {
	codes := make([]string, 0, len(countryRegistry))
	for code := range countryRegistry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
