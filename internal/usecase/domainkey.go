package usecase

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// registrableDomain reduces a URL to its eTLD+1 ("www.amazon.co.uk/dp/x"
// -> "amazon.co.uk") so listings from different subdomains of one shop
// collapse onto the same key. Falls back to the raw host when the public
// suffix list has no answer (IP addresses, intranet hosts).
func registrableDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		// Bare domains like "amazon.com" parse with an empty host
		host = strings.ToLower(strings.Split(parsed.Path, "/")[0])
	}
	if host == "" {
		return strings.ToLower(rawURL)
	}

	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}
