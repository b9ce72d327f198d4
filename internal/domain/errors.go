package domain

import "errors"

var (
	// ErrUnsupportedCountry is returned when the country code is not in the registry
	ErrUnsupportedCountry = errors.New("country is not supported")

	// ErrInvalidLimit is returned when the requested result limit is outside [1,50]
	ErrInvalidLimit = errors.New("limit must be between 1 and 50")

	// ErrInvalidQuery is returned when the search query is empty or unusable
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrNoListing is returned when no extraction strategy yields a complete listing
	ErrNoListing = errors.New("no listing could be extracted")

	// ErrSearchAPIFailure is returned when the external search API request fails
	ErrSearchAPIFailure = errors.New("search API request failed")

	// ErrSearchAPIAuth is returned when the search API rejects the credential
	ErrSearchAPIAuth = errors.New("search API credential rejected")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
