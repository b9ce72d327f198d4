package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Candidate is one URL returned by the external search capability
type Candidate struct {
	Link  string `json:"link"`
	Label string `json:"source"`
}

// SearchAPIClient defines the interface to the black-box URL-discovery API.
// Given a query and a localized country name it returns candidate listing
// URLs with minimal metadata.
type SearchAPIClient interface {
	Discover(ctx context.Context, query, location string) ([]Candidate, error)
	Ping(ctx context.Context) error
}

// Fetcher retrieves raw content for one source descriptor. Network-level
// failures are reported through FetchResult.Status, never as an error.
type Fetcher interface {
	Fetch(ctx context.Context, source SourceDescriptor) FetchResult
}

// ListingExtractor turns a fetched page into a structured listing, or
// ErrNoListing when no strategy yields a complete record.
type ListingExtractor interface {
	Extract(body []byte, source SourceDescriptor) (*ExtractedListing, error)
}
