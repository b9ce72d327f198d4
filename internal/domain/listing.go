package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// OriginStrategy identifies how a candidate source was discovered
type OriginStrategy string

const (
	OriginShopping    OriginStrategy = "shopping"
	OriginWebSearch   OriginStrategy = "web_search"
	OriginKnownDomain OriginStrategy = "known_domain"
)

// FetchStatus classifies the outcome of fetching one source
type FetchStatus string

const (
	FetchOK           FetchStatus = "ok"
	FetchBlocked      FetchStatus = "blocked"
	FetchTimeout      FetchStatus = "timeout"
	FetchNotFound     FetchStatus = "not_found"
	FetchNetworkError FetchStatus = "network_error"
)

// Availability is the stock state advertised by a listing
type Availability string

const (
	InStock      Availability = "in_stock"
	OutOfStock   Availability = "out_of_stock"
	UnknownStock Availability = "unknown"
)

// ExtractionMethod identifies which cascade strategy produced a listing
type ExtractionMethod string

const (
	MethodStructuredData ExtractionMethod = "structured_data"
	MethodMetaTag        ExtractionMethod = "meta_tag"
	MethodSitePattern    ExtractionMethod = "site_pattern"
	MethodGenericPattern ExtractionMethod = "generic_pattern"
)

// SourceDescriptor is a candidate place to look for a product.
// Priority is the position assigned by the source generator; lower is
// higher priority and it is used as the final dedup/sort tie-break.
type SourceDescriptor struct {
	URL      string         `json:"url"`
	Origin   OriginStrategy `json:"origin"`
	Country  string         `json:"country"`
	Label    string         `json:"label"`
	Priority int            `json:"priority"`
}

// FetchResult is the outcome of fetching one source descriptor.
// Body is only set when Status is FetchOK.
type FetchResult struct {
	Source  SourceDescriptor
	Status  FetchStatus
	Body    []byte
	Elapsed time.Duration
}

// ExtractedListing is a complete price record pulled from one page.
// Constructors in the extract package guarantee Price > 0, a recognized
// 3-letter currency code and a non-empty product name.
type ExtractedListing struct {
	Link         string           `json:"link"`
	Price        float64          `json:"price"`
	Currency     string           `json:"currency"`
	ProductName  string           `json:"productName"`
	SourceLabel  string           `json:"source"`
	Availability Availability     `json:"availability"`
	Method       ExtractionMethod `json:"-"`
}

// ScoredListing is an extracted listing with its query relevance attached
type ScoredListing struct {
	ExtractedListing
	Relevance      float64 `json:"relevance"`
	SourcePriority int     `json:"-"`
}

// MarshalJSON emits the price as a fixed two-decimal string. Clients
// display the value verbatim; a float here would drop trailing zeros
// ("79.90" becoming 79.9). The numeric field stays float64 internally
// for sorting and tie-breaks.
func (l ScoredListing) MarshalJSON() ([]byte, error) {
	type wireListing struct {
		Link         string       `json:"link"`
		Price        string       `json:"price"`
		Currency     string       `json:"currency"`
		ProductName  string       `json:"productName"`
		SourceLabel  string       `json:"source"`
		Availability Availability `json:"availability"`
		Relevance    float64      `json:"relevance"`
	}
	return json.Marshal(wireListing{
		Link:         l.Link,
		Price:        strconv.FormatFloat(l.Price, 'f', 2, 64),
		Currency:     l.Currency,
		ProductName:  l.ProductName,
		SourceLabel:  l.SourceLabel,
		Availability: l.Availability,
		Relevance:    l.Relevance,
	})
}

// ResultSet is the ranked outcome of one search query
type ResultSet struct {
	Query     string          `json:"query"`
	Country   string          `json:"country"`
	Listings  []ScoredListing `json:"results"`
	FromCache bool            `json:"-"`
}

// SearchRequest is a single price-comparison query
type SearchRequest struct {
	Country string `json:"country" binding:"required"`
	Query   string `json:"query" binding:"required"`
	Limit   int    `json:"-"`
}
