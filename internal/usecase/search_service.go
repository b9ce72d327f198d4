package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

const (
	// MaxResultLimit bounds how many listings one query may request
	MaxResultLimit = 50

	defaultMaxConcurrent = 8
	defaultQueryDeadline = 45 * time.Second
	defaultResultLimit   = 10
	defaultCacheTTL      = 15 * time.Minute
)

// SearchServiceConfig holds the tunable pipeline parameters. The floor,
// deadline and concurrency knobs are configuration rather than constants
// so deployments can adjust them per traffic profile.
type SearchServiceConfig struct {
	RelevanceFloor float64
	MaxConcurrent  int
	QueryDeadline  time.Duration
	DefaultLimit   int
	CacheTTL       time.Duration
	Debug          bool
}

// SearchService orchestrates the price-comparison pipeline: generate
// sources, fetch concurrently, extract, score, dedupe, rank.
type SearchService struct {
	cache          domain.CacheRepository
	generator      *SourceGenerator
	fetcher        domain.Fetcher
	extractor      domain.ListingExtractor
	scorer         *RelevanceScorer
	relevanceFloor float64
	maxConcurrent  int
	queryDeadline  time.Duration
	defaultLimit   int
	cacheTTL       time.Duration
	debug          bool
}

// NewSearchService creates the pipeline orchestrator with its dependencies
func NewSearchService(
	cache domain.CacheRepository,
	generator *SourceGenerator,
	fetcher domain.Fetcher,
	extractor domain.ListingExtractor,
	config SearchServiceConfig,
) *SearchService {
	floor := config.RelevanceFloor
	if floor <= 0 {
		floor = DefaultRelevanceFloor
	}
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	deadline := config.QueryDeadline
	if deadline <= 0 {
		deadline = defaultQueryDeadline
	}
	defaultLimit := config.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = defaultResultLimit
	}
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &SearchService{
		cache:          cache,
		generator:      generator,
		fetcher:        fetcher,
		extractor:      extractor,
		scorer:         NewRelevanceScorer(),
		relevanceFloor: floor,
		maxConcurrent:  maxConcurrent,
		queryDeadline:  deadline,
		defaultLimit:   defaultLimit,
		cacheTTL:       cacheTTL,
		debug:          config.Debug,
	}
}

func (s *SearchService) debugLog(format string, args ...interface{}) {
	if s.debug {
		log.Printf("[PIPELINE] "+format, args...)
	}
}

// Search runs the full pipeline for one query. Per-source failures are
// swallowed; an empty result set is a valid outcome, not an error.
func (s *SearchService) Search(ctx context.Context, request *domain.SearchRequest) (*domain.ResultSet, error) {
	if request == nil || strings.TrimSpace(request.Query) == "" {
		return nil, domain.ErrInvalidQuery
	}

	limit := request.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 1 || limit > MaxResultLimit {
		return nil, domain.ErrInvalidLimit
	}

	// Validating the country up front keeps invalid requests from
	// generating any network activity.
	profile, err := domain.ProfileFor(request.Country)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(request.Query)
	cacheKey := searchCacheKey(profile.Code, query, limit)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if resultSet, ok := cached.(*domain.ResultSet); ok {
			s.debugLog("cache hit for %q in %s", query, profile.Code)
			hit := *resultSet
			hit.FromCache = true
			return &hit, nil
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.queryDeadline)
	defer cancel()

	sources, err := s.generator.Generate(queryCtx, query, profile.Code, 0)
	if err != nil {
		return nil, err
	}

	fetchResults := s.fetchAll(queryCtx, sources)

	listings := s.extractAndScore(query, fetchResults)
	listings = Dedupe(listings)

	// Final ranking is price ascending; relevance then source priority
	// break ties so the output is deterministic for a fixed fetch set.
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Price != listings[j].Price {
			return listings[i].Price < listings[j].Price
		}
		if listings[i].Relevance != listings[j].Relevance {
			return listings[i].Relevance > listings[j].Relevance
		}
		return listings[i].SourcePriority < listings[j].SourcePriority
	})

	if len(listings) > limit {
		listings = listings[:limit]
	}

	resultSet := &domain.ResultSet{
		Query:    query,
		Country:  profile.Code,
		Listings: listings,
	}

	if err := s.cache.Set(ctx, cacheKey, resultSet, s.cacheTTL); err != nil {
		s.debugLog("cache store failed: %v", err)
	}

	return resultSet, nil
}

// fetchAll fans out over sources with a bounded worker pool and collects
// every result before returning. Results are indexed by source priority,
// so downstream stages see a deterministic order regardless of arrival
// timing. Fetches still in flight when the deadline elapses surface as
// timeout statuses from the fetcher itself.
func (s *SearchService) fetchAll(ctx context.Context, sources []domain.SourceDescriptor) []domain.FetchResult {
	results := make([]domain.FetchResult, len(sources))

	workers := s.maxConcurrent
	if workers > len(sources) {
		workers = len(sources)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.fetcher.Fetch(ctx, sources[i])
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// extractAndScore turns successful fetches into scored listings, dropping
// per-source failures and anything below the relevance floor
func (s *SearchService) extractAndScore(query string, fetchResults []domain.FetchResult) []domain.ScoredListing {
	var listings []domain.ScoredListing

	for _, result := range fetchResults {
		if result.Status != domain.FetchOK {
			s.debugLog("source %s skipped: %s", result.Source.URL, result.Status)
			continue
		}

		listing, err := s.extractor.Extract(result.Body, result.Source)
		if err != nil {
			s.debugLog("source %s yielded no listing", result.Source.URL)
			continue
		}

		relevance := s.scorer.Score(query, listing.ProductName)
		if relevance < s.relevanceFloor {
			s.debugLog("source %s dropped: relevance %.2f below floor %.2f",
				result.Source.URL, relevance, s.relevanceFloor)
			continue
		}

		listings = append(listings, domain.ScoredListing{
			ExtractedListing: *listing,
			Relevance:        relevance,
			SourcePriority:   result.Source.Priority,
		})
	}

	return listings
}

// BatchItem is the per-query outcome of a batch search
type BatchItem struct {
	Result *domain.ResultSet
	Err    error
}

// SearchBatch runs each query independently and concurrently. One query's
// failure never affects the others; the returned slice matches the input
// order.
func (s *SearchService) SearchBatch(ctx context.Context, requests []domain.SearchRequest) []BatchItem {
	items := make([]BatchItem, len(requests))

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.Search(ctx, &requests[i])
			items[i] = BatchItem{Result: result, Err: err}
		}(i)
	}
	wg.Wait()

	return items
}

func searchCacheKey(country, query string, limit int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("search:%s:%s:%d", country, normalized, limit)
}
