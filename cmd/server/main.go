package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricescout/backend/config"
	httpDelivery "github.com/pricescout/backend/internal/delivery/http"
	"github.com/pricescout/backend/internal/extract"
	"github.com/pricescout/backend/internal/infrastructure/cache"
	"github.com/pricescout/backend/internal/infrastructure/fetch"
	"github.com/pricescout/backend/internal/infrastructure/serp"
	"github.com/pricescout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Enable debug mode in development environment
	debug := cfg.Server.Environment == "development"

	searchClient := serp.NewClient(cfg.Search.APIKey, cfg.Search.BaseURL)
	fetcher := fetch.New(fetch.Config{
		Attempts:          cfg.Pipeline.FetchAttempts,
		PerAttemptTimeout: cfg.Pipeline.FetchTimeout,
		Debug:             debug,
	})
	extractor := extract.NewCascade()

	if debug {
		searchClient.SetDebug(true)
		extractor.SetDebug(true)
		log.Printf("Debug logging enabled")
	}

	log.Printf("Search API configured: %s (key: %s...)", cfg.Search.BaseURL, cfg.Search.APIKey[:min(8, len(cfg.Search.APIKey))])

	// Initialize usecase layer
	generator := usecase.NewSourceGenerator(searchClient)
	generator.SetDebug(debug)
	searchService := usecase.NewSearchService(
		memoryCache,
		generator,
		fetcher,
		extractor,
		usecase.SearchServiceConfig{
			RelevanceFloor: cfg.Pipeline.RelevanceFloor,
			MaxConcurrent:  cfg.Pipeline.MaxConcurrent,
			QueryDeadline:  cfg.Pipeline.QueryDeadline,
			DefaultLimit:   cfg.Pipeline.DefaultLimit,
			CacheTTL:       cfg.Cache.TTL,
			Debug:          debug,
		},
	)

	log.Printf("Pipeline: floor=%.2f, concurrency=%d, deadline=%s",
		cfg.Pipeline.RelevanceFloor,
		cfg.Pipeline.MaxConcurrent,
		cfg.Pipeline.QueryDeadline)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, searchClient)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
