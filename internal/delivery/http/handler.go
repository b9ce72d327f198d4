package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searchService *usecase.SearchService
	searchAPI     domain.SearchAPIClient
}

// NewHandler creates a new HTTP handler
func NewHandler(searchService *usecase.SearchService, searchAPI domain.SearchAPIClient) *Handler {
	return &Handler{
		searchService: searchService,
		searchAPI:     searchAPI,
	}
}

// HealthCheck returns the health status of the API. The upstream search
// API is probed so load balancers can drain instances whose key expired.
func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	upstream := "reachable"
	if err := h.searchAPI.Ping(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		upstream = "unreachable"
	}

	c.JSON(status, gin.H{
		"status":    healthWord(status),
		"service":   "pricescout-backend",
		"version":   "1.0.0",
		"upstream":  upstream,
		"countries": domain.SupportedCountries(),
	})
}

func healthWord(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}

// Search handles a single price-comparison query
func (h *Handler) Search(c *gin.Context) {
	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "request body must include country and query")
		return
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > usecase.MaxResultLimit {
			respondError(c, http.StatusBadRequest, "invalid_limit", "limit must be an integer between 1 and 50")
			return
		}
		request.Limit = limit
	}

	result, err := h.searchService.Search(c.Request.Context(), &request)
	if err != nil {
		respondSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, searchResponse(result))
}

// batchRequest is the object form of a batch search body
type batchRequest struct {
	Queries []domain.SearchRequest `json:"queries"`
	Limit   int                    `json:"limit"`
}

const maxBatchSize = 10

// decodeBatchBody accepts both batch body shapes: the bare array of
// {country, query} objects, and the wrapped {queries, limit} object.
func decodeBatchBody(body []byte) ([]domain.SearchRequest, int, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var queries []domain.SearchRequest
		if err := json.Unmarshal(trimmed, &queries); err != nil {
			return nil, 0, err
		}
		return queries, 0, nil
	}

	var wrapped batchRequest
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, 0, err
	}
	return wrapped.Queries, wrapped.Limit, nil
}

// BatchSearch runs several queries concurrently. Each query succeeds or
// fails on its own; the response preserves input order.
func (h *Handler) BatchSearch(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "unable to read request body")
		return
	}

	queries, limit, err := decodeBatchBody(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "request body must be an array of queries or a queries object")
		return
	}
	if len(queries) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_request", "queries must not be empty")
		return
	}
	if len(queries) > maxBatchSize {
		respondError(c, http.StatusBadRequest, "invalid_request", "at most 10 queries per batch")
		return
	}

	if limit != 0 {
		for i := range queries {
			if queries[i].Limit == 0 {
				queries[i].Limit = limit
			}
		}
	}

	items := h.searchService.SearchBatch(c.Request.Context(), queries)

	responses := make([]gin.H, len(items))
	for i, item := range items {
		if item.Err != nil {
			_, code, message := searchErrorEnvelope(item.Err)
			responses[i] = gin.H{
				"query":   queries[i].Query,
				"country": queries[i].Country,
				"error":   gin.H{"code": code, "message": message},
			}
			continue
		}
		responses[i] = searchResponse(item.Result)
	}

	c.JSON(http.StatusOK, gin.H{"results": responses})
}

func searchResponse(result *domain.ResultSet) gin.H {
	listings := result.Listings
	if listings == nil {
		listings = []domain.ScoredListing{}
	}
	return gin.H{
		"query":   result.Query,
		"country": result.Country,
		"count":   len(listings),
		"cached":  result.FromCache,
		"results": listings,
	}
}

// searchErrorEnvelope maps pipeline errors onto an HTTP status and an
// error code/message pair. Invalid input is the caller's fault; upstream
// search API trouble is a gateway problem, never a 4xx.
func searchErrorEnvelope(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedCountry):
		return http.StatusBadRequest, "unsupported_country", err.Error()
	case errors.Is(err, domain.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit", err.Error()
	case errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusBadRequest, "invalid_query", err.Error()
	case errors.Is(err, domain.ErrSearchAPIAuth):
		return http.StatusServiceUnavailable, "search_api_unavailable", "upstream search API rejected credentials"
	case errors.Is(err, domain.ErrSearchAPIFailure):
		return http.StatusBadGateway, "search_api_failure", "upstream search API failed"
	default:
		return http.StatusInternalServerError, "internal_error", "unexpected error"
	}
}

func respondSearchError(c *gin.Context, err error) {
	status, code, message := searchErrorEnvelope(err)
	respondError(c, status, code, message)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
