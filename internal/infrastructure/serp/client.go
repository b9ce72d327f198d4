package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/pricescout/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxRetries      = 3
	maxResponseSize = 2 << 20 // 2 MB is plenty for a search result payload
	maxCandidates   = 10
)

// Client handles communication with the external search API used to
// discover candidate product URLs.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new search API client
func NewClient(apiKey, baseURL string) *Client {
	// The free tier allows roughly 100 searches/hour; keep a small burst
	// so a batch request doesn't immediately trip the limiter.
	limiter := rate.NewLimiter(rate.Limit(0.5), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request/response logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[SERP] "+format, args...)
	}
}

// searchResponse mirrors the subset of the search API payload we consume
type searchResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Link   string `json:"link"`
		Source string `json:"source"`
		Title  string `json:"title"`
	} `json:"organic_results"`
}

// exponentialBackoff returns the delay before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "PriceScout/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}

	return resp, nil
}

// Discover returns candidate product URLs for a query localized to the
// given country name. Results are capped at the top organic hits since
// precision drops off quickly further down the page.
func (c *Client) Discover(ctx context.Context, query, location string) ([]domain.Candidate, error) {
	c.debugLog("Discover called with query=%q location=%q", query, location)

	endpoint := fmt.Sprintf("%s/search", c.baseURL)
	params := url.Values{}
	params.Add("q", query)
	params.Add("location", location)
	params.Add("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			lastErr = err
			c.debugLog("request error (attempt %d): %v", attempt, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxResponseSize)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, readErr)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Credential problems never resolve by retrying
			return nil, fmt.Errorf("%w: status %d", domain.ErrSearchAPIAuth, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
			c.debugLog("retryable status %d (attempt %d)", resp.StatusCode, attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSearchAPIFailure, resp.StatusCode, string(body))
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if searchResp.Error != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrSearchAPIFailure, searchResp.Error)
		}

		candidates := make([]domain.Candidate, 0, maxCandidates)
		for _, result := range searchResp.OrganicResults {
			if result.Link == "" {
				continue
			}
			label := result.Source
			if label == "" {
				label = result.Title
			}
			candidates = append(candidates, domain.Candidate{Link: result.Link, Label: label})
			if len(candidates) == maxCandidates {
				break
			}
		}

		c.debugLog("found %d candidates for query %q", len(candidates), query)
		return candidates, nil
	}

	return nil, lastErr
}

// Ping verifies that the API is reachable and the credential is accepted.
// Used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/account", c.baseURL)
	params := url.Values{}
	params.Add("api_key", c.apiKey)

	resp, err := c.doRequest(ctx, fmt.Sprintf("%s?%s", endpoint, params.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrSearchAPIAuth, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
	}
}
