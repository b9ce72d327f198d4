package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

const (
	// maxBodySize caps how much of a product page we keep. Real product
	// pages rarely exceed a few MB and the extractor only needs markup.
	maxBodySize = 5 << 20

	defaultAttempts = 2
	defaultTimeout  = 30 * time.Second
	retryBaseDelay  = 300 * time.Millisecond
	retryJitter     = 200 * time.Millisecond
)

// userAgents is the rotation pool. Entries are real browser strings since
// many storefronts reject obviously synthetic agents.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Config holds tunable fetch policy knobs
type Config struct {
	Attempts          int
	PerAttemptTimeout time.Duration
	Debug             bool
}

// Fetcher retrieves raw page content for source descriptors with retry,
// per-attempt timeouts and user-agent rotation.
type Fetcher struct {
	httpClient *http.Client
	attempts   int
	timeout    time.Duration
	uaCounter  atomic.Uint64
	debug      bool
}

// New creates a fetcher with the given policy. Zero values fall back to
// defaults (2 attempts, 30s per attempt).
func New(cfg Config) *Fetcher {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	timeout := cfg.PerAttemptTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Fetcher{
		httpClient: &http.Client{
			// Per-attempt deadlines are handled via request contexts;
			// the client timeout is a backstop only.
			Timeout: timeout + 5*time.Second,
		},
		attempts: attempts,
		timeout:  timeout,
		debug:    cfg.Debug,
	}
}

func (f *Fetcher) debugLog(format string, args ...interface{}) {
	if f.debug {
		log.Printf("[FETCH] "+format, args...)
	}
}

// nextUserAgent cycles through the pool independently of which agent any
// prior attempt used.
func (f *Fetcher) nextUserAgent() string {
	n := f.uaCounter.Add(1)
	return userAgents[int(n-1)%len(userAgents)]
}

// Fetch retrieves the content behind one source descriptor. Network-level
// failures are classified into the result status. A descriptor with an
// unparseable URL is reported as not_found since it can never succeed.
func (f *Fetcher) Fetch(ctx context.Context, source domain.SourceDescriptor) domain.FetchResult {
	start := time.Now()

	if _, err := url.ParseRequestURI(source.URL); err != nil {
		return domain.FetchResult{Source: source, Status: domain.FetchNotFound, Elapsed: time.Since(start)}
	}

	var status domain.FetchStatus
	var body []byte

	for attempt := 1; attempt <= f.attempts; attempt++ {
		status, body = f.attemptOnce(ctx, source)
		f.debugLog("%s attempt %d/%d -> %s", source.URL, attempt, f.attempts, status)

		// Blocked and not-found are terminal: retrying an explicit block
		// wastes budget and risks further throttling.
		if status == domain.FetchOK || status == domain.FetchBlocked || status == domain.FetchNotFound {
			break
		}
		if attempt == f.attempts {
			break
		}

		// Fixed short delay with jitter to avoid synchronized retry
		// storms across concurrent sources.
		delay := retryBaseDelay + time.Duration(rand.Int63n(int64(retryJitter)))
		select {
		case <-ctx.Done():
			return domain.FetchResult{Source: source, Status: domain.FetchTimeout, Elapsed: time.Since(start)}
		case <-time.After(delay):
		}
	}

	return domain.FetchResult{
		Source:  source,
		Status:  status,
		Body:    body,
		Elapsed: time.Since(start),
	}
}

// attemptOnce performs a single fetch attempt and classifies its outcome
func (f *Fetcher) attemptOnce(ctx context.Context, source domain.SourceDescriptor) (domain.FetchStatus, []byte) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, "GET", source.URL, nil)
	if err != nil {
		return domain.FetchNetworkError, nil
	}
	req.Header.Set("User-Agent", f.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return domain.FetchTimeout, nil
		}
		return domain.FetchNetworkError, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if readErr != nil {
			return domain.FetchNetworkError, nil
		}
		return domain.FetchOK, body
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return domain.FetchBlocked, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return domain.FetchNotFound, nil
	default:
		return domain.FetchNetworkError, nil
	}
}

// isTimeout reports whether a transport error is latency-related
func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return strings.Contains(fmt.Sprint(err), "deadline exceeded")
}
