package serp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pricescout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDiscover_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "iphone 16 pro buy online", r.URL.Query().Get("q"))
		assert.Equal(t, "United States", r.URL.Query().Get("location"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))

		response := map[string]interface{}{
			"organic_results": []map[string]string{
				{"link": "https://www.bestbuy.com/site/iphone", "source": "Best Buy"},
				{"link": "https://www.walmart.com/ip/iphone", "source": "Walmart"},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	ctx := context.Background()

	candidates, err := client.Discover(ctx, "iphone 16 pro buy online", "United States")

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://www.bestbuy.com/site/iphone", candidates[0].Link)
	assert.Equal(t, "Best Buy", candidates[0].Label)
}

func TestDiscover_CapsCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]string, 0, 25)
		for i := 0; i < 25; i++ {
			results = append(results, map[string]string{
				"link":   "https://shop.example.com/item",
				"source": "Example",
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"organic_results": results})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	candidates, err := client.Discover(context.Background(), "anything", "India")

	require.NoError(t, err)
	assert.Len(t, candidates, maxCandidates)
}

func TestDiscover_SkipsEmptyLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic_results": []map[string]string{
				{"link": "", "source": "Broken"},
				{"link": "https://shop.example.com/item", "title": "Example Item"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	candidates, err := client.Discover(context.Background(), "anything", "Germany")

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	// Title is used as the label when source is missing
	assert.Equal(t, "Example Item", candidates[0].Label)
}

func TestDiscover_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Your searches for the month are exhausted"})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	candidates, err := client.Discover(context.Background(), "anything", "France")

	assert.Nil(t, candidates)
	assert.ErrorIs(t, err, domain.ErrSearchAPIFailure)
}

func TestDiscover_AuthRejected_NoRetry(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL)

	candidates, err := client.Discover(context.Background(), "anything", "Japan")

	assert.Nil(t, candidates)
	assert.ErrorIs(t, err, domain.ErrSearchAPIAuth)
	assert.Equal(t, 1, attempts)
}

func TestDiscover_ServerError_Retries(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"organic_results": []map[string]string{
				{"link": "https://shop.example.com/item", "source": "Example"},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	candidates, err := client.Discover(context.Background(), "retry-test", "Canada")

	require.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 3, attempts)
}

func TestDiscover_AllRetriesFail(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	candidates, err := client.Discover(context.Background(), "all-fail", "Australia")

	assert.Nil(t, candidates)
	assert.ErrorIs(t, err, domain.ErrSearchAPIFailure)
	assert.Equal(t, maxRetries, attempts)
}

func TestDiscover_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	candidates, err := client.Discover(context.Background(), "invalid-json", "United States")

	assert.Nil(t, candidates)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestDiscover_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	candidates, err := client.Discover(ctx, "timeout-test", "United States")

	assert.Nil(t, candidates)
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	t.Run("healthy credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/account", r.URL.Path)
			assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("rejected credential", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewClient("bad-key", server.URL)
		assert.ErrorIs(t, client.Ping(context.Background()), domain.ErrSearchAPIAuth)
	})

	t.Run("unreachable API", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient("test-api-key", server.URL)
		assert.ErrorIs(t, client.Ping(context.Background()), domain.ErrSearchAPIFailure)
	})
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("short content"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for i := 0; i < 100; i++ {
				w.Write([]byte("0123456789"))
			}
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
