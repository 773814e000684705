package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakerClient(maxFailures int) *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = maxFailures
	return NewRateLimitedHTTPClient(cfg, nil)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	// A closed server: every request fails at the transport level.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := breakerClient(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.Get(ctx, server.URL)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "circuit breaker open")
	}

	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := breakerClient(3)
	ctx := context.Background()

	mu.Lock()
	fail = true
	mu.Unlock()
	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL)
		require.Error(t, err)
	}

	mu.Lock()
	fail = false
	mu.Unlock()
	resp, err := client.Get(ctx, server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// The failure streak is gone; two more failures still stay under the
	// threshold.
	mu.Lock()
	fail = true
	mu.Unlock()
	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "circuit breaker open")
	}
}

// The breaker state is shared by every feed client; concurrent requests must
// not race on it.
func TestCircuitBreakerConcurrentRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := breakerClient(5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = client.Get(ctx, server.URL)
		}()
	}
	wg.Wait()

	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "circuit breaker open"))
}
