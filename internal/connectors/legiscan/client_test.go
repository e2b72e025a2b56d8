package legiscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/core/ports/driven"
)

// testServer wraps httptest.Server with a per-request handler queue
// and call timestamps for spacing assertions.
type testServer struct {
	mu       sync.Mutex
	handlers []http.HandlerFunc
	fallback http.HandlerFunc
	times    []time.Time
	server   *httptest.Server
}

func newTestServer(fallback http.HandlerFunc) *testServer {
	ts := &testServer{fallback: fallback}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.times = append(ts.times, time.Now())
		var h http.HandlerFunc
		if len(ts.handlers) > 0 {
			h = ts.handlers[0]
			ts.handlers = ts.handlers[1:]
		} else {
			h = ts.fallback
		}
		ts.mu.Unlock()
		h(w, r)
	}))
	return ts
}

func (ts *testServer) enqueue(h http.HandlerFunc) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.handlers = append(ts.handlers, h)
}

func (ts *testServer) timestamps() []time.Time {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]time.Time(nil), ts.times...)
}

func searchOK(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `{
		"status": "OK",
		"searchresult": {
			"summary": {"count": 2, "relevancy": "100% - 62%"},
			"results": [
				{"bill_id": 101, "state": "CA", "bill_number": "AB 2930", "relevance": 99, "last_action_date": "2026-02-10", "url": "https://legiscan.com/CA/bill/AB2930"},
				{"bill_id": 102, "state": "ny", "bill_number": "S 1169", "relevance": 62, "url": "https://legiscan.com/NY/bill/S1169"}
			]
		}
	}`)
}

func billOK(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `{
		"status": "OK",
		"bill": {
			"bill_id": 101,
			"state": "CA",
			"bill_number": "AB 2930",
			"title": "Automated decision tools",
			"description": "An act relating to automated decision tools.",
			"body": "Assembly",
			"status_date": "2026-02-10",
			"url": "https://legiscan.com/CA/bill/AB2930",
			"state_link": "https://leginfo.ca.gov/AB2930",
			"session": {"session_title": "2025-2026 Regular Session", "year_start": 2025},
			"history": [{"date": "2026-01-08", "action": "Introduced"}]
		}
	}`)
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTooManyRequests)
}

// newTestClient builds a client with fast timings against the server.
func newTestClient(t *testing.T, ts *testServer) *Client {
	t.Helper()
	c, err := NewClient(Options{
		APIKey:      "test-key",
		BaseURL:     ts.server.URL,
		MinGap:      time.Millisecond,
		Cooldown:    2 * time.Millisecond,
		MaxAttempts: 3,
	})
	require.NoError(t, err)
	c.retryDelay = time.Millisecond
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		_, err := NewClient(Options{})
		assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
	})

	t.Run("implements SearchClient", func(t *testing.T) {
		c, err := NewClient(Options{APIKey: "k"})
		require.NoError(t, err)
		var _ driven.SearchClient = c
	})
}

func TestClient_Search(t *testing.T) {
	ts := newTestServer(searchOK)
	defer ts.server.Close()

	c := newTestClient(t, ts)
	results, meta, err := c.Search(context.Background(), "automated decision", "ALL")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 101, results[0].SourceID)
	assert.Equal(t, "CA", results[0].Jurisdiction)
	assert.Equal(t, "AB 2930", results[0].BillNumber)
	assert.Equal(t, 99, results[0].Relevance)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), results[0].StatusDate)

	// State is upper-cased and a missing date stays zero.
	assert.Equal(t, "NY", results[1].Jurisdiction)
	assert.True(t, results[1].StatusDate.IsZero())

	assert.Equal(t, 2, meta.TotalCount)
	assert.Equal(t, 1, meta.CallsUsed)
	assert.Equal(t, 1, c.Calls())
}

func TestClient_FetchDetail(t *testing.T) {
	ts := newTestServer(billOK)
	defer ts.server.Close()

	c := newTestClient(t, ts)
	bill, err := c.FetchDetail(context.Background(), 101, 99)
	require.NoError(t, err)

	assert.Equal(t, "CA AB 2930 2026-02-10", bill.ExternalID)
	assert.Equal(t, 101, bill.SourceID)
	assert.Equal(t, domain.ChamberLower, bill.Chamber)
	assert.Equal(t, 2025, bill.SessionYear)
	assert.Equal(t, 99, bill.RelevanceScore)
	assert.Equal(t, "https://leginfo.ca.gov/AB2930", bill.SourceURL)
}

func TestClient_RateLimitRetry(t *testing.T) {
	t.Run("recovers when the limit clears within the budget", func(t *testing.T) {
		ts := newTestServer(searchOK)
		defer ts.server.Close()
		ts.enqueue(rateLimited)
		ts.enqueue(rateLimited)

		c := newTestClient(t, ts)
		_, _, err := c.Search(context.Background(), "q", "ALL")
		require.NoError(t, err)
		assert.Equal(t, 3, c.Calls())
	})

	t.Run("gives up after exactly the attempt budget", func(t *testing.T) {
		ts := newTestServer(rateLimited)
		defer ts.server.Close()

		c := newTestClient(t, ts)
		_, _, err := c.Search(context.Background(), "q", "ALL")
		require.Error(t, err)
		assert.True(t, IsQuotaExceeded(err))
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
		assert.Equal(t, 3, c.Calls())
	})
}

func TestClient_AuthError(t *testing.T) {
	t.Run("HTTP 401 is not retried", func(t *testing.T) {
		ts := newTestServer(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		defer ts.server.Close()

		c := newTestClient(t, ts)
		_, _, err := c.Search(context.Background(), "q", "ALL")
		require.Error(t, err)
		assert.True(t, IsAuthError(err))
		assert.ErrorIs(t, err, domain.ErrAuthFailed)
		assert.Equal(t, 1, c.Calls())
	})

	t.Run("payload-level bad key is an auth error", func(t *testing.T) {
		ts := newTestServer(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status": "ERROR", "alert": {"message": "Invalid API key"}}`)
		})
		defer ts.server.Close()

		c := newTestClient(t, ts)
		_, _, err := c.Search(context.Background(), "q", "ALL")
		require.Error(t, err)
		assert.True(t, IsAuthError(err))
	})
}

func TestClient_TransientRetry(t *testing.T) {
	t.Run("retries server errors", func(t *testing.T) {
		ts := newTestServer(searchOK)
		defer ts.server.Close()
		ts.enqueue(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		c := newTestClient(t, ts)
		_, _, err := c.Search(context.Background(), "q", "ALL")
		require.NoError(t, err)
		assert.Equal(t, 2, c.Calls())
	})

	t.Run("persistent server errors surface as unavailable", func(t *testing.T) {
		ts := newTestServer(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		defer ts.server.Close()

		c := newTestClient(t, ts)
		_, _, err := c.Search(context.Background(), "q", "ALL")
		require.Error(t, err)
		assert.True(t, IsUnavailable(err))
	})
}

func TestClient_MinimumSpacing(t *testing.T) {
	ts := newTestServer(billOK)
	defer ts.server.Close()

	const gap = 20 * time.Millisecond
	c, err := NewClient(Options{
		APIKey:  "test-key",
		BaseURL: ts.server.URL,
		MinGap:  gap,
	})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := c.FetchDetail(ctx, 101, 0)
		require.NoError(t, err)
	}

	times := ts.timestamps()
	require.Len(t, times, 4)
	for i := 1; i < len(times); i++ {
		observed := times[i].Sub(times[i-1])
		// Allow a small scheduling tolerance below the configured gap.
		assert.GreaterOrEqual(t, observed, gap-5*time.Millisecond,
			"calls %d and %d departed %s apart", i-1, i, observed)
	}
	assert.Equal(t, 4, c.Calls())
}

func TestClient_ContextCancellation(t *testing.T) {
	ts := newTestServer(searchOK)
	defer ts.server.Close()

	c := newTestClient(t, ts)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.Search(ctx, "q", "ALL")
	assert.ErrorIs(t, err, context.Canceled)
}
