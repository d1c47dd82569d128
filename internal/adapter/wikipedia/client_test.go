package wikipedia

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUserAgent     = "climate-graph-test/1.0"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, testUserAgent, 5*time.Second, 0, testMetrics(), discardLogger())
}

func TestClient_FetchPage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "revisions", q.Get("prop"))
		assert.Equal(t, "content", q.Get("rvprop"))
		assert.Equal(t, "Toronto", q.Get("titles"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"query":{"pages":{"64646":{"pageid":64646,"title":"Toronto",` +
			`"revisions":[{"slots":{"main":{"contentformat":"text/x-wiki","*":"{{Weather box|Jan high C = -0.5}}"}}}]}}}}`))
	}))
	defer srv.Close()

	p, err := testClient(srv.URL).FetchPage(context.Background(), "Toronto")
	require.NoError(t, err)
	assert.True(t, p.Found)
	assert.Equal(t, "Toronto", p.Title)
	assert.Equal(t, "{{Weather box|Jan high C = -0.5}}", p.Body)
}

func TestClient_FetchPage_RedirectUsesCanonicalTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"query":{"redirects":[{"from":"NYC","to":"New York City"}],` +
			`"pages":{"645042":{"title":"New York City","revisions":[{"*":"legacy body"}]}}}}`))
	}))
	defer srv.Close()

	p, err := testClient(srv.URL).FetchPage(context.Background(), "NYC")
	require.NoError(t, err)
	assert.True(t, p.Found)
	assert.Equal(t, "New York City", p.Title)
	assert.Equal(t, "legacy body", p.Body)
}

func TestClient_FetchPage_Missing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"ns":0,"title":"Atlantis","missing":""}}}}`))
	}))
	defer srv.Close()

	p, err := testClient(srv.URL).FetchPage(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.False(t, p.Found)
	assert.Equal(t, "Atlantis", p.Title)
	assert.Empty(t, p.Body)
}

func TestClient_FetchPage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"error":{"code":"badvalue","info":"Unrecognized value"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), "Toronto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badvalue")
}

func TestClient_FetchPage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`user agent required`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), "Toronto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_FetchPage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testUserAgent, 50*time.Millisecond, 0, testMetrics(), discardLogger())
	_, err := c.FetchPage(context.Background(), "Toronto")
	require.Error(t, err)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for range 6 {
		_, err := c.FetchPage(context.Background(), "Toronto")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
	}

	_, err := c.FetchPage(context.Background(), "Toronto")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, int32(6), hits.Load(), "open breaker should not reach the server")
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for range 10 {
		_, err := c.FetchPage(context.Background(), "Toronto")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
	}
	assert.Equal(t, int32(10), hits.Load())
}

func TestClient_RateLimitRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"title":"X","missing":""}}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testUserAgent, time.Second, 0.01, testMetrics(), discardLogger())
	_, err := c.FetchPage(context.Background(), "X")
	require.NoError(t, err, "first request uses the initial burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.FetchPage(ctx, "X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestDecodePage_EmptyPages(t *testing.T) {
	p, err := decodePage("Nowhere", []byte(`{"batchcomplete":""}`))
	require.NoError(t, err)
	assert.False(t, p.Found)
	assert.Equal(t, "Nowhere", p.Title)
}

func TestDecodePage_InvalidJSON(t *testing.T) {
	_, err := decodePage("Toronto", []byte(`<html>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
