package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/climate-graph/internal/app"
	"github.com/couchcryptid/climate-graph/internal/config"
	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/couchcryptid/climate-graph/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func (s *stubFetcher) FetchPage(_ context.Context, title string) (domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[title]++
	body, ok := s.pages[title]
	if !ok {
		return domain.Page{Title: title}, nil
	}
	return domain.Page{Title: title, Body: body, Found: true}, nil
}

func (s *stubFetcher) count(title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[title]
}

func weatherBox(category, value string) string {
	var b strings.Builder
	b.WriteString("{{Weather box\n")
	for _, m := range []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"} {
		fmt.Fprintf(&b, "|%s %s = %s\n", m, category, value)
	}
	b.WriteString("|}}")
	return b.String()
}

func newTestApp(t *testing.T, cacheEnabled bool) (*app.App, *stubFetcher, *observability.Metrics) {
	t.Helper()
	fetcher := &stubFetcher{
		pages: map[string]string{
			"Seattle": weatherBox("high C", "12.0"),
			"Hamilton, New Zealand": "{{Infobox settlement|latd = 37|latm = 47|latNS = S|longd = 175|longm = 17|longEW = E|}}\n" +
				weatherBox("percentsun", "50"),
		},
		calls: map[string]int{},
	}
	cfg := &config.Config{
		CacheEnabled: cacheEnabled,
		CacheDir:     t.TempDir(),
		CacheTTL:     time.Hour,
		CacheSize:    100,
	}
	metrics := observability.NewMetricsForTesting()
	a, err := app.NewWithFetcher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics, fetcher)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, fetcher, metrics
}

func TestApp_ExtractUsesCaches(t *testing.T) {
	a, fetcher, _ := newTestApp(t, true)

	rec := a.Extractor.Extract(context.Background(), "Seattle")
	require.True(t, rec.Complete(domain.High))
	assert.Equal(t, domain.Value(12), rec.Series[domain.High][0])

	_ = a.Extractor.Extract(context.Background(), "Seattle")
	assert.Equal(t, 1, fetcher.count("Seattle"))
	assert.True(t, a.Cached("Seattle"))
}

func TestApp_PercentSunUsesAstronomer(t *testing.T) {
	a, _, _ := newTestApp(t, false)

	rec := a.Extractor.Extract(context.Background(), "Hamilton, New Zealand")
	require.True(t, rec.Complete(domain.Sun))
	// Southern hemisphere: January days are longer than June days.
	assert.Greater(t, rec.Series[domain.Sun][0].Value, rec.Series[domain.Sun][5].Value)
	assert.InDelta(t, 0.5*31*14.5, rec.Series[domain.Sun][0].Value, 15)
}

func TestApp_ResolverCountsLookups(t *testing.T) {
	a, _, metrics := newTestApp(t, false)

	q := a.Resolver.Classify(context.Background(), []string{"Hamilton", "New", "Zealand", "Seattle", "high"})
	assert.Equal(t, []string{"Hamilton, New Zealand", "Seattle"}, q.Cities)
	assert.True(t, q.Categories[domain.High])

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ResolverLookups.WithLabelValues("exists")), 0)
	assert.Greater(t, testutil.ToFloat64(metrics.ResolverLookups.WithLabelValues("absent")), 0.0)
}

func TestApp_ClearCache(t *testing.T) {
	a, fetcher, _ := newTestApp(t, true)

	_ = a.Extractor.Extract(context.Background(), "Seattle")
	_ = a.Extractor.Extract(context.Background(), "Atlantis")

	n, err := a.ClearCache("Seattle")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, a.Cached("Seattle"))
	assert.True(t, a.Cached("Atlantis"))

	_ = a.Extractor.Extract(context.Background(), "Seattle")
	assert.Equal(t, 2, fetcher.count("Seattle"))

	n, err = a.ClearCache()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, a.Cached("Atlantis"))
}

func TestApp_CacheDisabled(t *testing.T) {
	a, fetcher, _ := newTestApp(t, false)

	_ = a.Extractor.Extract(context.Background(), "Seattle")
	_ = a.Extractor.Extract(context.Background(), "Seattle")
	assert.Equal(t, 1, fetcher.count("Seattle"), "memory cache still applies")
	assert.False(t, a.Cached("Seattle"))

	n, err := a.ClearCache()
	require.NoError(t, err)
	assert.Zero(t, n)
}
