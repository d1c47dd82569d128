package domain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// --- mock page fetcher ---

type mockFetcher struct {
	mu    sync.Mutex
	pages map[string]Page
	err   error
	calls map[string]int
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		pages: make(map[string]Page),
		calls: make(map[string]int),
	}
}

func (m *mockFetcher) add(title, body string) *mockFetcher {
	return m.addRedirect(title, title, body)
}

func (m *mockFetcher) addRedirect(requested, canonical, body string) *mockFetcher {
	m.pages[requested] = Page{Title: canonical, Body: body, Found: true}
	return m
}

func (m *mockFetcher) FetchPage(_ context.Context, title string) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[title]++
	if m.err != nil {
		return Page{}, m.err
	}
	if p, ok := m.pages[title]; ok {
		return p, nil
	}
	return Page{Title: title}, nil
}

func (m *mockFetcher) callCount(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[title]
}

// --- mock astronomer ---

type mockAstronomer struct {
	observer     Observer
	found        bool
	dayLength    time.Duration
	resolveCalls int
}

func (m *mockAstronomer) ResolveObserver(_ context.Context, _ string) (Observer, bool) {
	m.resolveCalls++
	return m.observer, m.found
}

func (m *mockAstronomer) DayLength(_ Observer, _ int) time.Duration {
	return m.dayLength
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

type boxRow struct {
	category string
	values   [NumMonths]string
}

func every(v string) [NumMonths]string {
	var out [NumMonths]string
	for i := range out {
		out[i] = v
	}
	return out
}

// weatherBox renders rows as a weather box template, one field per month.
func weatherBox(rows ...boxRow) string {
	months := DefaultSchema().Months()
	var b strings.Builder
	b.WriteString("{{Weather box\n")
	for _, r := range rows {
		for m, v := range r.values {
			fmt.Fprintf(&b, "|%s %s = %s\n", months[m], r.category, v)
		}
	}
	b.WriteString("|source 1 = {{cite web |url=http://example.org |title=Normals}}\n}}")
	return b.String()
}

func floats(series []Reading) []float64 {
	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = r.Value
	}
	return out
}
