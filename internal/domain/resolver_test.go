package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock climate source ---

type mockSource struct {
	known map[string]bool
	calls map[string]int
}

func newMockSource(known ...string) *mockSource {
	m := &mockSource{known: make(map[string]bool), calls: make(map[string]int)}
	for _, k := range known {
		m.known[k] = true
	}
	return m
}

func (m *mockSource) Extract(_ context.Context, place string) Record {
	m.calls[place]++
	rec := newRecord(place)
	if m.known[place] {
		rec.Series[High] = make([]Reading, NumMonths)
	}
	return rec
}

// --- tests ---

func TestClassify_MonthAndCity(t *testing.T) {
	r := NewResolver(newMockSource("Toronto"), discardLogger())

	q := r.Classify(context.Background(), []string{"Toronto", "march"})

	assert.True(t, q.Months[2])
	assert.True(t, q.MonthSelected())
	assert.Equal(t, []string{"Toronto"}, q.Cities)
	for c, selected := range q.Categories {
		assert.False(t, selected, "category %q", c)
	}
}

func TestClassify_MonthsAndCategories(t *testing.T) {
	src := newMockSource()
	r := NewResolver(src, discardLogger())

	q := r.Classify(context.Background(), []string{"mar", "high", "r-low"})

	assert.True(t, q.Months[2])
	assert.True(t, q.Categories[High])
	assert.True(t, q.Categories[RecordLow])
	assert.False(t, q.Categories[Low])
	assert.Empty(t, q.Cities)
	assert.Empty(t, src.calls, "no fragments means no lookups")
}

func TestClassify_TokenKinds(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		month  int
		cat    Category
		isLoc  bool
		isStop bool
	}{
		{name: "abbreviation", token: "Jan", month: 0},
		{name: "full month", token: "SEPTEMBER", month: 8},
		{name: "category key", token: "sun", month: -1, cat: Sun},
		{name: "display alias", token: "R-HIGH", month: -1, cat: RecordHigh},
		{name: "location", token: "Location", month: -1, isLoc: true},
		{name: "stop word", token: "versus", month: -1, isStop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newMockSource()
			q := NewResolver(src, discardLogger()).Classify(context.Background(), []string{tt.token})

			if tt.month >= 0 {
				assert.True(t, q.Months[tt.month])
			} else {
				assert.False(t, q.MonthSelected())
			}
			if tt.cat != "" {
				assert.True(t, q.Categories[tt.cat])
			}
			assert.Equal(t, tt.isLoc, q.Location)
			assert.Empty(t, q.Cities)
			assert.Empty(t, src.calls)
		})
	}
}

func TestClassify_Stitching(t *testing.T) {
	src := newMockSource("Washington, D.C.", "Toronto", "Hamilton, New Zealand", "Seattle")
	r := NewResolver(src, discardLogger())

	q := r.Classify(context.Background(),
		[]string{"Washington", "D.C.", "Toronto", "Hamilton", "New", "Zealand", "Seattle", "Washington"})

	assert.Equal(t, []string{"Washington, D.C.", "Toronto", "Hamilton, New Zealand", "Seattle"}, q.Cities)
}

func TestClassify_SpaceJoin(t *testing.T) {
	src := newMockSource("New York City")
	r := NewResolver(src, discardLogger())

	q := r.Classify(context.Background(), []string{"new", "york", "city", "in", "july"})

	assert.Equal(t, []string{"New York City"}, q.Cities)
	assert.True(t, q.Months[6])
}

func TestClassify_MemoizesCandidates(t *testing.T) {
	src := newMockSource()
	r := NewResolver(src, discardLogger())

	q := r.Classify(context.Background(), []string{"new", "york", "new", "york"})

	assert.Empty(t, q.Cities)
	assert.NotEmpty(t, src.calls)
	for name, n := range src.calls {
		assert.Equal(t, 1, n, "candidate %q", name)
	}
}

func TestClassify_CancelledContext(t *testing.T) {
	src := newMockSource("Toronto")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewResolver(src, discardLogger()).Classify(ctx, []string{"Toronto"})

	assert.Empty(t, q.Cities)
	assert.Empty(t, src.calls)
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"toronto", "Toronto"},
		{"NEW YORK", "New York"},
		{"washington, d.c.", "Washington, D.C."},
		{"st. john's", "St. John'S"},
		{"são paulo", "São Paulo"},
		{"las-vegas", "Las-Vegas"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleCase(tt.in))
		})
	}
}
