package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	highs := every("1.0")
	highs[6] = "25.5"
	pages := newMockFetcher().
		add("Toronto", loadFixture(t, "toronto.wiki")).
		add("Testville", weatherBox(boxRow{"high C", highs})).
		add("Nowhere", "no climate here")
	e := NewExtractor(pages, nil, discardLogger())

	var months [NumMonths]bool
	months[0] = true
	months[6] = true
	categories := map[Category]bool{High: true, Sun: true, RainDays: true}

	got := e.Compare(context.Background(), []string{"Toronto", "Testville", "Atlantis", "Nowhere"}, months, categories)

	require.Len(t, got, 2)
	assert.NotContains(t, got, 1)

	jan := got[0]
	require.Contains(t, jan, "Toronto")
	assert.Equal(t, Value(-0.7), jan["Toronto"][High])
	assert.Equal(t, Value(85.9), jan["Toronto"][Sun])
	assert.NotContains(t, jan["Toronto"], RainDays, "incomplete categories are skipped")
	assert.NotContains(t, jan["Toronto"], Low, "unselected categories are skipped")

	assert.Equal(t, Value(25.5), got[6]["Testville"][High])
	assert.NotContains(t, got[6]["Testville"], Sun)

	assert.NotContains(t, jan, "Atlantis : location not found")
	assert.Contains(t, jan, "Nowhere")
	assert.Empty(t, jan["Nowhere"])
}

func TestCompare_NoMonths(t *testing.T) {
	pages := newMockFetcher().add("Toronto", loadFixture(t, "toronto.wiki"))

	got := NewExtractor(pages, nil, discardLogger()).
		Compare(context.Background(), []string{"Toronto"}, [NumMonths]bool{}, map[Category]bool{High: true})

	assert.Empty(t, got)
}
