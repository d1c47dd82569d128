package domain

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// compareConcurrency bounds parallel extractions in Compare.
const compareConcurrency = 4

// Comparison holds selected readings as month index -> place title ->
// category -> reading.
type Comparison map[int]map[string]map[Category]Reading

// Compare extracts every place concurrently and collects the selected months
// and categories. Missing places are skipped, as are categories a place has
// no data for. When two places resolve to the same title the later one wins.
func (e *Extractor) Compare(ctx context.Context, places []string, months [NumMonths]bool, categories map[Category]bool) Comparison {
	records := make([]Record, len(places))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for i, place := range places {
		g.Go(func() error {
			records[i] = e.Extract(gctx, place)
			return nil
		})
	}
	_ = g.Wait()

	out := make(Comparison)
	for m, selected := range months {
		if !selected {
			continue
		}
		byPlace := make(map[string]map[Category]Reading)
		for _, rec := range records {
			if rec.PageError {
				continue
			}
			values := make(map[Category]Reading)
			for _, c := range e.schema.rows {
				if !categories[c] || !rec.Complete(c) {
					continue
				}
				values[c] = rec.Series[c][m]
			}
			byPlace[rec.Title] = values
		}
		out[m] = byPlace
	}
	return out
}
