package domain

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// ClimateSource extracts a climate record for a place name.
type ClimateSource interface {
	Extract(ctx context.Context, place string) Record
}

// Query is the classification of a free-text request such as
// "toronto march high r-low".
type Query struct {
	Months     [NumMonths]bool   `json:"months"`
	Categories map[Category]bool `json:"categories"`
	Location   bool              `json:"location"`
	Cities     []string          `json:"cities"`
}

// MonthSelected reports whether any month flag is set.
func (q Query) MonthSelected() bool {
	for _, m := range q.Months {
		if m {
			return true
		}
	}
	return false
}

var stopWords = map[string]bool{
	"in": true, "vs": true, "versus": true, "and": true, "for": true,
}

// Resolver classifies query tokens and resolves place-name fragments against
// a climate source.
type Resolver struct {
	source ClimateSource
	schema *Schema
	logger *slog.Logger
}

// NewResolver creates a resolver that tests candidate names with source.
func NewResolver(source ClimateSource, logger *slog.Logger) *Resolver {
	return &Resolver{
		source: source,
		schema: DefaultSchema(),
		logger: logger,
	}
}

// Classify sorts tokens into months, categories, the location flag and place
// names. Unclassified tokens are stitched into the longest-leftmost names that
// have printable climate data; fragments that never resolve are dropped.
func (r *Resolver) Classify(ctx context.Context, tokens []string) Query {
	q := Query{Categories: make(map[Category]bool, len(r.schema.rows))}
	for _, c := range r.schema.rows {
		q.Categories[c] = false
	}

	var fragments []string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		matched := false
		if m, ok := r.monthIndex(tok); ok {
			q.Months[m] = true
			matched = true
		}
		if c, ok := r.schema.LookupCategory(tok); ok {
			q.Categories[c] = true
			matched = true
		}
		if strings.EqualFold(tok, "location") {
			q.Location = true
			matched = true
		}
		if !matched && !stopWords[strings.ToLower(tok)] {
			fragments = append(fragments, tok)
		}
	}

	q.Cities = r.stitch(ctx, fragments)
	return q
}

func (r *Resolver) monthIndex(tok string) (int, bool) {
	for i, abbr := range r.schema.months {
		if strings.EqualFold(tok, abbr) || strings.EqualFold(tok, time.Month(i+1).String()) {
			return i, true
		}
	}
	return 0, false
}

// stitch groups fragments into place names. Candidates are tested in a fixed
// order (single fragment, then widening space joins, then comma-split joins),
// and each candidate name hits the source at most once per call.
func (r *Resolver) stitch(ctx context.Context, fragments []string) []string {
	cities := []string{}
	memo := make(map[string]bool)
	exists := func(name string) bool {
		if v, ok := memo[name]; ok {
			return v
		}
		v := HasPrintableData(r.source.Extract(ctx, name))
		r.logger.Debug("place candidate", "name", name, "exists", v)
		memo[name] = v
		return v
	}

	for i := 0; i < len(fragments); {
		if ctx.Err() != nil {
			break
		}
		name, next, ok := r.match(fragments, i, exists)
		if !ok {
			r.logger.Debug("discarding unresolved fragment", "fragment", fragments[i])
			i++
			continue
		}
		cities = append(cities, name)
		i = next
	}
	return cities
}

// match finds the first name that exists starting at fragment i and returns
// it with the index of the first unconsumed fragment.
func (r *Resolver) match(fragments []string, i int, exists func(string) bool) (string, int, bool) {
	if name := titleCase(fragments[i]); exists(name) {
		return name, i + 1, true
	}
	for j := i; j < len(fragments)-1; j++ {
		if name := titleCase(strings.Join(fragments[i:j+2], " ")); exists(name) {
			return name, j + 2, true
		}
		prefix := strings.Join(fragments[i:j+1], " ")
		for k := j + 1; k < len(fragments); k++ {
			name := titleCase(prefix + ", " + strings.Join(fragments[j+1:k+1], " "))
			if exists(name) {
				return name, k + 1, true
			}
		}
	}
	return "", 0, false
}

// titleCase upper-cases each letter that follows a non-cased rune and
// lower-cases the rest, so "washington, d.c." becomes "Washington, D.C.".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, c := range s {
		if prevCased {
			b.WriteRune(unicode.ToLower(c))
		} else {
			b.WriteRune(unicode.ToTitle(c))
		}
		prevCased = unicode.IsUpper(c) || unicode.IsLower(c) || unicode.IsTitle(c)
	}
	return b.String()
}
