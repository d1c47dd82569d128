package domain

import (
	"context"
	"time"
)

// Page is an article revision as returned by the fetch service. Title is the
// canonical title after redirects when the page was found, and the requested
// title otherwise.
type Page struct {
	Title string
	Body  string
	Found bool
}

// PageFetcher retrieves article wikitext by title, following redirects.
// A missing page is reported with Found=false and a nil error; errors are
// reserved for transport and upstream failures.
type PageFetcher interface {
	FetchPage(ctx context.Context, title string) (Page, error)
}

// Observer is a resolved geographic position used for day-length lookups.
type Observer struct {
	Name string `json:"name"`
	Coordinates
}

// Astronomer provides day lengths for percent-sunshine conversion.
type Astronomer interface {
	// ResolveObserver finds the position of a place. It reports false when the
	// place cannot be located.
	ResolveObserver(ctx context.Context, place string) (Observer, bool)

	// DayLength returns the total daylight over the given month (1-12).
	DayLength(obs Observer, month int) time.Duration
}
