package domain

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/climate-graph/internal/wikitext"
)

const (
	weatherBoxTemplate = "Weather box"
	templateNamespace  = "Template:"
	weatherboxSuffix   = "weatherbox"

	dailySun   Category = "d sun"
	percentSun Category = "percentsun"
)

// weatherboxMarkers end a transclusion of a separately maintained weather
// template, e.g. "{{Toronto weatherbox}}".
var weatherboxMarkers = []string{"weatherbox}}", "weatherbox/cached}}", "weatherbox|collapsed=Y}}"}

// nonLeapYear is a fixed non-leap year used for daily-to-monthly totals.
const nonLeapYear = 2013

// Extractor turns article wikitext into climate records and coordinates.
// It is safe for concurrent use when its collaborators are.
type Extractor struct {
	pages  PageFetcher
	astro  Astronomer
	schema *Schema
	logger *slog.Logger
}

// NewExtractor creates an extractor. astro may be nil, in which case
// percent-sunshine fields are ignored.
func NewExtractor(pages PageFetcher, astro Astronomer, logger *slog.Logger) *Extractor {
	return &Extractor{
		pages:  pages,
		astro:  astro,
		schema: DefaultSchema(),
		logger: logger,
	}
}

// Extract fetches the article for place and extracts its monthly climate
// series. Failures never surface as errors: a missing article yields a record
// with PageError set, and a page without a weather box yields empty series.
func (e *Extractor) Extract(ctx context.Context, place string) Record {
	page, ok := e.fetch(ctx, place)
	if !ok {
		rec := newRecord(place + msgLocationNotFound)
		rec.PageError = true
		return rec
	}

	rec := newRecord(page.Title)
	box := wikitext.ParseInfobox(wikitext.FindTemplate(page.Body, weatherBoxTemplate))
	if box.Len() == 0 {
		box = wikitext.ParseInfobox(e.separateWeatherbox(ctx, page.Body))
	}

	for _, f := range box.Fields() {
		if f.Key == "location" {
			rec.Location = strings.NewReplacer("[", "", "]", "").Replace(f.Value)
			continue
		}
		if len(f.Key) < 3 {
			continue
		}
		month, ok := e.schema.MonthIndex(f.Key[:3])
		if !ok {
			continue
		}
		category := Category(strings.TrimSpace(f.Key[3:]))
		e.accumulate(ctx, &rec, month, category, parseReading(f.Value))
	}

	for c, series := range rec.Series {
		if len(series) != 0 && len(series) != NumMonths {
			e.logger.Debug("dropping incomplete series",
				"title", rec.Title,
				"category", string(c),
				"months", len(series),
			)
			rec.Series[c] = []Reading{}
		}
	}
	return rec
}

func (e *Extractor) accumulate(ctx context.Context, rec *Record, month int, category Category, r Reading) {
	if e.schema.IsKnown(category) {
		rec.Series[category] = append(rec.Series[category], r)
		return
	}

	unit := lastToken(string(category))
	if targets := e.schema.Targets(unit); len(targets) > 0 {
		base := strings.TrimSuffix(string(category), unit)
		for _, target := range targets {
			converted := Category(base + target)
			if !e.schema.IsKnown(converted) {
				continue
			}
			if r.Valid {
				v, _ := e.schema.Convert(unit, target, r.Value)
				r = Value(v)
			}
			rec.Series[converted] = append(rec.Series[converted], r)
			return
		}
		return
	}

	switch category {
	case dailySun:
		if r.Valid {
			r = Value(roundTo(r.Value*float64(daysIn(month)), 1))
		}
		rec.Series[Sun] = append(rec.Series[Sun], r)
	case percentSun:
		// Direct sunshine hours take precedence once any have been seen.
		if len(rec.Series[Sun]) > rec.sunFromPercent {
			return
		}
		obs, ok := e.observer(ctx, rec)
		if !ok {
			return
		}
		if r.Valid {
			hours := e.astro.DayLength(obs, month+1).Hours()
			r = Value(roundTo(hours*r.Value/100, 1))
		}
		rec.Series[Sun] = append(rec.Series[Sun], r)
		rec.sunFromPercent++
	}
}

// observer resolves the record's position at most once, remembering failures.
func (e *Extractor) observer(ctx context.Context, rec *Record) (Observer, bool) {
	if !rec.observerResolved {
		rec.observerResolved = true
		if e.astro != nil {
			if obs, ok := e.astro.ResolveObserver(ctx, rec.Title); ok {
				rec.Observer = &obs
			} else {
				e.logger.Debug("observer not resolved", "title", rec.Title)
			}
		}
	}
	if rec.Observer == nil {
		return Observer{}, false
	}
	return *rec.Observer, true
}

// separateWeatherbox follows a transcluded "<Place> weatherbox" template to
// its own page and returns the weather box found there.
func (e *Extractor) separateWeatherbox(ctx context.Context, body string) string {
	at := -1
	for _, marker := range weatherboxMarkers {
		if i := strings.Index(body, marker); i > at {
			at = i
		}
	}
	if at < 0 {
		return ""
	}
	open := strings.LastIndex(body[:at], "{{")
	if open < 0 {
		return ""
	}
	name := templateNamespace + body[open+2:at+len(weatherboxSuffix)]

	page, ok := e.fetch(ctx, name)
	if !ok {
		return ""
	}
	return wikitext.FindTemplate(page.Body, weatherBoxTemplate)
}

func (e *Extractor) fetch(ctx context.Context, title string) (Page, bool) {
	page, err := e.pages.FetchPage(ctx, title)
	if err != nil {
		e.logger.Warn("page fetch failed", "title", title, "error", err)
		return Page{}, false
	}
	return page, page.Found
}

// parseReading parses a weather box cell. Unparsable text yields a null
// reading so the month keeps its slot.
func parseReading(text string) Reading {
	s := strings.NewReplacer("−", "-", "&minus;", "-").Replace(strings.TrimSpace(text))
	switch {
	case s == "-":
		return Reading{}
	case strings.EqualFold(s, "trace"):
		return Value(0)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Reading{}
	}
	return Value(v)
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func daysIn(month int) int {
	return time.Date(nonLeapYear, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}
