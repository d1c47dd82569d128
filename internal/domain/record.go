package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	msgLocationNotFound = " : location not found"
	msgNoInformation    = ": no information found"
)

// Reading is one monthly value. Valid is false for months the source marks
// as having no data.
type Reading struct {
	Value float64
	Valid bool
}

// Value returns a valid reading holding v.
func Value(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// MarshalJSON renders a null reading as JSON null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Value(v)
	return nil
}

// String renders the value with at least one fractional digit, or "-" when
// the reading is null.
func (r Reading) String() string {
	if !r.Valid {
		return "-"
	}
	s := strconv.FormatFloat(r.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Record is the climate data extracted for one place. Every series holds
// either zero or twelve readings, January first.
type Record struct {
	Title       string                 `json:"title"`
	PageError   bool                   `json:"page_error"`
	Location    string                 `json:"location,omitempty"`
	Observer    *Observer              `json:"observer,omitempty"`
	Series      map[Category][]Reading `json:"series"`
	RetrievedAt time.Time              `json:"retrieved_at"`

	observerResolved bool
	sunFromPercent   int
}

func newRecord(title string) Record {
	rec := Record{
		Title:       title,
		Series:      make(map[Category][]Reading, len(defaultSchema.rows)),
		RetrievedAt: clock.Now().UTC(),
	}
	for _, c := range defaultSchema.rows {
		rec.Series[c] = []Reading{}
	}
	return rec
}

// Complete reports whether the series for c has all twelve months.
func (r Record) Complete(c Category) bool {
	return len(r.Series[c]) == NumMonths
}

// Coordinates is a WGS-84 position with optional elevation in metres.
type Coordinates struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Elevation    float64 `json:"elevation,omitempty"`
	HasElevation bool    `json:"has_elevation"`
}
