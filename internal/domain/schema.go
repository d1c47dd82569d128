package domain

import (
	"strconv"
	"strings"
)

// Category names a weather box row, e.g. "high C" or "precipitation mm".
type Category string

// Recognized climate categories, in display order.
const (
	RecordHigh        Category = "record high C"
	High              Category = "high C"
	Mean              Category = "mean C"
	Low               Category = "low C"
	RecordLow         Category = "record low C"
	Sun               Category = "sun"
	PrecipitationDays Category = "precipitation days"
	PrecipitationMM   Category = "precipitation mm"
	RainDays          Category = "rain days"
	RainMM            Category = "rain mm"
	SnowDays          Category = "snow days"
	SnowCM            Category = "snow cm"
)

// NumMonths is the length of every complete category series.
const NumMonths = 12

// Conversion maps a value in one unit to another unit.
type Conversion func(float64) float64

type conversionTarget struct {
	unit    string
	convert Conversion
}

// Schema holds the static tables that drive extraction and formatting:
// month abbreviations, row order and titles, default and absolute rows,
// and the unit conversion registry. A Schema is immutable once built.
type Schema struct {
	months      [NumMonths]string
	rows        []Category
	titles      map[Category]string
	defaults    map[Category]bool
	absolute    map[Category]bool
	conversions map[string][]conversionTarget
}

var defaultSchema = newDefaultSchema()

// DefaultSchema returns the shared weather box schema.
func DefaultSchema() *Schema {
	return defaultSchema
}

func newDefaultSchema() *Schema {
	return &Schema{
		months: [NumMonths]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		rows: []Category{
			RecordHigh, High, Mean, Low, RecordLow, Sun,
			PrecipitationDays, PrecipitationMM, RainDays, RainMM, SnowDays, SnowCM,
		},
		titles: map[Category]string{
			RecordHigh:        "r-high",
			High:              "high",
			Mean:              "mean",
			Low:               "low",
			RecordLow:         "r-low",
			Sun:               "sun",
			PrecipitationDays: "prep days",
			PrecipitationMM:   "prep mm",
			RainDays:          "rain days",
			RainMM:            "rain mm",
			SnowDays:          "snow days",
			SnowCM:            "snow cm",
		},
		defaults: map[Category]bool{
			RecordHigh: true, High: true, Low: true, RecordLow: true, Sun: true,
		},
		absolute: map[Category]bool{
			Sun: true, SnowDays: true, SnowCM: true, RainDays: true, RainMM: true,
			PrecipitationDays: true, PrecipitationMM: true,
		},
		conversions: map[string][]conversionTarget{
			"F":    {{unit: "C", convert: func(v float64) float64 { return roundTo((v-32)*(5.0/9.0), 1) }}},
			"inch": {{unit: "mm", convert: func(v float64) float64 { return roundTo(v*25.4, 1) }}, {unit: "cm", convert: func(v float64) float64 { return roundTo(v*2.54, 1) }}},
			// mm->cm multiplies and cm->mm divides; stored records depend on both factors.
			"mm": {{unit: "cm", convert: func(v float64) float64 { return v * 10 }}},
			"cm": {{unit: "mm", convert: func(v float64) float64 { return v / 10 }}},
		},
	}
}

// Months returns the three-letter English month abbreviations, January first.
func (s *Schema) Months() [NumMonths]string {
	return s.months
}

// MonthIndex returns the zero-based index of an exact month abbreviation.
func (s *Schema) MonthIndex(abbr string) (int, bool) {
	for i, m := range s.months {
		if m == abbr {
			return i, true
		}
	}
	return 0, false
}

// Rows returns every known category in display order.
func (s *Schema) Rows() []Category {
	out := make([]Category, len(s.rows))
	copy(out, s.rows)
	return out
}

// IsKnown reports whether c is one of the recognized categories.
func (s *Schema) IsKnown(c Category) bool {
	_, ok := s.titles[c]
	return ok
}

// Title returns the short row label of c.
func (s *Schema) Title(c Category) string {
	return s.titles[c]
}

// IsDefault reports whether c is printed without the "all rows" option.
func (s *Schema) IsDefault(c Category) bool {
	return s.defaults[c]
}

// IsAbsolute reports whether zero readings of c render as "-".
func (s *Schema) IsAbsolute(c Category) bool {
	return s.absolute[c]
}

// LookupCategory matches a user token against category names and row labels,
// ignoring case.
func (s *Schema) LookupCategory(token string) (Category, bool) {
	for _, c := range s.rows {
		if strings.EqualFold(token, string(c)) || strings.EqualFold(token, s.titles[c]) {
			return c, true
		}
	}
	return "", false
}

// Targets lists the units a value in unit can be converted to, in preference
// order.
func (s *Schema) Targets(unit string) []string {
	targets := s.conversions[unit]
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.unit
	}
	return out
}

// Convert converts v from one unit to another. It reports false when the
// registry has no such conversion.
func (s *Schema) Convert(from, to string, v float64) (float64, bool) {
	for _, t := range s.conversions[from] {
		if t.unit == to {
			return t.convert(v), true
		}
	}
	return 0, false
}

// roundTo rounds v to places decimals, ties to even on exact halves.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}
