package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_Convert(t *testing.T) {
	s := DefaultSchema()

	tests := []struct {
		name     string
		from, to string
		in       float64
		expected float64
	}{
		{"freezing", "F", "C", 32, 0.0},
		{"hot day", "F", "C", 100, 37.8},
		{"below zero", "F", "C", -40, -40.0},
		{"inch to mm", "inch", "mm", 1, 25.4},
		{"inch to cm", "inch", "cm", 1, 2.5},
		{"mm to cm", "mm", "cm", 1.5, 15},
		{"cm to mm", "cm", "mm", 25, 2.5},
		{"cm to mm keeps precision", "cm", "mm", 12.7, 1.27},
		{"mm to cm keeps precision", "mm", "cm", 1.234, 12.34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Convert(tt.from, tt.to, tt.in)
			assert.True(t, ok)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestSchema_ConvertUnknown(t *testing.T) {
	_, ok := DefaultSchema().Convert("C", "F", 10)
	assert.False(t, ok)

	_, ok = DefaultSchema().Convert("inch", "m", 10)
	assert.False(t, ok)
}

func TestSchema_Targets(t *testing.T) {
	s := DefaultSchema()

	assert.Equal(t, []string{"mm", "cm"}, s.Targets("inch"))
	assert.Equal(t, []string{"C"}, s.Targets("F"))
	assert.Empty(t, s.Targets("sun"))
}

func TestSchema_Tables(t *testing.T) {
	s := DefaultSchema()

	assert.Len(t, s.Rows(), 12)
	assert.Equal(t, RecordHigh, s.Rows()[0])
	assert.Equal(t, SnowCM, s.Rows()[11])
	assert.Equal(t, "prep mm", s.Title(PrecipitationMM))

	for _, c := range []Category{RecordHigh, High, Low, RecordLow, Sun} {
		assert.True(t, s.IsDefault(c), "category %q", c)
	}
	assert.False(t, s.IsDefault(Mean))

	assert.True(t, s.IsAbsolute(Sun))
	assert.True(t, s.IsAbsolute(SnowCM))
	assert.False(t, s.IsAbsolute(Low))

	rows := s.Rows()
	rows[0] = "mutated"
	assert.Equal(t, RecordHigh, s.Rows()[0], "Rows returns a copy")
}

func TestSchema_MonthIndex(t *testing.T) {
	s := DefaultSchema()

	i, ok := s.MonthIndex("Mar")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = s.MonthIndex("mar")
	assert.False(t, ok, "weather box keys are case-sensitive")
}

func TestSchema_LookupCategory(t *testing.T) {
	s := DefaultSchema()

	tests := []struct {
		token    string
		expected Category
		ok       bool
	}{
		{"high", High, true},
		{"High C", High, true},
		{"r-low", RecordLow, true},
		{"prep days", PrecipitationDays, true},
		{"snow cm", SnowCM, true},
		{"humidity", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := s.LookupCategory(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.2, roundTo(0.25, 1), "exact halves round to even")
	assert.Equal(t, 2.67, roundTo(2.675, 2), "binary value below the half rounds down")
	assert.Equal(t, -17.2, roundTo((1-32)*(5.0/9.0), 1))
}
