package domain

import (
	"strings"
	"unicode/utf8"
)

const minTitlePadding = 24

// HasPrintableData reports whether any category has a complete series.
func HasPrintableData(rec Record) bool {
	for _, c := range defaultSchema.rows {
		if rec.Complete(c) {
			return true
		}
	}
	return false
}

// FormatText renders rec as a fixed-width table with one column per month.
// Only the default rows are printed unless all is set. The first line holds
// the title followed by the month initials aligned over their columns.
func FormatText(rec Record, all bool) string {
	s := defaultSchema
	if rec.PageError {
		return rec.Title
	}

	var printed []Category
	for _, c := range s.rows {
		if (all || s.IsDefault(c)) && rec.Complete(c) {
			printed = append(printed, c)
		}
	}
	if len(printed) == 0 {
		return rec.Title + msgNoInformation
	}

	t := table{}
	cells := make([][]string, len(printed))
	for i, c := range printed {
		row := make([]string, NumMonths)
		for m, r := range rec.Series[c] {
			row[m] = s.renderCell(c, r)
		}
		cells[i] = row
		t.fit(s.Title(c), row)
	}

	var initials [NumMonths]string
	for m, name := range s.months {
		initials[m] = name[:1]
	}
	t.fit("", initials[:])

	var b strings.Builder
	b.WriteString(t.header(rec.Title, initials[:]))
	for i, c := range printed {
		b.WriteByte('\n')
		b.WriteString(t.row(s.Title(c), cells[i]))
	}
	if all && rec.Location != "" && rec.Location != rec.Title {
		b.WriteByte('\n')
		b.WriteString(rec.Location)
	}
	return b.String()
}

func (s *Schema) renderCell(c Category, r Reading) string {
	cell := r.String()
	if s.IsAbsolute(c) && cell == "0.0" {
		return "-"
	}
	return cell
}

// table tracks the label width and per-month column widths of printed rows.
type table struct {
	label  int
	widths [NumMonths]int
}

func (t *table) fit(label string, row []string) {
	t.label = max(t.label, len(label))
	for m, cell := range row {
		t.widths[m] = max(t.widths[m], len(cell))
	}
}

func (t *table) row(label string, cells []string) string {
	var b strings.Builder
	b.WriteString(padLeft(label, t.label))
	b.WriteByte('|')
	for m, cell := range cells {
		b.WriteString(padLeft(cell, t.widths[m]))
		b.WriteByte('|')
	}
	return b.String()
}

// header overlays title on the start of the month-initials row.
func (t *table) header(title string, initials []string) string {
	names := t.row("", initials)
	titleLen := utf8.RuneCountInString(title)
	pad := max(minTitlePadding, titleLen+8)
	if pad < len(names) && names[pad] == '|' {
		pad++
	}
	tail := ""
	if pad < len(names) {
		tail = names[pad:]
	}
	return title + strings.Repeat(" ", pad-titleLen) + tail
}

func padLeft(s string, width int) string {
	if n := width - len(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
