package wikitext

import "strings"

// Field is a single key/value pair of an infobox.
type Field struct {
	Key   string
	Value string
}

// Infobox is the ordered key/value content of an infobox-style template.
// The zero value is an empty infobox.
type Infobox struct {
	fields []Field
	index  map[string]int
}

// Len returns the number of non-empty fields.
func (b Infobox) Len() int {
	return len(b.fields)
}

// Get returns the value stored under key.
func (b Infobox) Get(key string) (string, bool) {
	i, ok := b.index[key]
	if !ok {
		return "", false
	}
	return b.fields[i].Value, true
}

// Keys returns the field keys in first-appearance order.
func (b Infobox) Keys() []string {
	keys := make([]string, len(b.fields))
	for i, f := range b.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the fields in first-appearance order.
func (b Infobox) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// ParseInfobox tokenizes a template span into its key/value fields.
// See the package documentation for the tokenization rules.
func ParseInfobox(span string) Infobox {
	if span == "" {
		return Infobox{}
	}
	span = flattenLinks(StripComments(span))

	var all []Field
	seen := make(map[string]int)
	for _, segment := range strings.Split(span, "|") {
		key, value, _ := strings.Cut(segment, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if i, ok := seen[key]; ok {
			all[i].Value = value
			continue
		}
		seen[key] = len(all)
		all = append(all, Field{Key: key, Value: value})
	}

	box := Infobox{index: make(map[string]int, len(all))}
	for _, f := range all {
		if f.Value == "" {
			continue
		}
		box.index[f.Key] = len(box.fields)
		box.fields = append(box.fields, f)
	}
	return box
}

// StripComments removes every complete "<!-- ... -->" comment. An unterminated
// comment and everything after it is left untouched.
func StripComments(s string) string {
	for {
		start := strings.Index(s, "<!--")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "-->")
		if end < 0 {
			return s
		}
		s = s[:start] + s[start+end+len("-->"):]
	}
}

// flattenLinks rewrites "[[Target|Display]]" to "Display]]".
func flattenLinks(s string) string {
	from := 0
	for {
		open := strings.Index(s[from:], "[[")
		if open < 0 {
			return s
		}
		open += from
		rest := s[open:]
		end := strings.Index(rest, "]]")
		pipe := strings.IndexByte(rest, '|')
		if end >= 0 && pipe >= 0 && pipe < end {
			s = s[:open] + rest[pipe+1:]
			from = open
			continue
		}
		from = open + len("[[")
	}
}
