package wikitext

import "strings"

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// FindTemplate returns the full text of the first invocation of the template
// named name, from its opening "{{" through the closer that balances it.
// The name may be given with or without the leading "{{". Matching is
// case-sensitive and also matches names that merely start with name.
//
// An empty string is returned when the text is empty, the template is absent,
// or no closer follows the opener.
func FindTemplate(text, name string) string {
	if text == "" || name == "" {
		return ""
	}
	if !strings.HasPrefix(name, openMarker) {
		name = openMarker + name
	}

	start := strings.Index(text, name)
	if start < 0 {
		return ""
	}

	end := start
	for {
		prev := end
		if next := strings.Index(text[end:], closeMarker); next >= 0 {
			end += next + len(closeMarker)
		}
		// No further closer: return the span reached so far.
		if end == prev {
			break
		}
		if balanced(text[start:end]) {
			break
		}
	}
	return text[start:end]
}

func balanced(span string) bool {
	return strings.Count(span, openMarker) == strings.Count(span, closeMarker)
}
