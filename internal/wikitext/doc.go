// Package wikitext locates and tokenizes MediaWiki template invocations.
//
// # Templates
//
// A template invocation opens with "{{" followed by its name and closes with
// the matching "}}". Invocations nest freely, so the end of a template is the
// first "}}" after which the span holds as many openers as closers:
//
//	{{Weather box
//	|location = Toronto
//	|Jan high C = {{convert|-0.7|C|F}}
//	}}
//
// [FindTemplate] performs that balanced scan. Malformed text (an opener with no
// matching closer) never panics; the scan stops at the last closer it reached.
//
// # Infoboxes
//
// Infobox-style templates carry "key = value" pairs separated by "|". The
// tokenizer is deliberately shallow:
//
//   - HTML comments ("<!-- ... -->") are removed first.
//   - Piped wikilinks are flattened to their display text by dropping the
//     "[[Target|" prefix; the closing "]]" is left in place.
//   - The span is split on every "|", including pipes of nested templates.
//     Fragments produced by nested templates become harmless extra keys.
//   - Keys and values are trimmed, and entries with an empty value are dropped.
//
// Key order follows first appearance; a repeated key keeps its first position
// and takes the last value.
package wikitext
