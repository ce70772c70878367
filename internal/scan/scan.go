// Package scan implements the positional text scanning primitives the
// extraction pipeline is built on. Markers are matched by first occurrence
// only; there is no grammar and no backtracking. That fragility is
// deliberate: every extractor in this module depends on leftmost-match
// semantics staying exactly as they are.
package scan

import "strings"

// Before returns the prefix of text strictly before the first occurrence
// of marker. If marker is absent the whole text is returned.
func Before(text, marker string) string {
	if i := strings.Index(text, marker); i >= 0 {
		return text[:i]
	}
	return text
}

// BeforeStrict is Before, but reports failure when marker is absent.
func BeforeStrict(text, marker string) (string, bool) {
	i := strings.Index(text, marker)
	if i < 0 {
		return "", false
	}
	return text[:i], true
}

// After returns the suffix of text strictly after the first occurrence
// of marker. If marker is absent the empty string is returned.
func After(text, marker string) string {
	if i := strings.Index(text, marker); i >= 0 {
		return text[i+len(marker):]
	}
	return ""
}

// AfterStrict is After, but reports failure when marker is absent.
func AfterStrict(text, marker string) (string, bool) {
	i := strings.Index(text, marker)
	if i < 0 {
		return "", false
	}
	return text[i+len(marker):], true
}

// Between returns the text between the first occurrence of begin and the
// first occurrence of end after it, using non-strict semantics: a missing
// marker yields the empty string. Callers that need to distinguish "empty
// match" from "no match" should use BetweenStrict.
func Between(text, begin, end string) string {
	return Before(After(text, begin), end)
}

// BetweenStrict returns the text between the first occurrence of begin and
// the first occurrence of end after it. It fails when either marker is
// absent.
func BetweenStrict(text, begin, end string) (string, bool) {
	rest, ok := AfterStrict(text, begin)
	if !ok {
		return "", false
	}
	return BeforeStrict(rest, end)
}

// IndexBetweenStrict is BetweenStrict returning the half-open byte range
// [start, stop) of the matched content instead of the content itself, so
// callers can mutate the surrounding text by range.
func IndexBetweenStrict(text, begin, end string) (start, stop int, ok bool) {
	i := strings.Index(text, begin)
	if i < 0 {
		return 0, 0, false
	}
	start = i + len(begin)
	j := strings.Index(text[start:], end)
	if j < 0 {
		return 0, 0, false
	}
	return start, start + j, true
}
