package gleam

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gleamhunt/gleam-finder/internal/scan"
)

// stripDelimited repeatedly removes the leftmost span delimited by open
// and close, delimiters included, until no span remains. Text between
// spans is preserved.
func stripDelimited(s, open, close string) string {
	for {
		start, stop, ok := scan.IndexBetweenStrict(s, open, close)
		if !ok {
			return s
		}
		s = s[:start-len(open)] + s[stop+len(close):]
	}
}

// DecodeDescription cleans display text recovered from the
// &quot;-unescaped campaign payload: markup tags are excised, non-breaking
// spaces become newlines, and the HTML apostrophe entity is resolved.
// The step order matches the escaping layers observed on giveaway pages
// and must not be reordered.
func DecodeDescription(s string) string {
	s = stripDelimited(s, "<", ">")
	s = strings.ReplaceAll(s, "\u00a0", "\n")
	s = strings.ReplaceAll(s, "&#39;", "'")
	return s
}

// DecodeScriptDescription cleans display text read from a raw JSON-in-
// script encoding, where tags appear as unicode escapes. The span
// stripping runs first, then the text is truncated at any dangling
// escape fragment (a field boundary can cut an escape sequence in half),
// then the apostrophe entity and numeric character references are
// resolved. This pipeline and DecodeDescription are alternatives, never
// composed: which one applies depends on which payload stage supplied
// the text.
func DecodeScriptDescription(s string) string {
	s = stripDelimited(s, `\u003c`, `\u003e`)
	if i := strings.Index(s, `\u003`); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "&#39;", "'")
	return decodeNumericRefs(s)
}

// decodeNumericRefs resolves decimal HTML character references, in both
// their plain (&#128420;) and unicode-escaped (\u0026#128420;) spellings,
// left to right. The first reference that does not name a valid code
// point stops the resolution; the remainder of the string is left
// untouched rather than failing.
func decodeNumericRefs(s string) string {
	s = strings.ReplaceAll(s, `\u0026#`, "&#")

	var b strings.Builder
	rest := s
	for {
		i := strings.Index(rest, "&#")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		after := rest[i+2:]
		semi := strings.Index(after, ";")
		if semi < 0 {
			b.WriteString(rest[i:])
			break
		}
		code, err := strconv.ParseUint(after[:semi], 10, 32)
		if err != nil || !utf8.ValidRune(rune(code)) {
			b.WriteString(rest[i:])
			break
		}
		b.WriteRune(rune(code))
		rest = after[semi+1:]
	}
	return b.String()
}
