package scan

import "strings"

// Cursor is an immutable read position over a fixed text. Every operation
// returns a new Cursor; repeated extraction loops advance by value instead
// of reslicing a shrinking string, so a loop over repeated markers always
// terminates.
type Cursor struct {
	text string
	pos  int
}

// NewCursor returns a cursor at the start of text.
func NewCursor(text string) Cursor {
	return Cursor{text: text}
}

// Rest returns the unread remainder of the text.
func (c Cursor) Rest() string {
	return c.text[c.pos:]
}

// Pos returns the cursor's absolute byte offset.
func (c Cursor) Pos() int {
	return c.pos
}

// Seek returns a cursor positioned just after the next occurrence of
// marker. It fails when marker does not occur in the remainder.
func (c Cursor) Seek(marker string) (Cursor, bool) {
	i := strings.Index(c.Rest(), marker)
	if i < 0 {
		return c, false
	}
	return Cursor{text: c.text, pos: c.pos + i + len(marker)}, true
}

// Next returns the text between the next occurrence of begin and the first
// occurrence of end after it. The returned cursor sits immediately after
// the matched content, before the end marker, so a caller can inspect what
// follows the match and still re-scan from there.
func (c Cursor) Next(begin, end string) (string, Cursor, bool) {
	after, ok := c.Seek(begin)
	if !ok {
		return "", c, false
	}
	match, ok := BeforeStrict(after.Rest(), end)
	if !ok {
		return "", c, false
	}
	return match, Cursor{text: c.text, pos: after.pos + len(match)}, true
}
