package crawling

import (
	"strings"
	"unicode/utf8"
)

// budget accumulates content up to a character limit. Characters are Unicode
// code points, not bytes.
type budget struct {
	limit int
	sb    strings.Builder
	runes int
}

func newBudget(limit int) *budget {
	return &budget{limit: limit}
}

func (b *budget) add(s string) {
	b.sb.WriteString(s)
	b.runes += utf8.RuneCountInString(s)
}

// full reports whether more content could no longer appear in the result.
func (b *budget) full() bool {
	return b.runes >= b.limit
}

// result returns the content cut to the limit and whether a cut was made.
func (b *budget) result() (string, bool) {
	if b.runes <= b.limit {
		return b.sb.String(), false
	}
	return TruncateRunes(b.sb.String(), b.limit), true
}

// TruncateRunes returns the first n characters of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
