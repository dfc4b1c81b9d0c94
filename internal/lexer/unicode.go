package lexer

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const nbsp = 0xa0

// EscapeUnicode rewrites every non-ASCII character as a \uXXXX escape.
// Non-breaking spaces become plain spaces. Characters outside the BMP are
// written as a surrogate pair of escapes
func EscapeUnicode(text string) string {
	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			count++
		}
	}
	if count == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + count*5)
	for _, r := range text {
		switch {
		case r < utf8.RuneSelf:
			b.WriteByte(byte(r))
		case r == nbsp:
			b.WriteByte(' ')
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			writeEscape(&b, hi)
			writeEscape(&b, lo)
		default:
			writeEscape(&b, r)
		}
	}
	return b.String()
}

func writeEscape(b *strings.Builder, r rune) {
	fmt.Fprintf(b, `\u%04x`, r)
}
