// Package lexer holds the text passes that prepare sketch source for
// structural analysis. Every pass that blanks text keeps the byte length and
// the position of every newline, so offsets and line numbers computed on the
// output are valid for the input
package lexer

// Scrub replaces the bytes of every comment with spaces, keeping newlines.
// Comment markers inside double-quoted strings are left alone
func Scrub(text string) (string, error) {
	spans, err := Tokenize(text, ModeScrub)
	if err != nil {
		return "", err
	}
	return blank(text, spans, isComment), nil
}

// Strip blanks comments, string and character literals and directive lines,
// leaving only the text signature matching cares about
func Strip(text string) string {
	spans, _ := Tokenize(text, ModeStrip)
	return blank(text, spans, func(st State) bool { return st != Code })
}

func isComment(st State) bool {
	return st == LineComment || st == BlockComment
}

// Collapse removes the contents of every top-level brace pair, keeping the
// braces and all text outside them. A closing brace with no opener is kept as
// text; an opener that is never closed drops the rest of the input
func Collapse(text string) string {
	out := make([]byte, 0, len(text))
	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{':
			if depth == 0 {
				out = append(out, c)
			}
			depth++
		case c == '}' && depth > 0:
			depth--
			if depth == 0 {
				out = append(out, c)
			}
		case depth == 0:
			out = append(out, c)
		}
	}
	return string(out)
}
