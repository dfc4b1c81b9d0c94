package preproc

import "regexp"

// leading matches one span that may precede the first statement: blanks, a
// block comment, a line comment, or a directive continued by backslash-newline
var leading = regexp.MustCompile(`\A(?:\s+|/\*[^*]*\*+(?:[^/*][^*]*\*+)*/|//[^\n]*|#(?:\\\r?\n|[^\n])*)`)

// FirstStatement returns the offset of the first byte of text that is not
// whitespace, a comment or a preprocessor directive
func FirstStatement(text string) int {
	offset := 0
	for offset < len(text) {
		loc := leading.FindStringIndex(text[offset:])
		if loc == nil || loc[1] == 0 {
			break
		}
		offset += loc[1]
	}
	return offset
}
