package lexer

import (
	"errors"
	"fmt"
	"strings"
)

// State is the scanner state a span of sketch text was read in
type State int

const (
	Code State = iota
	LineComment
	BlockComment
	StringLiteral
	CharLiteral
	Directive
)

func (s State) String() string {
	switch s {
	case Code:
		return "code"
	case LineComment:
		return "line-comment"
	case BlockComment:
		return "block-comment"
	case StringLiteral:
		return "string"
	case CharLiteral:
		return "char"
	case Directive:
		return "directive"
	default:
		return "unknown"
	}
}

// Span is the half-open byte range [Start, End) read in a single state
type Span struct {
	State State
	Start int
	End   int
}

// Mode selects which constructs Tokenize recognizes
type Mode int

const (
	// ModeScrub recognizes comments and double-quoted strings. A quote closes
	// or opens a string according to quoteBoundary; character literals and
	// directives are plain code. An unterminated block comment is an error
	ModeScrub Mode = iota

	// ModeStrip recognizes comments, string and character literals with
	// backslash escapes, and directive lines. It never fails
	ModeStrip
)

// ErrUnterminatedComment is returned when a /* comment reaches end of input
var ErrUnterminatedComment = errors.New("missing the */ from the end of a /* comment */")

// CommentError locates an unterminated block comment
type CommentError struct {
	Offset int // byte offset of the opening /*
	Line   int // 1-based line of the opening /*
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, ErrUnterminatedComment)
}

func (e *CommentError) Unwrap() error {
	return ErrUnterminatedComment
}

type tokenizer struct {
	src   string
	mode  Mode
	pos   int
	spans []Span

	// lineStart is true while only blanks have been seen since the last newline
	lineStart bool
}

// Tokenize splits src into consecutive spans covering every byte exactly once
func Tokenize(src string, mode Mode) ([]Span, error) {
	t := &tokenizer{src: src, mode: mode, lineStart: true}

	codeStart := 0
	for t.pos < len(src) {
		st, ok := t.opener()
		if !ok {
			t.advanceCode()
			continue
		}

		t.emit(Code, codeStart, t.pos)
		begin := t.pos
		if err := t.consume(st); err != nil {
			return t.spans, err
		}
		t.emit(st, begin, t.pos)
		codeStart = t.pos
	}
	t.emit(Code, codeStart, t.pos)

	return t.spans, nil
}

func (t *tokenizer) emit(st State, start, end int) {
	if end > start {
		t.spans = append(t.spans, Span{State: st, Start: start, End: end})
	}
}

func (t *tokenizer) peek(off int) byte {
	if t.pos+off >= len(t.src) {
		return 0
	}
	return t.src[t.pos+off]
}

// opener reports whether a non-code span starts at the current position
func (t *tokenizer) opener() (State, bool) {
	c := t.peek(0)
	switch {
	case c == '/' && t.peek(1) == '/':
		return LineComment, true
	case c == '/' && t.peek(1) == '*':
		return BlockComment, true
	case c == '"':
		if t.mode == ModeStrip || t.quoteBoundary(t.pos) {
			return StringLiteral, true
		}
	case c == '\'' && t.mode == ModeStrip:
		return CharLiteral, true
	case c == '#' && t.mode == ModeStrip && t.lineStart:
		return Directive, true
	}
	return Code, false
}

func (t *tokenizer) advanceCode() {
	switch c := t.src[t.pos]; c {
	case '\n':
		t.lineStart = true
	case ' ', '\t', '\r', '\f', '\v':
	default:
		t.lineStart = false
	}
	t.pos++
}

// quoteBoundary reports whether the quote at i starts or ends a string in
// scrub mode: it does at the start of input, when not preceded by a
// backslash, or when preceded by two backslashes
func (t *tokenizer) quoteBoundary(i int) bool {
	if t.src[i] != '"' {
		return false
	}
	if i == 0 || t.src[i-1] != '\\' {
		return true
	}
	return i >= 2 && t.src[i-2] == '\\'
}

func (t *tokenizer) consume(st State) error {
	switch st {
	case LineComment:
		t.pos += 2
		for t.pos < len(t.src) && t.src[t.pos] != '\n' {
			t.pos++
		}
	case BlockComment:
		return t.consumeBlockComment()
	case StringLiteral:
		if t.mode == ModeScrub {
			t.consumeScrubString()
		} else {
			t.consumeQuoted('"')
		}
		t.lineStart = false
	case CharLiteral:
		t.consumeQuoted('\'')
		t.lineStart = false
	case Directive:
		t.consumeDirective()
	}
	return nil
}

func (t *tokenizer) consumeBlockComment() error {
	begin := t.pos
	t.pos += 2
	end := strings.Index(t.src[t.pos:], "*/")
	if end < 0 {
		if t.mode == ModeScrub {
			return &CommentError{
				Offset: begin,
				Line:   strings.Count(t.src[:begin], "\n") + 1,
			}
		}
		t.pos = len(t.src)
		return nil
	}
	if strings.Contains(t.src[begin:t.pos+end], "\n") {
		t.lineStart = true
	}
	t.pos += end + 2
	return nil
}

// consumeScrubString reads to the next quote boundary or end of input.
// Newlines do not end the string
func (t *tokenizer) consumeScrubString() {
	t.pos++
	for t.pos < len(t.src) {
		if t.quoteBoundary(t.pos) {
			t.pos++
			return
		}
		t.pos++
	}
}

// consumeQuoted reads a literal closed by quote, honoring backslash escapes.
// An unterminated literal stops before the newline
func (t *tokenizer) consumeQuoted(quote byte) {
	t.pos++
	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case '\\':
			if t.pos+1 < len(t.src) {
				t.pos += 2
				continue
			}
		case quote:
			t.pos++
			return
		case '\n':
			return
		}
		t.pos++
	}
}

// consumeDirective reads to the end of the line, following backslash-newline
// continuations
func (t *tokenizer) consumeDirective() {
	t.pos++
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		if c == '\\' {
			if t.peek(1) == '\n' {
				t.pos += 2
				continue
			}
			if t.peek(1) == '\r' && t.peek(2) == '\n' {
				t.pos += 3
				continue
			}
		}
		if c == '\n' {
			return
		}
		t.pos++
	}
}

// blank replaces every non-newline byte of the hidden spans with a space
func blank(src string, spans []Span, hide func(State) bool) string {
	var b []byte
	for _, sp := range spans {
		if !hide(sp.State) {
			continue
		}
		if b == nil {
			b = []byte(src)
		}
		for i := sp.Start; i < sp.End; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	if b == nil {
		return src
	}
	return string(b)
}
