// Package preproc turns concatenated sketch source into a C++ translation
// unit: it includes the core header and declares every function the sketch
// defines without declaring, ahead of the first statement.
//
// A run has two phases. Prepare computes everything from the raw text and
// returns it as a Result; Write emits the output. Nothing is kept between
// runs, so independent runs may proceed concurrently
package preproc

import (
	"fmt"
	"io"
	"strings"

	"github.com/saeedalam/sketchpp/internal/imports"
	"github.com/saeedalam/sketchpp/internal/lexer"
	"github.com/saeedalam/sketchpp/internal/prototype"
)

// HeaderCount is the number of header lines Write always inserts
const HeaderCount = 1

// HeaderInclude is the header line inserted at the insertion point
const HeaderInclude = "#include \"Arduino.h\"\n"

// Options control a single run
type Options struct {
	// SubstituteUnicode rewrites non-ASCII characters as \uXXXX escapes
	SubstituteUnicode bool

	// Footer is written after the sketch body
	Footer string
}

// Result is everything Write needs, computed by Prepare
type Result struct {
	// Text is the scrubbed (and possibly escaped) sketch, newline-padded
	Text string

	InsertionOffset int
	HeaderCount     int
	Prototypes      []string
	Imports         []string
	Footer          string
}

// LineOffset is the number of lines inserted ahead of the sketch body, not
// counting the #line marker. Callers subtract it when mapping diagnostics
func (r *Result) LineOffset() int {
	return r.HeaderCount + len(r.Prototypes)
}

// InsertionLine is the number of newlines before the insertion point. It is
// the value of the emitted #line marker
func (r *Result) InsertionLine() int {
	return strings.Count(r.Text[:r.InsertionOffset], "\n")
}

// Prepare analyzes raw sketch text. It fails only when a block comment is not
// terminated; in that case there is nothing to write
func Prepare(raw string, opts Options) (*Result, error) {
	// A trailing newline keeps a final line comment or directive terminated
	text := raw + "\n"

	text, err := lexer.Scrub(text)
	if err != nil {
		return nil, fmt.Errorf("scrub comments: %w", err)
	}

	if opts.SubstituteUnicode {
		text = lexer.EscapeUnicode(text)
	}

	return &Result{
		Text:            text,
		InsertionOffset: FirstStatement(text),
		HeaderCount:     HeaderCount,
		Prototypes:      prototype.Prototypes(text),
		Imports:         imports.FindIncludes(text),
		Footer:          opts.Footer,
	}, nil
}

// Write emits the translation unit for a prepared run
func Write(w io.Writer, res *Result) error {
	ew := &errWriter{w: w}

	ew.writeString(res.Text[:res.InsertionOffset])
	ew.writeString(HeaderInclude)
	for _, p := range res.Prototypes {
		ew.writeString(p)
		ew.writeString("\n")
	}
	ew.writeString(fmt.Sprintf("#line %d\n", res.InsertionLine()))
	ew.writeString(res.Text[res.InsertionOffset:])
	ew.writeString(res.Footer)

	return ew.err
}

// errWriter remembers the first write error and skips later writes
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) writeString(s string) {
	if ew.err != nil || s == "" {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
