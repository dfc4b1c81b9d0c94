package lexer

import (
	"errors"
	"strings"
	"testing"
)

func spaces(s string) string {
	return strings.Repeat(" ", len(s))
}

// newlinePositions returns the byte offsets of every newline in s.
func newlinePositions(s string) []int {
	var pos []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			pos = append(pos, i)
		}
	}
	return pos
}

func sameLines(t *testing.T, name, in, out string) {
	t.Helper()
	if len(in) != len(out) {
		t.Fatalf("%s: length changed from %d to %d", name, len(in), len(out))
	}
	a, b := newlinePositions(in), newlinePositions(out)
	if len(a) != len(b) {
		t.Fatalf("%s: line count changed from %d to %d", name, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("%s: newline %d moved from %d to %d", name, i, a[i], b[i])
		}
	}
}

var invariantInputs = []string{
	"",
	"\n",
	"void setup() {\n  pinMode(13, OUTPUT); // led\n}\n",
	"/* header\n * more\n */\n#include <Servo.h>\nint a = 1;\n",
	"const char *s = \"// not a comment\";\n/* a */ int b; /* b\n c */\n",
	"#define SQ(x) \\\n  ((x) * (x))\nchar c = '\\'';\n",
	"char q = '\"'; // odd\n",
	"s = \"a\\\\\"; x = \"b\\\"\";\n",
	"int café = 1; // ünïcode\n",
	"\r\nint a;\r\n// c\r\n",
}

// =============================================================================
// SCRUB TESTS
// =============================================================================

func TestScrubLineComment(t *testing.T) {
	in := "int a; // note\nint b;\n"
	want := "int a; " + spaces("// note") + "\nint b;\n"

	got, err := Scrub(in)
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if got != want {
		t.Errorf("Scrub(%q) = %q, want %q", in, got, want)
	}
}

func TestScrubBlockCommentKeepsNewlines(t *testing.T) {
	in := "a/* x\ny */b"
	want := "a" + spaces("/* x") + "\n" + spaces("y */") + "b"

	got, err := Scrub(in)
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if got != want {
		t.Errorf("Scrub(%q) = %q, want %q", in, got, want)
	}
}

func TestScrubIgnoresCommentMarkersInStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "url in string",
			in:   `char *s = "http://x"; // c` + "\n",
			want: `char *s = "http://x"; ` + spaces("// c") + "\n",
		},
		{
			name: "block opener in string",
			in:   `f("/*"); /* real */`,
			want: `f("/*"); ` + spaces("/* real */"),
		},
		{
			name: "escaped quote stays inside",
			in:   `s = "a\"//b"; // c`,
			want: `s = "a\"//b"; ` + spaces("// c"),
		},
		{
			name: "escaped backslash closes",
			in:   `s = "a\\"; // c`,
			want: `s = "a\\"; ` + spaces("// c"),
		},
	}

	for _, tt := range tests {
		got, err := Scrub(tt.in)
		if err != nil {
			t.Fatalf("%s: Scrub failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: Scrub(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

// A quote inside a character literal opens a string in scrub mode, so the
// comments after it survive. Stripping later blanks them anyway.
func TestScrubQuoteInCharLiteral(t *testing.T) {
	in := "char q = '\"'; // x\nint d; // y\n"

	got, err := Scrub(in)
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if got != in {
		t.Errorf("Scrub(%q) = %q, want input unchanged", in, got)
	}
}

func TestScrubUnterminatedBlockComment(t *testing.T) {
	in := "int a;\n/* open\nint b;\n"

	_, err := Scrub(in)
	if err == nil {
		t.Fatal("Scrub should fail on an unterminated block comment")
	}
	if !errors.Is(err, ErrUnterminatedComment) {
		t.Errorf("Expected ErrUnterminatedComment, got %v", err)
	}

	var ce *CommentError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected *CommentError, got %T", err)
	}
	if ce.Line != 2 {
		t.Errorf("Expected line 2, got %d", ce.Line)
	}
	if ce.Offset != 7 {
		t.Errorf("Expected offset 7, got %d", ce.Offset)
	}
}

func TestScrubSlashStarSlashIsNotClosed(t *testing.T) {
	if _, err := Scrub("/*/ x\n"); !errors.Is(err, ErrUnterminatedComment) {
		t.Errorf("Expected ErrUnterminatedComment for /*/, got %v", err)
	}
}

func TestScrubPreservesLength(t *testing.T) {
	for _, in := range invariantInputs {
		out, err := Scrub(in)
		if err != nil {
			t.Fatalf("Scrub(%q) failed: %v", in, err)
		}
		sameLines(t, "Scrub", in, out)
	}
}

// =============================================================================
// STRIP TESTS
// =============================================================================

func TestStripLiteralsAndDirectives(t *testing.T) {
	in := "#include <Servo.h>\nchar c = '{';\nconst char *s = \"}\";\nvoid f() {}\n"
	want := spaces("#include <Servo.h>") + "\n" +
		"char c = " + spaces("'{'") + ";\n" +
		"const char *s = " + spaces(`"}"`) + ";\n" +
		"void f() {}\n"

	if got := Strip(in); got != want {
		t.Errorf("Strip(%q) = %q, want %q", in, got, want)
	}
}

func TestStripContinuedDirective(t *testing.T) {
	in := "#define M(x) \\\n  do { x; } while (0)\nint a;\n"
	want := spaces("#define M(x) \\") + "\n" + spaces("  do { x; } while (0)") + "\nint a;\n"

	if got := Strip(in); got != want {
		t.Errorf("Strip(%q) = %q, want %q", in, got, want)
	}
}

func TestStripHashAfterCodeIsNotDirective(t *testing.T) {
	in := "int a; #x\n"
	if got := Strip(in); got != in {
		t.Errorf("Strip(%q) = %q, want input unchanged", in, got)
	}
}

func TestStripEscapedCharLiteral(t *testing.T) {
	in := "char q = '\\'';\n"
	want := "char q = " + spaces(`'\''`) + ";\n"

	if got := Strip(in); got != want {
		t.Errorf("Strip(%q) = %q, want %q", in, got, want)
	}
}

func TestStripUnterminatedStringStopsAtNewline(t *testing.T) {
	in := "f(\"abc\nint a;\n"
	want := "f(" + spaces(`"abc`) + "\nint a;\n"

	if got := Strip(in); got != want {
		t.Errorf("Strip(%q) = %q, want %q", in, got, want)
	}
}

func TestStripPreservesLength(t *testing.T) {
	for _, in := range invariantInputs {
		sameLines(t, "Strip", in, Strip(in))
	}
	// Unterminated comments are not an error when stripping.
	sameLines(t, "Strip", "a /* b\nc", Strip("a /* b\nc"))
}

// =============================================================================
// TOKENIZER TESTS
// =============================================================================

func TestTokenizeStates(t *testing.T) {
	in := "#define X 1\nint a = 'c'; /* k */ \"s\""
	spans, err := Tokenize(in, ModeStrip)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	want := []State{Directive, Code, CharLiteral, Code, BlockComment, Code, StringLiteral}
	if len(spans) != len(want) {
		t.Fatalf("Expected %d spans, got %d: %v", len(want), len(spans), spans)
	}
	for i, sp := range spans {
		if sp.State != want[i] {
			t.Errorf("span %d: expected %s, got %s (%q)", i, want[i], sp.State, in[sp.Start:sp.End])
		}
	}
}

func TestTokenizeCoversInput(t *testing.T) {
	for _, mode := range []Mode{ModeScrub, ModeStrip} {
		for _, in := range invariantInputs {
			spans, err := Tokenize(in, mode)
			if err != nil {
				t.Fatalf("Tokenize(%q) failed: %v", in, err)
			}
			next := 0
			for _, sp := range spans {
				if sp.Start != next || sp.End <= sp.Start {
					t.Fatalf("Tokenize(%q): bad span %+v after offset %d", in, sp, next)
				}
				next = sp.End
			}
			if next != len(in) {
				t.Fatalf("Tokenize(%q): spans end at %d, want %d", in, next, len(in))
			}
		}
	}
}

// =============================================================================
// COLLAPSE TESTS
// =============================================================================

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nested body", "void f() {\n  if (x) { y(); }\n}\nint g;\n", "void f() {}\nint g;\n"},
		{"two functions", "a() {1}\nb() {2}\n", "a() {}\nb() {}\n"},
		{"stray close", "}\nvoid f() {a}", "}\nvoid f() {}"},
		{"unclosed open", "a {b", "a {"},
		{"no braces", "int a;\n", "int a;\n"},
	}

	for _, tt := range tests {
		if got := Collapse(tt.in); got != tt.want {
			t.Errorf("%s: Collapse(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// UNICODE TESTS
// =============================================================================

func TestEscapeUnicodeASCIIUnchanged(t *testing.T) {
	for _, in := range []string{"", "void loop() {}\n", "~!@#$%^&*()\t\r\n"} {
		if got := EscapeUnicode(in); got != in {
			t.Errorf("EscapeUnicode(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestEscapeUnicode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\u00a0b", "a b"},
		{"int café() {}\n", `int caf\u00e9() {}` + "\n"},
		{"中", `\u4e2d`},
		{"\U0001F600", `\ud83d\ude00`},
		{"x\u00a0é", `x \u00e9`},
	}

	for _, tt := range tests {
		if got := EscapeUnicode(tt.in); got != tt.want {
			t.Errorf("EscapeUnicode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
