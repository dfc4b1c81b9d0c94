// Package prototype finds function definitions that have no forward
// declaration and produces one for each.
//
// Matching works on token shapes, not a grammar: a return type, declarator
// words and a parameter list made of word characters, brackets, '*', '&',
// ',' and blanks. Variadic parameters and function-pointer parameters do not
// match, so no prototype is produced for them
package prototype

import (
	"regexp"

	"github.com/saeedalam/sketchpp/internal/lexer"
)

const signature = `[\w\[\]\*]+\s+[&\[\]\*\w\s]+\([&,\[\]\*\w\s]*\)`

var (
	declaration = regexp.MustCompile(`(` + signature + `)\s*;`)
	definition  = regexp.MustCompile(`(` + signature + `)\s*\{`)
)

// Prototypes strips and collapses text, then extracts the prototypes it needs
func Prototypes(text string) []string {
	return Extract(lexer.Collapse(lexer.Strip(text)))
}

// Extract returns a declaration, with a trailing ';', for every definition in
// text that is not already declared with exactly the same spelling. text must
// already be stripped and collapsed. Order follows the definitions
func Extract(text string) []string {
	declared := make(map[string]bool)
	for _, m := range declaration.FindAllStringSubmatch(text, -1) {
		declared[m[1]+";"] = true
	}

	var protos []string
	for _, m := range definition.FindAllStringSubmatch(text, -1) {
		proto := m[1] + ";"
		if declared[proto] {
			continue
		}
		protos = append(protos, proto)
	}
	return protos
}
