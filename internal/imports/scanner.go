package imports

import (
	"os"
	"regexp"
	"strings"

	"github.com/saeedalam/sketchpp/pkg/types"
)

// Include directive pattern, applied one line at a time
var (
	includeDirective = regexp.MustCompile(`^\s*#include\s*([<"])(\S+)[">]`)
)

// FindIncludes returns the target of every #include directive in text, in
// order of appearance. Duplicates are kept. The text is not scrubbed first, so
// directives inside block comments are reported too
func FindIncludes(text string) []string {
	var includes []string
	for _, line := range strings.Split(text, "\n") {
		if m := includeDirective.FindStringSubmatch(line); len(m) >= 3 {
			includes = append(includes, m[2])
		}
	}
	return includes
}

// ScanFile parses include directives from a source file
func ScanFile(filePath string) ([]types.ImportResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ScanText(filePath, string(content)), nil
}

// ScanText parses include directives from text, attributing them to source
func ScanText(source, text string) []types.ImportResult {
	var results []types.ImportResult

	for i, line := range strings.Split(text, "\n") {
		m := includeDirective.FindStringSubmatch(line)
		if len(m) < 3 {
			continue
		}
		results = append(results, types.ImportResult{
			Source:     source,
			Imported:   m[2],
			ImportType: classifyInclude(m[1]),
			Line:       i + 1,
			Raw:        strings.TrimSpace(line),
		})
	}
	return results
}

// classifyInclude determines the include kind from its opening delimiter
func classifyInclude(delim string) string {
	if delim == "<" {
		return types.IncludeSystem
	}
	return types.IncludeLocal
}

// Headers returns the distinct included paths in order of first appearance
func Headers(results []types.ImportResult) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, r := range results {
		if seen[r.Imported] {
			continue
		}
		seen[r.Imported] = true
		headers = append(headers, r.Imported)
	}
	return headers
}
