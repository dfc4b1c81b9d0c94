package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/saeedalam/sketchpp/internal/imports"
	"github.com/saeedalam/sketchpp/internal/sketch"
	"github.com/saeedalam/sketchpp/pkg/types"
	"github.com/spf13/cobra"
)

var (
	includesJSON    bool
	includesHeaders bool
)

// Extensions scanned when a directory is given
var sourceExts = map[string]bool{
	".ino": true,
	".pde": true,
	".h":   true,
	".hpp": true,
	".c":   true,
	".cpp": true,
}

var includesCmd = &cobra.Command{
	Use:   "includes [path...]",
	Short: "List #include directives in sketch and source files",
	Long: `List the #include directives of files or directories (default: the
current directory). Directories are walked for sketch and C/C++ sources.

Files are scanned as written, so directives inside block comments are
listed too. Use 'sketchpp preprocess' for the includes a build would see.

Example:
  sketchpp includes Blink/
  sketchpp includes --headers --json libraries/`,
	RunE: runIncludes,
}

func init() {
	includesCmd.Flags().BoolVar(&includesJSON, "json", false, "Output as JSON")
	includesCmd.Flags().BoolVar(&includesHeaders, "headers", false, "Only list distinct header names")
}

func runIncludes(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	var results []types.ImportResult
	for _, arg := range args {
		found, err := scanIncludes(arg)
		if err != nil {
			return err
		}
		results = append(results, found...)
	}

	out := cmd.OutOrStdout()
	if includesHeaders {
		headers := imports.Headers(results)
		if includesJSON {
			return printJSON(out, headers)
		}
		for _, h := range headers {
			fmt.Fprintln(out, h)
		}
		return nil
	}

	if includesJSON {
		return printJSON(out, results)
	}
	for _, r := range results {
		fmt.Fprintf(out, "%s:%d: %s (%s)\n", r.Source, r.Line, r.Imported, r.ImportType)
	}
	return nil
}

func scanIncludes(path string) ([]types.ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return imports.ScanFile(path)
	}

	var results []types.ImportResult
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			// Skip hidden directories such as .git and .sketchpp
			if p != path && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !sketch.IsSketchFile(name) && !sourceExts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		found, err := imports.ScanFile(p)
		if err != nil {
			return err
		}
		results = append(results, found...)
		return nil
	})
	return results, err
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
