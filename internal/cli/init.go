package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/saeedalam/sketchpp/internal/storage"
	"github.com/saeedalam/sketchpp/pkg/types"
	"github.com/spf13/cobra"
)

var projectName string

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize sketchpp in a directory",
	Long: `Initialize sketchpp in a directory (default: the current directory).

This creates a .sketchpp/ directory holding the preprocessing configuration
and the history of preprocessing runs. Sketches anywhere below the directory
use it.

Example:
  sketchpp init
  sketchpp init --name "robot" ~/Arduino`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&projectName, "name", "n", "", "Project name")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	dir := filepath.Join(root, dirName)

	// Check if already initialized
	if _, err := os.Stat(dir); err == nil {
		fmt.Fprintln(out, "sketchpp already initialized in this directory.")
		fmt.Fprintln(out, "Use 'sketchpp history' to see recorded runs.")
		return nil
	}

	// Get project name from directory if not provided
	name := projectName
	if name == "" {
		name = filepath.Base(root)
	}

	fmt.Fprintf(out, "Initializing sketchpp for '%s'...\n", name)

	// Create directory structure
	for _, d := range []string{dir, filepath.Join(dir, "runs"), filepath.Join(dir, "cache")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", d, err)
		}
	}

	store := storage.NewJSONStore(dir)
	if err := store.SaveConfig(types.DefaultConfig(name)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	gitignore := `# sketchpp cache (regenerated from JSON)
cache/
`
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return err
	}

	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Directory structure created:")
	fmt.Fprintln(out, "  .sketchpp/")
	fmt.Fprintln(out, "  ├── config.json")
	fmt.Fprintln(out, "  ├── runs/            # One JSON record per preprocessing run")
	fmt.Fprintln(out, "  └── cache/           # SQLite run index and event log (not git-tracked)")
	return nil
}
