package cli

import (
	"fmt"

	"github.com/saeedalam/sketchpp/internal/storage"
	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the SQLite run index from JSON files",
	Long: `Rebuild the SQLite run index from the JSON run records.

The SQLite database is a cache for history queries. It can be rebuilt
at any time from the JSON files (which are the source of truth).

This is useful after:
- Cloning a repository
- Manually editing or deleting run records
- If the SQLite index gets corrupted

Example:
  sketchpp rebuild`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	proj, err := openProject("")
	if err != nil {
		return err
	}
	defer proj.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Rebuilding SQLite index from JSON files...")

	idx, err := storage.NewSQLiteIndex(proj.dir)
	if err != nil {
		return fmt.Errorf("create SQLite index: %w", err)
	}
	defer idx.Close()

	timer := proj.log.Start("rebuild", "rebuild run index", nil)
	n, err := idx.RebuildFromJSON(proj.store)
	if err != nil {
		timer.Fail(err)
		return fmt.Errorf("rebuild index: %w", err)
	}
	timer.Finish("run index rebuilt", int64(n))

	stats, err := idx.GetStats()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Rebuild complete!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Indexed:")
	fmt.Fprintf(out, "  Runs:       %d\n", stats.Runs)
	fmt.Fprintf(out, "  Sketches:   %d\n", stats.Sketches)
	fmt.Fprintf(out, "  Headers:    %d\n", stats.Headers)
	return nil
}
