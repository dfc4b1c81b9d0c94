package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/saeedalam/sketchpp/internal/storage"
	"github.com/saeedalam/sketchpp/pkg/types"
	"github.com/spf13/cobra"
)

var (
	historyHeader string
	historyTop    int
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded preprocessing runs",
	Long: `Show statistics about recorded preprocessing runs and the headers the
sketches include most often.

With --header, list the sketches whose runs included that header.

Example:
  sketchpp history
  sketchpp history --top 5
  sketchpp history --header Servo.h`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded run",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().StringVar(&historyHeader, "header", "", "List sketches that include this header")
	historyCmd.Flags().IntVar(&historyTop, "top", 10, "Number of headers to list")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	proj, err := openProject("")
	if err != nil {
		return fmt.Errorf("%w\nRun 'sketchpp init' to initialize", err)
	}
	defer proj.Close()

	idx, err := storage.NewSQLiteIndex(proj.dir)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer idx.Close()

	out := cmd.OutOrStdout()

	if historyHeader != "" {
		sketches, err := idx.SketchesIncluding(historyHeader)
		if err != nil {
			return err
		}
		if historyJSON {
			if sketches == nil {
				sketches = []string{}
			}
			return printJSON(out, sketches)
		}
		if len(sketches) == 0 {
			fmt.Fprintf(out, "No recorded sketch includes %s\n", historyHeader)
			return nil
		}
		for _, s := range sketches {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	stats, err := idx.GetStats()
	if err != nil {
		return err
	}
	top, err := idx.TopIncludes(historyTop)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(out, map[string]any{
			"stats":        stats,
			"top_includes": top,
		})
	}

	printHistoryStats(out, stats)

	if len(top) > 0 {
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Most included headers:")
		for _, c := range top {
			fmt.Fprintf(out, "  %-24s %d sketch(es)\n", c.Header, c.Sketches)
		}
	}
	return nil
}

// printHistoryStats draws a box on terminals and plain key/value lines otherwise
func printHistoryStats(out io.Writer, stats *types.HistoryStats) {
	lastRun := "never"
	if !stats.LastRun.IsZero() {
		lastRun = humanize.Time(stats.LastRun)
	}

	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		fmt.Fprintf(out, "runs: %d\n", stats.Runs)
		fmt.Fprintf(out, "sketches: %d\n", stats.Sketches)
		fmt.Fprintf(out, "headers: %d\n", stats.Headers)
		fmt.Fprintf(out, "prototypes: %s\n", humanize.Comma(int64(stats.Prototypes)))
		fmt.Fprintf(out, "last_run: %s\n", lastRun)
		return
	}

	fmt.Fprintln(out, "┌─────────────────────────────────────────────┐")
	fmt.Fprintln(out, "│             sketchpp History                │")
	fmt.Fprintln(out, "├─────────────────────────────────────────────┤")
	fmt.Fprintf(out, "│   Runs:              %-20d   │\n", stats.Runs)
	fmt.Fprintf(out, "│   Sketches:          %-20d   │\n", stats.Sketches)
	fmt.Fprintf(out, "│   Distinct headers:  %-20d   │\n", stats.Headers)
	fmt.Fprintf(out, "│   Prototypes:        %-20s   │\n", humanize.Comma(int64(stats.Prototypes)))
	fmt.Fprintf(out, "│   Last run:          %-20s   │\n", lastRun)
	fmt.Fprintln(out, "└─────────────────────────────────────────────┘")
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	proj, err := openProject("")
	if err != nil {
		return err
	}
	defer proj.Close()

	removed, err := proj.store.DeleteRuns()
	if err != nil {
		return err
	}

	idx, err := storage.NewSQLiteIndex(proj.dir)
	if err != nil {
		return err
	}
	defer idx.Close()
	if _, err := idx.RebuildFromJSON(proj.store); err != nil {
		return err
	}

	proj.log.Info("history", "runs cleared", map[string]string{"removed": fmt.Sprint(removed)})
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
	return nil
}
