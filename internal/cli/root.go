package cli

import (
	"fmt"
	"os"

	"github.com/saeedalam/sketchpp/internal/diag"
	"github.com/spf13/cobra"
)

var (
	projectDir string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "sketchpp",
	Short: "Turn Arduino sketches into compilable C++",
	Long: `sketchpp - Arduino sketch preprocessor

sketchpp prepares the .ino/.pde files of a sketch for a C++ compiler. It
removes comments, includes the Arduino core header, declares every function
the sketch defines without declaring, and emits a #line marker so compiler
diagnostics point back at the sketch.

Runs are recorded in a .sketchpp/ directory when one exists. The JSON run
records are the source of truth; the SQLite index under cache/ is rebuilt
from them on demand.

Quick Start:
  sketchpp init                     Create .sketchpp/ in the current directory
  sketchpp preprocess Blink/        Print the translation unit for a sketch
  sketchpp prototypes Blink/        List the generated prototypes
  sketchpp history                  Show recorded runs and common includes`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(diag.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "Directory to search for .sketchpp (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Event log level (debug, info, warn, error)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(prototypesCmd)
	rootCmd.AddCommand(includesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(configCmd)
	// versionCmd is registered in version.go
}
