package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/saeedalam/sketchpp/internal/lexer"
	"github.com/saeedalam/sketchpp/internal/preproc"
	"github.com/saeedalam/sketchpp/internal/sketch"
	"github.com/saeedalam/sketchpp/internal/storage"
	"github.com/saeedalam/sketchpp/internal/worker"
	"github.com/saeedalam/sketchpp/pkg/types"
	"github.com/spf13/cobra"
)

var (
	outputPath        string
	substituteUnicode bool
	footer            string
	noHistory         bool
	watchSketch       bool
	watchInterval     time.Duration
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [sketch]",
	Short: "Emit the C++ translation unit for a sketch",
	Long: `Preprocess a sketch folder (or any .ino/.pde file inside it).

All sketch files are joined, the primary file first. Comments are removed,
the Arduino core header is included, prototypes are declared for functions
that have none, and a #line marker restores the sketch's line numbers.

The summary line reports the line offset: the number of lines inserted
ahead of the sketch body. Subtract it from compiler line numbers that
precede the #line marker.

Flags override the project's config.json.

Example:
  sketchpp preprocess Blink/
  sketchpp preprocess Blink/Blink.ino -o build/Blink.cpp
  sketchpp preprocess --substitute-unicode --footer $'\n// end\n' Blink
  sketchpp preprocess --watch -o build/Blink.cpp Blink/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the translation unit to a file (default: stdout)")
	preprocessCmd.Flags().BoolVar(&substituteUnicode, "substitute-unicode", false, "Escape non-ASCII characters as \\uXXXX")
	preprocessCmd.Flags().StringVar(&footer, "footer", "", "Text appended after the sketch body")
	preprocessCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run")
	preprocessCmd.Flags().BoolVarP(&watchSketch, "watch", "w", false, "Preprocess again whenever a sketch file changes")
	preprocessCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "Polling interval for --watch")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	sk, err := loadSketchArg(args)
	if err != nil {
		return err
	}

	proj, err := openSketchProject(sk.Dir)
	if err != nil {
		return err
	}
	defer proj.Close()

	if !watchSketch {
		return preprocessSketch(cmd, proj, sk)
	}
	return watchAndPreprocess(cmd, proj, sk.Dir)
}

// preprocessSketch runs one preprocessing pass and records it
func preprocessSketch(cmd *cobra.Command, proj *project, sk *sketch.Sketch) error {
	log := proj.logger()
	opts := resolveOptions(cmd, proj)

	timer := log.Start("preprocess", "prepare sketch", map[string]string{
		"sketch": sk.Name,
		"files":  strconv.Itoa(len(sk.Files)),
	})

	res, err := preproc.Prepare(sk.Source(), opts)
	if err != nil {
		err = locateCommentError(sk, err)
		timer.Fail(err)
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), res); err != nil {
		timer.Fail(err)
		return err
	}
	timer.Finish("translation unit written", int64(len(res.Prototypes)))

	fmt.Fprintf(cmd.ErrOrStderr(), "Preprocessed %s: %d file(s), %d prototype(s), %d include(s), line offset %d\n",
		sk.Name, len(sk.Files), len(res.Prototypes), len(res.Imports), res.LineOffset())

	if proj == nil || noHistory || !proj.config.History.Enabled {
		return nil
	}
	prev, err := recordRun(proj, sk, res, opts)
	if err != nil {
		// The translation unit is already written; history is best effort
		log.Error("history", err, map[string]string{"sketch": sk.Name})
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not record run: %v\n", err)
		return nil
	}
	if prev != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Sketch unchanged since run %s, not recorded\n", prev.ID)
	}
	return nil
}

// watchAndPreprocess reruns preprocessing whenever the sketch folder changes,
// until interrupted
func watchAndPreprocess(cmd *cobra.Command, proj *project, dir string) error {
	stderr := cmd.ErrOrStderr()

	w := worker.NewWatcher(dir, func() error {
		sk, err := sketch.Load(dir)
		if err == nil {
			err = preprocessSketch(cmd, proj, sk)
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return err
	}, proj.logger())
	w.SetConfig(worker.WatcherConfig{PollInterval: watchInterval, RunOnStart: true})

	if err := w.Start(); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Watching %s (Ctrl+C to stop)\n", dir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	<-sig

	w.Stop()
	stats := w.GetStats()
	fmt.Fprintf(stderr, "Stopped after %d run(s), %d error(s)\n", stats.Runs, stats.ErrorCount)
	return nil
}

// loadSketchArg loads the sketch named by the optional path argument
func loadSketchArg(args []string) (*sketch.Sketch, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	sk, err := sketch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load sketch: %w", err)
	}
	return sk, nil
}

// resolveOptions layers command-line flags over the project config
func resolveOptions(cmd *cobra.Command, proj *project) preproc.Options {
	var opts preproc.Options
	if proj != nil {
		opts.SubstituteUnicode = proj.config.Preprocess.SubstituteUnicode
		opts.Footer = proj.config.Preprocess.Footer
	}
	if f := cmd.Flags().Lookup("substitute-unicode"); f != nil && f.Changed {
		opts.SubstituteUnicode = substituteUnicode
	}
	if f := cmd.Flags().Lookup("footer"); f != nil && f.Changed {
		opts.Footer = footer
	}
	return opts
}

// locateCommentError names the sketch file holding an unterminated comment
func locateCommentError(sk *sketch.Sketch, err error) error {
	var cerr *lexer.CommentError
	if !errors.As(err, &cerr) {
		return err
	}
	if file, line, ok := sk.Locate(cerr.Line); ok {
		return fmt.Errorf("%s:%d: %w", file, line, err)
	}
	return err
}

func writeOutput(stdout io.Writer, res *preproc.Result) error {
	if outputPath == "" || outputPath == "-" {
		return preproc.Write(stdout, res)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := preproc.Write(bw, res); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// recordRun stores the run in the JSON history and the SQLite index. When the
// sketch content and options match the sketch's last indexed run nothing is
// stored and that run is returned
func recordRun(proj *project, sk *sketch.Sketch, res *preproc.Result, opts preproc.Options) (*types.RunRecord, error) {
	idx, err := storage.NewSQLiteIndex(proj.dir)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	hash := sk.Hash()
	last, err := idx.LastRun(sk.Name)
	if err != nil {
		return nil, err
	}
	if last != nil && last.ContentHash == hash && last.SubstitutedUTF == opts.SubstituteUnicode {
		proj.log.Info("history", "sketch unchanged since last run", map[string]string{"sketch": sk.Name, "run": last.ID})
		return last, nil
	}

	run := &types.RunRecord{
		Sketch:         sk.Name,
		ContentHash:    hash,
		Files:          len(sk.Files),
		HeaderCount:    res.HeaderCount,
		Prototypes:     res.Prototypes,
		Includes:       res.Imports,
		InsertionLine:  res.InsertionLine(),
		SubstitutedUTF: opts.SubstituteUnicode,
	}
	if err := proj.store.SaveRun(run); err != nil {
		return nil, err
	}
	if err := idx.IndexRun(run); err != nil {
		return nil, err
	}

	proj.log.Info("history", "run recorded", map[string]string{"sketch": sk.Name, "run": run.ID})
	return nil, nil
}
