package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saeedalam/sketchpp/internal/diag"
	"github.com/saeedalam/sketchpp/internal/storage"
	"github.com/saeedalam/sketchpp/pkg/types"
)

// dirName is the per-project state directory
const dirName = ".sketchpp"

var errNoProject = errors.New("not a sketchpp project (no .sketchpp directory found)")

// project is an opened .sketchpp directory
type project struct {
	dir    string
	store  *storage.JSONStore
	config *types.Config
	log    *diag.Logger
}

// openProject loads the project found from startDir, or from --dir or the
// working directory when startDir is empty
func openProject(startDir string) (*project, error) {
	if startDir == "" {
		startDir = projectDir
	}
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		startDir = cwd
	}

	dir, err := findSketchppDir(startDir)
	if err != nil {
		return nil, err
	}

	store := storage.NewJSONStore(dir)
	config, err := store.GetConfig()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		config = types.DefaultConfig(filepath.Base(filepath.Dir(dir)))
	}

	return &project{
		dir:    dir,
		store:  store,
		config: config,
		log:    diag.Open(dir, diag.ParseLevel(logLevel)),
	}, nil
}

// openSketchProject loads the project for a sketch: the one found from --dir
// when given, otherwise the one above the sketch folder. A sketch outside any
// project yields a nil project
func openSketchProject(sketchDir string) (*project, error) {
	start := projectDir
	if start == "" {
		start = sketchDir
	}
	proj, err := openProject(start)
	if errors.Is(err, errNoProject) {
		return nil, nil
	}
	return proj, err
}

func (p *project) Close() error {
	if p == nil {
		return nil
	}
	return p.log.Close()
}

// logger returns the project's event log, or a discarding logger outside a project
func (p *project) logger() *diag.Logger {
	if p == nil {
		return nil
	}
	return p.log
}

// findSketchppDir finds the .sketchpp directory starting from the given path
func findSketchppDir(startDir string) (string, error) {
	// Make path absolute if it isn't already
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	// Check starting directory
	dir := absDir
	for {
		candidate := filepath.Join(dir, dirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		// Walk up the directory tree
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errNoProject
}
