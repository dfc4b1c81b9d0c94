// Package sketch loads the code files of a sketch folder and concatenates
// them into the single buffer the preprocessor works on
package sketch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSketchFiles is returned for a folder without any sketch code file
var ErrNoSketchFiles = errors.New("no .ino or .pde files found")

// File is one code file of a sketch
type File struct {
	Path    string
	Name    string
	Content string

	// StartLine is the 1-based line of the combined buffer where the file begins
	StartLine int
	Lines     int
}

// Sketch is an ordered set of code files; the primary file comes first
type Sketch struct {
	Name  string
	Dir   string
	Files []File
}

// IsSketchFile reports whether a file name has a sketch code extension
func IsSketchFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ino", ".pde":
		return true
	}
	return false
}

// Load reads a sketch from a folder, or from the folder of a given file
func Load(path string) (*Sketch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	dir := path
	if !info.IsDir() {
		if !IsSketchFile(path) {
			return nil, fmt.Errorf("%s: not a sketch file", path)
		}
		dir = filepath.Dir(path)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsSketchFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoSketchFiles)
	}

	name := filepath.Base(dir)
	orderFiles(names, name)

	sk := &Sketch{Name: name, Dir: dir}
	line := 1
	for _, n := range names {
		p := filepath.Join(dir, n)
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		content := string(data)
		lines := strings.Count(content, "\n") + 1
		sk.Files = append(sk.Files, File{
			Path:      p,
			Name:      n,
			Content:   content,
			StartLine: line,
			Lines:     lines,
		})
		line += lines
	}
	return sk, nil
}

// orderFiles sorts names case-insensitively and moves the primary file,
// named after the folder, to the front
func orderFiles(names []string, sketchName string) {
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for i, n := range names {
		base := strings.TrimSuffix(n, filepath.Ext(n))
		if base == sketchName {
			copy(names[1:i+1], names[:i])
			names[0] = n
			return
		}
	}
}

// Source concatenates the files, each followed by a newline
func (s *Sketch) Source() string {
	var b strings.Builder
	for _, f := range s.Files {
		b.WriteString(f.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Hash is a hex SHA-256 of the concatenated source
func (s *Sketch) Hash() string {
	sum := sha256.Sum256([]byte(s.Source()))
	return hex.EncodeToString(sum[:])
}

// Locate maps a 1-based line of Source back to a file and a 1-based line
// within it
func (s *Sketch) Locate(line int) (file string, fileLine int, ok bool) {
	for _, f := range s.Files {
		if line >= f.StartLine && line < f.StartLine+f.Lines {
			return f.Name, line - f.StartLine + 1, true
		}
	}
	return "", 0, false
}
