package types

import "time"

// =============================================================================
// SOURCE ANALYSIS TYPES
// =============================================================================

// Include kinds, taken from the directive's opening delimiter
const (
	IncludeSystem = "system" // #include <...>
	IncludeLocal  = "local"  // #include "..."
)

// ImportResult represents a parsed #include directive
type ImportResult struct {
	Source     string `json:"source"`      // File (or buffer name) containing the directive
	Imported   string `json:"imported"`    // Path between the delimiters, verbatim
	ImportType string `json:"import_type"` // system, local
	Line       int    `json:"line"`
	Raw        string `json:"raw"`
}

// FunctionSig describes a function signature
type FunctionSig struct {
	Name       string     `json:"name"`
	Signature  string     `json:"signature"`
	ReturnType string     `json:"return_type,omitempty"`
	Params     []ParamDef `json:"params,omitempty"`
}

// ParamDef represents a function parameter
type ParamDef struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// =============================================================================
// RUN HISTORY
// =============================================================================

// RunRecord represents one preprocessing run of a sketch
type RunRecord struct {
	ID             string    `json:"id"`
	Sketch         string    `json:"sketch"`
	ContentHash    string    `json:"content_hash"`
	Files          int       `json:"files"`
	HeaderCount    int       `json:"header_count"`
	Prototypes     []string  `json:"prototypes,omitempty"`
	Includes       []string  `json:"includes,omitempty"`
	InsertionLine  int       `json:"insertion_line"`
	SubstitutedUTF bool      `json:"substituted_unicode"`
	CreatedAt      time.Time `json:"created_at"`
}

// IncludeCount represents how many recorded sketches include a header
type IncludeCount struct {
	Header   string `json:"header"`
	Sketches int    `json:"sketches"`
}

// HistoryStats summarizes the run index
type HistoryStats struct {
	Runs       int       `json:"runs"`
	Sketches   int       `json:"sketches"`
	Headers    int       `json:"headers"`
	Prototypes int       `json:"prototypes"`
	LastRun    time.Time `json:"last_run,omitempty"`
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config represents the .sketchpp/config.json file
type Config struct {
	Name       string           `json:"name"`
	Version    string           `json:"version"`
	CreatedAt  time.Time        `json:"created_at"`
	Preprocess PreprocessConfig `json:"preprocess"`
	History    HistoryConfig    `json:"history"`
}

// PreprocessConfig represents preprocessing preferences
type PreprocessConfig struct {
	SubstituteUnicode bool   `json:"substitute_unicode"`
	Footer            string `json:"footer,omitempty"` // Appended after the sketch body
}

// HistoryConfig represents run-history settings
type HistoryConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns the configuration written by init
func DefaultConfig(name string) *Config {
	return &Config{
		Name:      name,
		Version:   "1",
		CreatedAt: time.Now(),
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
