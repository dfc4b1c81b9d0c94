package diag

import (
	"database/sql"
	"errors"
	"os"

	"github.com/saeedalam/sketchpp/internal/lexer"
	"github.com/saeedalam/sketchpp/internal/sketch"
	"modernc.org/sqlite"
)

// Code is a coarse error class used in log events and exit codes
type Code string

const (
	CodeUnknown Code = "unknown"
	CodeComment Code = "comment"
	CodeSketch  Code = "sketch"
	CodeStorage Code = "storage"
	CodeIO      Code = "io"
)

// Classify sorts an error into a Code using sentinels and error types only
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, lexer.ErrUnterminatedComment) {
		return CodeComment
	}
	if errors.Is(err, sketch.ErrNoSketchFiles) {
		return CodeSketch
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return CodeStorage
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return CodeStorage
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// ExitCode maps an error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Classify(err) {
	case CodeComment, CodeSketch:
		return 2
	case CodeIO, CodeStorage:
		return 3
	default:
		return 1
	}
}
