// Package diag provides the structured event log and error codes shared by
// the sketchpp commands. Events are single JSON lines appended to a log file
// under the project's cache directory
package diag

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level orders events by severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a level name to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Event is one log line
type Event struct {
	Level string            `json:"level"`
	Time  time.Time         `json:"time"`
	Comp  string            `json:"comp"`
	Stage string            `json:"stage,omitempty"` // start, finish, error
	Code  Code              `json:"code,omitempty"`
	DurMS int64             `json:"dur_ms,omitempty"`
	Count int64             `json:"count,omitempty"`
	Msg   string            `json:"msg"`
	KV    map[string]string `json:"kv,omitempty"`
}

// Logger writes events at or above its level. A nil Logger discards
type Logger struct {
	level Level
	mu    sync.Mutex
	sink  io.Writer
}

// New returns a logger writing to w
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, sink: w}
}

// Open returns a logger appending to cache/sketchpp.log under basePath.
// When the file cannot be opened the logger falls back to stderr
func Open(basePath string, level Level) *Logger {
	logPath := filepath.Join(basePath, "cache", "sketchpp.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return New(os.Stderr, level)
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return New(os.Stderr, level)
	}
	return New(f, level)
}

// Close closes the sink if it is a file other than stderr
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	if f, ok := l.sink.(*os.File); ok && f != os.Stderr {
		return f.Close()
	}
	return nil
}

func (l *Logger) log(lv Level, ev Event) {
	if l == nil || l.sink == nil || lv < l.level {
		return
	}
	ev.Level = lv.String()
	ev.Time = time.Now()
	line, _ := json.Marshal(ev)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink.Write(append(line, '\n'))
}

// Debug records a debug event
func (l *Logger) Debug(comp, msg string, kv map[string]string) {
	l.log(LevelDebug, Event{Comp: comp, Msg: msg, KV: kv})
}

// Info records an info event
func (l *Logger) Info(comp, msg string, kv map[string]string) {
	l.log(LevelInfo, Event{Comp: comp, Msg: msg, KV: kv})
}

// Warn records a warning
func (l *Logger) Warn(comp, msg string, kv map[string]string) {
	l.log(LevelWarn, Event{Comp: comp, Msg: msg, KV: kv})
}

// Error records a failure, classified by Classify
func (l *Logger) Error(comp string, err error, kv map[string]string) {
	if err == nil {
		return
	}
	l.log(LevelError, Event{Comp: comp, Stage: "error", Code: Classify(err), Msg: err.Error(), KV: kv})
}

// Start records a start event and returns a timer for the matching finish
func (l *Logger) Start(comp, msg string, kv map[string]string) *Timer {
	l.log(LevelInfo, Event{Comp: comp, Stage: "start", Msg: msg, KV: kv})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// Timer measures a start to finish span
type Timer struct {
	l    *Logger
	comp string
	t0   time.Time
}

// Finish records the finish event with an optional count
func (t *Timer) Finish(msg string, count int64) {
	if t == nil {
		return
	}
	t.l.log(LevelInfo, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Msg: msg})
}

// Fail records the span as failed
func (t *Timer) Fail(err error) {
	if t == nil || err == nil {
		return
	}
	t.l.log(LevelError, Event{Comp: t.comp, Stage: "error", Code: Classify(err), DurMS: time.Since(t.t0).Milliseconds(), Msg: err.Error()})
}
