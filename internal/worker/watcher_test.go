package worker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupWatchedSketch(t *testing.T) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "Blink")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create sketch dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Blink.ino"), []byte("void setup() {}\n"), 0644); err != nil {
		t.Fatalf("Failed to write sketch: %v", err)
	}
	return dir
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for %s", what)
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcherRunsOnStartAndChange(t *testing.T) {
	dir := setupWatchedSketch(t)

	runs := make(chan struct{}, 10)
	w := NewWatcher(dir, func() error {
		runs <- struct{}{}
		return nil
	}, nil)
	w.SetConfig(WatcherConfig{PollInterval: 10 * time.Millisecond, RunOnStart: true})

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	waitFor(t, runs, "initial run")

	// Different size so the change is seen regardless of mtime resolution
	if err := os.WriteFile(filepath.Join(dir, "Blink.ino"), []byte("void setup() {}\nvoid loop() {}\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite sketch: %v", err)
	}
	waitFor(t, runs, "run after change")

	w.Stop()
	stats := w.GetStats()
	if stats.Runs < 2 || stats.ChangesDetected < 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if w.IsRunning() {
		t.Error("Watcher should be stopped")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := setupWatchedSketch(t)

	before, err := snapshot(dir)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	after, err := snapshot(dir)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if before != after {
		t.Errorf("Non-sketch files should not change the snapshot: %q vs %q", before, after)
	}
}

func TestWatcherRecordsRunErrors(t *testing.T) {
	dir := setupWatchedSketch(t)

	w := NewWatcher(dir, func() error { return errors.New("boom") }, nil)
	w.SetConfig(WatcherConfig{PollInterval: time.Hour, RunOnStart: true})
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	w.Stop()

	stats := w.GetStats()
	if stats.ErrorCount != 1 || stats.LastError != "run: boom" {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestWatcherStartTwice(t *testing.T) {
	dir := setupWatchedSketch(t)

	w := NewWatcher(dir, func() error { return nil }, nil)
	w.SetConfig(WatcherConfig{PollInterval: time.Hour})
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err == nil {
		t.Error("Expected error starting a running watcher")
	}
}
