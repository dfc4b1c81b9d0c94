// Package worker runs background jobs for long-lived sketchpp commands
package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/saeedalam/sketchpp/internal/diag"
	"github.com/saeedalam/sketchpp/internal/sketch"
)

// WatcherConfig configures a sketch watcher
type WatcherConfig struct {
	PollInterval time.Duration `json:"poll_interval"` // How often to check the sketch folder
	RunOnStart   bool          `json:"run_on_start"`  // Run once before the first poll
}

// DefaultConfig returns sensible defaults
func DefaultConfig() WatcherConfig {
	return WatcherConfig{
		PollInterval: time.Second,
		RunOnStart:   true,
	}
}

// RunFunc is called whenever the watched sketch changes
type RunFunc func() error

// Watcher polls a sketch folder and calls its RunFunc when any sketch file
// is added, removed or modified
type Watcher struct {
	config WatcherConfig
	dir    string
	run    RunFunc
	log    *diag.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	running  bool
	snapshot string

	// Statistics
	stats WatcherStats
}

// WatcherStats tracks watcher activity
type WatcherStats struct {
	Checks          int       `json:"checks"`
	ChangesDetected int       `json:"changes_detected"`
	Runs            int       `json:"runs"`
	LastRun         time.Time `json:"last_run"`
	ErrorCount      int       `json:"error_count"`
	LastError       string    `json:"last_error,omitempty"`
}

// NewWatcher creates a watcher for the sketch folder dir
func NewWatcher(dir string, run RunFunc, log *diag.Logger) *Watcher {
	return &Watcher{
		config:   DefaultConfig(),
		dir:      dir,
		run:      run,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// SetConfig updates the watcher configuration. It takes effect on the next Start
func (w *Watcher) SetConfig(config WatcherConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = config
}

// Start begins polling in the background
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	if w.config.PollInterval <= 0 {
		w.mu.Unlock()
		return fmt.Errorf("poll interval must be positive")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	config := w.config
	w.mu.Unlock()

	snap, err := snapshot(w.dir)
	if err != nil {
		w.recordError("snapshot", err)
	}
	w.mu.Lock()
	w.snapshot = snap
	w.mu.Unlock()

	if config.RunOnStart {
		w.trigger()
	}

	w.wg.Add(1)
	go w.poller(config.PollInterval)

	w.log.Info("watch", "watcher started", map[string]string{"dir": w.dir})
	return nil
}

// Stop halts polling and waits for an in-flight run to finish
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mu.Unlock()

	w.wg.Wait()
	w.log.Info("watch", "watcher stopped", nil)
}

// IsRunning returns whether the watcher is polling
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns watcher statistics
func (w *Watcher) GetStats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) poller(interval time.Duration) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check compares the folder against the last snapshot and runs on change
func (w *Watcher) check() {
	snap, err := snapshot(w.dir)

	w.mu.Lock()
	w.stats.Checks++
	changed := err == nil && snap != w.snapshot
	if changed {
		w.snapshot = snap
		w.stats.ChangesDetected++
	}
	w.mu.Unlock()

	if err != nil {
		w.recordError("snapshot", err)
		return
	}
	if changed {
		w.log.Debug("watch", "sketch changed", map[string]string{"dir": w.dir})
		w.trigger()
	}
}

func (w *Watcher) trigger() {
	err := w.run()

	w.mu.Lock()
	w.stats.Runs++
	w.stats.LastRun = time.Now()
	w.mu.Unlock()

	if err != nil {
		w.recordError("run", err)
	}
}

// recordError records an error in stats
func (w *Watcher) recordError(context string, err error) {
	w.mu.Lock()
	w.stats.ErrorCount++
	w.stats.LastError = fmt.Sprintf("%s: %v", context, err)
	w.mu.Unlock()

	w.log.Error("watch", fmt.Errorf("%s: %w", context, err), map[string]string{"dir": w.dir})
}

// snapshot fingerprints the sketch files of dir by name, size and mtime
func snapshot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !sketch.IsSketchFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", filepath.Base(e.Name()), info.Size(), info.ModTime().UnixNano()))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|"), nil
}
