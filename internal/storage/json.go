package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saeedalam/sketchpp/pkg/types"
)

// JSONStore handles JSON file storage operations. The JSON files are the
// source of truth; the SQLite index can always be rebuilt from them
type JSONStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewJSONStore creates a new JSON store
func NewJSONStore(basePath string) *JSONStore {
	return &JSONStore{
		basePath: basePath,
	}
}

// BasePath returns the base path of the store
func (s *JSONStore) BasePath() string {
	return s.basePath
}

// --- Config ---

func (s *JSONStore) GetConfig() (*types.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, "config.json")
	return readJSON[types.Config](path)
}

func (s *JSONStore) SaveConfig(config *types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.basePath, "config.json")
	return writeJSON(path, config)
}

// --- Runs ---

// SaveRun stores a run record, assigning its ID and timestamp when unset
func (s *JSONStore) SaveRun(run *types.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = generateID("run")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	path := filepath.Join(s.basePath, "runs", run.ID+".json")
	return writeJSON(path, run)
}

// GetRuns returns all stored runs, oldest first
func (s *JSONStore) GetRuns() ([]types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.basePath, "runs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.RunRecord{}, nil
		}
		return nil, err
	}

	runs := []types.RunRecord{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		run, err := readJSON[types.RunRecord](filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		runs = append(runs, *run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
	return runs, nil
}

// DeleteRuns removes every stored run and returns how many were removed
func (s *JSONStore) DeleteRuns() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, "runs")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// --- Helpers ---

func readJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func writeJSON(path string, v any) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	// Trailing newline for clean git diffs
	data = append(data, '\n')

	// Atomic write: write to temp file then rename to prevent corruption
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func generateID(prefix string) string {
	now := time.Now()
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), short)
}
