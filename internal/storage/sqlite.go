package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/saeedalam/sketchpp/pkg/types"
)

// SQLiteIndex answers history queries over recorded preprocessing runs
type SQLiteIndex struct {
	db       *sql.DB
	basePath string
}

// NewSQLiteIndex creates a new SQLite index
func NewSQLiteIndex(basePath string) (*SQLiteIndex, error) {
	dbPath := filepath.Join(basePath, "cache", "index.db")

	// Ensure cache directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	idx := &SQLiteIndex{
		db:       db,
		basePath: basePath,
	}

	if err := idx.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

func (idx *SQLiteIndex) createTables() error {
	schema := `
	-- One row per preprocessing run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		sketch TEXT NOT NULL,
		content_hash TEXT,
		files INTEGER,
		header_count INTEGER,
		prototypes TEXT,
		insertion_line INTEGER,
		substituted_unicode INTEGER,
		created_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_runs_sketch ON runs(sketch, created_at);

	-- Include directives seen by each run, in order
	CREATE TABLE IF NOT EXISTS run_includes (
		run_id TEXT NOT NULL,
		sketch TEXT NOT NULL,
		header TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		PRIMARY KEY (run_id, ordinal)
	);

	CREATE INDEX IF NOT EXISTS idx_run_includes_header ON run_includes(header);
	`

	_, err := idx.db.Exec(schema)
	return err
}

// Close closes the database connection
func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}

type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// WithTransaction runs a function within a SQLite transaction
func (idx *SQLiteIndex) WithTransaction(fn func(tx *sql.Tx) error) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- Indexing ---

// IndexRun records a run and its includes
func (idx *SQLiteIndex) IndexRun(run *types.RunRecord) error {
	return idx.WithTransaction(func(tx *sql.Tx) error {
		return idx.indexRun(tx, run)
	})
}

func (idx *SQLiteIndex) indexRun(q queryer, run *types.RunRecord) error {
	protosJSON, _ := json.Marshal(run.Prototypes)

	_, err := q.Exec(`
		INSERT OR REPLACE INTO runs (id, sketch, content_hash, files, header_count, prototypes, insertion_line, substituted_unicode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Sketch, run.ContentHash, run.Files, run.HeaderCount, string(protosJSON),
		run.InsertionLine, boolToInt(run.SubstitutedUTF), run.CreatedAt.UnixNano())
	if err != nil {
		return err
	}

	if _, err := q.Exec(`DELETE FROM run_includes WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	for i, header := range run.Includes {
		_, err := q.Exec(`
			INSERT INTO run_includes (run_id, sketch, header, ordinal)
			VALUES (?, ?, ?, ?)
		`, run.ID, run.Sketch, header, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// RebuildFromJSON replaces the index contents with the runs in the JSON store
func (idx *SQLiteIndex) RebuildFromJSON(store *JSONStore) (int, error) {
	runs, err := store.GetRuns()
	if err != nil {
		return 0, err
	}

	err = idx.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM run_includes`); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM runs`); err != nil {
			return err
		}
		for i := range runs {
			if err := idx.indexRun(tx, &runs[i]); err != nil {
				return fmt.Errorf("index run %s: %w", runs[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(runs), nil
}

// --- Queries ---

// LastRun returns the most recent run of a sketch, or nil if it has none
func (idx *SQLiteIndex) LastRun(sketch string) (*types.RunRecord, error) {
	var run types.RunRecord
	var protosJSON string
	var createdAt int64

	err := idx.db.QueryRow(`
		SELECT id, sketch, content_hash, files, header_count, prototypes, insertion_line, substituted_unicode, created_at
		FROM runs
		WHERE sketch = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, sketch).Scan(&run.ID, &run.Sketch, &run.ContentHash, &run.Files, &run.HeaderCount,
		&protosJSON, &run.InsertionLine, &run.SubstitutedUTF, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(protosJSON), &run.Prototypes)
	run.CreatedAt = time.Unix(0, createdAt)

	run.Includes, err = idx.runIncludes(run.ID)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (idx *SQLiteIndex) runIncludes(runID string) ([]string, error) {
	rows, err := idx.db.Query(`
		SELECT header FROM run_includes WHERE run_id = ? ORDER BY ordinal
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var headers []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

// SketchesIncluding returns the sketches whose runs included a header
func (idx *SQLiteIndex) SketchesIncluding(header string) ([]string, error) {
	rows, err := idx.db.Query(`
		SELECT DISTINCT sketch FROM run_includes WHERE header = ? ORDER BY sketch
	`, header)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sketches []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sketches = append(sketches, s)
	}
	return sketches, rows.Err()
}

// TopIncludes returns headers ordered by how many sketches include them
func (idx *SQLiteIndex) TopIncludes(limit int) ([]types.IncludeCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := idx.db.Query(`
		SELECT header, COUNT(DISTINCT sketch) AS n
		FROM run_includes
		GROUP BY header
		ORDER BY n DESC, header
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []types.IncludeCount
	for rows.Next() {
		var c types.IncludeCount
		if err := rows.Scan(&c.Header, &c.Sketches); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetStats summarizes the index
func (idx *SQLiteIndex) GetStats() (*types.HistoryStats, error) {
	var stats types.HistoryStats
	var last sql.NullInt64

	err := idx.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT sketch), MAX(created_at) FROM runs
	`).Scan(&stats.Runs, &stats.Sketches, &last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		stats.LastRun = time.Unix(0, last.Int64)
	}

	if err := idx.db.QueryRow(`SELECT COUNT(DISTINCT header) FROM run_includes`).Scan(&stats.Headers); err != nil {
		return nil, err
	}

	rows, err := idx.db.Query(`SELECT prototypes FROM runs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var protosJSON string
		if err := rows.Scan(&protosJSON); err != nil {
			return nil, err
		}
		var protos []string
		json.Unmarshal([]byte(protosJSON), &protos)
		stats.Prototypes += len(protos)
	}
	return &stats, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
