// Package history persists tool results in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sahilm/fuzzy"

	_ "modernc.org/sqlite"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// searchWindow is how many recent records Search considers.
const searchWindow = 500

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("history record not found")

// Record is one stored tool result.
type Record struct {
	ID        int64     `json:"id"`
	Tool      string    `json:"tool"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an append-mostly log of tool results.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the history DB under dataDir/history.db.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return OpenDSN(filepath.Join(dataDir, "history.db"))
}

// OpenDSN opens a history DB using the given sqlite DSN/path.
// Tests may pass ":memory:" to avoid touching disk.
func OpenDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool TEXT NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at DESC, id DESC);
`)
	if err != nil {
		return fmt.Errorf("create results table: %w", err)
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add stores a result and returns it with its ID.
func (s *Store) Add(ctx context.Context, tool, input, output string) (*Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}
	if tool == "" {
		return nil, fmt.Errorf("tool is required")
	}

	rec := &Record{
		Tool:      tool,
		Input:     input,
		Output:    output,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO results (tool, input, output, created_at) VALUES (?, ?, ?, ?)`,
		rec.Tool, rec.Input, rec.Output, rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// Record stores a result, discarding the created record. It lets the store
// serve as a study.Recorder.
func (s *Store) Record(ctx context.Context, tool, input, output string) error {
	_, err := s.Add(ctx, tool, input, output)
	return err
}

// List returns the newest records first. limit <= 0 selects DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, input, output, created_at FROM results ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

// Get returns a single record.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("history store not initialized")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, tool, input, output, created_at FROM results WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Search fuzzy-matches query against the inputs of recent records, best
// match first. An empty query behaves like List.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if query == "" {
		return s.List(ctx, limit)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	recent, err := s.List(ctx, searchWindow)
	if err != nil {
		return nil, err
	}

	inputs := make([]string, len(recent))
	for i, r := range recent {
		inputs[i] = r.Input
	}

	matches := fuzzy.Find(query, inputs)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Record, len(matches))
	for i, m := range matches {
		out[i] = recent[m.Index]
	}
	return out, nil
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("history store not initialized")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	if err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var created string
	if err := row.Scan(&rec.ID, &rec.Tool, &rec.Input, &rec.Output, &created); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}
