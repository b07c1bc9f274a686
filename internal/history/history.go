// Package history keeps a small SQLite ledger of publish and deploy runs so
// the editor can show what happened and when, across sessions.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/amaguregi/folio/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

// Run kinds.
const (
	KindPublish = "publish"
	KindDeploy  = "deploy"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one recorded publish or deploy pass.
type Run struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	Changes       string    `json:"changes,omitempty"`
	FilesUploaded int       `json:"filesUploaded"`
}

// Store wraps the ledger database.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (or creates) the ledger at dbPath and applies the schema.
// Use ":memory:" in tests.
func Open(dbPath string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop{}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// One writer at a time keeps sqlite happy under the pure-Go driver.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a completed run. A missing ID is filled in.
func (s *Store) Add(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, started_at, finished_at, status, error, changes, files_uploaded)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Status, run.Error, run.Changes, run.FilesUploaded)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, started_at, finished_at, status, error, changes, files_uploaded
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			run                  Run
			startedAt            int64
			finishedAt           sql.NullInt64
			errText, changesText sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Kind, &startedAt, &finishedAt,
			&run.Status, &errText, &changesText, &run.FilesUploaded); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			run.FinishedAt = time.Unix(finishedAt.Int64, 0)
		}
		run.Error = errText.String
		run.Changes = changesText.String
		out = append(out, run)
	}
	return out, rows.Err()
}
