package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore mirrors artifacts into a local SQLite file. Same table shape
// as the Postgres mirror, sized for a single machine.
type SQLiteStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

// OpenSQLite opens the database in WAL mode with a single writer, which is
// how SQLite behaves best under concurrent Puts.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) ensureSchema() error {
	if s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS artifact_files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    content BLOB NOT NULL DEFAULT X'',
    size INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(run_id, path)
);
CREATE INDEX IF NOT EXISTS idx_artifacts_run_id ON artifact_files(run_id);
`)
	})
	return s.schemaErr
}

func (s *SQLiteStore) Put(ctx context.Context, runID, path string, content []byte) error {
	runID, path, err := cleanKey(runID, path)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO artifact_files (run_id, path, content, size, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(run_id, path)
DO UPDATE SET content=excluded.content, size=excluded.size, updated_at=excluded.updated_at
`, runID, path, content, int64(len(content)), time.Now().UTC())
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, runID, path string) ([]byte, error) {
	runID, path, err := cleanKey(runID, path)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT content FROM artifact_files WHERE run_id=? AND path=?`,
		runID, path,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *SQLiteStore) List(ctx context.Context, runID string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errEmptyRunID()
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM artifact_files WHERE run_id=? ORDER BY path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}
