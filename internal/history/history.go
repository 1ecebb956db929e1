// Package history persists a record of every console session in a SQLite
// database under the per-user data directory.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// DBFileName is the history database file under ~/.opencode-console.
const DBFileName = "history.db"

// Outcome values recorded when a session ends.
const (
	OutcomeExited   = "exited"
	OutcomeErrored  = "errored"
	OutcomeDisposed = "disposed"
)

// Store wraps a SQLite database recording session history.
// Thread-safe for concurrent use from multiple goroutines within one
// process; multiple OS processes can safely read/write via WAL mode plus
// the busy timeout.
type Store struct {
	db *sql.DB
}

// Record is one session's history row. EndedAt is zero while the session
// is still running.
type Record struct {
	ID        string
	Binary    string
	Dir       string
	Cols      int
	Rows      int
	StartedAt time.Time
	EndedAt   time.Time
	ExitCode  int
	Signaled  bool
	Outcome   string
}

// DefaultPath returns the history database path under the data directory.
func DefaultPath() (string, error) {
	dir, err := session.GetConsoleDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DBFileName), nil
}

// Open creates or opens the history database at dbPath with WAL mode and
// a busy timeout, and migrates the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close checkpoints WAL and closes the database.
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("history: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			binary     TEXT NOT NULL,
			dir        TEXT NOT NULL,
			cols       INTEGER NOT NULL,
			rows       INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at   INTEGER NOT NULL DEFAULT 0,
			exit_code  INTEGER NOT NULL DEFAULT 0,
			signaled   INTEGER NOT NULL DEFAULT 0,
			outcome    TEXT NOT NULL DEFAULT 'running'
		)
	`); err != nil {
		return fmt.Errorf("history: create sessions: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)
	`); err != nil {
		return fmt.Errorf("history: create index: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("history: set schema version: %w", err)
	}

	return tx.Commit()
}

// RecordStart inserts a row for a freshly spawned session.
func (s *Store) RecordStart(r Record) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions (id, binary, dir, cols, rows, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Binary, r.Dir, r.Cols, r.Rows, r.StartedAt.Unix())
	if err != nil {
		return fmt.Errorf("history: record start: %w", err)
	}
	return nil
}

// RecordEnd marks a session's final state.
func (s *Store) RecordEnd(id string, endedAt time.Time, exitCode int, signaled bool, outcome string) error {
	_, err := s.db.Exec(`
		UPDATE sessions SET ended_at = ?, exit_code = ?, signaled = ?, outcome = ?
		WHERE id = ?
	`, endedAt.Unix(), exitCode, boolToInt(signaled), outcome, id)
	if err != nil {
		return fmt.Errorf("history: record end: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, binary, dir, cols, rows, started_at, ended_at, exit_code, signaled, outcome
		FROM sessions
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var started, ended, signaled int64
		if err := rows.Scan(&r.ID, &r.Binary, &r.Dir, &r.Cols, &r.Rows,
			&started, &ended, &r.ExitCode, &signaled, &r.Outcome); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		if ended > 0 {
			r.EndedAt = time.Unix(ended, 0)
		}
		r.Signaled = signaled != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes records that started before the retention cutoff.
// Returns the number of rows removed.
func (s *Store) Prune(keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays).Unix()

	res, err := s.db.Exec(`DELETE FROM sessions WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
