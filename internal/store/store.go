// Package store is the local SQLite activity journal: a record of every
// notification shown to the operator. Session state is never persisted.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the journal. Concrete type; safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Entry is one journaled notification.
type Entry struct {
	ID       string
	Kind     string
	Message  string
	ArtistID string
	View     string
	Created  time.Time
}

// Open opens or creates the journal at dbPath. ":memory:" gives a shared
// in-memory database for tests.
func Open(dbPath string) (*Store, error) {
	dsn := dbPath
	memory := dbPath == ":memory:"
	if memory {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if !memory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS activity (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		artist_id TEXT,
		view TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activity_created ON activity(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_activity_artist ON activity(artist_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database, waiting for in-flight calls.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Record journals e. Re-recording an id is ignored.
func (s *Store) Record(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Created.IsZero() {
		e.Created = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO activity (id, kind, message, artist_id, view, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Message, nullString(e.ArtistID), nullString(e.View), e.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Recent returns the newest entries first. A non-empty artistID restricts
// to that artist.
func (s *Store) Recent(limit int, artistID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, kind, message, artist_id, view, created_at FROM activity`
	args := []any{}
	if artistID != "" {
		query += ` WHERE artist_id = ?`
		args = append(args, artistID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e            Entry
			artist, view sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Message, &artist, &view, &e.Created); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.ArtistID = artist.String
		e.View = view.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByKind tallies journaled entries per notification kind.
func (s *Store) CountByKind() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM activity GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Prune deletes entries older than cutoff and reports how many went.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM activity WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
