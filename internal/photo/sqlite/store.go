// Package sqlite is a durable photo.Store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/example/retouch/internal/photo"
)

// Store keeps the photo catalog in a SQLite database. Rows are ordered by an
// insertion counter so All lists the newest photo first.
type Store struct {
	db *sql.DB
}

var _ photo.Store = (*Store)(nil)

// Open opens (or creates) the database at path, creating its directory and
// schema as needed. ":memory:" is accepted for throwaway stores.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open photo store: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure photo store: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	logrus.WithField("path", path).Debug("Photo store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS photos (
    id TEXT PRIMARY KEY,
    locator TEXT NOT NULL,
    display_name TEXT NOT NULL,
    position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS photos_position ON photos (position DESC);
`)
	if err != nil {
		return fmt.Errorf("create photo schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (photo.Photo, error) {
	p := photo.Photo{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT locator, display_name FROM photos WHERE id = ?`, id).
		Scan(&p.Locator, &p.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return photo.Photo{}, fmt.Errorf("get %s: %w", id, photo.ErrNotFound)
	}
	if err != nil {
		logrus.WithField("photo_id", id).WithError(err).Error("Failed to read photo")
		return photo.Photo{}, fmt.Errorf("get %s: %w", id, err)
	}
	return p, nil
}

// Add inserts p ahead of every existing photo.
func (s *Store) Add(ctx context.Context, p photo.Photo) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO photos (id, locator, display_name, position)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM photos))`,
		p.ID, p.Locator, p.DisplayName)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("add %s: %w", p.ID, photo.ErrDuplicateID)
		}
		logrus.WithField("photo_id", p.ID).WithError(err).Error("Failed to add photo")
		return fmt.Errorf("add %s: %w", p.ID, err)
	}
	return nil
}

// Update replaces the locator and name of an existing photo without moving it.
func (s *Store) Update(ctx context.Context, p photo.Photo) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE photos SET locator = ?, display_name = ? WHERE id = ?`,
		p.Locator, p.DisplayName, p.ID)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s: %w", p.ID, err)
	}
	return n > 0, nil
}

// Upsert updates p in place or inserts it as the newest photo.
func (s *Store) Upsert(ctx context.Context, p photo.Photo) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO photos (id, locator, display_name, position)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM photos))
ON CONFLICT(id) DO UPDATE SET locator = excluded.locator, display_name = excluded.display_name`,
		p.ID, p.Locator, p.DisplayName)
	if err != nil {
		logrus.WithField("photo_id", p.ID).WithError(err).Error("Failed to upsert photo")
		return fmt.Errorf("upsert %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]photo.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, locator, display_name FROM photos ORDER BY position DESC`)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()
	var out []photo.Photo
	for rows.Next() {
		var p photo.Photo
		if err := rows.Scan(&p.ID, &p.Locator, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("list photos: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}
