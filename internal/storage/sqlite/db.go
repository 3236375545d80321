// Package sqlite implements the workout store on a local SQLite database
// via the CGO-free modernc driver. Timestamps are stored as epoch
// milliseconds; booleans as 0/1.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/workout"
)

// DB wraps the SQLite handle and the change-notification hub.
type DB struct {
	db  *sql.DB
	hub *notify.Hub
}

// Compile-time check: *DB satisfies the workout store contract.
var _ workout.Store = (*DB)(nil)

// Open opens (or creates) the database at path and applies pending
// migrations from migrationsPath.
func Open(path, migrationsPath string, hub *notify.Hub) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Serialized access; the coordinator already funnels writes through
	// one goroutine, and SQLite dislikes concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := runMigrations(db, migrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db, hub: hub}, nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

func runMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms) }

func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
