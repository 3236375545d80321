// Package storage selects and opens a workout store backend from config.
package storage

import (
	"context"
	"fmt"

	"github.com/anastasia/starset/internal/config"
	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/storage/postgres"
	"github.com/anastasia/starset/internal/storage/sqlite"
	"github.com/anastasia/starset/internal/workout"
)

// Open connects the configured backend, runs its migrations, and returns
// the store plus a close func.
func Open(ctx context.Context, cfg config.StorageConfig, hub *notify.Hub) (workout.Store, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Path, "migrations/sqlite", hub)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db, func() { db.Close() }, nil
	case "postgres":
		dsn := cfg.DSN()
		if err := postgres.RunMigrations(dsn, "migrations/postgres"); err != nil {
			return nil, nil, fmt.Errorf("migrating postgres store: %w", err)
		}
		db, err := postgres.New(ctx, dsn, hub)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return db, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
