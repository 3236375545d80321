// Package postgres implements the workout store on PostgreSQL via pgx, for
// deployments where the tracker runs alongside an existing database server.
package postgres

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/workout"
)

// DB wraps a pgxpool.Pool and the change-notification hub.
type DB struct {
	pool *pgxpool.Pool
	hub  *notify.Hub
}

// Compile-time check: *DB satisfies the workout store contract.
var _ workout.Store = (*DB)(nil)

// New connects a pool and verifies the connection.
func New(ctx context.Context, dsn string, hub *notify.Hub) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool, hub: hub}, nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
