package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/workout"
)

// ListMachines returns all machines ordered by order index.
func (d *DB) ListMachines(ctx context.Context) ([]models.Machine, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, multiplier, last_weight, order_index, active
		 FROM machines ORDER BY order_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying machines: %w", err)
	}
	defer rows.Close()

	var result []models.Machine
	for rows.Next() {
		var m models.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Multiplier, &m.LastWeight, &m.OrderIndex, &m.Active); err != nil {
			return nil, fmt.Errorf("scanning machine: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ReplaceAllMachines atomically swaps the whole machine collection.
func (d *DB) ReplaceAllMachines(ctx context.Context, machines []models.Machine) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM machines`); err != nil {
		return fmt.Errorf("clearing machines: %w", err)
	}
	for _, m := range machines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO machines (id, name, multiplier, last_weight, order_index, active)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.Name, m.Multiplier, m.LastWeight, m.OrderIndex, m.Active); err != nil {
			return fmt.Errorf("inserting machine %s: %w", m.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing machines: %w", err)
	}
	d.hub.Publish(notify.TopicMachines)
	return nil
}

// UpdateMachine persists a full machine row by id.
func (d *DB) UpdateMachine(ctx context.Context, m models.Machine) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE machines SET name = $1, multiplier = $2, last_weight = $3, order_index = $4, active = $5
		 WHERE id = $6`,
		m.Name, m.Multiplier, m.LastWeight, m.OrderIndex, m.Active, m.ID)
	if err != nil {
		return fmt.Errorf("updating machine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("machine %s: %w", m.ID, workout.ErrMachineNotFound)
	}
	d.hub.Publish(notify.TopicMachines)
	return nil
}

// SwapMachineOrder exchanges the order indexes of two machines in a single
// transaction so no duplicate-position state is ever visible.
func (d *DB) SwapMachineOrder(ctx context.Context, a, b uuid.UUID) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderA, orderB int
	if err := tx.QueryRow(ctx, `SELECT order_index FROM machines WHERE id = $1`, a).Scan(&orderA); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("machine %s: %w", a, workout.ErrMachineNotFound)
		}
		return fmt.Errorf("reading order index: %w", err)
	}
	if err := tx.QueryRow(ctx, `SELECT order_index FROM machines WHERE id = $1`, b).Scan(&orderB); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("machine %s: %w", b, workout.ErrMachineNotFound)
		}
		return fmt.Errorf("reading order index: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE machines SET order_index = CASE id WHEN $1 THEN $2 WHEN $3 THEN $4 END
		 WHERE id IN ($1, $3)`,
		a, orderB, b, orderA); err != nil {
		return fmt.Errorf("swapping order indexes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing swap: %w", err)
	}
	d.hub.Publish(notify.TopicMachines)
	return nil
}
