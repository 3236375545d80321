package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/workout"
)

// ListMachines returns all machines ordered by order index.
func (d *DB) ListMachines(ctx context.Context) ([]models.Machine, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, multiplier, last_weight, order_index, active
		 FROM machines ORDER BY order_index ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying machines: %w", err)
	}
	defer rows.Close()

	var result []models.Machine
	for rows.Next() {
		var m models.Machine
		var id string
		if err := rows.Scan(&id, &m.Name, &m.Multiplier, &m.LastWeight, &m.OrderIndex, &m.Active); err != nil {
			return nil, fmt.Errorf("scanning machine: %w", err)
		}
		m.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing machine id: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ReplaceAllMachines atomically swaps the whole machine collection.
func (d *DB) ReplaceAllMachines(ctx context.Context, machines []models.Machine) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM machines`); err != nil {
		return fmt.Errorf("clearing machines: %w", err)
	}
	for _, m := range machines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO machines (id, name, multiplier, last_weight, order_index, active)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID.String(), m.Name, m.Multiplier, m.LastWeight, m.OrderIndex, m.Active); err != nil {
			return fmt.Errorf("inserting machine %s: %w", m.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing machines: %w", err)
	}
	d.hub.Publish(notify.TopicMachines)
	return nil
}

// UpdateMachine persists a full machine row by id.
func (d *DB) UpdateMachine(ctx context.Context, m models.Machine) error {
	tag, err := d.db.ExecContext(ctx,
		`UPDATE machines SET name = ?, multiplier = ?, last_weight = ?, order_index = ?, active = ?
		 WHERE id = ?`,
		m.Name, m.Multiplier, m.LastWeight, m.OrderIndex, m.Active, m.ID.String())
	if err != nil {
		return fmt.Errorf("updating machine: %w", err)
	}
	if n, _ := tag.RowsAffected(); n == 0 {
		return fmt.Errorf("machine %s: %w", m.ID, workout.ErrMachineNotFound)
	}
	d.hub.Publish(notify.TopicMachines)
	return nil
}

// SwapMachineOrder exchanges the order indexes of two machines in a single
// transaction so no duplicate-position state is ever visible.
func (d *DB) SwapMachineOrder(ctx context.Context, a, b uuid.UUID) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var orderA, orderB int
	if err := tx.QueryRowContext(ctx, `SELECT order_index FROM machines WHERE id = ?`, a.String()).Scan(&orderA); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("machine %s: %w", a, workout.ErrMachineNotFound)
		}
		return fmt.Errorf("reading order index: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT order_index FROM machines WHERE id = ?`, b.String()).Scan(&orderB); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("machine %s: %w", b, workout.ErrMachineNotFound)
		}
		return fmt.Errorf("reading order index: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE machines SET order_index = CASE id WHEN ? THEN ? WHEN ? THEN ? END
		 WHERE id IN (?, ?)`,
		a.String(), orderB, b.String(), orderA, a.String(), b.String()); err != nil {
		return fmt.Errorf("swapping order indexes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing swap: %w", err)
	}
	d.hub.Publish(notify.TopicMachines)
	return nil
}
