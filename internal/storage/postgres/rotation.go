package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/notify"
)

// GetRotationState returns the singleton rotation record. A missing row
// reads as the zero state (counter 0, no last session), matching first-use
// behavior before seeding.
func (d *DB) GetRotationState(ctx context.Context) (models.RotationState, error) {
	var state models.RotationState
	err := d.pool.QueryRow(ctx,
		`SELECT rotation_index, last_completed_session_id FROM rotation_state WHERE id = 1`).
		Scan(&state.RotationIndex, &state.LastCompletedSessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RotationState{}, nil
	}
	if err != nil {
		return models.RotationState{}, fmt.Errorf("querying rotation state: %w", err)
	}
	return state, nil
}

// UpsertRotationState writes the singleton rotation record.
func (d *DB) UpsertRotationState(ctx context.Context, state models.RotationState) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO rotation_state (id, rotation_index, last_completed_session_id)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET
		   rotation_index = EXCLUDED.rotation_index,
		   last_completed_session_id = EXCLUDED.last_completed_session_id`,
		state.RotationIndex, state.LastCompletedSessionID)
	if err != nil {
		return fmt.Errorf("upserting rotation state: %w", err)
	}
	d.hub.Publish(notify.TopicRotation)
	return nil
}
