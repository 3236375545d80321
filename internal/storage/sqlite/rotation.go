package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/notify"
)

// GetRotationState returns the singleton rotation record. A missing row
// reads as the zero state (counter 0, no last session), matching first-use
// behavior before seeding.
func (d *DB) GetRotationState(ctx context.Context) (models.RotationState, error) {
	var state models.RotationState
	var lastID sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT rotation_index, last_completed_session_id FROM rotation_state WHERE id = 1`).
		Scan(&state.RotationIndex, &lastID)
	if err == sql.ErrNoRows {
		return models.RotationState{}, nil
	}
	if err != nil {
		return models.RotationState{}, fmt.Errorf("querying rotation state: %w", err)
	}
	if lastID.Valid {
		id, err := uuid.Parse(lastID.String)
		if err != nil {
			return models.RotationState{}, fmt.Errorf("parsing last session id: %w", err)
		}
		state.LastCompletedSessionID = &id
	}
	return state, nil
}

// UpsertRotationState writes the singleton rotation record.
func (d *DB) UpsertRotationState(ctx context.Context, state models.RotationState) error {
	var lastID any
	if state.LastCompletedSessionID != nil {
		lastID = state.LastCompletedSessionID.String()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO rotation_state (id, rotation_index, last_completed_session_id)
		 VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   rotation_index = excluded.rotation_index,
		   last_completed_session_id = excluded.last_completed_session_id`,
		state.RotationIndex, lastID)
	if err != nil {
		return fmt.Errorf("upserting rotation state: %w", err)
	}
	d.hub.Publish(notify.TopicRotation)
	return nil
}
