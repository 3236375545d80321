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

const sessionColumns = `id, started_at, ended_at, day_key, day_type, stars, points,
	quest_cleared, rotation_index, complete`

// GetOpenSession returns the single non-complete session, or nil if none
// is open. The schema's partial unique index guarantees at most one.
func (d *DB) GetOpenSession(ctx context.Context) (*models.Session, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE NOT complete`)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open session: %w", err)
	}
	return &s, nil
}

// InsertSession persists a new session row.
func (d *DB) InsertSession(ctx context.Context, s models.Session) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.StartedAt, s.EndedAt, s.DayKey, s.DayType,
		s.Stars, s.Points, s.QuestCleared, s.RotationIndex, s.Complete)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	d.hub.Publish(notify.TopicSessions)
	return nil
}

// UpdateSession persists a full session row by id.
func (d *DB) UpdateSession(ctx context.Context, s models.Session) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE sessions SET started_at = $1, ended_at = $2, day_key = $3, day_type = $4,
		 stars = $5, points = $6, quest_cleared = $7, rotation_index = $8, complete = $9
		 WHERE id = $10`,
		s.StartedAt, s.EndedAt, s.DayKey, s.DayType,
		s.Stars, s.Points, s.QuestCleared, s.RotationIndex, s.Complete, s.ID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", s.ID, workout.ErrSessionNotFound)
	}
	d.hub.Publish(notify.TopicSessions)
	return nil
}

// GetSessionByID returns one session, or nil if the id is unknown.
func (d *DB) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

// ListSessionsDescending returns sessions newest first. limit <= 0 means
// no limit.
func (d *DB) ListSessionsDescending(ctx context.Context, limit int) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListAllSessions returns every session, newest first.
func (d *DB) ListAllSessions(ctx context.Context) ([]models.Session, error) {
	return d.ListSessionsDescending(ctx, 0)
}

func scanSession(row pgx.Row) (models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.ID, &s.StartedAt, &s.EndedAt, &s.DayKey, &s.DayType,
		&s.Stars, &s.Points, &s.QuestCleared, &s.RotationIndex, &s.Complete); err != nil {
		return models.Session{}, err
	}
	return s, nil
}
