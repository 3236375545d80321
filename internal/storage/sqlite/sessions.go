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

const sessionColumns = `id, started_at, ended_at, day_key, day_type, stars, points,
	quest_cleared, rotation_index, complete`

// GetOpenSession returns the single non-complete session, or nil if none
// is open. The schema's partial unique index guarantees at most one.
func (d *DB) GetOpenSession(ctx context.Context) (*models.Session, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE complete = 0`)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open session: %w", err)
	}
	return &s, nil
}

// InsertSession persists a new session row.
func (d *DB) InsertSession(ctx context.Context, s models.Session) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), toMillis(s.StartedAt), nullMillis(s.EndedAt), s.DayKey, s.DayType,
		s.Stars, s.Points, s.QuestCleared, s.RotationIndex, s.Complete)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	d.hub.Publish(notify.TopicSessions)
	return nil
}

// UpdateSession persists a full session row by id.
func (d *DB) UpdateSession(ctx context.Context, s models.Session) error {
	tag, err := d.db.ExecContext(ctx,
		`UPDATE sessions SET started_at = ?, ended_at = ?, day_key = ?, day_type = ?,
		 stars = ?, points = ?, quest_cleared = ?, rotation_index = ?, complete = ?
		 WHERE id = ?`,
		toMillis(s.StartedAt), nullMillis(s.EndedAt), s.DayKey, s.DayType,
		s.Stars, s.Points, s.QuestCleared, s.RotationIndex, s.Complete, s.ID.String())
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, _ := tag.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", s.ID, workout.ErrSessionNotFound)
	}
	d.hub.Publish(notify.TopicSessions)
	return nil
}

// GetSessionByID returns one session, or nil if the id is unknown.
func (d *DB) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String())
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
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
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListAllSessions returns every session, newest first.
func (d *DB) ListAllSessions(ctx context.Context) ([]models.Session, error) {
	return d.ListSessionsDescending(ctx, 0)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var id string
	var startedAt int64
	var endedAt sql.NullInt64
	if err := row.Scan(&id, &startedAt, &endedAt, &s.DayKey, &s.DayType,
		&s.Stars, &s.Points, &s.QuestCleared, &s.RotationIndex, &s.Complete); err != nil {
		return models.Session{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing session id: %w", err)
	}
	s.ID = parsed
	s.StartedAt = fromMillis(startedAt)
	if endedAt.Valid {
		t := fromMillis(endedAt.Int64)
		s.EndedAt = &t
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]models.Session, error) {
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
