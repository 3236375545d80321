package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/notify"
)

const setLogColumns = `id, logged_at, day_key, session_id, machine_id, weight, reps, notes, star_index`

// InsertSetLog persists a new set log.
func (d *DB) InsertSetLog(ctx context.Context, l models.SetLog) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO set_logs (`+setLogColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.LoggedAt, l.DayKey, l.SessionID, l.MachineID,
		l.Weight, l.Reps, l.Notes, l.StarIndex)
	if err != nil {
		return fmt.Errorf("inserting set log: %w", err)
	}
	d.hub.Publish(notify.TopicLogs)
	return nil
}

// DeleteSetLog removes one set log. Deleting an unknown id is not an error.
func (d *DB) DeleteSetLog(ctx context.Context, id uuid.UUID) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM set_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting set log: %w", err)
	}
	d.hub.Publish(notify.TopicLogs)
	return nil
}

// ListLogsForSession returns a session's logs in logged order.
func (d *DB) ListLogsForSession(ctx context.Context, sessionID uuid.UUID) ([]models.SetLog, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+setLogColumns+` FROM set_logs WHERE session_id = $1 ORDER BY logged_at ASC, star_index ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer rows.Close()
	return collectSetLogs(rows)
}

// LatestLogTimestamp returns the newest log time for a session, or nil if
// the session has no logs.
func (d *DB) LatestLogTimestamp(ctx context.Context, sessionID uuid.UUID) (*time.Time, error) {
	var ts *time.Time
	err := d.pool.QueryRow(ctx,
		`SELECT MAX(logged_at) FROM set_logs WHERE session_id = $1`, sessionID).Scan(&ts)
	if err != nil {
		return nil, fmt.Errorf("querying latest log timestamp: %w", err)
	}
	return ts, nil
}

// ListAllLogs returns every set log, oldest first.
func (d *DB) ListAllLogs(ctx context.Context) ([]models.SetLog, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+setLogColumns+` FROM set_logs ORDER BY logged_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()
	return collectSetLogs(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectSetLogs(rows pgxRows) ([]models.SetLog, error) {
	var result []models.SetLog
	for rows.Next() {
		var l models.SetLog
		if err := rows.Scan(&l.ID, &l.LoggedAt, &l.DayKey, &l.SessionID, &l.MachineID,
			&l.Weight, &l.Reps, &l.Notes, &l.StarIndex); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
