package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/notify"
)

const setLogColumns = `id, logged_at, day_key, session_id, machine_id, weight, reps, notes, star_index`

// InsertSetLog persists a new set log.
func (d *DB) InsertSetLog(ctx context.Context, l models.SetLog) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO set_logs (`+setLogColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), toMillis(l.LoggedAt), l.DayKey, l.SessionID.String(), l.MachineID.String(),
		l.Weight, l.Reps, l.Notes, l.StarIndex)
	if err != nil {
		return fmt.Errorf("inserting set log: %w", err)
	}
	d.hub.Publish(notify.TopicLogs)
	return nil
}

// DeleteSetLog removes one set log. Deleting an unknown id is not an error.
func (d *DB) DeleteSetLog(ctx context.Context, id uuid.UUID) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM set_logs WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting set log: %w", err)
	}
	d.hub.Publish(notify.TopicLogs)
	return nil
}

// ListLogsForSession returns a session's logs in logged order.
func (d *DB) ListLogsForSession(ctx context.Context, sessionID uuid.UUID) ([]models.SetLog, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+setLogColumns+` FROM set_logs WHERE session_id = ? ORDER BY logged_at ASC, star_index ASC`,
		sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer rows.Close()
	return collectSetLogs(rows)
}

// LatestLogTimestamp returns the newest log time for a session, or nil if
// the session has no logs.
func (d *DB) LatestLogTimestamp(ctx context.Context, sessionID uuid.UUID) (*time.Time, error) {
	var ms sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		`SELECT MAX(logged_at) FROM set_logs WHERE session_id = ?`, sessionID.String()).Scan(&ms)
	if err != nil {
		return nil, fmt.Errorf("querying latest log timestamp: %w", err)
	}
	if !ms.Valid {
		return nil, nil
	}
	t := fromMillis(ms.Int64)
	return &t, nil
}

// ListAllLogs returns every set log, oldest first.
func (d *DB) ListAllLogs(ctx context.Context) ([]models.SetLog, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+setLogColumns+` FROM set_logs ORDER BY logged_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()
	return collectSetLogs(rows)
}

func collectSetLogs(rows *sql.Rows) ([]models.SetLog, error) {
	var result []models.SetLog
	for rows.Next() {
		var l models.SetLog
		var id, sessionID, machineID string
		var loggedAt int64
		if err := rows.Scan(&id, &loggedAt, &l.DayKey, &sessionID, &machineID,
			&l.Weight, &l.Reps, &l.Notes, &l.StarIndex); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		var err error
		if l.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing log id: %w", err)
		}
		if l.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("parsing log session id: %w", err)
		}
		if l.MachineID, err = uuid.Parse(machineID); err != nil {
			return nil, fmt.Errorf("parsing log machine id: %w", err)
		}
		l.LoggedAt = fromMillis(loggedAt)
		result = append(result, l)
	}
	return result, rows.Err()
}
