// Package restore reads a two-block CSV export (Sessions, then SetLogs)
// back into a store. Rows already present are skipped, so re-importing the
// same file is safe.
package restore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/workout"
)

// Stats tracks restore progress.
type Stats struct {
	SessionsInserted   int
	SessionsDuplicated int
	SessionsSkipped    int
	LogsInserted       int
	LogsDuplicated     int
	LogsOrphaned       int
	RowsErrored        int
}

// Importer reads an export file and inserts its rows into the store.
type Importer struct {
	store  workout.Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(store workout.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

type block int

const (
	blockNone block = iota
	blockSessions
	blockLogs
)

// Import parses the export and inserts sessions first, then logs. Logs
// whose session is in neither the file nor the store are counted as
// orphaned and dropped; a restored open session is skipped when another
// session is already open.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	knownSessions := make(map[uuid.UUID]bool)
	if existing, err := imp.store.ListAllSessions(ctx); err == nil {
		for _, s := range existing {
			knownSessions[s.ID] = true
		}
	} else {
		return &imp.stats, fmt.Errorf("listing sessions: %w", err)
	}
	knownLogs := make(map[uuid.UUID]bool)
	if existing, err := imp.store.ListAllLogs(ctx); err == nil {
		for _, l := range existing {
			knownLogs[l.ID] = true
		}
	} else {
		return &imp.stats, fmt.Errorf("listing logs: %w", err)
	}

	open, err := imp.store.GetOpenSession(ctx)
	if err != nil {
		return &imp.stats, fmt.Errorf("fetching open session: %w", err)
	}
	hasOpen := open != nil

	current := blockNone
	skipHeader := false
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &imp.stats, fmt.Errorf("reading csv: %w", err)
		}
		line++

		if len(record) == 1 {
			switch record[0] {
			case "Sessions":
				current, skipHeader = blockSessions, true
				continue
			case "SetLogs":
				current, skipHeader = blockLogs, true
				continue
			}
		}
		if skipHeader {
			skipHeader = false
			continue
		}

		switch current {
		case blockSessions:
			session, err := parseSessionRow(record)
			if err != nil {
				imp.log.Warn("bad session row", "line", line, "error", err)
				imp.stats.RowsErrored++
				continue
			}
			if knownSessions[session.ID] {
				imp.stats.SessionsDuplicated++
				continue
			}
			if !session.Complete && hasOpen {
				imp.log.Warn("skipping open session from export, another is already open", "session", session.ID)
				imp.stats.SessionsSkipped++
				continue
			}
			if !imp.dryRun {
				if err := imp.store.InsertSession(ctx, session); err != nil {
					return &imp.stats, fmt.Errorf("inserting session %s: %w", session.ID, err)
				}
			}
			knownSessions[session.ID] = true
			if !session.Complete {
				hasOpen = true
			}
			imp.stats.SessionsInserted++

		case blockLogs:
			entry, err := parseLogRow(record)
			if err != nil {
				imp.log.Warn("bad log row", "line", line, "error", err)
				imp.stats.RowsErrored++
				continue
			}
			if knownLogs[entry.ID] {
				imp.stats.LogsDuplicated++
				continue
			}
			if !knownSessions[entry.SessionID] {
				imp.log.Warn("dropping log with unknown session", "log", entry.ID, "session", entry.SessionID)
				imp.stats.LogsOrphaned++
				continue
			}
			if !imp.dryRun {
				if err := imp.store.InsertSetLog(ctx, entry); err != nil {
					return &imp.stats, fmt.Errorf("inserting log %s: %w", entry.ID, err)
				}
			}
			knownLogs[entry.ID] = true
			imp.stats.LogsInserted++

		default:
			imp.log.Warn("row outside any block", "line", line)
			imp.stats.RowsErrored++
		}
	}

	return &imp.stats, nil
}

// parseSessionRow maps an export row (id, start, end, dayKey, dayType,
// stars, points, questCleared, complete) onto a Session. The export does
// not carry the rotation counter, so it is reconstructed from the day type.
func parseSessionRow(record []string) (models.Session, error) {
	if len(record) != 9 {
		return models.Session{}, fmt.Errorf("expected 9 fields, got %d", len(record))
	}
	id, err := uuid.Parse(record[0])
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing id: %w", err)
	}
	started, err := parseMillis(record[1])
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing start: %w", err)
	}
	var ended *time.Time
	if record[2] != "" {
		t, err := parseMillis(record[2])
		if err != nil {
			return models.Session{}, fmt.Errorf("parsing end: %w", err)
		}
		ended = &t
	}
	stars, err := strconv.Atoi(record[5])
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing stars: %w", err)
	}
	points, err := strconv.Atoi(record[6])
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing points: %w", err)
	}
	questCleared, err := strconv.ParseBool(record[7])
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing questCleared: %w", err)
	}
	complete, err := strconv.ParseBool(record[8])
	if err != nil {
		return models.Session{}, fmt.Errorf("parsing complete: %w", err)
	}

	return models.Session{
		ID:            id,
		StartedAt:     started,
		EndedAt:       ended,
		DayKey:        record[3],
		DayType:       record[4],
		Stars:         stars,
		Points:        points,
		QuestCleared:  questCleared,
		RotationIndex: rotationIndexForDayType(record[4]),
		Complete:      complete,
	}, nil
}

// parseLogRow maps an export row (id, sessionId, machineId, dayKey,
// timestamp, weight, reps, starIndex) onto a SetLog.
func parseLogRow(record []string) (models.SetLog, error) {
	if len(record) != 8 {
		return models.SetLog{}, fmt.Errorf("expected 8 fields, got %d", len(record))
	}
	id, err := uuid.Parse(record[0])
	if err != nil {
		return models.SetLog{}, fmt.Errorf("parsing id: %w", err)
	}
	sessionID, err := uuid.Parse(record[1])
	if err != nil {
		return models.SetLog{}, fmt.Errorf("parsing sessionId: %w", err)
	}
	machineID, err := uuid.Parse(record[2])
	if err != nil {
		return models.SetLog{}, fmt.Errorf("parsing machineId: %w", err)
	}
	logged, err := parseMillis(record[4])
	if err != nil {
		return models.SetLog{}, fmt.Errorf("parsing timestamp: %w", err)
	}
	weight, err := strconv.Atoi(record[5])
	if err != nil {
		return models.SetLog{}, fmt.Errorf("parsing weight: %w", err)
	}
	var reps *int
	if record[6] != "" {
		n, err := strconv.Atoi(record[6])
		if err != nil {
			return models.SetLog{}, fmt.Errorf("parsing reps: %w", err)
		}
		reps = &n
	}
	starIndex, err := strconv.Atoi(record[7])
	if err != nil {
		return models.SetLog{}, fmt.Errorf("parsing starIndex: %w", err)
	}

	return models.SetLog{
		ID:        id,
		LoggedAt:  logged,
		DayKey:    record[3],
		SessionID: sessionID,
		MachineID: machineID,
		Weight:    weight,
		Reps:      reps,
		StarIndex: starIndex,
	}, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func rotationIndexForDayType(dayType string) int {
	switch workout.DayType(dayType) {
	case workout.DayB:
		return 1
	case workout.DayC:
		return 2
	default:
		return 0
	}
}
