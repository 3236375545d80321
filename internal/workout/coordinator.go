package workout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anastasia/starset/internal/models"
	"github.com/google/uuid"
)

// Coordinator owns the session lifecycle: it decides when an open session is
// reused, timed out, or created, converts logged sets into points via the
// scoring policy, and advances the rotation counter on quest-cleared
// finishes. It is the only stateful component; LogSet, UndoLog,
// FinishSession and ActiveSession are serialized by an internal mutex so
// they never interleave against the same session. Read-side aggregates
// (TodayPlan, Streaks, History) go straight to the store.
type Coordinator struct {
	mu    sync.Mutex
	store Store
	clock Clock
	log   *slog.Logger
}

// NewCoordinator creates a Coordinator over the given store and clock.
func NewCoordinator(store Store, clock Clock, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, clock: clock, log: log}
}

// SeedDefaults installs the default machine roster and a zeroed rotation
// state if no machines exist yet. Idempotent.
func (c *Coordinator) SeedDefaults(ctx context.Context) error {
	machines, err := c.store.ListMachines(ctx)
	if err != nil {
		return fmt.Errorf("listing machines: %w", err)
	}
	if len(machines) > 0 {
		return nil
	}
	if err := c.store.ReplaceAllMachines(ctx, DefaultMachines()); err != nil {
		return fmt.Errorf("seeding machines: %w", err)
	}
	if err := c.store.UpsertRotationState(ctx, models.RotationState{}); err != nil {
		return fmt.Errorf("seeding rotation state: %w", err)
	}
	c.log.Info("seeded default machine roster")
	return nil
}

// ResetDefaults replaces the whole machine collection with the default
// roster atomically.
func (c *Coordinator) ResetDefaults(ctx context.Context) error {
	if err := c.store.ReplaceAllMachines(ctx, DefaultMachines()); err != nil {
		return fmt.Errorf("resetting machines: %w", err)
	}
	c.log.Info("machine roster reset to defaults")
	return nil
}

// ActiveSession returns the current open session, creating one if needed.
// A stale open session (latest log older than StaleAfter) is closed first
// and a fresh session created, so callers never check staleness themselves.
func (c *Coordinator) ActiveSession(ctx context.Context) (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSessionLocked(ctx)
}

func (c *Coordinator) activeSessionLocked(ctx context.Context) (models.Session, error) {
	now := c.clock.Now()

	open, err := c.store.GetOpenSession(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("fetching open session: %w", err)
	}
	if open != nil {
		lastLog, err := c.store.LatestLogTimestamp(ctx, open.ID)
		if err != nil {
			return models.Session{}, fmt.Errorf("fetching latest log timestamp: %w", err)
		}
		if !Stale(lastLog, now) {
			return *open, nil
		}
		ended := now
		open.EndedAt = &ended
		open.Complete = true
		if err := c.store.UpdateSession(ctx, *open); err != nil {
			return models.Session{}, fmt.Errorf("closing stale session: %w", err)
		}
		c.log.Info("closed stale session", "session", open.ID, "lastLog", lastLog)
	}

	state, err := c.store.GetRotationState(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("fetching rotation state: %w", err)
	}
	session := models.Session{
		ID:            uuid.New(),
		StartedAt:     now,
		DayKey:        c.clock.DayKey(now),
		DayType:       string(DayTypeForRotation(state.RotationIndex)),
		RotationIndex: state.RotationIndex,
	}
	if err := c.store.InsertSession(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return session, nil
}

// LogSet records one set on the given machine: it assigns the next star
// index, scores the set, persists the log, updates the machine's last-used
// weight, and bumps the session counters. Returns ErrMachineNotFound if the
// machine id is unknown. If the session update fails after the log was
// inserted, the log is removed again so committed state shows no partial
// credit.
func (c *Coordinator) LogSet(ctx context.Context, machineID uuid.UUID, weight int, reps *int) (models.SetLog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.activeSessionLocked(ctx)
	if err != nil {
		return models.SetLog{}, err
	}

	machine, err := c.findMachine(ctx, machineID)
	if err != nil {
		return models.SetLog{}, err
	}

	starIndex := session.Stars + 1
	points := SetPoints(machine.Multiplier, weight, starIndex)

	entry := models.SetLog{
		ID:        uuid.New(),
		LoggedAt:  c.clock.Now(),
		DayKey:    session.DayKey,
		SessionID: session.ID,
		MachineID: machineID,
		Weight:    weight,
		Reps:      reps,
		StarIndex: starIndex,
	}
	if err := c.store.InsertSetLog(ctx, entry); err != nil {
		return models.SetLog{}, fmt.Errorf("inserting set log: %w", err)
	}

	machine.LastWeight = weight
	if err := c.store.UpdateMachine(ctx, machine); err != nil {
		c.rollbackLog(ctx, entry.ID)
		return models.SetLog{}, fmt.Errorf("updating machine weight: %w", err)
	}

	session.Stars = starIndex
	session.Points += points
	session.QuestCleared = session.Stars >= QuestStars
	if err := c.store.UpdateSession(ctx, session); err != nil {
		c.rollbackLog(ctx, entry.ID)
		return models.SetLog{}, fmt.Errorf("updating session: %w", err)
	}

	c.log.Info("set logged",
		"session", session.ID,
		"machine", machine.Name,
		"weight", weight,
		"star", starIndex,
		"points", points,
	)
	return entry, nil
}

// UndoLog removes one log from the currently open session and debits its
// points. No open session, or a log id that does not belong to the open
// session, is a silent no-op. The debit is recomputed with the machine's
// multiplier as it stands now, not the one in effect when the set was
// charged; if the machine was edited in between the amounts can differ.
// That asymmetry matches the shipped behavior and is kept deliberately.
// Star indices of the remaining logs are never renumbered.
func (c *Coordinator) UndoLog(ctx context.Context, logID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.store.GetOpenSession(ctx)
	if err != nil {
		return fmt.Errorf("fetching open session: %w", err)
	}
	if session == nil {
		return nil
	}

	logs, err := c.store.ListLogsForSession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("listing session logs: %w", err)
	}
	var target *models.SetLog
	for i := range logs {
		if logs[i].ID == logID {
			target = &logs[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	machine, err := c.findMachine(ctx, target.MachineID)
	if err != nil {
		return err
	}
	points := SetPoints(machine.Multiplier, target.Weight, target.StarIndex)

	if err := c.store.DeleteSetLog(ctx, logID); err != nil {
		return fmt.Errorf("deleting set log: %w", err)
	}

	session.Stars = max(session.Stars-1, 0)
	session.Points = max(session.Points-points, 0)
	session.QuestCleared = session.Stars >= QuestStars
	if err := c.store.UpdateSession(ctx, *session); err != nil {
		// Put the log back so the session never shows a debit without
		// its matching deletion.
		if rerr := c.store.InsertSetLog(ctx, *target); rerr != nil {
			c.log.Error("failed to restore log after undo rollback", "log", logID, "error", rerr)
		}
		return fmt.Errorf("updating session: %w", err)
	}

	c.log.Info("set undone", "session", session.ID, "star", target.StarIndex, "points", points)
	return nil
}

// FinishSession closes the open session and, if its quest was cleared,
// advances the rotation counter by one. No open session is a silent no-op,
// so a double tap on finish cannot corrupt state.
func (c *Coordinator) FinishSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.store.GetOpenSession(ctx)
	if err != nil {
		return fmt.Errorf("fetching open session: %w", err)
	}
	if session == nil {
		return nil
	}

	now := c.clock.Now()
	session.EndedAt = &now
	session.Complete = true
	if err := c.store.UpdateSession(ctx, *session); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}

	state, err := c.store.GetRotationState(ctx)
	if err != nil {
		return fmt.Errorf("fetching rotation state: %w", err)
	}
	if session.QuestCleared {
		state.RotationIndex++
	}
	id := session.ID
	state.LastCompletedSessionID = &id
	if err := c.store.UpsertRotationState(ctx, state); err != nil {
		return fmt.Errorf("updating rotation state: %w", err)
	}

	c.log.Info("session finished",
		"session", session.ID,
		"stars", session.Stars,
		"points", session.Points,
		"questCleared", session.QuestCleared,
		"rotationIndex", state.RotationIndex,
	)
	return nil
}

// TodayPlan resolves the current day type from rotation state and selects
// today's scheduled machines in plan order.
func (c *Coordinator) TodayPlan(ctx context.Context) (DayType, []models.Machine, error) {
	state, err := c.store.GetRotationState(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("fetching rotation state: %w", err)
	}
	machines, err := c.store.ListMachines(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("listing machines: %w", err)
	}
	day := DayTypeForRotation(state.RotationIndex)
	return day, SelectMachinesForDay(day, machines), nil
}

// Streaks computes the quest streak (consecutive quest-cleared sessions,
// newest first) and the soft streak (consecutive calendar days with a
// session, counting back from today).
func (c *Coordinator) Streaks(ctx context.Context) (questStreak, softDays int, err error) {
	sessions, err := c.store.ListSessionsDescending(ctx, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("listing sessions: %w", err)
	}
	dayKeys := make([]string, 0, len(sessions))
	for _, s := range sessions {
		dayKeys = append(dayKeys, s.DayKey)
	}
	return QuestStreak(sessions), SoftStreakDays(dayKeys, c.clock.Now()), nil
}

// Machines lists the full roster in order-index order.
func (c *Coordinator) Machines(ctx context.Context) ([]models.Machine, error) {
	return c.store.ListMachines(ctx)
}

// History returns the most recent sessions, newest first. limit <= 0 means
// all of them.
func (c *Coordinator) History(ctx context.Context, limit int) ([]models.Session, error) {
	return c.store.ListSessionsDescending(ctx, limit)
}

// SessionLogs returns the open session's logs, or nil if no session is
// open.
func (c *Coordinator) SessionLogs(ctx context.Context) ([]models.SetLog, error) {
	session, err := c.store.GetOpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching open session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	return c.store.ListLogsForSession(ctx, session.ID)
}

func (c *Coordinator) findMachine(ctx context.Context, id uuid.UUID) (models.Machine, error) {
	machines, err := c.store.ListMachines(ctx)
	if err != nil {
		return models.Machine{}, fmt.Errorf("listing machines: %w", err)
	}
	for _, m := range machines {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Machine{}, fmt.Errorf("machine %s: %w", id, ErrMachineNotFound)
}

func (c *Coordinator) rollbackLog(ctx context.Context, id uuid.UUID) {
	if err := c.store.DeleteSetLog(ctx, id); err != nil {
		c.log.Error("failed to remove log after rollback", "log", id, "error", err)
	}
}
