package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
)

// fakeClock pins time for coordinator tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) DayKey(t time.Time) string { return t.Format("2006-01-02") }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeStore is an in-memory Store with per-operation failure injection.
type fakeStore struct {
	machines []models.Machine
	sessions map[uuid.UUID]models.Session
	logs     map[uuid.UUID]models.SetLog
	rotation models.RotationState
	failOn   map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uuid.UUID]models.Session),
		logs:     make(map[uuid.UUID]models.SetLog),
		failOn:   make(map[string]error),
	}
}

func (s *fakeStore) fail(op string) error {
	if err, ok := s.failOn[op]; ok {
		return err
	}
	return nil
}

func (s *fakeStore) ListMachines(ctx context.Context) ([]models.Machine, error) {
	if err := s.fail("ListMachines"); err != nil {
		return nil, err
	}
	out := make([]models.Machine, len(s.machines))
	copy(out, s.machines)
	return out, nil
}

func (s *fakeStore) ReplaceAllMachines(ctx context.Context, machines []models.Machine) error {
	if err := s.fail("ReplaceAllMachines"); err != nil {
		return err
	}
	s.machines = append([]models.Machine(nil), machines...)
	return nil
}

func (s *fakeStore) UpdateMachine(ctx context.Context, machine models.Machine) error {
	if err := s.fail("UpdateMachine"); err != nil {
		return err
	}
	for i := range s.machines {
		if s.machines[i].ID == machine.ID {
			s.machines[i] = machine
			return nil
		}
	}
	return fmt.Errorf("machine %s: %w", machine.ID, ErrMachineNotFound)
}

func (s *fakeStore) SwapMachineOrder(ctx context.Context, a, b uuid.UUID) error {
	var ia, ib = -1, -1
	for i := range s.machines {
		if s.machines[i].ID == a {
			ia = i
		}
		if s.machines[i].ID == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return ErrMachineNotFound
	}
	s.machines[ia].OrderIndex, s.machines[ib].OrderIndex = s.machines[ib].OrderIndex, s.machines[ia].OrderIndex
	return nil
}

func (s *fakeStore) GetRotationState(ctx context.Context) (models.RotationState, error) {
	if err := s.fail("GetRotationState"); err != nil {
		return models.RotationState{}, err
	}
	return s.rotation, nil
}

func (s *fakeStore) UpsertRotationState(ctx context.Context, state models.RotationState) error {
	if err := s.fail("UpsertRotationState"); err != nil {
		return err
	}
	s.rotation = state
	return nil
}

func (s *fakeStore) GetOpenSession(ctx context.Context) (*models.Session, error) {
	if err := s.fail("GetOpenSession"); err != nil {
		return nil, err
	}
	for _, sess := range s.sessions {
		if !sess.Complete {
			copied := sess
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertSession(ctx context.Context, session models.Session) error {
	if err := s.fail("InsertSession"); err != nil {
		return err
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeStore) UpdateSession(ctx context.Context, session models.Session) error {
	if err := s.fail("UpdateSession"); err != nil {
		return err
	}
	if _, ok := s.sessions[session.ID]; !ok {
		return fmt.Errorf("session %s: %w", session.ID, ErrSessionNotFound)
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeStore) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		copied := sess
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) InsertSetLog(ctx context.Context, log models.SetLog) error {
	if err := s.fail("InsertSetLog"); err != nil {
		return err
	}
	s.logs[log.ID] = log
	return nil
}

func (s *fakeStore) DeleteSetLog(ctx context.Context, id uuid.UUID) error {
	if err := s.fail("DeleteSetLog"); err != nil {
		return err
	}
	delete(s.logs, id)
	return nil
}

func (s *fakeStore) ListLogsForSession(ctx context.Context, sessionID uuid.UUID) ([]models.SetLog, error) {
	if err := s.fail("ListLogsForSession"); err != nil {
		return nil, err
	}
	var out []models.SetLog
	for _, l := range s.logs {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeStore) LatestLogTimestamp(ctx context.Context, sessionID uuid.UUID) (*time.Time, error) {
	if err := s.fail("LatestLogTimestamp"); err != nil {
		return nil, err
	}
	var latest *time.Time
	for _, l := range s.logs {
		if l.SessionID != sessionID {
			continue
		}
		if latest == nil || l.LoggedAt.After(*latest) {
			t := l.LoggedAt
			latest = &t
		}
	}
	return latest, nil
}

func (s *fakeStore) ListSessionsDescending(ctx context.Context, limit int) ([]models.Session, error) {
	if err := s.fail("ListSessionsDescending"); err != nil {
		return nil, err
	}
	var out []models.Session
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.After(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ListAllSessions(ctx context.Context) ([]models.Session, error) {
	return s.ListSessionsDescending(ctx, 0)
}

func (s *fakeStore) ListAllLogs(ctx context.Context) ([]models.SetLog, error) {
	var out []models.SetLog
	for _, l := range s.logs {
		out = append(out, l)
	}
	return out, nil
}

var _ Store = (*fakeStore)(nil)

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeStore, *fakeClock) {
	t.Helper()
	store := newFakeStore()
	clock := &fakeClock{now: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)}
	coord := NewCoordinator(store, clock, slog.New(slog.DiscardHandler))
	if err := coord.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seeding defaults: %v", err)
	}
	return coord, store, clock
}

func machineNamed(t *testing.T, store *fakeStore, name string) models.Machine {
	t.Helper()
	for _, m := range store.machines {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("no machine named %q in roster", name)
	return models.Machine{}
}

// TestSeedDefaultsIdempotent verifies seeding only happens on an empty
// roster.
func TestSeedDefaultsIdempotent(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	store.machines[0].LastWeight = 999
	if err := coord.SeedDefaults(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if store.machines[0].LastWeight != 999 {
		t.Error("second seed overwrote existing roster")
	}
	if len(store.machines) != 8 {
		t.Errorf("roster size = %d, want 8", len(store.machines))
	}
}

// TestActiveSessionCreatesAndReuses verifies that a session is created on
// first use and returned unchanged while fresh.
func TestActiveSessionCreatesAndReuses(t *testing.T) {
	coord, _, clock := newTestCoordinator(t)
	ctx := context.Background()

	first, err := coord.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("first ActiveSession: %v", err)
	}
	if first.DayType != "A" {
		t.Errorf("dayType = %q, want A at rotation 0", first.DayType)
	}
	if first.DayKey != "2025-06-10" {
		t.Errorf("dayKey = %q, want 2025-06-10", first.DayKey)
	}
	if first.Stars != 0 || first.Points != 0 || first.QuestCleared || first.Complete {
		t.Errorf("new session not zeroed: %+v", first)
	}

	clock.advance(time.Hour)
	second, err := coord.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("second ActiveSession: %v", err)
	}
	if second.ID != first.ID {
		t.Error("fresh open session was not reused")
	}
}

// TestActiveSessionStaleRollover verifies that an open session whose last
// log is more than three hours old is closed and replaced. A session with
// no logs never times out.
func TestActiveSessionStaleRollover(t *testing.T) {
	coord, store, clock := newTestCoordinator(t)
	ctx := context.Background()

	first, err := coord.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("ActiveSession: %v", err)
	}

	// No logs: even a long gap keeps the session open.
	clock.advance(8 * time.Hour)
	same, err := coord.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("ActiveSession after gap: %v", err)
	}
	if same.ID != first.ID {
		t.Fatal("logless session must not time out")
	}

	machine := machineNamed(t, store, "Leg Press")
	if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	clock.advance(3*time.Hour + time.Second)
	next, err := coord.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("ActiveSession after staleness: %v", err)
	}
	if next.ID == first.ID {
		t.Fatal("stale session was not rolled over")
	}

	closed, err := store.GetSessionByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetSessionByID: %v", err)
	}
	if closed == nil || !closed.Complete || closed.EndedAt == nil {
		t.Errorf("stale session not closed: %+v", closed)
	}
}

// TestLogSetTenSetScenario verifies the full quest scenario: ten sets at
// multiplier 1.0 and weight 100 produce star indices 1..10, 100 points
// each, and quest clearance exactly at the tenth.
func TestLogSetTenSetScenario(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Leg Extension") // multiplier 1.00

	for i := 1; i <= 10; i++ {
		entry, err := coord.LogSet(ctx, machine.ID, 100, nil)
		if err != nil {
			t.Fatalf("LogSet %d: %v", i, err)
		}
		if entry.StarIndex != i {
			t.Errorf("set %d starIndex = %d", i, entry.StarIndex)
		}

		session, err := store.GetOpenSession(ctx)
		if err != nil {
			t.Fatalf("GetOpenSession: %v", err)
		}
		if session.Stars != i {
			t.Errorf("after set %d stars = %d", i, session.Stars)
		}
		if session.Points != i*100 {
			t.Errorf("after set %d points = %d, want %d", i, session.Points, i*100)
		}
		if cleared := i >= 10; session.QuestCleared != cleared {
			t.Errorf("after set %d questCleared = %v, want %v", i, session.QuestCleared, cleared)
		}
	}

	if got := machineNamed(t, store, "Leg Extension").LastWeight; got != 100 {
		t.Errorf("machine lastWeight = %d, want 100", got)
	}
}

// TestLogSetUnknownMachine verifies the NotFound contract for foreign
// machine ids.
func TestLogSetUnknownMachine(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)

	_, err := coord.LogSet(context.Background(), uuid.New(), 50, nil)
	if !errors.Is(err, ErrMachineNotFound) {
		t.Errorf("err = %v, want ErrMachineNotFound", err)
	}
}

// TestUndoRestoresTotals verifies that logging then undoing a set returns
// the session's star count and point total to their prior values.
func TestUndoRestoresTotals(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Butt Bridge") // multiplier 1.60
	if _, err := coord.LogSet(ctx, machine.ID, 100, nil); err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	before, err := store.GetOpenSession(ctx)
	if err != nil {
		t.Fatalf("GetOpenSession: %v", err)
	}

	entry, err := coord.LogSet(ctx, machine.ID, 105, nil)
	if err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	if err := coord.UndoLog(ctx, entry.ID); err != nil {
		t.Fatalf("UndoLog: %v", err)
	}

	after, err := store.GetOpenSession(ctx)
	if err != nil {
		t.Fatalf("GetOpenSession: %v", err)
	}
	if after.Stars != before.Stars || after.Points != before.Points {
		t.Errorf("after undo stars/points = %d/%d, want %d/%d",
			after.Stars, after.Points, before.Stars, before.Points)
	}
	if _, ok := store.logs[entry.ID]; ok {
		t.Error("undone log still present")
	}
}

// TestUndoKeepsStarIndices verifies undoing an earlier log never renumbers
// the remaining logs' star indices.
func TestUndoKeepsStarIndices(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Leg Press")
	first, err := coord.LogSet(ctx, machine.ID, 90, nil)
	if err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	second, err := coord.LogSet(ctx, machine.ID, 90, nil)
	if err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	if err := coord.UndoLog(ctx, first.ID); err != nil {
		t.Fatalf("UndoLog: %v", err)
	}
	if got := store.logs[second.ID].StarIndex; got != 2 {
		t.Errorf("remaining log starIndex = %d, want 2 (no renumbering)", got)
	}

	// Next log takes starCount+1 = 2, colliding with the surviving star
	// index on purpose: indices are assignment-time ordinals, not unique.
	third, err := coord.LogSet(ctx, machine.ID, 90, nil)
	if err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	if third.StarIndex != 2 {
		t.Errorf("third log starIndex = %d, want 2", third.StarIndex)
	}
}

// TestUndoUsesCurrentMultiplier verifies the documented quirk: the debit is
// computed with the multiplier at undo time, not the one charged.
func TestUndoUsesCurrentMultiplier(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Leg Extension") // multiplier 1.00
	entry, err := coord.LogSet(ctx, machine.ID, 100, nil)
	if err != nil {
		t.Fatalf("LogSet: %v", err)
	}

	// Edit the multiplier before undoing.
	edited := machineNamed(t, store, "Leg Extension")
	edited.Multiplier = 2.0
	if err := store.UpdateMachine(ctx, edited); err != nil {
		t.Fatalf("UpdateMachine: %v", err)
	}

	if err := coord.UndoLog(ctx, entry.ID); err != nil {
		t.Fatalf("UndoLog: %v", err)
	}

	session, err := store.GetOpenSession(ctx)
	if err != nil {
		t.Fatalf("GetOpenSession: %v", err)
	}
	// Charged 100, debited 200, floored at 0.
	if session.Points != 0 {
		t.Errorf("points = %d, want 0 (debit floored)", session.Points)
	}
	if session.Stars != 0 {
		t.Errorf("stars = %d, want 0", session.Stars)
	}
}

// TestUndoNoOps verifies undo with no open session and undo of a foreign
// log id are silent no-ops.
func TestUndoNoOps(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	// Nothing open yet.
	if err := coord.UndoLog(ctx, uuid.New()); err != nil {
		t.Fatalf("undo with no session: %v", err)
	}

	machine := machineNamed(t, store, "Leg Press")
	if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	session, _ := store.GetOpenSession(ctx)

	// Unknown log id: state untouched.
	if err := coord.UndoLog(ctx, uuid.New()); err != nil {
		t.Fatalf("undo unknown log: %v", err)
	}
	after, _ := store.GetOpenSession(ctx)
	if after.Stars != session.Stars || after.Points != session.Points {
		t.Error("no-op undo changed session counters")
	}
}

// TestFinishSessionRotation verifies the rotation counter advances exactly
// once per quest-cleared finish and never otherwise, and that finishing
// twice is a no-op the second time.
func TestFinishSessionRotation(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Leg Press")

	// Not cleared: counter stays.
	if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	session, _ := store.GetOpenSession(ctx)
	if err := coord.FinishSession(ctx); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}
	if store.rotation.RotationIndex != 0 {
		t.Errorf("rotation after uncleared finish = %d, want 0", store.rotation.RotationIndex)
	}
	if store.rotation.LastCompletedSessionID == nil || *store.rotation.LastCompletedSessionID != session.ID {
		t.Error("last completed session not recorded")
	}

	// Double finish: no-op.
	if err := coord.FinishSession(ctx); err != nil {
		t.Fatalf("second FinishSession: %v", err)
	}
	if store.rotation.RotationIndex != 0 {
		t.Error("double finish changed rotation state")
	}

	// Cleared: counter advances by exactly one.
	for i := 0; i < 10; i++ {
		if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
			t.Fatalf("LogSet %d: %v", i, err)
		}
	}
	if err := coord.FinishSession(ctx); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}
	if store.rotation.RotationIndex != 1 {
		t.Errorf("rotation after cleared finish = %d, want 1", store.rotation.RotationIndex)
	}

	// Next session runs under day B.
	next, err := coord.ActiveSession(ctx)
	if err != nil {
		t.Fatalf("ActiveSession: %v", err)
	}
	if next.DayType != "B" {
		t.Errorf("next dayType = %q, want B", next.DayType)
	}
}

// TestLogSetRollsBackOnFailure verifies no partial credit is committed when
// the session update fails mid-call.
func TestLogSetRollsBackOnFailure(t *testing.T) {
	coord, store, _ := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Leg Press")
	if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
		t.Fatalf("LogSet: %v", err)
	}
	before, _ := store.GetOpenSession(ctx)
	logsBefore := len(store.logs)

	store.failOn["UpdateSession"] = errors.New("disk full")
	if _, err := coord.LogSet(ctx, machine.ID, 95, nil); err == nil {
		t.Fatal("expected error from failing store")
	}
	delete(store.failOn, "UpdateSession")

	after, _ := store.GetOpenSession(ctx)
	if after.Stars != before.Stars || after.Points != before.Points {
		t.Errorf("failed LogSet left partial credit: %d/%d want %d/%d",
			after.Stars, after.Points, before.Stars, before.Points)
	}
	if len(store.logs) != logsBefore {
		t.Errorf("failed LogSet left %d logs, want %d", len(store.logs), logsBefore)
	}
}

// TestStreaks verifies the aggregate view over finished sessions.
func TestStreaks(t *testing.T) {
	coord, store, clock := newTestCoordinator(t)
	ctx := context.Background()

	machine := machineNamed(t, store, "Leg Press")

	// Yesterday: cleared session.
	clock.now = time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
			t.Fatalf("LogSet: %v", err)
		}
	}
	if err := coord.FinishSession(ctx); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}

	// Today: cleared session.
	clock.now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if _, err := coord.LogSet(ctx, machine.ID, 90, nil); err != nil {
			t.Fatalf("LogSet: %v", err)
		}
	}
	if err := coord.FinishSession(ctx); err != nil {
		t.Fatalf("FinishSession: %v", err)
	}

	quest, soft, err := coord.Streaks(ctx)
	if err != nil {
		t.Fatalf("Streaks: %v", err)
	}
	if quest != 2 {
		t.Errorf("questStreak = %d, want 2", quest)
	}
	if soft != 2 {
		t.Errorf("softStreakDays = %d, want 2", soft)
	}
}
