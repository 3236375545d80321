package restore

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/export"
	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/workout"
)

// memStore is a minimal in-memory Store for restore tests.
type memStore struct {
	sessions map[uuid.UUID]models.Session
	logs     map[uuid.UUID]models.SetLog
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]models.Session),
		logs:     make(map[uuid.UUID]models.SetLog),
	}
}

func (s *memStore) ListMachines(ctx context.Context) ([]models.Machine, error) { return nil, nil }

func (s *memStore) ReplaceAllMachines(ctx context.Context, machines []models.Machine) error {
	return nil
}

func (s *memStore) UpdateMachine(ctx context.Context, machine models.Machine) error { return nil }

func (s *memStore) SwapMachineOrder(ctx context.Context, a, b uuid.UUID) error { return nil }

func (s *memStore) GetRotationState(ctx context.Context) (models.RotationState, error) {
	return models.RotationState{}, nil
}

func (s *memStore) UpsertRotationState(ctx context.Context, state models.RotationState) error {
	return nil
}

func (s *memStore) GetOpenSession(ctx context.Context) (*models.Session, error) {
	for _, sess := range s.sessions {
		if !sess.Complete {
			copied := sess
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertSession(ctx context.Context, session models.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *memStore) UpdateSession(ctx context.Context, session models.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *memStore) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		copied := sess
		return &copied, nil
	}
	return nil, nil
}

func (s *memStore) InsertSetLog(ctx context.Context, log models.SetLog) error {
	s.logs[log.ID] = log
	return nil
}

func (s *memStore) DeleteSetLog(ctx context.Context, id uuid.UUID) error {
	delete(s.logs, id)
	return nil
}

func (s *memStore) ListLogsForSession(ctx context.Context, sessionID uuid.UUID) ([]models.SetLog, error) {
	return nil, nil
}

func (s *memStore) LatestLogTimestamp(ctx context.Context, sessionID uuid.UUID) (*time.Time, error) {
	return nil, nil
}

func (s *memStore) ListSessionsDescending(ctx context.Context, limit int) ([]models.Session, error) {
	return s.ListAllSessions(ctx)
}

func (s *memStore) ListAllSessions(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *memStore) ListAllLogs(ctx context.Context) ([]models.SetLog, error) {
	var out []models.SetLog
	for _, l := range s.logs {
		out = append(out, l)
	}
	return out, nil
}

var _ workout.Store = (*memStore)(nil)

func sampleData(t *testing.T) ([]models.Session, []models.SetLog) {
	t.Helper()
	sessionID := uuid.New()
	started := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	ended := started.Add(45 * time.Minute)
	reps := 10

	sessions := []models.Session{
		{
			ID:           sessionID,
			StartedAt:    started,
			EndedAt:      &ended,
			DayKey:       "2025-06-10",
			DayType:      "B",
			Stars:        10,
			Points:       1200,
			QuestCleared: true,
			Complete:     true,
		},
	}
	logs := []models.SetLog{
		{
			ID:        uuid.New(),
			LoggedAt:  started.Add(5 * time.Minute),
			DayKey:    "2025-06-10",
			SessionID: sessionID,
			MachineID: uuid.New(),
			Weight:    90,
			Reps:      &reps,
			StarIndex: 1,
		},
		{
			ID:        uuid.New(),
			LoggedAt:  started.Add(10 * time.Minute),
			DayKey:    "2025-06-10",
			SessionID: sessionID,
			MachineID: uuid.New(),
			Weight:    95,
			StarIndex: 2,
		},
	}
	return sessions, logs
}

// TestImportRoundTrip verifies an export file restores into an empty store
// with all rows intact.
func TestImportRoundTrip(t *testing.T) {
	sessions, logs := sampleData(t)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sessions, logs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	store := newMemStore()
	imp := New(store, slog.New(slog.DiscardHandler), false)
	stats, err := imp.Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsInserted != 1 || stats.LogsInserted != 2 {
		t.Errorf("stats = %+v, want 1 session / 2 logs inserted", stats)
	}
	if stats.RowsErrored != 0 {
		t.Errorf("rowsErrored = %d, want 0", stats.RowsErrored)
	}

	got := store.sessions[sessions[0].ID]
	if got.Stars != 10 || got.Points != 1200 || !got.QuestCleared || !got.Complete {
		t.Errorf("restored session = %+v", got)
	}
	if got.RotationIndex != 1 {
		t.Errorf("rotationIndex = %d, want 1 reconstructed from day B", got.RotationIndex)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(*sessions[0].EndedAt) {
		t.Errorf("endedAt = %v, want %v", got.EndedAt, sessions[0].EndedAt)
	}

	restored := store.logs[logs[0].ID]
	if restored.Weight != 90 || restored.StarIndex != 1 {
		t.Errorf("restored log = %+v", restored)
	}
	if restored.Reps == nil || *restored.Reps != 10 {
		t.Errorf("restored reps = %v, want 10", restored.Reps)
	}
	if second := store.logs[logs[1].ID]; second.Reps != nil {
		t.Errorf("rep-less log restored with reps %v", second.Reps)
	}
}

// TestImportIdempotent verifies re-importing the same file only counts
// duplicates.
func TestImportIdempotent(t *testing.T) {
	sessions, logs := sampleData(t)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sessions, logs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	data := buf.Bytes()

	store := newMemStore()
	imp := New(store, slog.New(slog.DiscardHandler), false)
	if _, err := imp.Import(context.Background(), bytes.NewReader(data)); err != nil {
		t.Fatalf("first import: %v", err)
	}

	imp = New(store, slog.New(slog.DiscardHandler), false)
	stats, err := imp.Import(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if stats.SessionsInserted != 0 || stats.LogsInserted != 0 {
		t.Errorf("second import inserted rows: %+v", stats)
	}
	if stats.SessionsDuplicated != 1 || stats.LogsDuplicated != 2 {
		t.Errorf("stats = %+v, want 1 dup session / 2 dup logs", stats)
	}
	if len(store.sessions) != 1 || len(store.logs) != 2 {
		t.Errorf("store has %d sessions / %d logs, want 1/2", len(store.sessions), len(store.logs))
	}
}

// TestImportDryRun verifies dry-run counts without writing.
func TestImportDryRun(t *testing.T) {
	sessions, logs := sampleData(t)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sessions, logs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	store := newMemStore()
	imp := New(store, slog.New(slog.DiscardHandler), true)
	stats, err := imp.Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsInserted != 1 || stats.LogsInserted != 2 {
		t.Errorf("dry-run stats = %+v, want full counts", stats)
	}
	if len(store.sessions) != 0 || len(store.logs) != 0 {
		t.Error("dry-run wrote to the store")
	}
}

// TestImportSkipsOrphansAndBadRows verifies logs without a session are
// dropped and malformed rows are counted, not fatal.
func TestImportSkipsOrphansAndBadRows(t *testing.T) {
	sessions, logs := sampleData(t)
	logs[1].SessionID = uuid.New() // session not in file or store

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sessions, logs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	buf.WriteString("not,a,valid,log,row\n")

	store := newMemStore()
	imp := New(store, slog.New(slog.DiscardHandler), false)
	stats, err := imp.Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.LogsInserted != 1 {
		t.Errorf("logsInserted = %d, want 1", stats.LogsInserted)
	}
	if stats.LogsOrphaned != 1 {
		t.Errorf("logsOrphaned = %d, want 1", stats.LogsOrphaned)
	}
	if stats.RowsErrored != 1 {
		t.Errorf("rowsErrored = %d, want 1", stats.RowsErrored)
	}
}

// TestImportSecondOpenSession verifies an open session in the export is
// skipped when the store already has one.
func TestImportSecondOpenSession(t *testing.T) {
	sessions, _ := sampleData(t)
	sessions[0].Complete = false
	sessions[0].EndedAt = nil

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sessions, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	store := newMemStore()
	existing := models.Session{
		ID:        uuid.New(),
		StartedAt: time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC),
		DayKey:    "2025-06-11",
		DayType:   "A",
	}
	if err := store.InsertSession(context.Background(), existing); err != nil {
		t.Fatalf("seeding open session: %v", err)
	}

	imp := New(store, slog.New(slog.DiscardHandler), false)
	stats, err := imp.Import(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsSkipped != 1 || stats.SessionsInserted != 0 {
		t.Errorf("stats = %+v, want 1 skipped / 0 inserted", stats)
	}
	if len(store.sessions) != 1 {
		t.Errorf("store has %d sessions, want only the existing one", len(store.sessions))
	}
}
