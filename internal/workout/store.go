package workout

import (
	"context"
	"errors"
	"time"

	"github.com/anastasia/starset/internal/models"
	"github.com/google/uuid"
)

// Sentinel errors surfaced by the coordinator and stores. Anything else
// coming out of a Store is an infrastructure failure and propagates
// unchanged.
var (
	ErrMachineNotFound = errors.New("machine not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Store is the persistence contract the coordinator requires. Both the
// sqlite and postgres stores satisfy it; coordinator tests use an in-memory
// fake. Implementations publish a change signal per affected collection
// after each committed mutation.
type Store interface {
	ListMachines(ctx context.Context) ([]models.Machine, error)
	ReplaceAllMachines(ctx context.Context, machines []models.Machine) error
	UpdateMachine(ctx context.Context, machine models.Machine) error
	// SwapMachineOrder exchanges the order indexes of two machines as a
	// single atomic update; no intermediate duplicate-position state may
	// be observable.
	SwapMachineOrder(ctx context.Context, a, b uuid.UUID) error

	GetRotationState(ctx context.Context) (models.RotationState, error)
	UpsertRotationState(ctx context.Context, state models.RotationState) error

	GetOpenSession(ctx context.Context) (*models.Session, error)
	InsertSession(ctx context.Context, session models.Session) error
	UpdateSession(ctx context.Context, session models.Session) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)

	InsertSetLog(ctx context.Context, log models.SetLog) error
	DeleteSetLog(ctx context.Context, id uuid.UUID) error
	ListLogsForSession(ctx context.Context, sessionID uuid.UUID) ([]models.SetLog, error)
	// LatestLogTimestamp returns nil when the session has no logs.
	LatestLogTimestamp(ctx context.Context, sessionID uuid.UUID) (*time.Time, error)

	ListSessionsDescending(ctx context.Context, limit int) ([]models.Session, error)
	ListAllSessions(ctx context.Context) ([]models.Session, error)
	ListAllLogs(ctx context.Context) ([]models.SetLog, error)
}
