package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/models"
	"github.com/anastasia/starset/internal/workout"
)

// DataSource abstracts the workout engine for MCP tools. *workout.Coordinator
// satisfies it; tests use a fake.
type DataSource interface {
	TodayPlan(ctx context.Context) (workout.DayType, []models.Machine, error)
	ActiveSession(ctx context.Context) (models.Session, error)
	SessionLogs(ctx context.Context) ([]models.SetLog, error)
	LogSet(ctx context.Context, machineID uuid.UUID, weight int, reps *int) (models.SetLog, error)
	UndoLog(ctx context.Context, logID uuid.UUID) error
	FinishSession(ctx context.Context) error
	Streaks(ctx context.Context) (questStreak, softDays int, err error)
	Machines(ctx context.Context) ([]models.Machine, error)
	History(ctx context.Context, limit int) ([]models.Session, error)
}

// Compile-time check: *workout.Coordinator satisfies DataSource.
var _ DataSource = (*workout.Coordinator)(nil)
