package models

import (
	"time"

	"github.com/google/uuid"
)

// Machine is a trainable exercise station on the rotating roster.
type Machine struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Multiplier float64   `json:"multiplier"`
	LastWeight int       `json:"lastWeight"`
	OrderIndex int       `json:"orderIndex"`
	Active     bool      `json:"active"`
}

// Session is one bounded workout occurrence. At most one session may be
// open (Complete == false) at any time.
type Session struct {
	ID            uuid.UUID  `json:"id"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	DayKey        string     `json:"dayKey"`
	DayType       string     `json:"dayType"`
	Stars         int        `json:"stars"`
	Points        int        `json:"points"`
	QuestCleared  bool       `json:"questCleared"`
	RotationIndex int        `json:"rotationIndex"`
	Complete      bool       `json:"complete"`
}

// SetLog is one recorded exercise set. StarIndex is the 1-based position
// the set occupied within its session when it was logged; it is never
// renumbered, even if earlier logs are undone.
type SetLog struct {
	ID        uuid.UUID `json:"id"`
	LoggedAt  time.Time `json:"loggedAt"`
	DayKey    string    `json:"dayKey"`
	SessionID uuid.UUID `json:"sessionId"`
	MachineID uuid.UUID `json:"machineId"`
	Weight    int       `json:"weight"`
	Reps      *int      `json:"reps,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	StarIndex int       `json:"starIndex"`
}

// RotationState is the process-wide rotation record. Exactly one logical
// instance exists; the counter advances by one per quest-cleared session.
type RotationState struct {
	RotationIndex          int        `json:"rotationIndex"`
	LastCompletedSessionID *uuid.UUID `json:"lastCompletedSessionId,omitempty"`
}
