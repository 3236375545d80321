package workout

import (
	"testing"
	"time"

	"github.com/anastasia/starset/internal/models"
)

func sessionsCleared(flags ...bool) []models.Session {
	sessions := make([]models.Session, 0, len(flags))
	for _, f := range flags {
		sessions = append(sessions, models.Session{QuestCleared: f})
	}
	return sessions
}

// TestQuestStreak verifies the walk stops at the first session that did not
// clear its quest.
func TestQuestStreak(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  int
	}{
		{"empty", nil, 0},
		{"single cleared", []bool{true}, 1},
		{"stops at first miss", []bool{true, true, false, true}, 2},
		{"miss at head", []bool{false, true, true}, 0},
		{"all cleared", []bool{true, true, true}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuestStreak(sessionsCleared(tt.flags...)); got != tt.want {
				t.Errorf("QuestStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestSoftStreakDays verifies consecutive-day counting back from today,
// including the rule that a missing today zeroes the streak.
func TestSoftStreakDays(t *testing.T) {
	today := time.Date(2025, 6, 10, 15, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"empty", nil, 0},
		{"today only", []string{"2025-06-10"}, 1},
		{"three consecutive", []string{"2025-06-10", "2025-06-09", "2025-06-08"}, 3},
		{"gap stops count", []string{"2025-06-10", "2025-06-08"}, 1},
		{"today missing", []string{"2025-06-09", "2025-06-08"}, 0},
		{"duplicates collapse", []string{"2025-06-10", "2025-06-10", "2025-06-09"}, 2},
		{"malformed keys skipped", []string{"2025-06-10", "garbage"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SoftStreakDays(tt.keys, today); got != tt.want {
				t.Errorf("SoftStreakDays = %d, want %d", got, tt.want)
			}
		})
	}
}
