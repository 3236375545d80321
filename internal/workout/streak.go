package workout

import (
	"time"

	"github.com/anastasia/starset/internal/models"
)

// QuestStreak counts consecutive quest-cleared sessions starting from the
// most recent. Sessions must be ordered by start time descending; the walk
// stops at the first session that did not clear its quest.
func QuestStreak(sessionsNewestFirst []models.Session) int {
	streak := 0
	for _, s := range sessionsNewestFirst {
		if !s.QuestCleared {
			break
		}
		streak++
	}
	return streak
}

// SoftStreakDays counts consecutive calendar days with at least one logged
// session, walking backward from today. Today itself must be present to
// count as day one: a gap today yields zero even if yesterday and earlier
// are all present. Malformed day keys are skipped.
func SoftStreakDays(dayKeys []string, today time.Time) int {
	present := make(map[string]struct{}, len(dayKeys))
	for _, k := range dayKeys {
		if _, err := time.ParseInLocation("2006-01-02", k, time.Local); err == nil {
			present[k] = struct{}{}
		}
	}

	count := 0
	day := today
	for {
		if _, ok := present[day.Format("2006-01-02")]; !ok {
			return count
		}
		count++
		day = day.AddDate(0, 0, -1)
	}
}
