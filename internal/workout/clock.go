package workout

import "time"

// StaleAfter is how long a session may sit without a new log before it is
// considered abandoned and auto-closed.
const StaleAfter = 3 * time.Hour

// Stale reports whether an open session has gone stale. A session with no
// logs yet is never stale; otherwise the session is stale iff strictly more
// than StaleAfter has elapsed since its latest log.
func Stale(lastLog *time.Time, now time.Time) bool {
	if lastLog == nil {
		return false
	}
	return now.Sub(*lastLog) > StaleAfter
}

// Clock supplies the current time and the local calendar day key. The
// coordinator takes it as a collaborator so tests can pin time.
type Clock interface {
	Now() time.Time
	DayKey(t time.Time) string
}

// SystemClock is the wall-clock Clock using the local time zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DayKey formats t as an ISO calendar date (YYYY-MM-DD) in local time.
func (SystemClock) DayKey(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}
