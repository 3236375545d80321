package workout

import (
	"testing"
	"time"
)

// TestStaleBoundary verifies the strict three-hour staleness cut-off.
func TestStaleBoundary(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if Stale(nil, base) {
		t.Error("session with no logs must never be stale")
	}
	if Stale(&base, base.Add(3*time.Hour)) {
		t.Error("exactly three hours is not stale")
	}
	if !Stale(&base, base.Add(3*time.Hour+time.Millisecond)) {
		t.Error("three hours and one millisecond is stale")
	}
	if Stale(&base, base) {
		t.Error("zero elapsed is not stale")
	}
}

// TestSystemClockDayKey verifies the ISO day key format.
func TestSystemClockDayKey(t *testing.T) {
	clk := SystemClock{}
	ts := time.Date(2025, 3, 9, 23, 30, 0, 0, time.Local)
	if got := clk.DayKey(ts); got != "2025-03-09" {
		t.Errorf("DayKey = %q, want %q", got, "2025-03-09")
	}
}
