// Package export serializes historical sessions and set logs to the
// two-block CSV layout the mobile app shared: a Sessions block followed by
// a SetLogs block.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/anastasia/starset/internal/models"
)

// WriteCSV writes all sessions then all logs to w.
func WriteCSV(w io.Writer, sessions []models.Session, logs []models.SetLog) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Sessions"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.Write([]string{"id", "start", "end", "dayKey", "dayType", "stars", "points", "questCleared", "complete"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, s := range sessions {
		end := ""
		if s.EndedAt != nil {
			end = strconv.FormatInt(s.EndedAt.UnixMilli(), 10)
		}
		row := []string{
			s.ID.String(),
			strconv.FormatInt(s.StartedAt.UnixMilli(), 10),
			end,
			s.DayKey,
			s.DayType,
			strconv.Itoa(s.Stars),
			strconv.Itoa(s.Points),
			strconv.FormatBool(s.QuestCleared),
			strconv.FormatBool(s.Complete),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing session row: %w", err)
		}
	}

	if err := cw.Write([]string{}); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}
	if err := cw.Write([]string{"SetLogs"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.Write([]string{"id", "sessionId", "machineId", "dayKey", "timestamp", "weight", "reps", "starIndex"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range logs {
		reps := ""
		if l.Reps != nil {
			reps = strconv.Itoa(*l.Reps)
		}
		row := []string{
			l.ID.String(),
			l.SessionID.String(),
			l.MachineID.String(),
			l.DayKey,
			strconv.FormatInt(l.LoggedAt.UnixMilli(), 10),
			strconv.Itoa(l.Weight),
			reps,
			strconv.Itoa(l.StarIndex),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing log row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
