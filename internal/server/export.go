package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/anastasia/starset/internal/export"
)

// handleExportCSV streams the full history as CSV, consuming only the raw
// historical collections.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListAllSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	logs, err := s.store.ListAllLogs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("starset_export_%d.csv", time.Now().UnixMilli())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, sessions, logs); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}
