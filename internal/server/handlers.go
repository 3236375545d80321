package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/workout"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleTodayPlan(w http.ResponseWriter, r *http.Request) {
	day, machines, err := s.coord.TodayPlan(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dayType":  day,
		"machines": machines,
	})
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.GetOpenSession(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSessionLogs(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.GetOpenSession(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	logs, err := s.store.ListLogsForSession(r.Context(), session.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type logSetRequest struct {
	MachineID uuid.UUID `json:"machineId"`
	Weight    int       `json:"weight"`
	Reps      *int      `json:"reps,omitempty"`
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req logSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Weight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be non-negative"})
		return
	}

	entry, err := s.coord.LogSet(r.Context(), req.MachineID, req.Weight, req.Reps)
	if errors.Is(err, workout.ErrMachineNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error("log set failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleUndoLog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid log ID"})
		return
	}

	// Undo of a log outside the open session is a silent no-op, mirroring
	// UI affordances that may lag behind state.
	if err := s.coord.UndoLog(r.Context(), id); err != nil {
		s.log.Error("undo failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.FinishSession(r.Context()); err != nil {
		s.log.Error("finish failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 14
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	sessions, err := s.store.ListSessionsDescending(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	quest, soft, err := s.coord.Streaks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"questStreak":    quest,
		"softStreakDays": soft,
	})
}
