package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/anastasia/starset/internal/workout"
)

func (s *Server) handleListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := s.store.ListMachines(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, machines)
}

type updateMachineRequest struct {
	Name       *string  `json:"name,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
	LastWeight *int     `json:"lastWeight,omitempty"`
	Active     *bool    `json:"active,omitempty"`
}

func (s *Server) handleUpdateMachine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid machine ID"})
		return
	}

	var req updateMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Multiplier != nil && *req.Multiplier <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multiplier must be positive"})
		return
	}
	if req.LastWeight != nil && *req.LastWeight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lastWeight must be non-negative"})
		return
	}

	machines, err := s.store.ListMachines(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	for _, m := range machines {
		if m.ID != id {
			continue
		}
		if req.Name != nil {
			m.Name = *req.Name
		}
		if req.Multiplier != nil {
			m.Multiplier = *req.Multiplier
		}
		if req.LastWeight != nil {
			m.LastWeight = *req.LastWeight
		}
		if req.Active != nil {
			m.Active = *req.Active
		}
		if err := s.store.UpdateMachine(r.Context(), m); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, m)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "machine not found"})
}

type swapRequest struct {
	A uuid.UUID `json:"a"`
	B uuid.UUID `json:"b"`
}

func (s *Server) handleSwapMachines(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	err := s.store.SwapMachineOrder(r.Context(), req.A, req.B)
	if errors.Is(err, workout.ErrMachineNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResetMachines(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.ResetDefaults(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	machines, err := s.store.ListMachines(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, machines)
}
