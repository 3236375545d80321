package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anastasia/starset/internal/notify"
	"github.com/anastasia/starset/internal/workout"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	coord  *workout.Coordinator
	store  workout.Store
	hub    *notify.Hub
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(coord *workout.Coordinator, store workout.Store, hub *notify.Hub, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		coord:  coord,
		store:  store,
		hub:    hub,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints
		r.Get("/machines", s.handleListMachines)
		r.Get("/plan/today", s.handleTodayPlan)
		r.Get("/session", s.handleActiveSession)
		r.Get("/session/logs", s.handleSessionLogs)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/streaks", s.handleStreaks)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/events", s.handleEvents)

		// Mutating endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Put("/machines/{id}", s.handleUpdateMachine)
			r.Post("/machines/swap", s.handleSwapMachines)
			r.Post("/machines/reset", s.handleResetMachines)
			r.Post("/session/logs", s.handleLogSet)
			r.Delete("/session/logs/{id}", s.handleUndoLog)
			r.Post("/session/finish", s.handleFinishSession)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
