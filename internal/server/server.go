// Package server exposes the screening pipeline over HTTP to a browser
// front end. Capture happens client-side; the browser submits raw samples
// and reads merged session results back.
package server

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echohealth/echohealth/internal/analyzer"
	"github.com/echohealth/echohealth/internal/journal"
	"github.com/echohealth/echohealth/internal/profile"
	"github.com/echohealth/echohealth/internal/store"
)

// sessionHeader carries the client's session id. Requests without one
// fall back to the shared local bucket.
const sessionHeader = "X-Session-ID"

// Server wires the pipeline's collaborators behind HTTP handlers.
type Server struct {
	logger   *zap.Logger
	sessions store.SessionProvider
	analyzer analyzer.Analyzer
	journal  *journal.Journal
	profiles *profile.Manager
}

// New assembles a server.
func New(logger *zap.Logger, sessions store.SessionProvider, an analyzer.Analyzer, jr *journal.Journal, pm *profile.Manager) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:   logger,
		sessions: sessions,
		analyzer: an,
		journal:  jr,
		profiles: pm,
	}
}

// Routes returns the API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /api/v1/assessments/{modality}", s.handleAssess)
	mux.HandleFunc("GET /api/v1/results", s.handleGetResults)
	mux.HandleFunc("DELETE /api/v1/results", s.handleResetResults)
	mux.HandleFunc("POST /api/v1/results/record", s.handleRecordResult)
	mux.HandleFunc("GET /api/v1/advice", s.handleAdvice)

	mux.HandleFunc("GET /api/v1/journal", s.handleListJournal)
	mux.HandleFunc("POST /api/v1/journal", s.handleAddJournal)
	mux.HandleFunc("GET /api/v1/journal/stats", s.handleJournalStats)
	mux.HandleFunc("GET /api/v1/calendar/{year}/{month}", s.handleCalendar)

	mux.HandleFunc("GET /api/v1/profiles", s.handleListProfiles)
	mux.HandleFunc("POST /api/v1/profiles", s.handleAddProfile)
	mux.HandleFunc("DELETE /api/v1/profiles/{id}", s.handleRemoveProfile)
	mux.HandleFunc("PUT /api/v1/profiles/current", s.handleSetCurrentProfile)

	mux.HandleFunc("GET /api/v1/contact", s.handleGetContact)
	mux.HandleFunc("PUT /api/v1/contact", s.handleSetContact)

	return mux
}

func (s *Server) sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	return store.LocalSession
}

func (s *Server) results(r *http.Request) *store.ResultStore {
	return store.NewResultStore(s.sessions.Session(s.sessionID(r)))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	s.logger.Info("session created", zap.String("session", id))
	writeJSON(w, http.StatusCreated, Ok(map[string]string{"id": id}))
}
