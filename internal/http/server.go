// Package http exposes the JSON API: trip and expense CRUD, voice commands,
// and AI trip summaries.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"viaggio/internal/assistant"
	"viaggio/internal/core"
	"viaggio/internal/middleware/trace"
	"viaggio/internal/services"
	"viaggio/internal/storage"
)

// UserResolver identifies the requesting user. The default trusts the
// X-User-ID header set by the fronting proxy; single-user deployments fall
// back to user 1 when the header is absent.
type UserResolver func(r *http.Request) (int64, error)

type Server struct {
	http.Server

	repo       *storage.SQLiteRepository
	expenses   *services.ExpenseService
	pipeline   *assistant.Pipeline
	summarizer *assistant.SummaryService

	homeCurrency string
	resolveUser  UserResolver

	shutdownOnce sync.Once
}

func NewServer(addr string, repo *storage.SQLiteRepository, expenses *services.ExpenseService, pipeline *assistant.Pipeline, summarizer *assistant.SummaryService, homeCurrency string, resolveUser UserResolver) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        trace.Middleware(mux),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		repo:         repo,
		expenses:     expenses,
		pipeline:     pipeline,
		summarizer:   summarizer,
		homeCurrency: core.ParseCurrency(homeCurrency),
		resolveUser:  resolveUser,
	}
	if s.resolveUser == nil {
		s.resolveUser = HeaderUserResolver
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/trips", s.handleListTrips)
	mux.HandleFunc("POST /api/trips", s.handleCreateTrip)
	mux.HandleFunc("GET /api/trips/{id}", s.handleGetTrip)
	mux.HandleFunc("DELETE /api/trips/{id}", s.handleDeleteTrip)
	mux.HandleFunc("GET /api/trips/{id}/summary", s.handleTripSummary)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/voice/command", s.handleVoiceCommand)

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
