package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dentora/dentkit/pkg/authstate"
)

// Service exposes the session lifecycle controller over HTTP.
type Service struct {
	ctrl *authstate.Controller
	log  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the HTTP surface over the given controller.
func NewService(ctrl *authstate.Controller, opts ...ServiceOption) *Service {
	s := &Service{
		ctrl: ctrl,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router mounts the auth endpoints.
//
//	POST /login            exchange credentials for a session
//	POST /logout           revoke the session
//	POST /refresh-profile  re-run profile enrichment
//	GET  /session          read the current snapshot
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)
	r.Post("/refresh-profile", s.refreshProfile)
	r.Get("/session", s.session)
	return r
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
