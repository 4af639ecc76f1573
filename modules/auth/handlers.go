package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dentora/dentkit/pkg/authstate"
	"github.com/dentora/dentkit/pkg/identity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is the wire form of a lifecycle snapshot. Navigate carries
// the destination hint emitted by the controller flows.
type sessionResponse struct {
	State    authstate.State `json:"state"`
	Phase    authstate.Phase `json:"phase"`
	Navigate string          `json:"navigate,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	if err := s.ctrl.SignIn(r.Context(), req.Email, req.Password); err != nil {
		s.log.InfoContext(r.Context(), "sign-in rejected",
			slog.String("email", req.Email), slog.String("error", err.Error()))
		s.writeError(w, err)
		return
	}

	st := s.ctrl.Current()
	s.writeJSON(w, http.StatusOK, sessionResponse{
		State:    st,
		Phase:    st.Phase(),
		Navigate: string(authstate.DestinationHome),
	})
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.SignOut(r.Context()); err != nil {
		// Local state is already cleared; report the provider failure but
		// still hand the client its sign-in destination.
		s.log.WarnContext(r.Context(), "sign-out completed with provider error",
			slog.String("error", err.Error()))
	}

	st := s.ctrl.Current()
	s.writeJSON(w, http.StatusOK, sessionResponse{
		State:    st,
		Phase:    st.Phase(),
		Navigate: string(authstate.DestinationSignIn),
	})
}

func (s *Service) refreshProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RefreshProfile(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	st := s.ctrl.Current()
	s.writeJSON(w, http.StatusOK, sessionResponse{State: st, Phase: st.Phase()})
}

func (s *Service) session(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Current()
	s.writeJSON(w, http.StatusOK, sessionResponse{State: st, Phase: st.Phase()})
}

// writeError maps controller errors to HTTP statuses.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, authstate.ErrSignInInProgress):
		status = http.StatusConflict
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, authstate.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, authstate.ErrProfileNotFound),
		errors.Is(err, authstate.ErrProfileInactive),
		errors.Is(err, authstate.ErrNoTenantLinked):
		status = http.StatusForbidden
	case errors.Is(err, authstate.ErrSignInTimeout),
		errors.Is(err, authstate.ErrProfileFetchTimeout),
		errors.Is(err, authstate.ErrSessionCheckTimeout),
		errors.Is(err, authstate.ErrSignOutTimeout):
		status = http.StatusGatewayTimeout
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
