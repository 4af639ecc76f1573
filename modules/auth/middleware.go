package auth

import (
	"context"
	"net/http"

	"github.com/dentora/dentkit/pkg/authstate"
	"github.com/dentora/dentkit/pkg/profile"
)

type contextKey struct{}

// StateFromContext returns the snapshot injected by RequireAuth.
func StateFromContext(ctx context.Context) (authstate.State, bool) {
	st, ok := ctx.Value(contextKey{}).(authstate.State)
	return st, ok
}

// RequireAuth is the route guard for authenticated pages. Requests arriving
// while the state is still loading are asked to retry rather than bounced to
// sign-in, so a slow bootstrap does not log users out.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := s.ctrl.Current()

		if st.Loading {
			w.Header().Set("Retry-After", "1")
			s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "session state is resolving"})
			return
		}
		if !st.Authenticated() {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, st)))
	})
}

// RequireTenant guards tenant-scoped pages: the identity must have a valid
// active profile linked to a practice. Runs after RequireAuth.
func (s *Service) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, ok := StateFromContext(r.Context())
		if !ok {
			st = s.ctrl.Current()
		}

		if !st.HasTenant() {
			msg := "no tenant linked to this account"
			if st.Error != "" {
				msg = st.Error
			}
			s.writeJSON(w, http.StatusForbidden, errorResponse{Error: msg})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole guards pages restricted to specific practice roles. Runs after
// RequireTenant.
func (s *Service) RequireRole(roles ...profile.Role) func(http.Handler) http.Handler {
	allowed := make(map[profile.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, ok := StateFromContext(r.Context())
			if !ok {
				st = s.ctrl.Current()
			}

			if _, ok := allowed[st.Role]; !ok {
				s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient role"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
