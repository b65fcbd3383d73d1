package session

import (
	"net/http"
	"strings"

	"github.com/harborline/backend-brokerage/internal/common"
)

// Header names populated by the fronting gateway.
const (
	HeaderActorID = "X-Actor-Id"
	HeaderRole    = "X-Actor-Role"
	HeaderBranch  = "X-Branch"
)

// Middleware resolves the actor session from gateway headers and rejects
// requests without one.
type Middleware struct{}

// Require builds the session and stores it on the request context.
func (Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := strings.TrimSpace(r.Header.Get(HeaderActorID))
		if actorID == "" {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session required", nil)
			return
		}
		role, ok := ParseRole(r.Header.Get(HeaderRole))
		if !ok {
			role = RoleUser
		}
		sess := Session{
			ActorID: actorID,
			Role:    role,
			Branch:  strings.TrimSpace(r.Header.Get(HeaderBranch)),
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireRole gates a route on a minimum actor role.
func RequireRole(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := FromContext(r.Context())
			if !ok {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session required", nil)
				return
			}
			if !sess.Role.AtLeast(min) {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
