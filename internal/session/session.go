// Package session replaces the ambient, read-everywhere session state of the
// original workstation client with an explicit object injected per request.
// Identity is established by the fronting gateway and forwarded in trusted
// headers; this service never verifies credentials itself.
package session

import (
	"context"
	"strings"
)

// Role identifies the actor type operating the workstation.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether the role is one of the known actor types.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// AtLeast reports whether the role carries the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return rank(r) >= rank(min)
}

func rank(r Role) int {
	switch r {
	case RoleUser:
		return 0
	case RoleAdmin:
		return 1
	case RoleSuperadmin:
		return 2
	default:
		return -1
	}
}

// Session carries the actor identity for one request.
type Session struct {
	ActorID string
	Role    Role
	Branch  string
}

type sessionKey struct{}

// WithSession stores the session on the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext extracts the session from the context if present.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// ParseRole normalises a raw role header value.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}
