package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborline/backend-brokerage/internal/session"
)

func okHandler(captured *session.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := session.FromContext(r.Context()); ok && captured != nil {
			*captured = sess
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireBuildsSessionFromHeaders(t *testing.T) {
	var captured session.Session
	handler := session.Middleware{}.Require(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/workspaces/st-1", nil)
	req.Header.Set(session.HeaderActorID, "user-42")
	req.Header.Set(session.HeaderRole, "Admin")
	req.Header.Set(session.HeaderBranch, "colombo")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured.ActorID != "user-42" {
		t.Fatalf("unexpected actor id %q", captured.ActorID)
	}
	if captured.Role != session.RoleAdmin {
		t.Fatalf("expected admin role, got %q", captured.Role)
	}
	if captured.Branch != "colombo" {
		t.Fatalf("unexpected branch %q", captured.Branch)
	}
}

func TestRequireRejectsMissingActor(t *testing.T) {
	handler := session.Middleware{}.Require(okHandler(nil))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/workspaces/st-1", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireDefaultsUnknownRoleToUser(t *testing.T) {
	var captured session.Session
	handler := session.Middleware{}.Require(okHandler(&captured))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(session.HeaderActorID, "user-1")
	req.Header.Set(session.HeaderRole, "wizard")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if captured.Role != session.RoleUser {
		t.Fatalf("expected fallback to user role, got %q", captured.Role)
	}
}

func TestRequireRoleGate(t *testing.T) {
	protected := session.RequireRole(session.RoleSuperadmin)(okHandler(nil))

	req := httptest.NewRequest(http.MethodDelete, "/workspaces/st-1", nil)
	req = req.WithContext(session.WithSession(req.Context(), session.Session{ActorID: "a", Role: session.RoleAdmin}))
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/workspaces/st-1", nil)
	req = req.WithContext(session.WithSession(req.Context(), session.Session{ActorID: "a", Role: session.RoleSuperadmin}))
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for superadmin, got %d", rr.Code)
	}
}
