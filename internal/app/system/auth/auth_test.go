package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

type fakeVerifier struct {
	uid   string
	email string
	err   error
}

func (f fakeVerifier) VerifyToken(_ context.Context, _ string) (string, string, error) {
	return f.uid, f.email, f.err
}

type fakeLookup struct {
	members map[string]*models.Member
}

func (f fakeLookup) GetByProviderUID(_ context.Context, uid string) (*models.Member, error) {
	m, ok := f.members[uid]
	if !ok {
		return nil, errors.New("member not found")
	}
	return m, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken_InjectsPrincipal(t *testing.T) {
	memberID := primitive.NewObjectID()
	lookup := fakeLookup{members: map[string]*models.Member{
		"uid-1": {ID: memberID, Nome: "Joana Silva", Role: models.RoleAdmin},
	}}
	verifier := fakeVerifier{uid: "uid-1", email: "joana@example.com"}

	var got *auth.Principal
	handler := auth.Authenticate(verifier, lookup, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentPrincipal(r)
	}))

	req := httptest.NewRequest("GET", "/api/members", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected principal in context")
	}
	if got.MemberID != memberID {
		t.Errorf("MemberID: got %v, want %v", got.MemberID, memberID)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleAdmin)
	}
	if got.Email != "joana@example.com" {
		t.Errorf("Email: got %q", got.Email)
	}
}

func TestAuthenticate_NoHeader_PassesThroughUnauthenticated(t *testing.T) {
	handler := auth.Authenticate(fakeVerifier{}, fakeLookup{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentPrincipal(r); ok {
			t.Error("expected no principal")
		}
	}))

	req := httptest.NewRequest("GET", "/api/members", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAuthenticate_BadToken_PassesThroughUnauthenticated(t *testing.T) {
	verifier := fakeVerifier{err: errors.New("token expired")}
	handler := auth.Authenticate(verifier, fakeLookup{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentPrincipal(r); ok {
			t.Error("expected no principal for rejected token")
		}
	}))

	req := httptest.NewRequest("GET", "/api/members", nil)
	req.Header.Set("Authorization", "Bearer expired")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireSignedIn_NoPrincipal_Returns401(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/members", nil)
	rec := httptest.NewRecorder()

	auth.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_WithPrincipal_Passes(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/members", nil)
	req = auth.WithPrincipal(req, &auth.Principal{Role: models.RoleMember})
	rec := httptest.NewRecorder()

	auth.RequireSignedIn(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_WrongRole_Returns403(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/members/x", nil)
	req = auth.WithPrincipal(req, &auth.Principal{Role: models.RoleMember})
	rec := httptest.NewRecorder()

	auth.RequireRole(models.RoleAdmin)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_NoPrincipal_Returns401(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/members/x", nil)
	rec := httptest.NewRecorder()

	auth.RequireRole(models.RoleAdmin)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireRole_AllowedRole_Passes(t *testing.T) {
	req := httptest.NewRequest("DELETE", "/api/members/x", nil)
	req = auth.WithPrincipal(req, &auth.Principal{Role: models.RoleAdmin})
	rec := httptest.NewRecorder()

	auth.RequireRole(models.RoleAdmin)(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
