package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// AdminPrincipal returns a principal with the ADMIN role.
func AdminPrincipal() *auth.Principal {
	return &auth.Principal{
		MemberID: primitive.NewObjectID(),
		UID:      "test-admin-uid",
		Nome:     "Test Admin",
		Email:    "admin@test.com",
		Role:     models.RoleAdmin,
	}
}

// MemberPrincipal returns a principal with the MEMBRO role.
func MemberPrincipal() *auth.Principal {
	return &auth.Principal{
		MemberID: primitive.NewObjectID(),
		UID:      "test-member-uid",
		Nome:     "Test Member",
		Email:    "member@test.com",
		Role:     models.RoleMember,
	}
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a principal in context.
func NewAuthenticatedRequest(method, target string, p *auth.Principal) *http.Request {
	return auth.WithPrincipal(httptest.NewRequest(method, target, nil), p)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// DecodeJSON decodes the response body into dst.
func (r *ResponseRecorder) DecodeJSON(t *testing.T, dst any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		t.Fatalf("decode response JSON: %v", err)
	}
}
