package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ibbtech/memberhub/internal/app/system/identity"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *identity.Firebase {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return identity.NewFirebaseWithClient("test-project", srv.URL, srv.Client(), nil)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func errorBody(code string) map[string]any {
	return map[string]any{"error": map[string]any{"message": code}}
}

func TestFirebase_Register_ReturnsUID(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/projects/test-project/accounts") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["email"] != "joana@example.com" {
			t.Errorf("email: got %v", body["email"])
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"localId": "uid-123"})
	})

	uid, err := p.Register(context.Background(), identity.NewAccount{
		Email:    "joana@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if uid != "uid-123" {
		t.Errorf("uid: got %q", uid)
	}
}

func TestFirebase_Register_EmailExists(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, errorBody("EMAIL_EXISTS"))
	})

	_, err := p.Register(context.Background(), identity.NewAccount{Email: "dup@example.com"})
	if err != identity.ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestFirebase_Register_PhoneExists(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, errorBody("PHONE_NUMBER_EXISTS : the phone is taken"))
	})

	_, err := p.Register(context.Background(), identity.NewAccount{Phone: "+5511988880000"})
	if err != identity.ErrPhoneExists {
		t.Fatalf("expected ErrPhoneExists, got %v", err)
	}
}

func TestFirebase_Update_UserNotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, errorBody("USER_NOT_FOUND"))
	})

	err := p.Update(context.Background(), "gone", identity.AccountUpdate{Email: "x@example.com"})
	if err != identity.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFirebase_SetClaims_SendsCustomAttributes(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		attrs, _ := body["customAttributes"].(string)
		if !strings.Contains(attrs, `"role":"ADMIN"`) {
			t.Errorf("customAttributes: got %q", attrs)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"localId": "uid-123"})
	})

	err := p.SetClaims(context.Background(), "uid-123", map[string]any{"role": "ADMIN"})
	if err != nil {
		t.Fatalf("SetClaims failed: %v", err)
	}
}

func TestFirebase_FindByEmail(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"users": []map[string]any{{
				"localId":     "uid-9",
				"email":       "joana@example.com",
				"displayName": "Joana Silva",
				"providerUserInfo": []map[string]any{
					{"providerId": "google.com"},
					{"providerId": "password"},
				},
			}},
		})
	})

	acc, err := p.FindByEmail(context.Background(), "joana@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if acc.UID != "uid-9" {
		t.Errorf("uid: got %q", acc.UID)
	}
	if len(acc.ProviderIDs) != 2 {
		t.Errorf("provider ids: got %v", acc.ProviderIDs)
	}
}

func TestFirebase_FindByEmail_Empty(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{})
	})

	_, err := p.FindByEmail(context.Background(), "missing@example.com")
	if err != identity.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFirebase_PasswordResetLink(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["requestType"] != "PASSWORD_RESET" {
			t.Errorf("requestType: got %v", body["requestType"])
		}
		if body["returnOobLink"] != true {
			t.Error("expected returnOobLink true")
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"oobLink": "https://reset.example.com/x"})
	})

	link, err := p.PasswordResetLink(context.Background(), "joana@example.com")
	if err != nil {
		t.Fatalf("PasswordResetLink failed: %v", err)
	}
	if link != "https://reset.example.com/x" {
		t.Errorf("link: got %q", link)
	}
}

func TestFirebase_VerifyToken(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"users": []map[string]any{{"localId": "uid-7", "email": "m@example.com"}},
		})
	})

	uid, email, err := p.VerifyToken(context.Background(), "token")
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if uid != "uid-7" || email != "m@example.com" {
		t.Errorf("got uid %q email %q", uid, email)
	}
}

func TestFirebase_VerifyToken_Invalid(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, errorBody("INVALID_ID_TOKEN"))
	})

	_, _, err := p.VerifyToken(context.Background(), "bad")
	if err != identity.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
