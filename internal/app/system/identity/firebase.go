package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultEndpoint is the Identity Toolkit v1 REST endpoint.
	DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

	identityScope = "https://www.googleapis.com/auth/identitytoolkit"
)

// Firebase is a Provider backed by the Identity Toolkit REST API using a
// service-account credential.
type Firebase struct {
	httpClient *http.Client
	endpoint   string
	projectID  string
	log        *zap.Logger
}

// NewFirebase builds a Firebase provider from service-account JSON
// credentials. logger may be nil.
func NewFirebase(ctx context.Context, projectID string, credentialsJSON []byte, logger *zap.Logger) (*Firebase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conf, err := google.JWTConfigFromJSON(credentialsJSON, identityScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	client := conf.Client(ctx)
	client.Timeout = 15 * time.Second

	return &Firebase{
		httpClient: client,
		endpoint:   DefaultEndpoint,
		projectID:  projectID,
		log:        logger,
	}, nil
}

// NewFirebaseWithClient builds a Firebase provider with an explicit HTTP
// client and endpoint. Used by tests and by environments that supply
// their own authenticated transport.
func NewFirebaseWithClient(projectID, endpoint string, client *http.Client, logger *zap.Logger) *Firebase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Firebase{
		httpClient: client,
		endpoint:   strings.TrimRight(endpoint, "/"),
		projectID:  projectID,
		log:        logger,
	}
}

func (f *Firebase) Register(ctx context.Context, acc NewAccount) (string, error) {
	body := map[string]any{}
	if acc.Email != "" {
		body["email"] = acc.Email
	}
	if acc.Phone != "" {
		body["phoneNumber"] = acc.Phone
	}
	if acc.Password != "" {
		body["password"] = acc.Password
	}
	if acc.DisplayName != "" {
		body["displayName"] = acc.DisplayName
	}

	var resp struct {
		LocalID string `json:"localId"`
	}
	if err := f.post(ctx, f.projectURL("accounts"), body, &resp); err != nil {
		return "", err
	}
	return resp.LocalID, nil
}

func (f *Firebase) Update(ctx context.Context, uid string, upd AccountUpdate) error {
	body := map[string]any{"localId": uid}
	if upd.Email != "" {
		body["email"] = upd.Email
	}
	if upd.Phone != "" {
		body["phoneNumber"] = upd.Phone
	}
	if upd.Password != "" {
		body["password"] = upd.Password
	}
	if upd.DisplayName != "" {
		body["displayName"] = upd.DisplayName
	}
	return f.post(ctx, f.projectURL("accounts:update"), body, nil)
}

func (f *Firebase) SetClaims(ctx context.Context, uid string, claims map[string]any) error {
	raw, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("marshal claims: %w", err)
	}
	body := map[string]any{
		"localId":          uid,
		"customAttributes": string(raw),
	}
	return f.post(ctx, f.projectURL("accounts:update"), body, nil)
}

func (f *Firebase) Delete(ctx context.Context, uid string) error {
	return f.post(ctx, f.projectURL("accounts:delete"), map[string]any{"localId": uid}, nil)
}

func (f *Firebase) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var resp struct {
		Users []struct {
			LocalID      string `json:"localId"`
			Email        string `json:"email"`
			PhoneNumber  string `json:"phoneNumber"`
			DisplayName  string `json:"displayName"`
			ProviderInfo []struct {
				ProviderID string `json:"providerId"`
			} `json:"providerUserInfo"`
		} `json:"users"`
	}
	err := f.post(ctx, f.projectURL("accounts:lookup"), map[string]any{"email": []string{email}}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, ErrUserNotFound
	}
	u := resp.Users[0]
	acc := &Account{
		UID:         u.LocalID,
		Email:       u.Email,
		Phone:       u.PhoneNumber,
		DisplayName: u.DisplayName,
	}
	for _, p := range u.ProviderInfo {
		acc.ProviderIDs = append(acc.ProviderIDs, p.ProviderID)
	}
	return acc, nil
}

func (f *Firebase) PasswordResetLink(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"requestType":   "PASSWORD_RESET",
		"email":         email,
		"returnOobLink": true,
	}
	var resp struct {
		OOBLink string `json:"oobLink"`
	}
	if err := f.post(ctx, f.projectURL("accounts:sendOobCode"), body, &resp); err != nil {
		return "", err
	}
	return resp.OOBLink, nil
}

func (f *Firebase) VerifyToken(ctx context.Context, token string) (string, string, error) {
	var resp struct {
		Users []struct {
			LocalID string `json:"localId"`
			Email   string `json:"email"`
		} `json:"users"`
	}
	err := f.post(ctx, f.endpoint+"/accounts:lookup", map[string]any{"idToken": token}, &resp)
	if err != nil {
		return "", "", err
	}
	if len(resp.Users) == 0 {
		return "", "", ErrInvalidToken
	}
	return resp.Users[0].LocalID, resp.Users[0].Email, nil
}

func (f *Firebase) projectURL(op string) string {
	return fmt.Sprintf("%s/projects/%s/%s", f.endpoint, f.projectID, op)
}

// post issues one JSON call and decodes the response into out when it is
// non-nil. Provider error codes are mapped onto the package sentinels.
func (f *Firebase) post(ctx context.Context, url string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read identity provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return f.mapError(resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode identity provider response: %w", err)
		}
	}
	return nil
}

// mapError translates the provider's error payload into sentinel errors.
func (f *Firebase) mapError(status int, data []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(data, &payload)
	code := payload.Error.Message

	// Codes carry optional suffixes like "EMAIL_EXISTS : detail".
	switch {
	case strings.HasPrefix(code, "EMAIL_EXISTS"), strings.HasPrefix(code, "DUPLICATE_EMAIL"):
		return ErrEmailExists
	case strings.HasPrefix(code, "PHONE_NUMBER_EXISTS"), strings.HasPrefix(code, "DUPLICATE_PHONE"):
		return ErrPhoneExists
	case strings.HasPrefix(code, "USER_NOT_FOUND"), strings.HasPrefix(code, "EMAIL_NOT_FOUND"):
		return ErrUserNotFound
	case strings.HasPrefix(code, "INVALID_ID_TOKEN"), strings.HasPrefix(code, "TOKEN_EXPIRED"):
		return ErrInvalidToken
	}

	f.log.Warn("unmapped identity provider error",
		zap.Int("status", status),
		zap.String("code", code))
	return fmt.Errorf("identity provider error: status %d code %q", status, code)
}
