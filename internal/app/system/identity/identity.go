// Package identity talks to the external authentication provider that
// owns credentials and login identities. The local member document only
// keeps uid back-references; everything credential-shaped lives behind
// this interface.
package identity

import (
	"context"
	"errors"
)

// Sentinel errors for provider outcomes callers branch on. Adapters must
// map provider-specific failures onto these; callers never inspect
// provider message strings.
var (
	// ErrEmailExists is returned when the email is already registered.
	ErrEmailExists = errors.New("email already registered with identity provider")
	// ErrPhoneExists is returned when the phone number is already registered.
	ErrPhoneExists = errors.New("phone number already registered with identity provider")
	// ErrUserNotFound is returned when no identity matches.
	ErrUserNotFound = errors.New("identity not found")
	// ErrInvalidToken is returned when a presented token fails verification.
	ErrInvalidToken = errors.New("invalid identity token")
)

// Account is the provider-side identity record.
type Account struct {
	UID         string
	Email       string
	Phone       string
	DisplayName string
	ProviderIDs []string
}

// NewAccount carries the fields for registering an identity.
type NewAccount struct {
	Email       string
	Phone       string
	Password    string
	DisplayName string
}

// AccountUpdate carries the mutable identity fields. Empty fields are
// left unchanged.
type AccountUpdate struct {
	Email       string
	Phone       string
	Password    string
	DisplayName string
}

// Provider is the full admin surface against the identity provider.
type Provider interface {
	// Register creates a new identity and returns its uid.
	Register(ctx context.Context, acc NewAccount) (string, error)
	// Update patches an existing identity.
	Update(ctx context.Context, uid string, upd AccountUpdate) error
	// SetClaims sets the role claims attached to the identity's tokens.
	SetClaims(ctx context.Context, uid string, claims map[string]any) error
	// Delete removes the identity. Deleting an absent identity returns
	// ErrUserNotFound.
	Delete(ctx context.Context, uid string) error
	// FindByEmail looks up an identity by email.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// PasswordResetLink generates a password reset link for the email.
	PasswordResetLink(ctx context.Context, email string) (string, error)
	// VerifyToken validates an ID token and returns the uid and email it
	// asserts.
	VerifyToken(ctx context.Context, token string) (uid, email string, err error)
}
