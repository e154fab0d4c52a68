// internal/domain/faults/faults.go
package faults

// Tagged error kinds for the service boundary. Handlers map kinds to
// transport status codes; nothing in the core switches on error message
// text.

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the boundary layer.
type Kind int

const (
	// KindUnknown is an unclassified internal failure.
	KindUnknown Kind = iota
	// KindValidation rejects bad input before any persistence.
	KindValidation
	// KindConflict signals duplicate email or an already-accepted invite.
	KindConflict
	// KindNotFound signals an id that does not resolve.
	KindNotFound
	// KindProvider signals a failed identity/notification/blob call.
	KindProvider
)

// Error carries a kind plus a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

// Conflict builds a KindConflict error.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }

// NotFound builds a KindNotFound error.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// Provider wraps an external collaborator failure.
func Provider(msg string, err error) *Error {
	return &Error{Kind: KindProvider, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
