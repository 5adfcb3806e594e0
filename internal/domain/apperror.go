package domain

import "fmt"

// ErrKind classifies an AppError.
type ErrKind int

const (
	// ErrKindTransport a network or connectivity failure.
	ErrKindTransport ErrKind = iota
	// ErrKindAPI a failure reported by or while talking to the exchange API.
	ErrKindAPI
	// ErrKindAuthentication a login/logout or credential persistence failure.
	ErrKindAuthentication
	// ErrKindNotAuthenticated an account operation attempted without credentials.
	ErrKindNotAuthenticated
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindTransport:
		return "transport error"
	case ErrKindAPI:
		return "api error"
	case ErrKindAuthentication:
		return "authentication error"
	case ErrKindNotAuthenticated:
		return "not authenticated"
	default:
		return "unknown"
	}
}

// AppError is the unified error surfaced to consumers. Lower-level errors
// are mapped into this type at the session boundary.
type AppError struct {
	Kind ErrKind
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAPIError wraps an exchange client error.
func NewAPIError(err error) *AppError {
	return &AppError{Kind: ErrKindAPI, Err: err}
}

// NewAuthenticationError wraps a credential or state transition failure.
func NewAuthenticationError(err error) *AppError {
	return &AppError{Kind: ErrKindAuthentication, Err: err}
}

// ErrNotAuthenticated returns the error for account operations made without
// installed credentials.
func ErrNotAuthenticated() *AppError {
	return &AppError{Kind: ErrKindNotAuthenticated}
}
