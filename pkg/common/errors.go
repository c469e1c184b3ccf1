package common

import (
	"errors"
	"fmt"
)

// Kind classifies a client error.
type Kind string

const (
	// KindValidation marks bad input detected before any request was sent.
	KindValidation Kind = "validation"
	// KindRemote marks a non-2xx response from the backend.
	KindRemote Kind = "remote"
	// KindConflict marks state that already changed server-side, e.g. a ride
	// claimed by another driver.
	KindConflict Kind = "conflict"
	// KindNetwork marks a request that could not complete at all.
	KindNetwork Kind = "network"
)

// AppError is the normalized error every store method rejects with. Message
// is always human-readable; Status is the HTTP status for remote errors.
type AppError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports bad input; never preceded by a network call.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewRemoteError reports a non-2xx response. message should carry the server
// payload when present, else a generic description.
func NewRemoteError(status int, message string, err error) *AppError {
	return &AppError{Kind: KindRemote, Status: status, Message: message, Err: err}
}

// NewConflictError reports server-side state that moved under us.
func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Status: 409, Message: message, Err: err}
}

// NewNetworkError reports a request that never completed.
func NewNetworkError(message string, err error) *AppError {
	return &AppError{Kind: KindNetwork, Message: message, Err: err}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsNetwork reports whether err is a network error.
func IsNetwork(err error) bool { return IsKind(err, KindNetwork) }

// Message extracts the human-readable message from any error, preferring the
// normalized AppError message when available.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
