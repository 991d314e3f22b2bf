package application

import (
	"errors"
	"fmt"

	"github.com/example/workspace-booking/internal/booking"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a resource collides with an existing one.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when login or session material is wrong.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token has passed its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrStorageUnavailable is returned when the storage backend cannot
	// evaluate a request. It is never folded into a rejection reason so
	// callers can tell "your request was refused" from "the system could
	// not decide".
	ErrStorageUnavailable = errors.New("application: storage unavailable")
)

// RejectionError is the user-facing outcome of a reservation request
// that was evaluated and refused. It carries exactly one reason code.
type RejectionError struct {
	Reason booking.ReasonCode
	Detail string
}

// Error implements the error interface.
func (r *RejectionError) Error() string {
	if r == nil {
		return ""
	}
	if r.Detail == "" {
		return fmt.Sprintf("reservation rejected: %s", r.Reason)
	}
	return fmt.Sprintf("reservation rejected: %s (%s)", r.Reason, r.Detail)
}

func reject(reason booking.ReasonCode, detail string) *RejectionError {
	return &RejectionError{Reason: reason, Detail: detail}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
