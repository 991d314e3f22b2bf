package application

import (
	"fmt"
	"testing"

	"github.com/example/workspace-booking/internal/booking"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_Add(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}
}

func TestRejectionError_Error(t *testing.T) {
	t.Parallel()

	bare := reject(booking.ReasonInPast, "")
	if got := bare.Error(); got != "reservation rejected: IN_PAST" {
		t.Fatalf("unexpected message %q", got)
	}

	detailed := reject(booking.ReasonInvalidFormat, "malformed date")
	if got := detailed.Error(); got != "reservation rejected: INVALID_FORMAT (malformed date)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":                 {err: nil, want: ""},
		"unauthorized":        {err: ErrUnauthorized, want: "unauthorized"},
		"not found":           {err: ErrNotFound, want: "not_found"},
		"already exists":      {err: ErrAlreadyExists, want: "already_exists"},
		"invalid credentials": {err: ErrInvalidCredentials, want: "invalid_credentials"},
		"session expired":     {err: ErrSessionExpired, want: "session_expired"},
		"session revoked":     {err: ErrSessionRevoked, want: "session_revoked"},
		"storage unavailable": {err: ErrStorageUnavailable, want: "storage_unavailable"},
		"rejection":           {err: reject(booking.ReasonTimeConflict, ""), want: "rejected"},
		"validation":          {err: &ValidationError{FieldErrors: map[string]string{"f": "bad"}}, want: "validation"},
		"wrapped sentinel":    {err: fmt.Errorf("outer: %w", ErrNotFound), want: "not_found"},
		"unexpected":          {err: fmt.Errorf("boom"), want: "unexpected"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
