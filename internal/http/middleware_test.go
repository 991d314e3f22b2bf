package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/workspace-booking/internal/application"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	newGuarded := func(validator *sessionValidatorStub) (http.Handler, *application.Principal) {
		var seen application.Principal
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, ok := PrincipalFromContext(r.Context()); ok {
				seen = principal
			}
			w.WriteHeader(http.StatusOK)
		})
		return RequireSession(validator, testLogger())(next), &seen
	}

	t.Run("rejects requests without a token", func(t *testing.T) {
		t.Parallel()
		validator := &sessionValidatorStub{}
		guarded, _ := newGuarded(validator)

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		if len(validator.tokens) != 0 {
			t.Fatalf("expected validator not to be consulted, got %v", validator.tokens)
		}
		if body := decodeErrorBody(t, rec); body.Message != errMissingSessionToken.Error() {
			t.Fatalf("unexpected message %q", body.Message)
		}
	})

	t.Run("injects the validated principal into the request context", func(t *testing.T) {
		t.Parallel()
		validator := &sessionValidatorStub{principal: application.Principal{UserID: "user-ana", IsAdmin: true}}
		guarded, seen := newGuarded(validator)

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.Header.Set("Authorization", "Bearer token-abc")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(validator.tokens) != 1 || validator.tokens[0] != "token-abc" {
			t.Fatalf("expected bearer token forwarded, got %v", validator.tokens)
		}
		if seen.UserID != "user-ana" || !seen.IsAdmin {
			t.Fatalf("expected principal in context, got %+v", *seen)
		}
	})

	t.Run("accepts the session cookie when no header is present", func(t *testing.T) {
		t.Parallel()
		validator := &sessionValidatorStub{principal: application.Principal{UserID: "user-ana"}}
		guarded, _ := newGuarded(validator)

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(validator.tokens) != 1 || validator.tokens[0] != "cookie-token" {
			t.Fatalf("expected cookie token forwarded, got %v", validator.tokens)
		}
	})

	t.Run("maps session error taxonomy to status codes", func(t *testing.T) {
		t.Parallel()

		cases := map[string]struct {
			err  error
			want int
		}{
			"expired session":  {err: application.ErrSessionExpired, want: http.StatusUnauthorized},
			"revoked session":  {err: application.ErrSessionRevoked, want: http.StatusUnauthorized},
			"unknown token":    {err: application.ErrNotFound, want: http.StatusUnauthorized},
			"rejected session": {err: application.ErrUnauthorized, want: http.StatusUnauthorized},
			"storage outage":   {err: application.ErrStorageUnavailable, want: http.StatusServiceUnavailable},
			"unexpected error": {err: errStubFailure, want: http.StatusInternalServerError},
		}

		for name, tc := range cases {
			tc := tc
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				guarded, _ := newGuarded(&sessionValidatorStub{err: tc.err})

				req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
				req.Header.Set("Authorization", "Bearer token-abc")
				rec := httptest.NewRecorder()
				guarded.ServeHTTP(rec, req)

				if rec.Code != tc.want {
					t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
				}
			})
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("places a request scoped logger in the context", func(t *testing.T) {
		t.Parallel()
		var sawLogger bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogger = LoggerFromContext(r.Context()) != nil
			w.WriteHeader(http.StatusNoContent)
		})
		wrapped := RequestLogger(testLogger())(next)

		req := httptest.NewRequest(http.MethodGet, "/areas", nil)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if !sawLogger {
			t.Fatalf("expected logger in request context")
		}
	})
}
