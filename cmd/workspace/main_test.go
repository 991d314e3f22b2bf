package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/testfixtures"
)

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory DSN selects the volatile store", func(t *testing.T) {
		repos, err := openStorage(ctx, "memory", logger)
		if err != nil {
			t.Fatalf("expected open to succeed, got %v", err)
		}
		defer func() { _ = repos.close() }()

		user := testfixtures.NewUserFixture(testfixtures.WithUserID("user-mem")).Persistence()
		if err := repos.users.CreateUser(ctx, user); err != nil {
			t.Fatalf("expected create to succeed, got %v", err)
		}
		stored, err := repos.users.GetUser(ctx, "user-mem")
		if err != nil {
			t.Fatalf("expected lookup to succeed, got %v", err)
		}
		if stored.Email != user.Email {
			t.Fatalf("expected email %q, got %q", user.Email, stored.Email)
		}
	})

	t.Run("file DSN bootstraps a SQLite database", func(t *testing.T) {
		dsn := "file:" + filepath.Join(t.TempDir(), "booking.db") + "?_foreign_keys=on"
		repos, err := openStorage(ctx, dsn, logger)
		if err != nil {
			t.Fatalf("expected open to succeed, got %v", err)
		}
		defer func() { _ = repos.close() }()

		if _, err := repos.users.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected not found on empty database, got %v", err)
		}
	})
}

func TestSeedAdmin(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	counter := 0
	idGenerator := func() string {
		counter++
		return testfixtures.ReferenceTime().Format("20060102") + "-admin"
	}
	now := func() time.Time { return testfixtures.ReferenceTime() }

	t.Run("creates the administrator account when absent", func(t *testing.T) {
		if err := seedAdmin(ctx, harness.Users, "admin@example.com", "change-me", idGenerator, now); err != nil {
			t.Fatalf("expected seed to succeed, got %v", err)
		}

		stored, err := harness.Users.GetUserByEmail(ctx, "admin@example.com")
		if err != nil {
			t.Fatalf("expected seeded admin to exist, got %v", err)
		}
		if !stored.IsAdmin {
			t.Fatalf("expected seeded account to be an administrator")
		}
		if err := application.VerifyPassword(stored.PasswordHash, "change-me"); err != nil {
			t.Fatalf("expected seeded password to verify, got %v", err)
		}
		if err := application.VerifyPassword(stored.PasswordHash, "wrong"); err == nil {
			t.Fatalf("expected wrong password to fail verification")
		}
	})

	t.Run("is idempotent when the account already exists", func(t *testing.T) {
		before := counter
		if err := seedAdmin(ctx, harness.Users, "admin@example.com", "change-me", idGenerator, now); err != nil {
			t.Fatalf("expected repeated seed to succeed, got %v", err)
		}
		if counter != before {
			t.Fatalf("expected no new account to be created, generator ran %d more times", counter-before)
		}
	})
}

func TestAreaRepositoryAdapter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	adapter := newAreaRepositoryAdapter(harness.Areas)
	ctx := context.Background()

	area := testfixtures.NewAreaFixture(
		testfixtures.WithAreaID("area-meet"),
		testfixtures.WithAreaName("Sala Jacarandá"),
		testfixtures.WithAreaCapacity(10),
	).Application()

	created, err := adapter.CreateArea(ctx, area)
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if created.ID != "area-meet" {
		t.Fatalf("expected created area to keep its ID, got %q", created.ID)
	}

	fetched, err := adapter.GetArea(ctx, "area-meet")
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if fetched.Category != booking.CategoryMeetingRoom {
		t.Fatalf("expected meeting room category, got %q", fetched.Category)
	}
	if fetched.Capacity != 10 {
		t.Fatalf("expected capacity 10, got %d", fetched.Capacity)
	}

	listed, err := adapter.ListAreas(ctx)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 area, got %d", len(listed))
	}

	if _, err := adapter.GetArea(ctx, "area-missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected not found for unknown area, got %v", err)
	}
}

func TestReservationRepositoryAdapter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	adapter := newReservationRepositoryAdapter(harness.Reservations)
	ctx := context.Background()

	if err := harness.Users.CreateUser(ctx, testfixtures.NewUserFixture(testfixtures.WithUserID("user-1")).Persistence()); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := harness.Areas.CreateArea(ctx, testfixtures.NewAreaFixture(testfixtures.WithAreaID("area-1")).Persistence()); err != nil {
		t.Fatalf("failed to seed area: %v", err)
	}

	reservation := testfixtures.NewReservationFixture(
		testfixtures.WithReservationID("RES-20260303-100000-ab12"),
		testfixtures.WithReservationArea("area-1"),
		testfixtures.WithReservationCreator("user-1"),
	).Application()

	if _, err := adapter.CreateReservation(ctx, reservation); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}

	listed, err := adapter.ListReservations(ctx, application.ReservationQuery{
		AreaID:   "area-1",
		Date:     reservation.Date,
		Statuses: []application.ReservationStatus{application.StatusConfirmed},
	})
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(listed) != 1 || listed[0].ID != reservation.ID {
		t.Fatalf("expected the stored reservation back, got %v", listed)
	}

	updatedAt := testfixtures.ReferenceTime().Add(time.Hour)
	if err := adapter.UpdateReservationStatus(ctx, reservation.ID, application.StatusCancelled, updatedAt); err != nil {
		t.Fatalf("expected status update to succeed, got %v", err)
	}

	listed, err = adapter.ListReservations(ctx, application.ReservationQuery{
		AreaID:   "area-1",
		Statuses: []application.ReservationStatus{application.StatusConfirmed},
	})
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected cancelled reservation to be excluded, got %d rows", len(listed))
	}

	if err := adapter.DeleteReservation(ctx, reservation.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, err := adapter.GetReservation(ctx, reservation.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSessionRepositoryAdapter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	adapter := newSessionRepositoryAdapter(harness.Sessions, "test-secret")
	ctx := context.Background()

	if err := harness.Users.CreateUser(ctx, testfixtures.NewUserFixture(testfixtures.WithUserID("user-1")).Persistence()); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	session := testfixtures.NewSessionFixture(
		testfixtures.WithSessionUser("user-1"),
		testfixtures.WithSessionToken("token-raw"),
	).Application()

	created, err := adapter.CreateSession(ctx, session)
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if created.Token != "token-raw" {
		t.Fatalf("expected the raw token back, got %q", created.Token)
	}

	t.Run("stores only the token digest", func(t *testing.T) {
		if _, err := harness.Sessions.GetSession(ctx, "token-raw"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected raw token to be absent from storage, got %v", err)
		}
		stored, err := harness.Sessions.GetSession(ctx, adapter.digest("token-raw"))
		if err != nil {
			t.Fatalf("expected digested lookup to succeed, got %v", err)
		}
		if stored.UserID != "user-1" {
			t.Fatalf("expected session for user-1, got %q", stored.UserID)
		}
	})

	t.Run("resolves the raw token transparently", func(t *testing.T) {
		fetched, err := adapter.GetSession(ctx, "token-raw")
		if err != nil {
			t.Fatalf("expected lookup to succeed, got %v", err)
		}
		if fetched.Token != "token-raw" || fetched.UserID != "user-1" {
			t.Fatalf("unexpected session %+v", fetched)
		}
	})

	t.Run("translates unknown tokens for the auth service", func(t *testing.T) {
		if _, err := adapter.GetSession(ctx, "token-unknown"); !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected application not found, got %v", err)
		}
	})

	t.Run("revokes by raw token", func(t *testing.T) {
		if err := adapter.RevokeSession(ctx, "token-raw", testfixtures.ReferenceTime()); err != nil {
			t.Fatalf("expected revoke to succeed, got %v", err)
		}
		revoked, err := adapter.GetSession(ctx, "token-raw")
		if err != nil {
			t.Fatalf("expected lookup to succeed, got %v", err)
		}
		if revoked.RevokedAt == nil {
			t.Fatalf("expected revocation timestamp to be set")
		}
	})
}

func TestPolicyRepositoryAdapter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	adapter := newPolicyRepositoryAdapter(harness.Policies)
	ctx := context.Background()

	policy := application.Policy{
		Policy:    booking.DefaultPolicy(),
		UpdatedAt: testfixtures.ReferenceTime(),
	}
	policy.MaxReservationDaysAhead = 14
	policy.AllowSameDayReservations = false

	if err := adapter.ReplacePolicy(ctx, policy); err != nil {
		t.Fatalf("expected replace to succeed, got %v", err)
	}

	stored, err := adapter.GetPolicy(ctx)
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if stored.MaxReservationDaysAhead != 14 {
		t.Fatalf("expected horizon 14, got %d", stored.MaxReservationDaysAhead)
	}
	if stored.AllowSameDayReservations {
		t.Fatalf("expected same-day reservations to be disabled")
	}
	if stored.OfficeHours != policy.OfficeHours {
		t.Fatalf("expected office hours %v, got %v", policy.OfficeHours, stored.OfficeHours)
	}
	if !stored.OfficeDays[time.Monday] || stored.OfficeDays[time.Sunday] {
		t.Fatalf("unexpected office days %v", stored.OfficeDays)
	}
}

func TestRandomSuffix(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		suffix := randomSuffix()
		if len(suffix) != 4 {
			t.Fatalf("expected 4-character suffix, got %q", suffix)
		}
		for _, r := range suffix {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				t.Fatalf("expected hex characters, got %q", suffix)
			}
		}
		seen[suffix] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected varying suffixes, got %v", seen)
	}
}
