package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/workspace-booking/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(":memory:")
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	return pool
}

func seedTestUser(t *testing.T, pool *ConnectionPool, id, email string) {
	t.Helper()
	now := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	err := NewUserRepository(pool).CreateUser(context.Background(), persistence.User{
		ID:           id,
		Email:        email,
		DisplayName:  "User " + id,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
}

func seedTestArea(t *testing.T, pool *ConnectionPool, id, name, category string, capacity int) {
	t.Helper()
	now := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	err := NewAreaRepository(pool).CreateArea(context.Background(), persistence.Area{
		ID:        id,
		Name:      name,
		Location:  "3rd floor",
		Category:  category,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
}

func strPtr(s string) *string {
	return &s
}

func TestBootstrapIsIdempotent(t *testing.T) {
	pool := newTestPool(t)
	if err := pool.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}
}

func TestAreaRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips an area", func(t *testing.T) {
		pool := newTestPool(t)
		seedTestArea(t, pool, "area-1", "Sala Neon", "MEETING_ROOM", 8)

		fetched, err := NewAreaRepository(pool).GetArea(ctx, "area-1")
		if err != nil {
			t.Fatalf("GetArea failed: %v", err)
		}
		if fetched.Name != "Sala Neon" || fetched.Category != "MEETING_ROOM" || fetched.Capacity != 8 {
			t.Fatalf("unexpected area %+v", fetched)
		}
	})

	t.Run("rejects duplicate names case-insensitively", func(t *testing.T) {
		pool := newTestPool(t)
		seedTestArea(t, pool, "area-1", "Sala Neon", "MEETING_ROOM", 8)

		err := NewAreaRepository(pool).CreateArea(ctx, persistence.Area{
			ID: "area-2", Name: "sala neon", Category: "MEETING_ROOM", Capacity: 4,
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		pool := newTestPool(t)
		err := NewAreaRepository(pool).CreateArea(ctx, persistence.Area{
			ID: "area-1", Name: "Sala Neon", Category: "LOUNGE", Capacity: 8,
		})
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("blocks deletion while reservations reference the area", func(t *testing.T) {
		pool := newTestPool(t)
		seedTestUser(t, pool, "user-1", "alice@example.com")
		seedTestArea(t, pool, "area-1", "Sala Neon", "MEETING_ROOM", 8)

		now := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)
		err := NewReservationRepository(pool).CreateReservation(ctx, persistence.Reservation{
			ID: "RES-20251001-100000-ab12", AreaID: "area-1", CreatorID: "user-1",
			Date: "2025-10-01", StartTime: strPtr("10:00"), EndTime: strPtr("11:00"),
			Seats: 8, Status: "confirmed", CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}

		if err := NewAreaRepository(pool).DeleteArea(ctx, "area-1"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})
}

func TestReservationRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*ConnectionPool, *ReservationRepository) {
		pool := newTestPool(t)
		seedTestUser(t, pool, "user-1", "alice@example.com")
		seedTestArea(t, pool, "area-1", "Sala Neon", "MEETING_ROOM", 8)
		return pool, NewReservationRepository(pool)
	}

	base := persistence.Reservation{
		ID: "RES-20251001-100000-ab12", AreaID: "area-1", CreatorID: "user-1",
		Date: "2025-10-01", StartTime: strPtr("10:00"), EndTime: strPtr("11:00"),
		Seats: 8, Status: "confirmed", CreatedAt: now, UpdatedAt: now,
	}

	t.Run("the live-slot index rejects a second identical booking", func(t *testing.T) {
		_, repo := setup(t)
		if err := repo.CreateReservation(ctx, base); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}

		retry := base
		retry.ID = "RES-20251001-100001-cd34"
		if err := repo.CreateReservation(ctx, retry); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("cancelling frees the slot for a rebooking", func(t *testing.T) {
		_, repo := setup(t)
		if err := repo.CreateReservation(ctx, base); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}
		if err := repo.UpdateReservationStatus(ctx, base.ID, "cancelled", now.Add(time.Minute)); err != nil {
			t.Fatalf("UpdateReservationStatus failed: %v", err)
		}

		retry := base
		retry.ID = "RES-20251001-100001-cd34"
		if err := repo.CreateReservation(ctx, retry); err != nil {
			t.Fatalf("expected rebooking to succeed, got %v", err)
		}
	})

	t.Run("full-day reservations round-trip with nil times", func(t *testing.T) {
		_, repo := setup(t)
		fullDay := base
		fullDay.StartTime = nil
		fullDay.EndTime = nil
		if err := repo.CreateReservation(ctx, fullDay); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}

		fetched, err := repo.GetReservation(ctx, fullDay.ID)
		if err != nil {
			t.Fatalf("GetReservation failed: %v", err)
		}
		if fetched.StartTime != nil || fetched.EndTime != nil {
			t.Fatalf("expected nil times, got %+v", fetched)
		}
	})

	t.Run("rejects reservations for unknown areas", func(t *testing.T) {
		_, repo := setup(t)
		orphan := base
		orphan.AreaID = "area-missing"
		if err := repo.CreateReservation(ctx, orphan); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("filters by status list", func(t *testing.T) {
		pool, repo := setup(t)
		seedTestArea(t, pool, "area-2", "Mesas Altas", "HOT_DESK", 20)

		second := base
		second.ID = "RES-20251001-110000-ef56"
		second.AreaID = "area-2"
		second.Status = "cancelled"

		for _, r := range []persistence.Reservation{base, second} {
			if err := repo.CreateReservation(ctx, r); err != nil {
				t.Fatalf("CreateReservation failed: %v", err)
			}
		}

		listed, err := repo.ListReservations(ctx, persistence.ReservationFilter{
			Date:     "2025-10-01",
			Statuses: []string{"pending", "confirmed"},
		})
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		if len(listed) != 1 || listed[0].ID != base.ID {
			t.Fatalf("expected only the confirmed reservation, got %+v", listed)
		}
	})
}

func TestPolicyRepository(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	repo := NewPolicyRepository(pool)

	if _, err := repo.GetPolicy(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before seeding, got %v", err)
	}

	policy := persistence.Policy{
		OfficeDays:         [7]bool{false, true, true, true, true, true, false},
		OfficeHoursStart:   480,
		OfficeHoursEnd:     1080,
		BusinessHoursStart: 540,
		BusinessHoursEnd:   1020,
		MaxDaysAhead:       30,
		AllowSameDay:       true,
		UpdatedAt:          time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.ReplacePolicy(ctx, policy); err != nil {
		t.Fatalf("ReplacePolicy failed: %v", err)
	}

	policy.MaxDaysAhead = 60
	if err := repo.ReplacePolicy(ctx, policy); err != nil {
		t.Fatalf("second ReplacePolicy failed: %v", err)
	}

	fetched, err := repo.GetPolicy(ctx)
	if err != nil {
		t.Fatalf("GetPolicy failed: %v", err)
	}
	if fetched.MaxDaysAhead != 60 || !fetched.OfficeDays[5] || fetched.OfficeDays[6] {
		t.Fatalf("unexpected policy %+v", fetched)
	}
	if fetched.BusinessHoursStart != 540 || fetched.BusinessHoursEnd != 1020 {
		t.Fatalf("unexpected business hours %+v", fetched)
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	seedTestUser(t, pool, "user-1", "alice@example.com")
	repo := NewSessionRepository(pool)

	expires := time.Date(2025, time.September, 2, 9, 0, 0, 0, time.UTC)
	created := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

	if _, err := repo.CreateSession(ctx, persistence.Session{
		ID: "sess-1", UserID: "user-1", Token: "token-1",
		ExpiresAt: expires, CreatedAt: created,
	}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	t.Run("duplicate tokens are rejected", func(t *testing.T) {
		_, err := repo.CreateSession(ctx, persistence.Session{
			ID: "sess-2", UserID: "user-1", Token: "token-1",
			ExpiresAt: expires, CreatedAt: created,
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("revocation round-trips", func(t *testing.T) {
		revokedAt := created.Add(time.Hour)
		if err := repo.RevokeSession(ctx, "token-1", revokedAt); err != nil {
			t.Fatalf("RevokeSession failed: %v", err)
		}
		fetched, err := repo.GetSession(ctx, "token-1")
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if fetched.RevokedAt == nil || !fetched.RevokedAt.Equal(revokedAt) {
			t.Fatalf("expected revocation stamp %v, got %+v", revokedAt, fetched.RevokedAt)
		}
	})

	t.Run("expired sessions are swept", func(t *testing.T) {
		if err := repo.DeleteExpiredSessions(ctx, expires); err != nil {
			t.Fatalf("DeleteExpiredSessions failed: %v", err)
		}
		if _, err := repo.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after sweep, got %v", err)
		}
	})
}
