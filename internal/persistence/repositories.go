package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// AreaRepository exposes CRUD operations for bookable areas.
type AreaRepository interface {
	CreateArea(ctx context.Context, area Area) error
	UpdateArea(ctx context.Context, area Area) error
	GetArea(ctx context.Context, id string) (Area, error)
	ListAreas(ctx context.Context) ([]Area, error)
	DeleteArea(ctx context.Context, id string) error
	AreaHasReservations(ctx context.Context, areaID string) (bool, error)
}

// ReservationFilter narrows reservation queries. Zero-value fields are
// ignored; Statuses empty means any status.
type ReservationFilter struct {
	AreaID    string
	CreatorID string
	Date      string
	Statuses  []string
}

// ReservationRepository stores bookings.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	DeleteReservation(ctx context.Context, id string) error
}

// PolicyRepository stores the single office policy row.
type PolicyRepository interface {
	GetPolicy(ctx context.Context) (Policy, error)
	ReplacePolicy(ctx context.Context, policy Policy) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
