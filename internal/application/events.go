package application

import (
	"context"
	"time"
)

// Event kinds published at the notification boundary.
const (
	EventReservationAccepted  = "reservation.accepted"
	EventReservationCancelled = "reservation.cancelled"
	EventAuditRemoved         = "audit.removed"
)

// ReservationEvent is the payload handed to the notification boundary
// when a reservation changes state.
type ReservationEvent struct {
	Kind          string
	ReservationID string
	AreaID        string
	Date          string
	CreatorID     string
	Seats         int
	OccurredAt    time.Time
}

// EventPublisher delivers reservation events to interested consumers.
// Publishing is best-effort; services log failures and move on.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, event ReservationEvent) error
}
