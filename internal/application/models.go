package application

import (
	"time"

	"github.com/example/workspace-booking/internal/booking"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// AreaInput captures caller provided area fields.
type AreaInput struct {
	Name       string
	Location   string
	Category   string
	Capacity   int
	FullDay    bool
	MinMinutes int
	MaxMinutes int
}

// Area represents a bookable space exposed by the application services.
type Area struct {
	ID         string
	Name       string
	Location   string
	Category   booking.Category
	Capacity   int
	FullDay    bool
	MinMinutes int
	MaxMinutes int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateAreaParams wraps the data required to create an area.
type CreateAreaParams struct {
	Principal Principal
	Input     AreaInput
}

// UpdateAreaParams wraps the data required to update an area.
type UpdateAreaParams struct {
	Principal Principal
	AreaID    string
	Input     AreaInput
}

// ReservationStatus tracks a reservation through its lifecycle.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

var statusRank = map[ReservationStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusActive:    2,
	StatusCompleted: 3,
}

// CanTransition reports whether a reservation may move from one status
// to another. Transitions only run forward; cancellation is reachable
// from any non-terminal status and is itself terminal.
func CanTransition(from, to ReservationStatus) bool {
	if from == StatusCancelled || from == StatusCompleted {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// ReservationInput captures caller provided reservation fields. For
// full-day areas StartTime and DurationMinutes are ignored. Seats is
// only honored for shared-pool areas.
type ReservationInput struct {
	AreaID          string
	Date            string
	StartTime       string
	DurationMinutes int
	Seats           int
	CollaboratorIDs []string
	Notes           *string
}

// Reservation represents a persisted booking exposed by the services.
type Reservation struct {
	ID              string
	AreaID          string
	CreatorID       string
	CollaboratorIDs []string
	Date            string
	StartTime       *string
	EndTime         *string
	Seats           int
	Status          ReservationStatus
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateReservationParams wraps the data required to create a reservation.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// ListReservationsParams wraps the data required to list reservations.
type ListReservationsParams struct {
	Principal Principal
	AreaID    string
	Date      string
}

// Policy represents the office policy snapshot exposed to callers.
type Policy struct {
	booking.Policy
	UpdatedAt time.Time
}

// PolicyInput captures administrator supplied policy fields.
type PolicyInput struct {
	OfficeDays               [7]bool
	OfficeHours              booking.HourRange
	BusinessHours            booking.HourRange
	MaxReservationDaysAhead  int
	AllowSameDayReservations bool
	RequireApproval          bool
}

// ReplacePolicyParams wraps the data required to replace the policy.
type ReplacePolicyParams struct {
	Principal Principal
	Input     PolicyInput
}

// RemovedRecord describes one reservation the auditor removed.
type RemovedRecord struct {
	ID         string
	RetainedID string
	AreaID     string
	Date       string
	Reason     string
}

// AuditFailure describes one record the auditor could not fix.
type AuditFailure struct {
	ReservationID string
	Detail        string
}

// AuditReport summarizes one conflict audit pass.
type AuditReport struct {
	StartedAt          time.Time
	FinishedAt         time.Time
	Examined           int
	DuplicatesResolved int
	OverlapsResolved   int
	Removed            []RemovedRecord
	Failures           []AuditFailure
	Clean              bool
}

// User represents an employee account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	User    User
	Session Session
}
