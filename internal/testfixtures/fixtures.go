// Package testfixtures provides deterministic builders for test data
// shared across packages: users, areas, reservations, sessions, and the
// office policy, plus controllable clocks and identifier generators.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/workspace-booking/internal/application"
	"github.com/example/workspace-booking/internal/booking"
	"github.com/example/workspace-booking/internal/persistence"
)

var (
	userCounter        uint64
	areaCounter        uint64
	reservationCounter uint64
	sessionCounter     uint64
)

// referenceTime is a Monday morning inside the default office hours so
// fixtures land on a bookable slot without extra setup.
var referenceTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be
// materialised for either layer.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption mutates a UserFixture during construction.
type UserOption func(*UserFixture)

// NewUserFixture constructs a user fixture with sensible defaults.
func NewUserFixture(opts ...UserOption) UserFixture {
	n := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		ID:           fmt.Sprintf("user-%d", n),
		Email:        fmt.Sprintf("user%d@example.com", n),
		DisplayName:  fmt.Sprintf("User %d", n),
		PasswordHash: "hash",
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the fixture identifier.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

// WithUserEmail overrides the fixture email.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

// WithUserPasswordHash overrides the stored password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) { f.PasswordHash = hash }
}

// WithUserAdmin toggles the administrator flag.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) { f.IsAdmin = isAdmin }
}

// Persistence materialises the fixture as a storage record.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Application materialises the fixture as a service-layer user.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials materialises the fixture as a credential-store record.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal materialises the fixture as an acting principal.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// ----------------------------- Area fixtures -----------------------------

// AreaFixture represents a deterministic bookable area.
type AreaFixture struct {
	ID         string
	Name       string
	Location   string
	Category   string
	Capacity   int
	FullDay    bool
	MinMinutes int
	MaxMinutes int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AreaOption mutates an AreaFixture during construction.
type AreaOption func(*AreaFixture)

// NewAreaFixture constructs a meeting room fixture by default.
func NewAreaFixture(opts ...AreaOption) AreaFixture {
	n := atomic.AddUint64(&areaCounter, 1)
	fixture := AreaFixture{
		ID:        fmt.Sprintf("area-%d", n),
		Name:      fmt.Sprintf("Area %d", n),
		Location:  "2nd floor",
		Category:  string(booking.CategoryMeetingRoom),
		Capacity:  8,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAreaID overrides the fixture identifier.
func WithAreaID(id string) AreaOption {
	return func(f *AreaFixture) { f.ID = id }
}

// WithAreaName overrides the fixture name.
func WithAreaName(name string) AreaOption {
	return func(f *AreaFixture) { f.Name = name }
}

// WithAreaCategory overrides the fixture category.
func WithAreaCategory(category string) AreaOption {
	return func(f *AreaFixture) { f.Category = category }
}

// WithAreaCapacity overrides the seat capacity.
func WithAreaCapacity(capacity int) AreaOption {
	return func(f *AreaFixture) { f.Capacity = capacity }
}

// WithAreaFullDay marks the area as bookable per calendar day only.
func WithAreaFullDay() AreaOption {
	return func(f *AreaFixture) { f.FullDay = true }
}

// WithAreaDurationBounds sets the per-reservation duration limits.
func WithAreaDurationBounds(minMinutes, maxMinutes int) AreaOption {
	return func(f *AreaFixture) {
		f.MinMinutes = minMinutes
		f.MaxMinutes = maxMinutes
	}
}

// Persistence materialises the fixture as a storage record.
func (f AreaFixture) Persistence() persistence.Area {
	return persistence.Area{
		ID:         f.ID,
		Name:       f.Name,
		Location:   f.Location,
		Category:   f.Category,
		Capacity:   f.Capacity,
		FullDay:    f.FullDay,
		MinMinutes: f.MinMinutes,
		MaxMinutes: f.MaxMinutes,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Application materialises the fixture as a service-layer area.
func (f AreaFixture) Application() application.Area {
	return application.Area{
		ID:         f.ID,
		Name:       f.Name,
		Location:   f.Location,
		Category:   booking.Category(f.Category),
		Capacity:   f.Capacity,
		FullDay:    f.FullDay,
		MinMinutes: f.MinMinutes,
		MaxMinutes: f.MaxMinutes,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic booking.
type ReservationFixture struct {
	ID            string
	AreaID        string
	CreatorID     string
	Collaborators []string
	Date          string
	StartTime     *string
	EndTime       *string
	Seats         int
	Status        string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReservationOption mutates a ReservationFixture during construction.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture constructs a confirmed one-hour booking for the
// day after the reference time.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	n := atomic.AddUint64(&reservationCounter, 1)
	start := "10:00"
	end := "11:00"
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("RES-20260302-09000%d-0000", n%10),
		AreaID:    "area-1",
		CreatorID: "user-1",
		Date:      "2026-03-03",
		StartTime: &start,
		EndTime:   &end,
		Seats:     1,
		Status:    string(application.StatusConfirmed),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the fixture identifier.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) { f.ID = id }
}

// WithReservationArea overrides the target area.
func WithReservationArea(areaID string) ReservationOption {
	return func(f *ReservationFixture) { f.AreaID = areaID }
}

// WithReservationCreator overrides the creator.
func WithReservationCreator(userID string) ReservationOption {
	return func(f *ReservationFixture) { f.CreatorID = userID }
}

// WithReservationDate overrides the reservation date.
func WithReservationDate(date string) ReservationOption {
	return func(f *ReservationFixture) { f.Date = date }
}

// WithReservationWindow sets the start and end times.
func WithReservationWindow(start, end string) ReservationOption {
	return func(f *ReservationFixture) {
		f.StartTime = &start
		f.EndTime = &end
	}
}

// WithReservationFullDay clears the start and end times.
func WithReservationFullDay() ReservationOption {
	return func(f *ReservationFixture) {
		f.StartTime = nil
		f.EndTime = nil
	}
}

// WithReservationSeats overrides the seat count.
func WithReservationSeats(seats int) ReservationOption {
	return func(f *ReservationFixture) { f.Seats = seats }
}

// WithReservationStatus overrides the lifecycle status.
func WithReservationStatus(status string) ReservationOption {
	return func(f *ReservationFixture) { f.Status = status }
}

// Persistence materialises the fixture as a storage record.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:            f.ID,
		AreaID:        f.AreaID,
		CreatorID:     f.CreatorID,
		Collaborators: append([]string(nil), f.Collaborators...),
		Date:          f.Date,
		StartTime:     cloneString(f.StartTime),
		EndTime:       cloneString(f.EndTime),
		Seats:         f.Seats,
		Status:        f.Status,
		Notes:         cloneString(f.Notes),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Application materialises the fixture as a service-layer reservation.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:              f.ID,
		AreaID:          f.AreaID,
		CreatorID:       f.CreatorID,
		CollaboratorIDs: append([]string(nil), f.Collaborators...),
		Date:            f.Date,
		StartTime:       cloneString(f.StartTime),
		EndTime:         cloneString(f.EndTime),
		Seats:           f.Seats,
		Status:          application.ReservationStatus(f.Status),
		Notes:           cloneString(f.Notes),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic authentication session.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption mutates a SessionFixture during construction.
type SessionOption func(*SessionFixture)

// NewSessionFixture constructs a session valid for one hour past the
// reference time.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	n := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%d", n),
		UserID:    "user-1",
		Token:     fmt.Sprintf("token-%d", n),
		ExpiresAt: referenceTime.Add(time.Hour),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser overrides the session owner.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) { f.UserID = userID }
}

// WithSessionToken overrides the session token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

// WithSessionExpiry overrides the expiry instant.
func WithSessionExpiry(expiresAt time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = expiresAt }
}

// WithSessionRevokedAt marks the session as revoked.
func WithSessionRevokedAt(revokedAt time.Time) SessionOption {
	return func(f *SessionFixture) { f.RevokedAt = &revokedAt }
}

// Persistence materialises the fixture as a storage record.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: cloneTime(f.RevokedAt),
	}
}

// Application materialises the fixture as a service-layer session.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: cloneTime(f.RevokedAt),
	}
}

// ----------------------------- Policy fixtures -----------------------------

// DefaultPersistencePolicy returns the storage form of the default
// office policy, stamped with the reference time.
func DefaultPersistencePolicy() persistence.Policy {
	p := booking.DefaultPolicy()
	return persistence.Policy{
		OfficeDays:         p.OfficeDays,
		OfficeHoursStart:   p.OfficeHours.Start,
		OfficeHoursEnd:     p.OfficeHours.End,
		BusinessHoursStart: p.BusinessHours.Start,
		BusinessHoursEnd:   p.BusinessHours.End,
		MaxDaysAhead:       p.MaxReservationDaysAhead,
		AllowSameDay:       p.AllowSameDayReservations,
		RequireApproval:    p.RequireApproval,
		UpdatedAt:          referenceTime,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
