package persistence

import "time"

// User represents an employee account in the booking platform.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Area represents a bookable space catalog entry. Category is either
// "MEETING_ROOM" or "HOT_DESK". FullDay areas are booked per calendar
// day and ignore reservation times.
type Area struct {
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

// Reservation represents a stored booking. StartTime and EndTime are
// "HH:MM" strings in the office timezone; both nil means a full-day
// reservation.
type Reservation struct {
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

// Policy represents the single office policy row. OfficeDays holds one
// flag per weekday starting at Sunday. Hour fields are minutes from
// local midnight.
type Policy struct {
	OfficeDays         [7]bool
	OfficeHoursStart   int
	OfficeHoursEnd     int
	BusinessHoursStart int
	BusinessHoursEnd   int
	MaxDaysAhead       int
	AllowSameDay       bool
	RequireApproval    bool
	UpdatedAt          time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
