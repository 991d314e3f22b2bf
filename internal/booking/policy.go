package booking

import "time"

// HourRange is a half-open window of minutes since local midnight.
type HourRange struct {
	Start int
	End   int
}

// Contains reports whether [startMin, startMin+durationMin) fits inside the
// range. A zero duration degenerates to a point-in-window check.
func (r HourRange) Contains(startMin, durationMin int) bool {
	if durationMin <= 0 {
		return startMin >= r.Start && startMin < r.End
	}
	return startMin >= r.Start && startMin+durationMin <= r.End
}

// Valid reports whether the range describes a non-empty window within a day.
func (r HourRange) Valid() bool {
	return 0 <= r.Start && r.Start < r.End && r.End <= MinutesPerDay
}

// Policy is the administrator-configured rule set consulted on every
// availability check. It is an immutable snapshot value: updates produce a new
// Policy, and a request evaluates against the snapshot it was handed, so the
// rules cannot change mid-evaluation.
type Policy struct {
	// OfficeDays marks which weekdays the facility is open, indexed by
	// time.Weekday.
	OfficeDays [7]bool
	// OfficeHours is the window during which the facility is staffed.
	OfficeHours HourRange
	// BusinessHours is the window in which reservations may be placed. It may
	// differ from OfficeHours.
	BusinessHours HourRange
	// MaxReservationDaysAhead bounds how far into the future a reservation
	// may be placed.
	MaxReservationDaysAhead int
	// AllowSameDayReservations permits reservations for the current date.
	AllowSameDayReservations bool
	// RequireApproval makes accepted reservations start as pending instead of
	// confirmed.
	RequireApproval bool
}

// DefaultPolicy reflects the configuration a fresh installation starts with:
// Monday through Friday, 08:00-18:00, bookable up to 30 days ahead.
func DefaultPolicy() Policy {
	var days [7]bool
	for d := time.Monday; d <= time.Friday; d++ {
		days[d] = true
	}
	return Policy{
		OfficeDays:               days,
		OfficeHours:              HourRange{Start: 8 * 60, End: 18 * 60},
		BusinessHours:            HourRange{Start: 8 * 60, End: 18 * 60},
		MaxReservationDaysAhead:  30,
		AllowSameDayReservations: true,
		RequireApproval:          false,
	}
}

// IsOfficeDay reports whether the facility is open on the given weekday.
func (p Policy) IsOfficeDay(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return p.OfficeDays[day]
}

// IsWithinBusinessHours reports whether the proposed slot falls entirely
// inside the bookable window.
func (p Policy) IsWithinBusinessHours(startMin, durationMin int) bool {
	return p.BusinessHours.Contains(startMin, durationMin)
}

// ReservationWindowValid reports whether a date daysAhead civil days from
// today may be booked under this policy. Negative distances (past dates) are
// always invalid; the in-past check rejects them earlier with a more specific
// reason.
func (p Policy) ReservationWindowValid(daysAhead int) bool {
	if daysAhead < 0 {
		return false
	}
	if daysAhead == 0 && !p.AllowSameDayReservations {
		return false
	}
	return daysAhead <= p.MaxReservationDaysAhead
}
