package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for user supplied dates and times of day.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// MinutesPerDay bounds every time-of-day value handled by the core.
const MinutesPerDay = 24 * 60

// ErrInvalidFormat is returned when a caller supplied date or time string does
// not match DateLayout or ClockLayout.
var ErrInvalidFormat = errors.New("booking: invalid date or time format")

// Calendar converts between local wall-clock dates and instants for the single
// fixed timezone the platform operates in. All date comparisons in the core go
// through normalized local-date strings produced here; raw instants are never
// compared directly, because two instants can normalize to the same local date
// and a date string passed through a timezone-aware constructor can shift by a
// day.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a calendar pinned to the provided location. A nil
// location falls back to UTC.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Location exposes the fixed operating timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// ToInstant converts a local calendar date, optionally qualified with a time
// of day, into the corresponding instant. An empty clock means local midnight.
func (c *Calendar) ToInstant(date, clock string) (time.Time, error) {
	day, err := c.parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if clock == "" {
		return day, nil
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	// Built from civil components, not midnight plus an offset: adding a
	// duration to midnight lands on the wrong wall clock when the date
	// crosses a DST transition.
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, c.loc), nil
}

// LocalDate renders the instant as a local calendar date. It is the inverse of
// ToInstant with an empty clock: LocalDate(ToInstant(d, "")) == d for every
// valid d.
func (c *Calendar) LocalDate(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// LocalClock renders the instant's local time of day.
func (c *Calendar) LocalClock(t time.Time) string {
	return t.In(c.loc).Format(ClockLayout)
}

// DayOfWeek reports the weekday of a local calendar date. The weekday comes
// from the civil date itself, never from an instant that may have crossed a
// day boundary during conversion.
func (c *Calendar) DayOfWeek(date string) (time.Weekday, error) {
	day, err := c.parseDate(date)
	if err != nil {
		return time.Sunday, err
	}
	return day.Weekday(), nil
}

// IsInPast reports whether the local date/time lies strictly before now. An
// empty clock compares civil dates only, so "today" with no time of day is
// not in the past even late in the day.
func (c *Calendar) IsInPast(now time.Time, date, clock string) (bool, error) {
	if clock == "" {
		days, err := c.DaysUntil(now, date)
		if err != nil {
			return false, err
		}
		return days < 0, nil
	}
	instant, err := c.ToInstant(date, clock)
	if err != nil {
		return false, err
	}
	return instant.Before(now), nil
}

// DaysUntil computes the civil-date distance from now's local date to the
// target date. Today yields zero; past dates yield negative values. The
// rounding absorbs DST transitions where a local day is not 24 hours.
func (c *Calendar) DaysUntil(now time.Time, date string) (int, error) {
	target, err := c.parseDate(date)
	if err != nil {
		return 0, err
	}
	today, err := c.parseDate(c.LocalDate(now))
	if err != nil {
		return 0, err
	}
	hours := target.Sub(today).Hours()
	if hours >= 0 {
		return int(hours/24 + 0.5), nil
	}
	return int(hours/24 - 0.5), nil
}

func (c *Calendar) parseDate(date string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidFormat, date)
	}
	return parsed, nil
}

// NormalizeDate reduces a date string that may carry a time-of-day suffix
// ("2025-10-01T09:00:00Z", "2025-10-01 09:00") to its bare local-date form and
// validates it. Dates from different sources must always be normalized before
// being compared.
func NormalizeDate(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if cut := strings.IndexAny(trimmed, "T "); cut >= 0 {
		trimmed = trimmed[:cut]
	}
	parsed, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: date %q", ErrInvalidFormat, value)
	}
	return parsed.Format(DateLayout), nil
}

// ParseClock converts an "HH:MM" string into minutes since local midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q", ErrInvalidFormat, value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
