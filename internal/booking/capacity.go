package booking

// Category classifies how an area accounts for occupancy.
type Category string

const (
	// CategoryMeetingRoom areas are exclusive-interval: one reservation
	// occupies the whole area for its time range.
	CategoryMeetingRoom Category = "MEETING_ROOM"
	// CategoryHotDesk areas are shared-pool: reservations coexist as long as
	// the summed seat count stays within the area capacity.
	CategoryHotDesk Category = "HOT_DESK"
)

// Valid reports whether the category is one of the known kinds.
func (c Category) Valid() bool {
	return c == CategoryMeetingRoom || c == CategoryHotDesk
}

// Interval is a half-open [StartMin, EndMin) time range in minutes since
// local midnight.
type Interval struct {
	StartMin int
	EndMin   int
}

// FullDay is the interval occupied by a reservation without a time range.
var FullDay = Interval{StartMin: 0, EndMin: MinutesPerDay}

// Overlaps implements the half-open overlap test: [a1,a2) and [b1,b2) conflict
// iff a1 < b2 && b1 < a2. Touching endpoints do not conflict.
func (i Interval) Overlaps(other Interval) bool {
	return i.StartMin < other.EndMin && other.StartMin < i.EndMin
}

// Valid reports whether the interval is non-empty and lies within one day.
func (i Interval) Valid() bool {
	return 0 <= i.StartMin && i.StartMin < i.EndMin && i.EndMin <= MinutesPerDay
}

// Minutes returns the interval length.
func (i Interval) Minutes() int {
	return i.EndMin - i.StartMin
}

// Occupancy is one existing non-cancelled reservation on the area and date
// under evaluation. Callers filter out cancelled reservations and the
// candidate itself before building the slice.
type Occupancy struct {
	Window Interval
	Seats  int
}

// FitsExclusive reports whether the candidate window can join the existing
// occupancy of an exclusive-interval area without overlapping any entry.
func FitsExclusive(candidate Interval, existing []Occupancy) bool {
	for _, occ := range existing {
		if candidate.Overlaps(occ.Window) {
			return false
		}
	}
	return true
}

// SeatsInWindow sums the seats of existing occupancy co-occurring with the
// window. For full-day areas every entry carries FullDay and the sum covers
// the whole date.
func SeatsInWindow(window Interval, existing []Occupancy) int {
	total := 0
	for _, occ := range existing {
		if window.Overlaps(occ.Window) {
			total += occ.Seats
		}
	}
	return total
}

// FitsShared reports whether a shared-pool area can absorb seats more
// occupants in the window without exceeding capacity.
func FitsShared(window Interval, seats, capacity int, existing []Occupancy) bool {
	return SeatsInWindow(window, existing)+seats <= capacity
}

// CheckCapacity runs the category-appropriate occupancy check for a candidate
// reservation. It reports acceptance, or the single rejection reason. The
// capacity model is the only authority on occupancy: request-time checking,
// the conflict auditor, and any reporting views all funnel through it so
// display and enforcement cannot disagree.
func CheckCapacity(category Category, window Interval, seats, capacity int, existing []Occupancy) (ReasonCode, bool) {
	switch category {
	case CategoryMeetingRoom:
		if !FitsExclusive(window, existing) {
			return ReasonTimeConflict, false
		}
	default:
		if !FitsShared(window, seats, capacity, existing) {
			return ReasonCapacityExceeded, false
		}
	}
	return "", true
}
