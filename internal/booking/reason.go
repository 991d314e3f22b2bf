package booking

// ReasonCode identifies why a reservation request was rejected. Every
// rejection carries exactly one code; infrastructure failures are never
// expressed as a ReasonCode.
type ReasonCode string

const (
	// ReasonInvalidFormat indicates a malformed date, time, or seat count.
	ReasonInvalidFormat ReasonCode = "INVALID_FORMAT"
	// ReasonInPast indicates the requested slot has already started.
	ReasonInPast ReasonCode = "IN_PAST"
	// ReasonWindowExceeded indicates the date falls outside the allowed
	// reservation window (too far ahead, or same-day when disallowed).
	ReasonWindowExceeded ReasonCode = "WINDOW_EXCEEDED"
	// ReasonNotOfficeDay indicates the facility is closed on that weekday.
	ReasonNotOfficeDay ReasonCode = "NOT_OFFICE_DAY"
	// ReasonOutsideBusinessHours indicates the slot falls outside the hours
	// during which reservations may be placed.
	ReasonOutsideBusinessHours ReasonCode = "OUTSIDE_BUSINESS_HOURS"
	// ReasonDurationOutOfBounds indicates the duration violates the area's
	// minimum or maximum reservation length.
	ReasonDurationOutOfBounds ReasonCode = "DURATION_OUT_OF_BOUNDS"
	// ReasonCapacityExceeded indicates the shared seat pool cannot absorb the
	// requested seats.
	ReasonCapacityExceeded ReasonCode = "CAPACITY_EXCEEDED"
	// ReasonTimeConflict indicates an exclusive-interval area is already
	// booked for an overlapping time range.
	ReasonTimeConflict ReasonCode = "TIME_CONFLICT"
)
