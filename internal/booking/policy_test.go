package booking

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	for d := time.Monday; d <= time.Friday; d++ {
		if !policy.IsOfficeDay(d) {
			t.Fatalf("expected %v to be an office day", d)
		}
	}
	for _, d := range []time.Weekday{time.Saturday, time.Sunday} {
		if policy.IsOfficeDay(d) {
			t.Fatalf("expected %v to be closed", d)
		}
	}
	if !policy.OfficeHours.Valid() || !policy.BusinessHours.Valid() {
		t.Fatalf("expected default hour ranges to be valid, got %+v", policy)
	}
	if policy.RequireApproval {
		t.Fatalf("expected approval to be off by default")
	}
}

func TestHourRange_Contains(t *testing.T) {
	window := HourRange{Start: 8 * 60, End: 18 * 60}

	cases := map[string]struct {
		start    int
		duration int
		want     bool
	}{
		"inside":                 {start: 9 * 60, duration: 60, want: true},
		"exactly filling":        {start: 8 * 60, duration: 10 * 60, want: true},
		"ending past close":      {start: 17 * 60, duration: 90, want: false},
		"starting before open":   {start: 7 * 60, duration: 60, want: false},
		"point inside":           {start: 12 * 60, duration: 0, want: true},
		"point at close":         {start: 18 * 60, duration: 0, want: false},
		"point at open":          {start: 8 * 60, duration: 0, want: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := window.Contains(tc.start, tc.duration); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestPolicy_ReservationWindowValid(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxReservationDaysAhead = 14

	t.Run("accepts dates inside the window", func(t *testing.T) {
		for _, days := range []int{0, 1, 14} {
			if !policy.ReservationWindowValid(days) {
				t.Fatalf("expected %d days ahead to be valid", days)
			}
		}
	})

	t.Run("rejects dates past the horizon", func(t *testing.T) {
		if policy.ReservationWindowValid(15) {
			t.Fatalf("expected 15 days ahead to be rejected")
		}
	})

	t.Run("rejects past dates", func(t *testing.T) {
		if policy.ReservationWindowValid(-1) {
			t.Fatalf("expected negative distance to be rejected")
		}
	})

	t.Run("rejects same day when disallowed", func(t *testing.T) {
		policy := policy
		policy.AllowSameDayReservations = false
		if policy.ReservationWindowValid(0) {
			t.Fatalf("expected same-day reservation to be rejected")
		}
		if !policy.ReservationWindowValid(1) {
			t.Fatalf("expected next-day reservation to remain valid")
		}
	})
}
