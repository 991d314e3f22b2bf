package booking

import (
	"errors"
	"testing"
	"time"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	return loc
}

func TestCalendar_ToInstant(t *testing.T) {
	cal := NewCalendar(saoPaulo(t))

	t.Run("converts a bare date to local midnight", func(t *testing.T) {
		instant, err := cal.ToInstant("2025-10-01", "")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got := instant.In(cal.Location()).Hour(); got != 0 {
			t.Fatalf("expected local midnight, got hour %d", got)
		}
		if got := cal.LocalDate(instant); got != "2025-10-01" {
			t.Fatalf("expected local date preserved, got %q", got)
		}
	})

	t.Run("applies the time of day when present", func(t *testing.T) {
		instant, err := cal.ToInstant("2025-10-01", "10:30")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		local := instant.In(cal.Location())
		if local.Hour() != 10 || local.Minute() != 30 {
			t.Fatalf("expected 10:30 local, got %02d:%02d", local.Hour(), local.Minute())
		}
	})

	t.Run("keeps the wall clock across a DST transition", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Fatalf("failed to load location: %v", err)
		}
		dst := NewCalendar(loc)

		// 2026-03-08 springs forward in New York; 10:00 must stay 10:00.
		instant, err := dst.ToInstant("2026-03-08", "10:00")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got := dst.LocalClock(instant); got != "10:00" {
			t.Fatalf("expected local clock 10:00, got %q", got)
		}
		if got := dst.LocalDate(instant); got != "2026-03-08" {
			t.Fatalf("expected local date preserved, got %q", got)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		cases := map[string]struct {
			date  string
			clock string
		}{
			"empty date":       {date: "", clock: ""},
			"unpadded date":    {date: "2025-1-2", clock: ""},
			"slash date":       {date: "01/10/2025", clock: ""},
			"date with suffix": {date: "2025-10-01T09:00", clock: ""},
			"bad clock":        {date: "2025-10-01", clock: "9h30"},
			"overflow clock":   {date: "2025-10-01", clock: "25:00"},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				if _, err := cal.ToInstant(tc.date, tc.clock); !errors.Is(err, ErrInvalidFormat) {
					t.Fatalf("expected ErrInvalidFormat, got %v", err)
				}
			})
		}
	})
}

func TestCalendar_RoundTrip(t *testing.T) {
	// A date string must never shift by a day when passed through timezone
	// conversion. The sweep crosses month, year, leap-day, and the Brazilian
	// DST boundaries that historically triggered the off-by-one weekday.
	cal := NewCalendar(saoPaulo(t))

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 730; i++ {
		date := start.AddDate(0, 0, i).Format(DateLayout)
		instant, err := cal.ToInstant(date, "")
		if err != nil {
			t.Fatalf("ToInstant(%q) failed: %v", date, err)
		}
		if got := cal.LocalDate(instant); got != date {
			t.Fatalf("round trip shifted %q to %q", date, got)
		}
	}
}

func TestCalendar_DayOfWeek(t *testing.T) {
	cal := NewCalendar(saoPaulo(t))

	cases := map[string]struct {
		date string
		want time.Weekday
	}{
		"a wednesday": {date: "2025-10-01", want: time.Wednesday},
		"a monday":    {date: "2025-10-06", want: time.Monday},
		"a sunday":    {date: "2025-10-05", want: time.Sunday},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := cal.DayOfWeek(tc.date)
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	t.Run("rejects malformed dates", func(t *testing.T) {
		if _, err := cal.DayOfWeek("01-10-2025"); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat, got %v", err)
		}
	})
}

func TestCalendar_IsInPast(t *testing.T) {
	cal := NewCalendar(saoPaulo(t))
	now, err := cal.ToInstant("2025-10-01", "12:00")
	if err != nil {
		t.Fatalf("failed to build reference instant: %v", err)
	}

	cases := map[string]struct {
		date  string
		clock string
		want  bool
	}{
		"earlier today":        {date: "2025-10-01", clock: "09:00", want: true},
		"later today":          {date: "2025-10-01", clock: "15:00", want: false},
		"yesterday":            {date: "2025-09-30", clock: "", want: true},
		"tomorrow":             {date: "2025-10-02", clock: "", want: false},
		"today without a time": {date: "2025-10-01", clock: "", want: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := cal.IsInPast(now, tc.date, tc.clock)
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCalendar_DaysUntil(t *testing.T) {
	cal := NewCalendar(saoPaulo(t))
	now, err := cal.ToInstant("2025-10-01", "08:00")
	if err != nil {
		t.Fatalf("failed to build reference instant: %v", err)
	}

	cases := map[string]struct {
		date string
		want int
	}{
		"today":      {date: "2025-10-01", want: 0},
		"tomorrow":   {date: "2025-10-02", want: 1},
		"next month": {date: "2025-11-01", want: 31},
		"yesterday":  {date: "2025-09-30", want: -1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := cal.DaysUntil(now, tc.date)
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"bare date":          {input: "2025-10-01", want: "2025-10-01"},
		"rfc3339 suffix":     {input: "2025-10-01T09:00:00-03:00", want: "2025-10-01"},
		"space suffix":       {input: "2025-10-01 09:00", want: "2025-10-01"},
		"padded whitespace":  {input: "  2025-10-01  ", want: "2025-10-01"},
		"unpadded components": {input: "2025-10-1", wantErr: true},
		"malformed":          {input: "2025/10/01", wantErr: true},
		"empty":              {input: "", wantErr: true},
		"suffix only garbage": {input: "T09:00", wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := NormalizeDate(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFormat) {
					t.Fatalf("expected ErrInvalidFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}

	t.Run("suffixed and bare forms compare equal after normalization", func(t *testing.T) {
		a, err := NormalizeDate("2025-10-01T23:59:59Z")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		b, err := NormalizeDate("2025-10-01")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if a != b {
			t.Fatalf("expected equal normalized dates, got %q and %q", a, b)
		}
	})
}

func TestParseClock(t *testing.T) {
	t.Run("parses minutes since midnight", func(t *testing.T) {
		got, err := ParseClock("10:30")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got != 630 {
			t.Fatalf("expected 630, got %d", got)
		}
	})

	t.Run("round trips through FormatClock", func(t *testing.T) {
		for _, clock := range []string{"00:00", "08:05", "13:30", "23:59"} {
			minutes, err := ParseClock(clock)
			if err != nil {
				t.Fatalf("ParseClock(%q) failed: %v", clock, err)
			}
			if got := FormatClock(minutes); got != clock {
				t.Fatalf("expected %q, got %q", clock, got)
			}
		}
	})
}
