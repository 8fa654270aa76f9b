package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeWindowDay(t *testing.T) {
	ref := time.Date(2023, time.May, 15, 14, 30, 12, 0, time.UTC)
	w := ComputeWindow(ref, Day)
	if !w.Start.Equal(date(2023, time.May, 15)) {
		t.Fatalf("start = %v", w.Start)
	}
	want := time.Date(2023, time.May, 15, 23, 59, 59, 999_000_000, time.UTC)
	if !w.End.Equal(want) {
		t.Fatalf("end = %v, want %v", w.End, want)
	}
	if !w.Contains(ref) {
		t.Fatalf("window should contain its reference")
	}
}

func TestComputeWindowWeekStartsMonday(t *testing.T) {
	cases := []struct {
		ref       time.Time
		wantStart time.Time
	}{
		// 2023-05-15 is a Monday
		{date(2023, time.May, 15), date(2023, time.May, 15)},
		{date(2023, time.May, 17), date(2023, time.May, 15)}, // Wednesday
		{date(2023, time.May, 21), date(2023, time.May, 15)}, // Sunday
		{date(2023, time.May, 22), date(2023, time.May, 22)}, // next Monday
	}
	for i, tc := range cases {
		w := ComputeWindow(tc.ref, Week)
		if !w.Start.Equal(tc.wantStart) {
			t.Fatalf("case %d: start = %v, want %v", i, w.Start, tc.wantStart)
		}
		if w.Start.Weekday() != time.Monday {
			t.Fatalf("case %d: start weekday = %v", i, w.Start.Weekday())
		}
		if w.End.Weekday() != time.Sunday {
			t.Fatalf("case %d: end weekday = %v", i, w.End.Weekday())
		}
		if !w.Contains(tc.ref) {
			t.Fatalf("case %d: window should contain reference", i)
		}
	}
}

func TestComputeWindowMonthAndYear(t *testing.T) {
	ref := time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC)

	m := ComputeWindow(ref, Month)
	if !m.Start.Equal(date(2024, time.February, 1)) {
		t.Fatalf("month start = %v", m.Start)
	}
	// 2024 is a leap year
	wantEnd := time.Date(2024, time.February, 29, 23, 59, 59, 999_000_000, time.UTC)
	if !m.End.Equal(wantEnd) {
		t.Fatalf("month end = %v, want %v", m.End, wantEnd)
	}

	y := ComputeWindow(ref, Year)
	if !y.Start.Equal(date(2024, time.January, 1)) {
		t.Fatalf("year start = %v", y.Start)
	}
	wantEnd = time.Date(2024, time.December, 31, 23, 59, 59, 999_000_000, time.UTC)
	if !y.End.Equal(wantEnd) {
		t.Fatalf("year end = %v, want %v", y.End, wantEnd)
	}
}

func TestCustomWindowWidensToDayBounds(t *testing.T) {
	start := time.Date(2023, time.May, 3, 10, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.May, 20, 15, 45, 0, 0, time.UTC)
	w := CustomWindow(start, end)
	if !w.Start.Equal(date(2023, time.May, 3)) {
		t.Fatalf("start = %v", w.Start)
	}
	want := time.Date(2023, time.May, 20, 23, 59, 59, 999_000_000, time.UTC)
	if !w.End.Equal(want) {
		t.Fatalf("end = %v, want %v", w.End, want)
	}
}

func TestShift(t *testing.T) {
	ref := date(2023, time.May, 15)
	cases := []struct {
		g     Granularity
		delta int
		want  time.Time
	}{
		{Day, 1, date(2023, time.May, 16)},
		{Day, -1, date(2023, time.May, 14)},
		{Week, 1, date(2023, time.May, 22)},
		{Week, -1, date(2023, time.May, 8)},
		{Month, 1, date(2023, time.June, 15)},
		{Month, -1, date(2023, time.April, 15)},
		{Year, 1, date(2024, time.May, 15)},
		{Year, -1, date(2022, time.May, 15)},
	}
	for i, tc := range cases {
		if got := Shift(ref, tc.g, tc.delta); !got.Equal(tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestShiftThenComputeKeepsGranularity(t *testing.T) {
	// Navigating from a week window lands on the adjacent week window.
	ref := date(2023, time.May, 17)
	prev := ComputeWindow(Shift(ref, Week, -1), Week)
	cur := ComputeWindow(ref, Week)
	if !prev.End.Before(cur.Start) {
		t.Fatalf("previous window %v should end before current starts %v", prev.End, cur.Start)
	}
	if got := cur.Start.Sub(prev.Start); got != 7*24*time.Hour {
		t.Fatalf("weeks should be 7 days apart, got %v", got)
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		ref  time.Time
		g    Granularity
		want string
	}{
		{date(2023, time.May, 15), Day, "Monday, May 15, 2023"},
		{date(2023, time.May, 17), Week, "May 15 - May 21, 2023"},
		{date(2023, time.May, 17), Month, "May 2023"},
		{date(2023, time.May, 17), Year, "2023"},
	}
	for i, tc := range cases {
		if got := Label(tc.ref, tc.g); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"day", "week", "month", "year"} {
		if _, err := ParseGranularity(s); err != nil {
			t.Fatalf("%q: unexpected error %v", s, err)
		}
	}
	if _, err := ParseGranularity("quarter"); err == nil {
		t.Fatalf("expected error for unknown granularity")
	}
}
