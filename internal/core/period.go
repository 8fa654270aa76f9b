package core

import (
	"errors"
	"time"
)

// Granularity is the unit of a report window.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// ErrInvalidGranularity is returned for time range values outside
// day/week/month/year.
var ErrInvalidGranularity = errors.New("invalid time range")

// ParseGranularity validates a raw timeRange query value.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Day, Week, Month, Year:
		return Granularity(s), nil
	}
	return "", ErrInvalidGranularity
}

// Window is an inclusive [Start, End] report period. It is derived fresh
// from a reference instant on every request and never persisted.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ComputeWindow returns the window of the given granularity containing ref.
// Weeks start on Monday. The end is the last representable millisecond of
// the period (23:59:59.999), so Contains holds for any instant of the
// period's final day.
func ComputeWindow(ref time.Time, g Granularity) Window {
	loc := ref.Location()
	switch g {
	case Day:
		start := startOfDay(ref)
		return Window{Start: start, End: endOf(start.AddDate(0, 0, 1))}
	case Week:
		// Monday-based offset: Monday=0 ... Sunday=6
		offset := (int(ref.Weekday()) + 6) % 7
		start := startOfDay(ref).AddDate(0, 0, -offset)
		return Window{Start: start, End: endOf(start.AddDate(0, 0, 7))}
	case Year:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: endOf(start.AddDate(1, 0, 0))}
	default: // Month, also the fallback for requests without a timeRange
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: endOf(start.AddDate(0, 1, 0))}
	}
}

// CustomWindow builds a window from caller-supplied dates, bypassing
// granularity entirely. Both bounds are widened to full-day boundaries.
func CustomWindow(start, end time.Time) Window {
	s := startOfDay(start)
	return Window{Start: s, End: endOf(startOfDay(end).AddDate(0, 0, 1))}
}

// Shift moves the reference instant by delta units of the granularity
// (delta -1 for "previous", +1 for "next"). The granularity itself never
// changes; callers recompute the window from the shifted reference.
func Shift(ref time.Time, g Granularity, delta int) time.Time {
	switch g {
	case Day:
		return ref.AddDate(0, 0, delta)
	case Week:
		return ref.AddDate(0, 0, 7*delta)
	case Year:
		return ref.AddDate(delta, 0, 0)
	default:
		return ref.AddDate(0, delta, 0)
	}
}

// Label renders the human-readable name of the window containing ref:
// full weekday and date for a day, "Jan 2 - Jan 8, 2006" for a week,
// "January 2006" for a month, and the bare year.
func Label(ref time.Time, g Granularity) string {
	switch g {
	case Day:
		return ref.Format("Monday, January 2, 2006")
	case Week:
		w := ComputeWindow(ref, Week)
		return w.Start.Format("Jan 2") + " - " + w.End.Format("Jan 2, 2006")
	case Year:
		return ref.Format("2006")
	default:
		return ref.Format("January 2006")
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOf turns the exclusive start of the next period into the inclusive
// end of the current one.
func endOf(nextStart time.Time) time.Time {
	return nextStart.Add(-time.Millisecond)
}
