package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// parseWindow resolves the report window of a request. Explicit
// startDate/endDate win over timeRange; otherwise the window is derived
// from the granularity (default month) and the reference date (default
// today).
func parseWindow(r *http.Request) (core.Window, core.Granularity, error) {
	q := r.URL.Query()

	startRaw := strings.TrimSpace(q.Get("startDate"))
	endRaw := strings.TrimSpace(q.Get("endDate"))
	if startRaw != "" || endRaw != "" {
		if startRaw == "" || endRaw == "" {
			return core.Window{}, "", fmt.Errorf("startDate and endDate must be provided together")
		}
		start, err := time.Parse(dateLayout, startRaw)
		if err != nil {
			return core.Window{}, "", fmt.Errorf("invalid startDate %q", startRaw)
		}
		end, err := time.Parse(dateLayout, endRaw)
		if err != nil {
			return core.Window{}, "", fmt.Errorf("invalid endDate %q", endRaw)
		}
		if end.Before(start) {
			return core.Window{}, "", fmt.Errorf("endDate before startDate")
		}
		return core.CustomWindow(start, end), "", nil
	}

	granularity := core.Month
	if raw := strings.TrimSpace(q.Get("timeRange")); raw != "" {
		g, err := core.ParseGranularity(raw)
		if err != nil {
			return core.Window{}, "", fmt.Errorf("%w: %q", err, raw)
		}
		granularity = g
	}

	ref := time.Now()
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return core.Window{}, "", fmt.Errorf("invalid date %q", raw)
		}
		ref = parsed
	}

	return core.ComputeWindow(ref, granularity), granularity, nil
}

// parseDate accepts both plain dates and RFC 3339 timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseMonthYear reads month/year query parameters, defaulting to the
// current calendar month.
func parseMonthYear(r *http.Request) (month, year int, err error) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()

	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		month, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid month %q", raw)
		}
	}
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", raw)
		}
	}
	if month < 1 || month > 12 {
		return 0, 0, core.ErrInvalidMonth
	}
	if year < 2000 || year > 2100 {
		return 0, 0, core.ErrInvalidYear
	}
	return month, year, nil
}

// idParam reads the {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
