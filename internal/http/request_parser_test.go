package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"tally/internal/core"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		wantStart       string
		wantEnd         string
		wantGranularity core.Granularity
		wantErr         bool
	}{
		{
			name:            "explicit range",
			query:           "startDate=2023-05-14&endDate=2023-05-16",
			wantStart:       "2023-05-14",
			wantEnd:         "2023-05-16",
			wantGranularity: "",
		},
		{
			name:            "month window from reference date",
			query:           "timeRange=month&date=2023-05-15",
			wantStart:       "2023-05-01",
			wantEnd:         "2023-05-31",
			wantGranularity: core.Month,
		},
		{
			name:            "week window starts on monday",
			query:           "timeRange=week&date=2023-05-15",
			wantStart:       "2023-05-15",
			wantEnd:         "2023-05-21",
			wantGranularity: core.Week,
		},
		{
			name:            "year window",
			query:           "timeRange=year&date=2023-05-15",
			wantStart:       "2023-01-01",
			wantEnd:         "2023-12-31",
			wantGranularity: core.Year,
		},
		{
			name:    "start without end",
			query:   "startDate=2023-05-14",
			wantErr: true,
		},
		{
			name:    "end before start",
			query:   "startDate=2023-05-16&endDate=2023-05-14",
			wantErr: true,
		},
		{
			name:    "unknown granularity",
			query:   "timeRange=decade",
			wantErr: true,
		},
		{
			name:    "unparseable reference date",
			query:   "timeRange=month&date=tomorrow",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/summary?"+tt.query, nil)
			window, granularity, err := parseWindow(r)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWindow() error = %v", err)
			}
			if got := window.Start.Format(dateLayout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := window.End.Format(dateLayout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if granularity != tt.wantGranularity {
				t.Errorf("granularity = %q, want %q", granularity, tt.wantGranularity)
			}
		})
	}
}

func TestParseWindowDefaultsToCurrentMonth(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/summary", nil)
	window, granularity, err := parseWindow(r)
	if err != nil {
		t.Fatalf("parseWindow() error = %v", err)
	}
	if granularity != core.Month {
		t.Errorf("granularity = %q, want month", granularity)
	}
	now := time.Now()
	if window.Start.Month() != now.Month() || window.Start.Year() != now.Year() {
		t.Errorf("window start %v not in current month", window.Start)
	}
}

func TestParseMonthYear(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantMonth int
		wantYear  int
		wantErr   bool
	}{
		{name: "both provided", query: "month=5&year=2023", wantMonth: 5, wantYear: 2023},
		{name: "month zero", query: "month=0&year=2023", wantErr: true},
		{name: "month thirteen", query: "month=13&year=2023", wantErr: true},
		{name: "year too small", query: "month=5&year=1999", wantErr: true},
		{name: "year too large", query: "month=5&year=2101", wantErr: true},
		{name: "non-numeric month", query: "month=may&year=2023", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/budgets?"+tt.query, nil)
			month, year, err := parseMonthYear(r)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMonthYear() error = %v", err)
			}
			if month != tt.wantMonth || year != tt.wantYear {
				t.Errorf("got %d/%d, want %d/%d", month, year, tt.wantMonth, tt.wantYear)
			}
		})
	}
}

func TestParseMonthYearDefaultsToCurrent(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/budgets", nil)
	month, year, err := parseMonthYear(r)
	if err != nil {
		t.Fatalf("parseMonthYear() error = %v", err)
	}
	now := time.Now()
	if month != int(now.Month()) || year != now.Year() {
		t.Errorf("got %d/%d, want current %d/%d", month, year, int(now.Month()), now.Year())
	}
}
