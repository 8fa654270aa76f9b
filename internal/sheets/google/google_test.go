package google

import "testing"

func TestYearPrefixedName(t *testing.T) {
	cases := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2026, "2026 Transactions"},
		{"2025 Transactions", 2026, "2025 Transactions"},
		{"  Ledger  ", 2026, "2026 Ledger"},
		{"", 2026, ""},
	}
	for i, tc := range cases {
		if got := yearPrefixedName(tc.base, tc.year); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}
