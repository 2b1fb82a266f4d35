package domain

import (
	"errors"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00:00"},
		{999, "0:00:00"},
		{5000, "0:00:05"},
		{61000, "0:01:01"},
		{5400000, "1:30:00"},
		{36000000 + 59*60000 + 59000, "10:59:59"},
		{-5, "0:00:00"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.ms); got != tc.want {
			t.Errorf("FormatDuration(%d) = %s, want %s", tc.ms, got, tc.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	ms, err := ParseDuration("1:30:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms != 5405000 {
		t.Fatalf("expected 5405000, got %d", ms)
	}

	ms, err = ParseDuration("15:00")
	if err != nil || ms != 900000 {
		t.Fatalf("expected 900000, got %d (%v)", ms, err)
	}

	for _, bad := range []string{"", "12", "1:60:00", "a:00", "1:2:3:4"} {
		if _, err := ParseDuration(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}

	// Largest whole hour that still fits in an int64 of milliseconds
	if ms := mustParse(t, "2562047788015:00:00"); ms != 9223372036854000000 {
		t.Fatalf("expected 9223372036854000000, got %d", ms)
	}
	for _, huge := range []string{"2562047788016:00:00", "2562047788015:59:59", "9999999999999999:00", "9223372036854775807:00:00"} {
		if _, err := ParseDuration(huge); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("expected ErrInvalidDuration for %q, got %v", huge, err)
		}
	}

	// Formatting what was parsed is stable
	if got := FormatDuration(mustParse(t, FormatDuration(3723999))); got != "1:02:03" {
		t.Fatalf("unexpected round trip %s", got)
	}
}

func mustParse(t *testing.T, s string) int64 {
	t.Helper()
	ms, err := ParseDuration(s)
	if err != nil {
		t.Fatalf("ParseDuration(%q): %v", s, err)
	}
	return ms
}
