package common

import "testing"

func TestEndOfDay(t *testing.T) {
	if got := EndOfDay("2024-01-01"); got != "2024-01-01T23:59" {
		t.Fatalf("unexpected bound: %q", got)
	}
}

func TestHourOf(t *testing.T) {
	if hour, ok := HourOf("2024-01-01T09:30"); !ok || hour != "09" {
		t.Fatalf("expected hour 09, got %q ok=%v", hour, ok)
	}
	if _, ok := HourOf("2024-01-01"); ok {
		t.Fatal("expected false for day-only string")
	}
	if _, ok := HourOf(""); ok {
		t.Fatal("expected false for empty string")
	}
}

func TestIsDay(t *testing.T) {
	cases := map[string]bool{
		"2024-01-01":       true,
		"2024-13-01":       false,
		"2024-1-1":         false,
		"01/01/2024":       false,
		"2024-01-01T00:00": false,
		"":                 false,
	}
	for in, want := range cases {
		if got := IsDay(in); got != want {
			t.Errorf("IsDay(%q) = %v, want %v", in, got, want)
		}
	}
}
