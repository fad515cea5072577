package timeparse

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
	}{
		{"21:00", 21, 0},
		{"9:05", 9, 5},
		{" 23:59 ", 23, 59},
		{"21時", 21, 0},
		{"21時15分", 21, 15},
		{"午後9時", 21, 0},
		{"午後9時30分", 21, 30},
		{"午前9時30分", 9, 30},
		{"午後12時", 12, 0},
		{"午前12時", 0, 0},
	}
	for _, tc := range cases {
		hour, minute, err := Clock(tc.in)
		if err != nil {
			t.Fatalf("Clock(%q) returned error: %v", tc.in, err)
		}
		if hour != tc.hour || minute != tc.minute {
			t.Fatalf("Clock(%q) = %d:%d, want %d:%d", tc.in, hour, minute, tc.hour, tc.minute)
		}
	}
}

func TestClock_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "25:00", "12:60", "時", "九時"} {
		if _, _, err := Clock(in); err == nil {
			t.Fatalf("Clock(%q) expected error", in)
		}
	}
}

func TestNextOccurrence_Today(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)

	got, err := NextOccurrence("21:00", now, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 21, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextOccurrence_RollsToTomorrow(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	now := time.Date(2026, 3, 1, 22, 30, 0, 0, loc)

	got, err := NextOccurrence("21:00", now, loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 2, 21, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
