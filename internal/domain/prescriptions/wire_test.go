package prescriptions

import (
	"math"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 days"},
		{DaysToDuration(1), "1 day"},
		{DaysToDuration(10), "10 days"},
		{DaysToDuration(2) + 6*time.Hour, "2 days 6h0m0s"},
		{-time.Hour, "0 days"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestDaysToDuration_Saturates(t *testing.T) {
	if got := DaysToDuration(MaxDurationDays); got != time.Duration(MaxDurationDays)*24*time.Hour {
		t.Fatalf("unexpected duration for max days: %v", got)
	}
	if got := DaysToDuration(200000); got != math.MaxInt64 {
		t.Fatalf("expected saturation to MaxInt64, got %v", got)
	}
	if got := DaysToDuration(-200000); got != math.MinInt64 {
		t.Fatalf("expected saturation to MinInt64, got %v", got)
	}
}

func TestParseDate_NormalizesToUTCMidnight(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Location() != time.UTC || d.Hour() != 0 || FormatDate(d) != "2024-01-05" {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("05/01/2024"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}
