package dateonly

import (
	"testing"
	"time"
)

func TestDayNumberRoundTrip(t *testing.T) {
	tests := []struct {
		date string
	}{
		{"0001-01-01"},
		{"1970-01-01"},
		{"2000-02-29"},
		{"2026-08-30"},
		{"9999-12-31"},
	}

	for _, tt := range tests {
		d, err := Parse(tt.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.date, err)
		}
		back := FromDayNumber(d.DayNumber())
		if back.String() != tt.date {
			t.Errorf("round trip %s -> %d -> %s", tt.date, d.DayNumber(), back.String())
		}
	}
}

func TestKnownDayNumbers(t *testing.T) {
	// Absolute day numbers, pinned so the epoch offset itself is checked
	// rather than just parse/format symmetry. Durations saturate near
	// 292 years, which would fold every modern date onto day 106751.
	tests := []struct {
		date string
		want uint32
	}{
		{"1970-01-01", 719162},
		{"1970-01-02", 719163},
		{"2000-01-01", 730119},
		{"2026-08-30", 739857},
	}

	for _, tt := range tests {
		d, err := Parse(tt.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.date, err)
		}
		if d.DayNumber() != tt.want {
			t.Errorf("%s day number = %d, want %d", tt.date, d.DayNumber(), tt.want)
		}
	}
}

func TestEpochDayNumber(t *testing.T) {
	d := New(1, time.January, 1)
	if d.DayNumber() != 0 {
		t.Errorf("0001-01-01 must be day 0, got %d", d.DayNumber())
	}
	next := d.AddDays(1)
	if next.DayNumber() != 1 {
		t.Errorf("0001-01-02 must be day 1, got %d", next.DayNumber())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2026-13-01", "not-a-date", "2026/08/30"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) should fail", s)
		}
	}
}

func TestAddMonthsNormalizes(t *testing.T) {
	d := New(2026, time.January, 31)
	shifted := d.AddMonths(1)
	// 2026 is not a leap year, so Jan 31 + 1 month normalizes to Mar 3.
	if shifted.String() != "2026-03-03" {
		t.Errorf("AddMonths(1) = %s", shifted)
	}
}

func TestCompareAndOrdering(t *testing.T) {
	a := New(2026, time.August, 30)
	b := a.AddDays(7)

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare ordering wrong")
	}
	if !a.Before(b) || !b.After(a) {
		t.Error("Before/After wrong")
	}
	if a.DaysUntil(b) != 7 || b.DaysUntil(a) != -7 {
		t.Errorf("DaysUntil: %d, %d", a.DaysUntil(b), b.DaysUntil(a))
	}
}

func TestFromTimeDropsClock(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	stamp := time.Date(2026, time.August, 30, 23, 59, 59, 0, loc)
	d := FromTime(stamp)
	if d.String() != "2026-08-30" {
		t.Errorf("FromTime = %s", d)
	}
}
