package core

import (
	"testing"
	"time"
)

func TestMonthlyPeriod(t *testing.T) {
	p, err := MonthlyPeriod(12, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", p.Start)
	}
	if !p.End.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end must roll into next year, got %v", p.End)
	}
	if !p.CarryIn {
		t.Fatal("monthly periods carry the previous balance in")
	}
	if _, err := MonthlyPeriod(13, 2025); err == nil {
		t.Fatal("expected error for month 13")
	}
}

func TestQuarterlyAndHalfYearlyBounds(t *testing.T) {
	cases := []struct {
		name       string
		p          Period
		start, end time.Time
	}{
		{"q1", mustQuarter(t, 1, 2025), date(2025, 1), date(2025, 4)},
		{"q4", mustQuarter(t, 4, 2025), date(2025, 10), date(2026, 1)},
		{"h1", mustHalf(t, 1, 2025), date(2025, 1), date(2025, 7)},
		{"h2", mustHalf(t, 2, 2025), date(2025, 7), date(2026, 1)},
	}
	for _, tc := range cases {
		if !tc.p.Start.Equal(tc.start) || !tc.p.End.Equal(tc.end) {
			t.Fatalf("%s: got [%v, %v), want [%v, %v)", tc.name, tc.p.Start, tc.p.End, tc.start, tc.end)
		}
		if tc.p.CarryIn {
			t.Fatalf("%s: only monthly periods carry in", tc.name)
		}
	}
	if _, err := QuarterlyPeriod(5, 2025); err == nil {
		t.Fatal("expected error for quarter 5")
	}
	if _, err := HalfYearlyPeriod(3, 2025); err == nil {
		t.Fatal("expected error for half 3")
	}
}

func TestPeriodContainsHalfOpen(t *testing.T) {
	p, _ := MonthlyPeriod(3, 2025)
	if !p.Contains(date(2025, 3)) {
		t.Fatal("start is included")
	}
	if p.Contains(date(2025, 4)) {
		t.Fatal("end is excluded")
	}
	if p.Contains(date(2025, 4).Add(-time.Nanosecond)) != true {
		t.Fatal("instant before end is included")
	}
}

func TestCustomPeriod(t *testing.T) {
	if _, err := CustomPeriod(date(2025, 5), date(2025, 2)); err == nil {
		t.Fatal("expected error for inverted range")
	}
	p, err := CustomPeriod(date(2025, 2), date(2025, 5))
	if err != nil {
		t.Fatal(err)
	}
	if p.CarryIn {
		t.Fatal("custom periods never carry in")
	}
}

func TestPreviousMonth(t *testing.T) {
	if m, y := PreviousMonth(1, 2025); m != 12 || y != 2024 {
		t.Fatalf("expected 12/2024, got %d/%d", m, y)
	}
	if m, y := PreviousMonth(7, 2025); m != 6 || y != 2025 {
		t.Fatalf("expected 6/2025, got %d/%d", m, y)
	}
}

func date(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func mustQuarter(t *testing.T, q, year int) Period {
	t.Helper()
	p, err := QuarterlyPeriod(q, year)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustHalf(t *testing.T, h, year int) Period {
	t.Helper()
	p, err := HalfYearlyPeriod(h, year)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
