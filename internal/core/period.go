package core

import "time"

const (
	PeriodMonthly    PeriodType = "monthly"
	PeriodQuarterly  PeriodType = "quarterly"
	PeriodHalfYearly PeriodType = "half_yearly"
	PeriodAnnual     PeriodType = "annual"
	PeriodCustom     PeriodType = "custom"
)

type (
	PeriodType string

	// Period is a half-open date range [Start, End). CarryIn marks the
	// periods whose income totals include the prior month's opening
	// balance (monthly only).
	Period struct {
		Type    PeriodType
		Start   time.Time
		End     time.Time
		Month   int // set for monthly
		Year    int
		CarryIn bool
	}
)

// MonthlyPeriod covers one calendar month.
func MonthlyPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 || year < 1 {
		return Period{}, ErrInvalidPeriod
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Type:    PeriodMonthly,
		Start:   start,
		End:     start.AddDate(0, 1, 0),
		Month:   month,
		Year:    year,
		CarryIn: true,
	}, nil
}

// QuarterlyPeriod covers quarter 1-4 of the given year.
func QuarterlyPeriod(quarter, year int) (Period, error) {
	if quarter < 1 || quarter > 4 || year < 1 {
		return Period{}, ErrInvalidPeriod
	}
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Type:  PeriodQuarterly,
		Start: start,
		End:   start.AddDate(0, 3, 0),
		Year:  year,
	}, nil
}

// HalfYearlyPeriod covers half 1 (Jan-Jun) or 2 (Jul-Dec).
func HalfYearlyPeriod(half, year int) (Period, error) {
	if (half != 1 && half != 2) || year < 1 {
		return Period{}, ErrInvalidPeriod
	}
	start := time.Date(year, time.Month((half-1)*6+1), 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Type:  PeriodHalfYearly,
		Start: start,
		End:   start.AddDate(0, 6, 0),
		Year:  year,
	}, nil
}

// AnnualPeriod covers one calendar year.
func AnnualPeriod(year int) (Period, error) {
	if year < 1 {
		return Period{}, ErrInvalidPeriod
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Type:  PeriodAnnual,
		Start: start,
		End:   start.AddDate(1, 0, 0),
		Year:  year,
	}, nil
}

// CustomPeriod covers [start, end). End must be after start.
func CustomPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Type: PeriodCustom, Start: start, End: end}, nil
}

// Contains reports whether t falls inside the half-open range.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// PreviousMonth decrements a month key, rolling the year on underflow.
func PreviousMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
