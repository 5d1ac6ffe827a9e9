package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hearth/internal/core"
	"hearth/internal/store"
)

// StatsService is the read-side aggregator: monthly dashboard totals
// with carry-forward, yearly trend, and arbitrary period stats. All of
// it is recomputed from the journal; the monthly snapshot is a pure
// memoization that the engine upserts on every dashboard read.
type StatsService struct {
	store store.Store
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

type periodTotals struct {
	income     int64
	expense    int64
	investment int64
	count      int
	byCategory map[core.TransactionType]map[string]int64
}

// Dashboard computes one month's stats for a family, optionally
// narrowed to one user. The previous month's closing balance is folded
// into income before profit, and the freshly computed closing/loan
// values are upserted as this month's snapshot.
func (s *StatsService) Dashboard(ctx context.Context, familyID, userID string, month, year int) (core.DashboardStats, error) {
	period, err := core.MonthlyPeriod(month, year)
	if err != nil {
		return core.DashboardStats{}, err
	}

	totals, err := s.totalsFor(ctx, familyID, userID, period)
	if err != nil {
		return core.DashboardStats{}, err
	}

	opening, inheritedLoan, err := s.previousClosing(ctx, familyID, userID, month, year)
	if err != nil {
		return core.DashboardStats{}, err
	}

	income := totals.income + opening
	profit := income - totals.expense
	loan := inheritedLoan + negPart(profit)
	closing := posPart(profit)

	snapshot := core.MonthlyBalance{
		FamilyID:       familyID,
		UserID:         userID,
		Month:          month,
		Year:           year,
		OpeningBalance: core.Money{Cents: opening},
		ClosingBalance: core.Money{Cents: closing},
		HasLoan:        loan > 0,
		LoanAmount:     core.Money{Cents: loan},
		ComputedAt:     time.Now().UTC(),
	}
	if err := s.store.UpsertMonthlyBalance(ctx, snapshot); err != nil {
		return core.DashboardStats{}, fmt.Errorf("upsert monthly snapshot: %w", err)
	}

	return core.DashboardStats{
		Month:                month,
		Year:                 year,
		TotalIncome:          core.Money{Cents: income},
		TotalExpense:         core.Money{Cents: totals.expense},
		TotalInvestment:      core.Money{Cents: totals.investment},
		Profit:               core.Money{Cents: profit},
		OpeningBalance:       core.Money{Cents: opening},
		HasLoan:              loan > 0,
		LoanAmount:           core.Money{Cents: loan},
		TransactionCount:     totals.count,
		IncomeByCategory:     sortedBreakdown(totals.byCategory[core.Income]),
		ExpenseByCategory:    sortedBreakdown(totals.byCategory[core.Expense]),
		InvestmentByCategory: sortedBreakdown(totals.byCategory[core.Investment]),
	}, nil
}

// previousClosing resolves the prior month's ending position: snapshot
// hit returns it directly, a miss recomputes from raw transactions of
// that single month. The recomputation is deliberately non-recursive;
// consecutive dashboard reads build the memoization chain forward.
func (s *StatsService) previousClosing(ctx context.Context, familyID, userID string, month, year int) (opening, loan int64, err error) {
	prevMonth, prevYear := core.PreviousMonth(month, year)

	b, err := s.store.GetMonthlyBalance(ctx, familyID, userID, prevMonth, prevYear)
	if err == nil {
		return b.ClosingBalance.Cents, b.LoanAmount.Cents, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return 0, 0, fmt.Errorf("load previous snapshot: %w", err)
	}

	period, err := core.MonthlyPeriod(prevMonth, prevYear)
	if err != nil {
		// No meaningful prior month (year underflow); start from zero.
		return 0, 0, nil
	}
	totals, err := s.totalsFor(ctx, familyID, userID, period)
	if err != nil {
		return 0, 0, err
	}
	prevProfit := totals.income - totals.expense
	return posPart(prevProfit), negPart(prevProfit), nil
}

// MonthlyTrend returns the twelve months of a year, each computed from
// raw transactions alone. No carry-in is applied; the trend compares
// months on their own activity.
func (s *StatsService) MonthlyTrend(ctx context.Context, familyID string, year int) ([]core.TrendPoint, error) {
	period, err := core.AnnualPeriod(year)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		FamilyID: familyID,
		Start:    period.Start,
		End:      period.End,
	})
	if err != nil {
		return nil, fmt.Errorf("list year transactions: %w", err)
	}

	points := make([]core.TrendPoint, 12)
	for i := range points {
		points[i].Month = i + 1
	}
	for _, t := range txs {
		p := &points[t.Date.Month()-1]
		switch t.Type {
		case core.Income:
			p.Income.Cents += t.Amount.Cents
		case core.Expense:
			p.Expense.Cents += t.Amount.Cents
		case core.Investment:
			p.Investment.Cents += t.Amount.Cents
		}
	}
	for i := range points {
		points[i].Profit.Cents = points[i].Income.Cents - points[i].Expense.Cents
	}
	return points, nil
}

// PeriodStats aggregates an arbitrary period. Monthly periods fold the
// carry-forward opening balance into income; every other period type
// sums raw activity only.
func (s *StatsService) PeriodStats(ctx context.Context, familyID, userID string, period core.Period) (core.PeriodStats, error) {
	totals, err := s.totalsFor(ctx, familyID, userID, period)
	if err != nil {
		return core.PeriodStats{}, err
	}

	income := totals.income
	if period.CarryIn {
		opening, _, err := s.previousClosing(ctx, familyID, userID, period.Month, period.Year)
		if err != nil {
			return core.PeriodStats{}, err
		}
		income += opening
	}

	return core.PeriodStats{
		Period:               period,
		TotalIncome:          core.Money{Cents: income},
		TotalExpense:         core.Money{Cents: totals.expense},
		TotalInvestment:      core.Money{Cents: totals.investment},
		Profit:               core.Money{Cents: income - totals.expense},
		TransactionCount:     totals.count,
		IncomeByCategory:     sortedBreakdown(totals.byCategory[core.Income]),
		ExpenseByCategory:    sortedBreakdown(totals.byCategory[core.Expense]),
		InvestmentByCategory: sortedBreakdown(totals.byCategory[core.Investment]),
	}, nil
}

// totalsFor sums one period's journal activity by type and groups the
// typed amounts by category display name. Transfers move balances only
// and never show up in any total. Rows whose category has been deleted
// land in the "Unknown" bucket.
func (s *StatsService) totalsFor(ctx context.Context, familyID, userID string, period core.Period) (periodTotals, error) {
	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		FamilyID: familyID,
		UserID:   userID,
		Start:    period.Start,
		End:      period.End,
	})
	if err != nil {
		return periodTotals{}, fmt.Errorf("list period transactions: %w", err)
	}

	names, err := s.categoryNames(ctx, familyID)
	if err != nil {
		return periodTotals{}, err
	}

	totals := periodTotals{
		byCategory: map[core.TransactionType]map[string]int64{
			core.Income:     {},
			core.Expense:    {},
			core.Investment: {},
		},
	}
	for _, t := range txs {
		totals.count++
		if t.Type == core.Transfer {
			continue
		}
		switch t.Type {
		case core.Income:
			totals.income += t.Amount.Cents
		case core.Expense:
			totals.expense += t.Amount.Cents
		case core.Investment:
			totals.investment += t.Amount.Cents
		}
		name, ok := names[t.CategoryID]
		if !ok {
			name = core.UnknownCategory
		}
		totals.byCategory[t.Type][name] += t.Amount.Cents
	}
	return totals, nil
}

func (s *StatsService) categoryNames(ctx context.Context, familyID string) (map[string]string, error) {
	cats, err := s.store.ListCategories(ctx, familyID, "")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func sortedBreakdown(amounts map[string]int64) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(amounts))
	for name, cents := range amounts {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func posPart(v int64) int64 {
	if v > 0 {
		return v
	}
	return 0
}

func negPart(v int64) int64 {
	if v < 0 {
		return -v
	}
	return 0
}
