package core

const (
	TierSafe     BudgetTier = "safe"
	TierWarning  BudgetTier = "warning"
	TierExceeded BudgetTier = "exceeded"

	ProgressCompleted  InvestmentProgress = "completed"
	ProgressInProgress InvestmentProgress = "in_progress"
)

type (
	BudgetTier         string
	InvestmentProgress string

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string
		Amount Money
	}

	// DashboardStats is the read-side projection for one month. Income
	// already includes the carry-forward opening balance.
	DashboardStats struct {
		Month                int
		Year                 int
		TotalIncome          Money
		TotalExpense         Money
		TotalInvestment      Money
		Profit               Money
		OpeningBalance       Money
		HasLoan              bool
		LoanAmount           Money
		TransactionCount     int
		IncomeByCategory     []CategoryAmount
		ExpenseByCategory    []CategoryAmount
		InvestmentByCategory []CategoryAmount
	}

	// TrendPoint is one month of the yearly trend (no carry-in).
	TrendPoint struct {
		Month      int
		Income     Money
		Expense    Money
		Investment Money
		Profit     Money
	}

	// PeriodStats aggregates an arbitrary period. Carry-in applies to
	// monthly periods only.
	PeriodStats struct {
		Period               Period
		TotalIncome          Money
		TotalExpense         Money
		TotalInvestment      Money
		Profit               Money
		TransactionCount     int
		IncomeByCategory     []CategoryAmount
		ExpenseByCategory    []CategoryAmount
		InvestmentByCategory []CategoryAmount
	}

	// BudgetEntry is the consumption report for one limited expense
	// category in a given month.
	BudgetEntry struct {
		CategoryID   string
		CategoryName string
		Color        string
		Limit        Money
		Spent        Money
		Remaining    Money
		Percentage   float64 // 0-100+, 2 decimals
		Tier         BudgetTier
	}

	// InvestmentEntry is the all-time progress toward one target.
	InvestmentEntry struct {
		CategoryID   string
		CategoryName string
		Color        string
		Target       Money
		Invested     Money
		Percentage   float64
		Progress     InvestmentProgress
	}

	// BudgetWarning is returned alongside a recorded expense that
	// pushes a category near or past its limit. NewTotal is the spent
	// total including the new transaction.
	BudgetWarning struct {
		Message      string
		CurrentSpent Money
		NewTotal     Money
		Limit        Money
		Exceeded     bool
	}

	// MonthOverview is a compact summary for a specific year+month.
	MonthOverview struct {
		Year       int
		Month      int // 1-12
		Total      Money
		ByCategory []CategoryAmount
	}
)

// ClassifyBudget computes the consumption percentage and tier for a
// spent/limit pair. A non-positive limit yields 0% and safe.
func ClassifyBudget(spent, limit Money) (float64, BudgetTier) {
	if limit.Cents <= 0 {
		return 0, TierSafe
	}
	pct := Round2(float64(spent.Cents) / float64(limit.Cents) * 100)
	switch {
	case pct >= 100:
		return pct, TierExceeded
	case pct >= 80:
		return pct, TierWarning
	}
	return pct, TierSafe
}

// ClassifyInvestment computes the progress percentage toward a target.
// Completion is decided on cents, not on the rounded percentage.
func ClassifyInvestment(invested, target Money) (float64, InvestmentProgress) {
	if target.Cents <= 0 {
		return 0, ProgressInProgress
	}
	pct := Round2(float64(invested.Cents) / float64(target.Cents) * 100)
	if invested.Cents >= target.Cents {
		return pct, ProgressCompleted
	}
	return pct, ProgressInProgress
}
