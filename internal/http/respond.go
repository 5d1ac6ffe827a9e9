package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hearth/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps core sentinels onto HTTP status codes.
// Anything outside the taxonomy is a 500 with the detail kept out of
// the response body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Unhandled error",
			"error", err, "path", r.URL.Path, "method", r.Method)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// View types: cents render as fixed two-decimal strings, dates as
// YYYY-MM-DD, timestamps as RFC 3339.

type categoryJSON struct {
	ID               string `json:"id"`
	FamilyID         string `json:"family_id"`
	UserID           string `json:"user_id,omitempty"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Color            string `json:"color,omitempty"`
	BudgetLimit      string `json:"budget_limit,omitempty"`
	InvestmentTarget string `json:"investment_target,omitempty"`
	IsShared         bool   `json:"is_shared"`
	CreatedAt        string `json:"created_at"`
}

type accountJSON struct {
	ID             string `json:"id"`
	FamilyID       string `json:"family_id"`
	UserID         string `json:"user_id,omitempty"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	OwnerType      string `json:"owner_type"`
	OpeningBalance string `json:"opening_balance"`
	CurrentBalance string `json:"current_balance"`
	CreatedAt      string `json:"created_at"`
}

type transactionJSON struct {
	ID          string `json:"id"`
	FamilyID    string `json:"family_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name,omitempty"`
	UserIcon    string `json:"user_icon,omitempty"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	CategoryID  string `json:"category_id,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	ToAccountID string `json:"to_account_id,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type budgetWarningJSON struct {
	Message      string `json:"message"`
	CurrentSpent string `json:"current_spent"`
	NewTotal     string `json:"new_total"`
	Limit        string `json:"limit"`
	Exceeded     bool   `json:"exceeded"`
}

type categoryAmountJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type dashboardJSON struct {
	Month                int                  `json:"month"`
	Year                 int                  `json:"year"`
	TotalIncome          string               `json:"total_income"`
	TotalExpense         string               `json:"total_expense"`
	TotalInvestment      string               `json:"total_investment"`
	Profit               string               `json:"profit"`
	OpeningBalance       string               `json:"opening_balance"`
	HasLoan              bool                 `json:"has_loan"`
	LoanAmount           string               `json:"loan_amount"`
	TransactionCount     int                  `json:"transaction_count"`
	IncomeByCategory     []categoryAmountJSON `json:"income_by_category"`
	ExpenseByCategory    []categoryAmountJSON `json:"expense_by_category"`
	InvestmentByCategory []categoryAmountJSON `json:"investment_by_category"`
}

type trendPointJSON struct {
	Month      int    `json:"month"`
	Income     string `json:"income"`
	Expense    string `json:"expense"`
	Investment string `json:"investment"`
	Profit     string `json:"profit"`
}

type periodStatsJSON struct {
	PeriodType           string               `json:"period_type"`
	StartDate            string               `json:"start_date"`
	EndDate              string               `json:"end_date"`
	TotalIncome          string               `json:"total_income"`
	TotalExpense         string               `json:"total_expense"`
	TotalInvestment      string               `json:"total_investment"`
	Profit               string               `json:"profit"`
	TransactionCount     int                  `json:"transaction_count"`
	IncomeByCategory     []categoryAmountJSON `json:"income_by_category"`
	ExpenseByCategory    []categoryAmountJSON `json:"expense_by_category"`
	InvestmentByCategory []categoryAmountJSON `json:"investment_by_category"`
}

type budgetEntryJSON struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color,omitempty"`
	Limit        string  `json:"limit"`
	Spent        string  `json:"spent"`
	Remaining    string  `json:"remaining"`
	Percentage   float64 `json:"percentage"`
	Status       string  `json:"status"`
}

type investmentEntryJSON struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Color        string  `json:"color,omitempty"`
	Target       string  `json:"target"`
	Invested     string  `json:"invested"`
	Percentage   float64 `json:"percentage"`
	Status       string  `json:"status"`
}

func categoryView(c core.Category) categoryJSON {
	v := categoryJSON{
		ID:        c.ID,
		FamilyID:  c.FamilyID,
		UserID:    c.UserID,
		Name:      c.Name,
		Type:      string(c.Type),
		Color:     c.Color,
		IsShared:  c.IsShared,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.BudgetLimit.Cents > 0 {
		v.BudgetLimit = c.BudgetLimit.String()
	}
	if c.InvestmentTarget.Cents > 0 {
		v.InvestmentTarget = c.InvestmentTarget.String()
	}
	return v
}

func accountView(a core.Account) accountJSON {
	return accountJSON{
		ID:             a.ID,
		FamilyID:       a.FamilyID,
		UserID:         a.UserID,
		Name:           a.Name,
		Type:           string(a.Type),
		OwnerType:      string(a.OwnerType),
		OpeningBalance: a.OpeningBalance.String(),
		CurrentBalance: a.CurrentBalance.String(),
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func transactionView(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		FamilyID:    t.FamilyID,
		UserID:      t.UserID,
		UserName:    t.UserName,
		UserIcon:    t.UserIcon,
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		Date:        t.Date.Format("2006-01-02"),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func transactionViews(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, transactionView(t))
	}
	return out
}

func warningView(w *core.BudgetWarning) *budgetWarningJSON {
	if w == nil {
		return nil
	}
	return &budgetWarningJSON{
		Message:      w.Message,
		CurrentSpent: w.CurrentSpent.String(),
		NewTotal:     w.NewTotal.String(),
		Limit:        w.Limit.String(),
		Exceeded:     w.Exceeded,
	}
}

func breakdownView(in []core.CategoryAmount) []categoryAmountJSON {
	out := make([]categoryAmountJSON, 0, len(in))
	for _, ca := range in {
		out = append(out, categoryAmountJSON{Name: ca.Name, Amount: ca.Amount.String()})
	}
	return out
}

func dashboardView(st core.DashboardStats) dashboardJSON {
	return dashboardJSON{
		Month:                st.Month,
		Year:                 st.Year,
		TotalIncome:          st.TotalIncome.String(),
		TotalExpense:         st.TotalExpense.String(),
		TotalInvestment:      st.TotalInvestment.String(),
		Profit:               st.Profit.String(),
		OpeningBalance:       st.OpeningBalance.String(),
		HasLoan:              st.HasLoan,
		LoanAmount:           st.LoanAmount.String(),
		TransactionCount:     st.TransactionCount,
		IncomeByCategory:     breakdownView(st.IncomeByCategory),
		ExpenseByCategory:    breakdownView(st.ExpenseByCategory),
		InvestmentByCategory: breakdownView(st.InvestmentByCategory),
	}
}

func periodStatsView(ps core.PeriodStats) periodStatsJSON {
	return periodStatsJSON{
		PeriodType:           string(ps.Period.Type),
		StartDate:            ps.Period.Start.Format("2006-01-02"),
		EndDate:              ps.Period.End.Format("2006-01-02"),
		TotalIncome:          ps.TotalIncome.String(),
		TotalExpense:         ps.TotalExpense.String(),
		TotalInvestment:      ps.TotalInvestment.String(),
		Profit:               ps.Profit.String(),
		TransactionCount:     ps.TransactionCount,
		IncomeByCategory:     breakdownView(ps.IncomeByCategory),
		ExpenseByCategory:    breakdownView(ps.ExpenseByCategory),
		InvestmentByCategory: breakdownView(ps.InvestmentByCategory),
	}
}

func budgetEntryViews(entries []core.BudgetEntry) []budgetEntryJSON {
	out := make([]budgetEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, budgetEntryJSON{
			CategoryID:   e.CategoryID,
			CategoryName: e.CategoryName,
			Color:        e.Color,
			Limit:        e.Limit.String(),
			Spent:        e.Spent.String(),
			Remaining:    e.Remaining.String(),
			Percentage:   e.Percentage,
			Status:       string(e.Tier),
		})
	}
	return out
}

func investmentEntryViews(entries []core.InvestmentEntry) []investmentEntryJSON {
	out := make([]investmentEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, investmentEntryJSON{
			CategoryID:   e.CategoryID,
			CategoryName: e.CategoryName,
			Color:        e.Color,
			Target:       e.Target.String(),
			Invested:     e.Invested.String(),
			Percentage:   e.Percentage,
			Status:       string(e.Progress),
		})
	}
	return out
}
