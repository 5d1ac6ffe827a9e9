package services

import (
	"context"
	"fmt"

	"hearth/internal/core"
	"hearth/internal/store"
)

// BudgetService reports budget consumption per limited expense
// category for one month. It always returns the full set; presentation
// filters (the 90% ticker) are layered by consumers.
type BudgetService struct {
	store store.Store
}

func NewBudgetService(st store.Store) *BudgetService {
	return &BudgetService{store: st}
}

// Status evaluates every expense category with a configured limit. The
// spent figure is scoped to the family and the requested month.
func (s *BudgetService) Status(ctx context.Context, familyID string, month, year int) ([]core.BudgetEntry, error) {
	period, err := core.MonthlyPeriod(month, year)
	if err != nil {
		return nil, err
	}

	cats, err := s.store.ListCategories(ctx, familyID, core.CategoryExpense)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}

	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		FamilyID: familyID,
		Type:     core.Expense,
		Start:    period.Start,
		End:      period.End,
	})
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}

	spentByCategory := make(map[string]int64)
	for _, t := range txs {
		spentByCategory[t.CategoryID] += t.Amount.Cents
	}

	var out []core.BudgetEntry
	for _, c := range cats {
		if c.BudgetLimit.Cents <= 0 {
			continue
		}
		spent := core.Money{Cents: spentByCategory[c.ID]}
		pct, tier := core.ClassifyBudget(spent, c.BudgetLimit)
		out = append(out, core.BudgetEntry{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Color:        c.Color,
			Limit:        c.BudgetLimit,
			Spent:        spent,
			Remaining:    core.Money{Cents: c.BudgetLimit.Cents - spent.Cents},
			Percentage:   pct,
			Tier:         tier,
		})
	}
	return out, nil
}
