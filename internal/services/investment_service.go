package services

import (
	"context"
	"fmt"

	"hearth/internal/core"
	"hearth/internal/store"
)

// InvestmentService reports all-time progress toward investment
// targets. Unlike budgets, nothing here is month-scoped.
type InvestmentService struct {
	store store.Store
}

func NewInvestmentService(st store.Store) *InvestmentService {
	return &InvestmentService{store: st}
}

// Targets evaluates every investment category with a configured
// target against the total ever invested in it.
func (s *InvestmentService) Targets(ctx context.Context, familyID string) ([]core.InvestmentEntry, error) {
	cats, err := s.store.ListCategories(ctx, familyID, core.CategoryInvestment)
	if err != nil {
		return nil, fmt.Errorf("list investment categories: %w", err)
	}

	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		FamilyID: familyID,
		Type:     core.Investment,
	})
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	investedByCategory := make(map[string]int64)
	for _, t := range txs {
		investedByCategory[t.CategoryID] += t.Amount.Cents
	}

	var out []core.InvestmentEntry
	for _, c := range cats {
		if c.InvestmentTarget.Cents <= 0 {
			continue
		}
		invested := core.Money{Cents: investedByCategory[c.ID]}
		pct, progress := core.ClassifyInvestment(invested, c.InvestmentTarget)
		out = append(out, core.InvestmentEntry{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Color:        c.Color,
			Target:       c.InvestmentTarget,
			Invested:     invested,
			Percentage:   pct,
			Progress:     progress,
		})
	}
	return out, nil
}
