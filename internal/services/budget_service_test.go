package services

import (
	"context"
	"testing"

	"hearth/internal/core"
)

func TestBudgetStatusTiers(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, expenseCat("groceries", 10000))
	transport := expenseCat("transport", 3000)
	transport.Name = "Transport"
	f.seedCategory(t, transport)
	unlimited := expenseCat("misc", 0)
	unlimited.Name = "Misc"
	f.seedCategory(t, unlimited)

	f.record(t, input(core.Expense, 3000, "groceries", 3, 2025))
	f.record(t, input(core.Expense, 3500, "transport", 3, 2025))
	f.record(t, input(core.Expense, 99999, "misc", 3, 2025))

	entries, err := f.budget.Status(context.Background(), "fam", 3, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 limited categories, got %d", len(entries))
	}

	byID := map[string]core.BudgetEntry{}
	for _, e := range entries {
		byID[e.CategoryID] = e
	}

	g := byID["groceries"]
	if g.Percentage != 30.00 || g.Tier != core.TierSafe || g.Remaining.Cents != 7000 {
		t.Fatalf("groceries entry wrong: %+v", g)
	}

	tr := byID["transport"]
	if tr.Percentage != 116.67 || tr.Tier != core.TierExceeded {
		t.Fatalf("transport entry wrong: %+v", tr)
	}
	if tr.Remaining.Cents != -500 {
		t.Fatalf("overspent remaining %d, want -500", tr.Remaining.Cents)
	}
}

func TestBudgetStatusFullSetNotTickerFiltered(t *testing.T) {
	// The evaluator returns every limited category; the 90% ticker
	// filter is applied downstream by the alert worker.
	f := newFixture()
	f.seedCategory(t, expenseCat("groceries", 10000))
	f.record(t, input(core.Expense, 100, "groceries", 3, 2025))

	entries, err := f.budget.Status(context.Background(), "fam", 3, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Percentage != 1.00 {
		t.Fatalf("low-consumption categories must still be reported: %+v", entries)
	}
}

func TestBudgetStatusScopedToFamily(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, expenseCat("groceries", 10000))

	foreign := expenseCat("foreign", 10000)
	foreign.FamilyID = "other"
	f.seedCategory(t, foreign)
	foreignSpend := input(core.Expense, 9999, "foreign", 3, 2025)
	foreignSpend.FamilyID = "other"
	f.record(t, foreignSpend)

	entries, err := f.budget.Status(context.Background(), "fam", 3, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Spent.Cents != 0 {
		t.Fatalf("other family's spending leaked: %+v", entries)
	}
}

func TestBudgetStatusScopedToMonth(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, expenseCat("groceries", 10000))
	f.record(t, input(core.Expense, 9000, "groceries", 2, 2025))
	f.record(t, input(core.Expense, 1000, "groceries", 3, 2025))

	entries, err := f.budget.Status(context.Background(), "fam", 3, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Spent.Cents != 1000 {
		t.Fatalf("spent %d, want only March's 1000", entries[0].Spent.Cents)
	}
}
