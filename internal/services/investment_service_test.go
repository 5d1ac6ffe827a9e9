package services

import (
	"context"
	"testing"

	"hearth/internal/core"
)

func TestInvestmentTargets(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, investCat("etf", 15000))
	done := investCat("pension", 15000)
	done.Name = "Pension"
	f.seedCategory(t, done)
	noTarget := investCat("crypto", 0)
	noTarget.Name = "Crypto"
	f.seedCategory(t, noTarget)

	// Invested amounts are all-time, across months and years.
	f.record(t, input(core.Investment, 4000, "etf", 11, 2024))
	f.record(t, input(core.Investment, 6000, "etf", 3, 2025))
	f.record(t, input(core.Investment, 15000, "pension", 3, 2025))
	f.record(t, input(core.Investment, 777, "crypto", 3, 2025))

	entries, err := f.invest.Targets(context.Background(), "fam")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 targeted categories, got %d", len(entries))
	}

	byID := map[string]core.InvestmentEntry{}
	for _, e := range entries {
		byID[e.CategoryID] = e
	}

	etf := byID["etf"]
	if etf.Invested.Cents != 10000 || etf.Percentage != 66.67 || etf.Progress != core.ProgressInProgress {
		t.Fatalf("etf entry wrong: %+v", etf)
	}
	pension := byID["pension"]
	if pension.Percentage != 100.00 || pension.Progress != core.ProgressCompleted {
		t.Fatalf("pension entry wrong: %+v", pension)
	}
}

func TestInvestmentTargetsOvershootStaysCompleted(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, investCat("etf", 10000))

	f.record(t, input(core.Investment, 12000, "etf", 3, 2025))

	entries, err := f.invest.Targets(context.Background(), "fam")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Percentage != 120.0 {
		t.Errorf("percentage = %v, want 120", e.Percentage)
	}
	if e.Progress != core.ProgressCompleted {
		t.Errorf("progress = %s, want completed", e.Progress)
	}
}

func TestInvestmentTargetsEmptyFamily(t *testing.T) {
	f := newFixture()

	entries, err := f.invest.Targets(context.Background(), "fam")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestInvestmentTargetsScopedToFamily(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, investCat("etf", 10000))
	other := investCat("other-etf", 10000)
	other.FamilyID = "other"
	f.seedCategory(t, other)

	f.record(t, input(core.Investment, 2500, "etf", 1, 2025))

	entries, err := f.invest.Targets(context.Background(), "fam")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].CategoryID != "etf" {
		t.Errorf("entry category = %s, want etf", entries[0].CategoryID)
	}
}
