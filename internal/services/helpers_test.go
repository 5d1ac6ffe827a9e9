package services

import (
	"context"
	"sync"
	"testing"

	"hearth/internal/amqp"
	"hearth/internal/core"
	"hearth/internal/store/memory"
)

// capturePublisher records published events instead of talking to a
// broker.
type capturePublisher struct {
	mu      sync.Mutex
	alerts  []*amqp.BudgetAlertMessage
	exports []*amqp.StatementExportMessage
}

func (p *capturePublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
	return nil
}

func (p *capturePublisher) PublishStatementExport(_ context.Context, msg *amqp.StatementExportMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exports = append(p.exports, msg)
	return nil
}

type fixture struct {
	store  *memory.Store
	events *capturePublisher
	txs    *TransactionService
	stats  *StatsService
	budget *BudgetService
	invest *InvestmentService
}

func newFixture() *fixture {
	st := memory.New()
	events := &capturePublisher{}
	return &fixture{
		store:  st,
		events: events,
		txs:    NewTransactionService(st, events),
		stats:  NewStatsService(st),
		budget: NewBudgetService(st),
		invest: NewInvestmentService(st),
	}
}

func (f *fixture) seedCategory(t *testing.T, c core.Category) core.Category {
	t.Helper()
	if err := f.store.CreateCategory(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func (f *fixture) seedAccount(t *testing.T, id string, opening int64) core.Account {
	t.Helper()
	a := core.Account{
		ID:             id,
		FamilyID:       "fam",
		Name:           id,
		Type:           core.AccountBank,
		OwnerType:      core.OwnerFamily,
		OpeningBalance: core.Money{Cents: opening},
		CurrentBalance: core.Money{Cents: opening},
	}
	if err := f.store.CreateAccount(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func (f *fixture) record(t *testing.T, in RecordTransactionInput) (core.Transaction, *core.BudgetWarning) {
	t.Helper()
	tx, warning, err := f.txs.Record(context.Background(), in)
	if err != nil {
		t.Fatalf("record %s %d: %v", in.Type, in.Amount.Cents, err)
	}
	return tx, warning
}

func (f *fixture) balance(t *testing.T, id string) int64 {
	t.Helper()
	a, err := f.store.GetAccount(context.Background(), "fam", id)
	if err != nil {
		t.Fatal(err)
	}
	return a.CurrentBalance.Cents
}

func incomeCat(id string) core.Category {
	return core.Category{ID: id, FamilyID: "fam", Name: "Salary", Type: core.CategoryIncome, IsShared: true}
}

func expenseCat(id string, limit int64) core.Category {
	return core.Category{ID: id, FamilyID: "fam", Name: "Groceries", Type: core.CategoryExpense, BudgetLimit: core.Money{Cents: limit}, IsShared: true}
}

func investCat(id string, target int64) core.Category {
	return core.Category{ID: id, FamilyID: "fam", Name: "ETF", Type: core.CategoryInvestment, InvestmentTarget: core.Money{Cents: target}, IsShared: true}
}

func input(ttype core.TransactionType, amount int64, categoryID string, month, year int) RecordTransactionInput {
	return RecordTransactionInput{
		FamilyID:   "fam",
		UserID:     "u1",
		UserName:   "Ada",
		Type:       ttype,
		Amount:     core.Money{Cents: amount},
		CategoryID: categoryID,
		Date:       core.NewDate(year, month, 15),
	}
}
