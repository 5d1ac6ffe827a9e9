package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hearth/internal/amqp"
	"hearth/internal/core"
	"hearth/internal/store"
)

// TransactionService is the journal: it validates referential
// integrity, evaluates the budget warning on pre-insert state, applies
// ledger postings atomically with the journal write, and publishes
// follow-up events.
type TransactionService struct {
	store  store.Store
	events EventPublisher
}

func NewTransactionService(st store.Store, events EventPublisher) *TransactionService {
	return &TransactionService{store: st, events: events}
}

type RecordTransactionInput struct {
	FamilyID    string
	UserID      string
	UserName    string
	UserIcon    string
	Type        core.TransactionType
	Amount      core.Money
	CategoryID  string
	AccountID   string
	ToAccountID string
	Date        core.Date
	Description string
}

type ListTransactionsInput struct {
	FamilyID string
	UserID   string
	Type     core.TransactionType
	Month    int // 0 means no month filter
	Year     int // 0 means no year filter
}

type UpdateTransactionInput struct {
	Type        core.TransactionType
	Amount      core.Money
	CategoryID  string
	AccountID   string
	ToAccountID string
	Date        core.Date
	Description string
}

// Record validates the input, computes any budget warning against the
// state prior to this insert, and persists the journal row together
// with its postings in one atomic storage write. Creator name and icon
// are denormalized here and never updated retroactively.
func (s *TransactionService) Record(ctx context.Context, in RecordTransactionInput) (core.Transaction, *core.BudgetWarning, error) {
	t := core.Transaction{
		ID:          uuid.NewString(),
		FamilyID:    in.FamilyID,
		UserID:      in.UserID,
		UserName:    in.UserName,
		UserIcon:    in.UserIcon,
		Type:        in.Type,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		AccountID:   in.AccountID,
		ToAccountID: in.ToAccountID,
		Date:        in.Date,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}

	postings, err := t.Postings()
	if err != nil {
		return core.Transaction{}, nil, err
	}

	var category core.Category
	if t.CategoryID != "" {
		category, err = s.store.GetCategory(ctx, t.FamilyID, t.CategoryID)
		if err != nil {
			return core.Transaction{}, nil, fmt.Errorf("resolve category: %w", err)
		}
	}

	warning, err := s.budgetWarning(ctx, t, category)
	if err != nil {
		return core.Transaction{}, nil, err
	}

	if err := s.store.InsertTransaction(ctx, t, postings); err != nil {
		return core.Transaction{}, nil, fmt.Errorf("record transaction: %w", err)
	}

	s.publishEvents(ctx, t, category, warning)

	return t, warning, nil
}

// budgetWarning evaluates the category budget against spending already
// recorded for the transaction's own month, family-wide. The new
// amount is included in the projected total but not yet persisted.
func (s *TransactionService) budgetWarning(ctx context.Context, t core.Transaction, category core.Category) (*core.BudgetWarning, error) {
	if t.Type != core.Expense || category.BudgetLimit.Cents <= 0 {
		return nil, nil
	}

	period, err := core.MonthlyPeriod(t.Date.Month(), t.Date.Year())
	if err != nil {
		return nil, err
	}
	spent, err := s.monthlyCategorySpent(ctx, t.FamilyID, category.ID, period)
	if err != nil {
		return nil, err
	}

	limit := category.BudgetLimit.Cents
	newTotal := spent + t.Amount.Cents
	switch {
	case newTotal > limit:
		return &core.BudgetWarning{
			Message:      fmt.Sprintf("Budget exceeded for %s", category.Name),
			CurrentSpent: core.Money{Cents: spent},
			NewTotal:     core.Money{Cents: newTotal},
			Limit:        category.BudgetLimit,
			Exceeded:     true,
		}, nil
	case newTotal*100 >= limit*80:
		return &core.BudgetWarning{
			Message:      fmt.Sprintf("Approaching budget limit for %s", category.Name),
			CurrentSpent: core.Money{Cents: spent},
			NewTotal:     core.Money{Cents: newTotal},
			Limit:        category.BudgetLimit,
			Exceeded:     false,
		}, nil
	}
	return nil, nil
}

func (s *TransactionService) monthlyCategorySpent(ctx context.Context, familyID, categoryID string, period core.Period) (int64, error) {
	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{
		FamilyID: familyID,
		Type:     core.Expense,
		Start:    period.Start,
		End:      period.End,
	})
	if err != nil {
		return 0, fmt.Errorf("list month expenses: %w", err)
	}
	var spent int64
	for _, tx := range txs {
		if tx.CategoryID == categoryID {
			spent += tx.Amount.Cents
		}
	}
	return spent, nil
}

// publishEvents emits follow-up events after a successful write. Event
// failures never fail the request; the journal row is already durable
// and the worker sweep re-exports anything missed.
func (s *TransactionService) publishEvents(ctx context.Context, t core.Transaction, category core.Category, warning *core.BudgetWarning) {
	if s.events == nil {
		return
	}

	if warning != nil {
		pct, _ := core.ClassifyBudget(warning.NewTotal, warning.Limit)
		alert := &amqp.BudgetAlertMessage{
			FamilyID:     t.FamilyID,
			CategoryID:   category.ID,
			CategoryName: category.Name,
			SpentCents:   warning.NewTotal.Cents,
			LimitCents:   warning.Limit.Cents,
			Percentage:   pct,
			Exceeded:     warning.Exceeded,
			Timestamp:    time.Now(),
		}
		if err := s.events.PublishBudgetAlert(ctx, alert); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"transaction_id", t.ID, "error", err)
		}
	}

	if err := s.events.PublishStatementExport(ctx, amqp.NewStatementExportMessage(t.FamilyID, t.ID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish statement export request",
			"transaction_id", t.ID, "error", err)
	}
}

// List returns journal rows newest first (date, then creation time).
func (s *TransactionService) List(ctx context.Context, in ListTransactionsInput) ([]core.Transaction, error) {
	f := store.TransactionFilter{
		FamilyID: in.FamilyID,
		UserID:   in.UserID,
		Type:     in.Type,
	}
	switch {
	case in.Month > 0 && in.Year > 0:
		period, err := core.MonthlyPeriod(in.Month, in.Year)
		if err != nil {
			return nil, err
		}
		f.Start, f.End = period.Start, period.End
	case in.Year > 0:
		period, err := core.AnnualPeriod(in.Year)
		if err != nil {
			return nil, err
		}
		f.Start, f.End = period.Start, period.End
	case in.Month > 0:
		return nil, core.ErrInvalidPeriod
	}
	return s.store.ListTransactions(ctx, f)
}

func (s *TransactionService) Get(ctx context.Context, familyID, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, familyID, id)
}

// Update replaces the stored record. Balances are NOT reposted: the
// original posting stays applied and the new values produce none.
// Callers that need a correction must delete and re-record.
func (s *TransactionService) Update(ctx context.Context, familyID, id string, in UpdateTransactionInput) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, familyID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	existing.Type = in.Type
	existing.Amount = in.Amount
	existing.CategoryID = in.CategoryID
	existing.AccountID = in.AccountID
	existing.ToAccountID = in.ToAccountID
	existing.Date = in.Date
	existing.Description = in.Description

	if err := existing.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if existing.CategoryID != "" {
		if _, err := s.store.GetCategory(ctx, familyID, existing.CategoryID); err != nil {
			return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
		}
	}

	if err := s.store.UpdateTransaction(ctx, existing); err != nil {
		return core.Transaction{}, err
	}
	return existing, nil
}

// Delete removes the record without reversing its posting.
func (s *TransactionService) Delete(ctx context.Context, familyID, id string) error {
	if err := s.store.DeleteTransaction(ctx, familyID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}
