// Package store defines the storage ports shared by all backends.
package store

import (
	"context"
	"time"

	"hearth/internal/core"
)

// TransactionFilter narrows a journal listing. FamilyID is required;
// the rest are optional. Start/End bound the date range half-open,
// zero values meaning unbounded.
type TransactionFilter struct {
	FamilyID string
	UserID   string
	Type     core.TransactionType
	Start    time.Time
	End      time.Time
}

// Ports for the storage backends.
type (
	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) error
		// GetCategory returns core.ErrNotFound when the id does not
		// exist within the family.
		GetCategory(ctx context.Context, familyID, id string) (core.Category, error)
		// ListCategories returns the family's categories, optionally
		// filtered by type ("" means all), name ascending.
		ListCategories(ctx context.Context, familyID string, ctype core.CategoryType) ([]core.Category, error)
		DeleteCategory(ctx context.Context, familyID, id string) error
	}

	AccountStore interface {
		CreateAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, familyID, id string) (core.Account, error)
		ListAccounts(ctx context.Context, familyID string) ([]core.Account, error)
	}

	TransactionStore interface {
		// InsertTransaction persists the journal row and applies every
		// posting as an atomic balance increment, all in one storage
		// transaction. Either everything lands or nothing does.
		InsertTransaction(ctx context.Context, t core.Transaction, postings []core.Posting) error
		GetTransaction(ctx context.Context, familyID, id string) (core.Transaction, error)
		// ListTransactions returns matches sorted by date descending,
		// creation time descending as tiebreak.
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
		// UpdateTransaction replaces the stored record. It does not
		// touch account balances.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction removes the record without reversing its
		// postings.
		DeleteTransaction(ctx context.Context, familyID, id string) error
		// ListUnexported returns journal rows not yet written to the
		// family statement, oldest first.
		ListUnexported(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkExported(ctx context.Context, familyID, id string) error
	}

	BalanceStore interface {
		// GetMonthlyBalance returns core.ErrNotFound on a cache miss.
		GetMonthlyBalance(ctx context.Context, familyID, userID string, month, year int) (core.MonthlyBalance, error)
		// UpsertMonthlyBalance overwrites the snapshot for its key.
		// Last writer wins; the snapshot is a derived cache.
		UpsertMonthlyBalance(ctx context.Context, b core.MonthlyBalance) error
	}

	// Store is the unified backend surface.
	Store interface {
		CategoryStore
		AccountStore
		TransactionStore
		BalanceStore
	}
)
