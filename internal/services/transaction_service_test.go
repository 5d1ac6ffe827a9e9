package services

import (
	"context"
	"errors"
	"testing"

	"hearth/internal/core"
)

func TestRecordAppliesPostingsAndConservation(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, incomeCat("inc"))
	f.seedCategory(t, expenseCat("exp", 0))
	f.seedAccount(t, "main", 50000)

	in := input(core.Income, 100000, "inc", 3, 2025)
	in.AccountID = "main"
	f.record(t, in)

	out := input(core.Expense, 30000, "exp", 3, 2025)
	out.AccountID = "main"
	f.record(t, out)

	// opening + signed postings
	if got := f.balance(t, "main"); got != 50000+100000-30000 {
		t.Fatalf("balance %d, want 120000", got)
	}
}

func TestRecordTransferSymmetry(t *testing.T) {
	f := newFixture()
	f.seedAccount(t, "checking", 80000)
	f.seedAccount(t, "savings", 10000)

	in := RecordTransactionInput{
		FamilyID:    "fam",
		UserID:      "u1",
		Type:        core.Transfer,
		Amount:      core.Money{Cents: 25000},
		AccountID:   "checking",
		ToAccountID: "savings",
		Date:        core.NewDate(2025, 3, 15),
	}
	f.record(t, in)

	if got := f.balance(t, "checking"); got != 55000 {
		t.Fatalf("source %d, want 55000", got)
	}
	if got := f.balance(t, "savings"); got != 35000 {
		t.Fatalf("destination %d, want 35000", got)
	}
}

func TestRecordUnknownCategoryFails(t *testing.T) {
	f := newFixture()
	_, _, err := f.txs.Record(context.Background(), input(core.Expense, 100, "ghost", 3, 2025))
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordBudgetWarningThresholds(t *testing.T) {
	cases := []struct {
		name         string
		prior, next  int64
		wantWarning  bool
		wantExceeded bool
	}{
		{"below threshold", 0, 7999, false, false},
		{"at 80 percent", 0, 8000, true, false},
		{"just under limit", 7000, 2999, true, false},
		{"at limit", 7000, 3000, true, false},
		{"over limit", 7000, 3001, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.seedCategory(t, expenseCat("exp", 10000))
			if tc.prior > 0 {
				f.record(t, input(core.Expense, tc.prior, "exp", 3, 2025))
			}

			_, warning := f.record(t, input(core.Expense, tc.next, "exp", 3, 2025))
			if !tc.wantWarning {
				if warning != nil {
					t.Fatalf("unexpected warning %+v", warning)
				}
				return
			}
			if warning == nil {
				t.Fatal("expected warning")
			}
			if warning.Exceeded != tc.wantExceeded {
				t.Fatalf("exceeded=%v, want %v", warning.Exceeded, tc.wantExceeded)
			}
			if warning.CurrentSpent.Cents != tc.prior {
				t.Fatalf("current spent %d, want pre-insert %d", warning.CurrentSpent.Cents, tc.prior)
			}
			if warning.NewTotal.Cents != tc.prior+tc.next {
				t.Fatalf("new total %d, want %d", warning.NewTotal.Cents, tc.prior+tc.next)
			}
		})
	}
}

func TestRecordBudgetWarningScopedToFamilyAndMonth(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, expenseCat("exp", 10000))

	// Same category name, different family: must not count.
	other := expenseCat("other-exp", 10000)
	other.FamilyID = "other"
	f.seedCategory(t, other)
	otherIn := input(core.Expense, 9000, "other-exp", 3, 2025)
	otherIn.FamilyID = "other"
	f.record(t, otherIn)

	// Different month: must not count either.
	f.record(t, input(core.Expense, 9000, "exp", 2, 2025))

	_, warning := f.record(t, input(core.Expense, 100, "exp", 3, 2025))
	if warning != nil {
		t.Fatalf("spending from other families or months leaked into the warning: %+v", warning)
	}
}

func TestRecordPublishesEvents(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, expenseCat("exp", 10000))

	tx, _ := f.record(t, input(core.Expense, 9000, "exp", 3, 2025))

	if len(f.events.exports) != 1 || f.events.exports[0].TransactionID != tx.ID {
		t.Fatalf("expected one export event for %s, got %+v", tx.ID, f.events.exports)
	}
	if len(f.events.alerts) != 1 {
		t.Fatalf("expected one budget alert, got %d", len(f.events.alerts))
	}
	alert := f.events.alerts[0]
	if alert.CategoryName != "Groceries" || alert.Percentage != 90 || alert.Exceeded {
		t.Fatalf("unexpected alert %+v", alert)
	}
}

func TestRecordWithNilPublisher(t *testing.T) {
	f := newFixture()
	f.txs = NewTransactionService(f.store, nil)
	f.seedCategory(t, expenseCat("exp", 10000))
	// Must not panic and must still persist.
	tx, _ := f.record(t, input(core.Expense, 9500, "exp", 3, 2025))
	if _, err := f.store.GetTransaction(context.Background(), "fam", tx.ID); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTrip(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, investCat("inv", 0))
	f.seedAccount(t, "src", 100000)
	f.seedAccount(t, "dst", 0)

	in := RecordTransactionInput{
		FamilyID:    "fam",
		UserID:      "u1",
		UserName:    "Ada",
		UserIcon:    "owl",
		Type:        core.Investment,
		Amount:      core.Money{Cents: 12345},
		CategoryID:  "inv",
		AccountID:   "src",
		ToAccountID: "dst",
		Date:        core.NewDate(2025, 6, 21),
		Description: "monthly ETF buy",
	}
	recorded, _ := f.record(t, in)

	got, err := f.txs.Get(context.Background(), "fam", recorded.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount.Cents != 12345 || got.Type != core.Investment ||
		got.CategoryID != "inv" || got.AccountID != "src" || got.ToAccountID != "dst" ||
		!got.Date.Equal(core.NewDate(2025, 6, 21).Time) ||
		got.Description != "monthly ETF buy" || got.UserName != "Ada" {
		t.Fatalf("listed transaction differs from recorded: %+v", got)
	}
}

func TestUpdateDoesNotRepostBalances(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, expenseCat("exp", 0))
	f.seedAccount(t, "main", 50000)

	in := input(core.Expense, 10000, "exp", 3, 2025)
	in.AccountID = "main"
	tx, _ := f.record(t, in)

	if got := f.balance(t, "main"); got != 40000 {
		t.Fatalf("balance after record %d, want 40000", got)
	}

	_, err := f.txs.Update(context.Background(), "fam", tx.ID, UpdateTransactionInput{
		Type:       core.Expense,
		Amount:     core.Money{Cents: 99999},
		CategoryID: "exp",
		AccountID:  "main",
		Date:       core.NewDate(2025, 3, 20),
	})
	if err != nil {
		t.Fatal(err)
	}

	// The original posting stays; the new amount produces none.
	if got := f.balance(t, "main"); got != 40000 {
		t.Fatalf("update reposted balances: %d", got)
	}
	got, _ := f.txs.Get(context.Background(), "fam", tx.ID)
	if got.Amount.Cents != 99999 {
		t.Fatalf("record not replaced: %+v", got)
	}
}

func TestDeleteDoesNotReversePosting(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, incomeCat("inc"))
	f.seedAccount(t, "main", 0)

	in := input(core.Income, 5000, "inc", 3, 2025)
	in.AccountID = "main"
	tx, _ := f.record(t, in)

	if err := f.txs.Delete(context.Background(), "fam", tx.ID); err != nil {
		t.Fatal(err)
	}
	if got := f.balance(t, "main"); got != 5000 {
		t.Fatalf("delete reversed the posting: %d", got)
	}
	if _, err := f.txs.Get(context.Background(), "fam", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("record still present: %v", err)
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture()
	f.seedCategory(t, incomeCat("inc"))
	f.seedCategory(t, expenseCat("exp", 0))

	f.record(t, input(core.Income, 100, "inc", 2, 2025))
	f.record(t, input(core.Expense, 200, "exp", 3, 2025))
	f.record(t, input(core.Expense, 300, "exp", 3, 2025))

	march, err := f.txs.List(context.Background(), ListTransactionsInput{FamilyID: "fam", Month: 3, Year: 2025})
	if err != nil {
		t.Fatal(err)
	}
	if len(march) != 2 {
		t.Fatalf("month filter returned %d rows", len(march))
	}

	expenses, _ := f.txs.List(context.Background(), ListTransactionsInput{FamilyID: "fam", Type: core.Expense})
	if len(expenses) != 2 {
		t.Fatalf("type filter returned %d rows", len(expenses))
	}

	if _, err := f.txs.List(context.Background(), ListTransactionsInput{FamilyID: "fam", Month: 5}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("month without year must be rejected, got %v", err)
	}
}
