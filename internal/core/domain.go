package core

import (
	"strings"
	"time"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Investment TransactionType = "investment"
	Transfer   TransactionType = "transfer"
)

const (
	AccountBank       AccountType = "bank"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountOther      AccountType = "other"
)

const (
	OwnerFamily   OwnerType = "family"
	OwnerPersonal OwnerType = "personal"
)

type (
	TransactionType string
	AccountType     string
	OwnerType       string

	// CategoryType is the bucket type; transfers carry no category.
	CategoryType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Category is a typed bucket for journal entries. BudgetLimit is
	// only meaningful on expense categories, InvestmentTarget only on
	// investment categories; zero means unset.
	Category struct {
		ID               string
		FamilyID         string
		UserID           string // set when the category is personal
		Name             string
		Type             CategoryType
		Color            string
		BudgetLimit      Money
		InvestmentTarget Money
		IsShared         bool
		CreatedAt        time.Time
	}

	// Account holds a running balance. OpeningBalance is immutable;
	// CurrentBalance is mutated only by ledger postings.
	Account struct {
		ID             string
		FamilyID       string
		UserID         string // set when OwnerType is personal
		Name           string
		Type           AccountType
		OwnerType      OwnerType
		OpeningBalance Money
		CurrentBalance Money
		CreatedAt      time.Time
	}

	// Transaction is a dated journal event. AccountID is the source
	// account, ToAccountID the destination (transfers, and optionally
	// investments moved into a dedicated account).
	Transaction struct {
		ID          string
		FamilyID    string
		UserID      string
		UserName    string // denormalized at write time
		UserIcon    string
		Type        TransactionType
		Amount      Money
		CategoryID  string
		AccountID   string
		ToAccountID string
		Date        Date
		Description string
		CreatedAt   time.Time
	}

	// MonthlyBalance is the carry-forward snapshot for one family
	// (optionally one user) and one month. It is a derived cache,
	// always recomputable from the journal.
	MonthlyBalance struct {
		FamilyID       string
		UserID         string // "" means family-wide
		Month          int    // 1-12
		Year           int
		OpeningBalance Money
		ClosingBalance Money
		HasLoan        bool
		LoanAmount     Money
		ComputedAt     time.Time
	}
)

const (
	CategoryIncome     CategoryType = "income"
	CategoryExpense    CategoryType = "expense"
	CategoryInvestment CategoryType = "investment"
)

// UnknownCategory is the bucket label for grouped transactions whose
// category no longer exists.
const UnknownCategory = "Unknown"

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Investment, Transfer:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	switch t {
	case CategoryIncome, CategoryExpense, CategoryInvestment:
		return true
	}
	return false
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountCreditCard, AccountCash, AccountOther:
		return true
	}
	return false
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if c.BudgetLimit.Cents != 0 && c.Type != CategoryExpense {
		return ErrLimitWrongType
	}
	if c.InvestmentTarget.Cents != 0 && c.Type != CategoryInvestment {
		return ErrTargetWrongType
	}
	if c.BudgetLimit.Cents < 0 || c.InvestmentTarget.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidType
	}
	switch a.OwnerType {
	case OwnerFamily, OwnerPersonal:
	default:
		return ErrInvalidType
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrInvalidArgument
	}
	switch t.Type {
	case Transfer:
		if t.AccountID == "" || t.ToAccountID == "" {
			return ErrMissingAccount
		}
		if t.CategoryID != "" {
			return ErrUnexpectedCategory
		}
	case Income, Expense, Investment:
		if t.CategoryID == "" {
			return ErrMissingCategory
		}
		if t.Type != Investment && t.ToAccountID != "" {
			return ErrInvalidArgument
		}
		if t.Type == Investment && t.ToAccountID != "" && t.AccountID == "" {
			// A destination only makes sense when money leaves a source.
			return ErrMissingAccount
		}
	}
	return nil
}
