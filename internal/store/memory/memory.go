// Package memory is the in-memory storage backend. It backs unit
// tests and the memory run mode; one mutex guards everything so a
// posting's increments are applied atomically with the journal write.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hearth/internal/core"
	"hearth/internal/store"
)

type Store struct {
	mu         sync.Mutex
	categories map[string]core.Category
	accounts   map[string]core.Account
	journal    map[string]core.Transaction
	balances   map[string]core.MonthlyBalance
	exported   map[string]bool
	seq        int64 // insertion order tiebreak for equal timestamps
	order      map[string]int64
}

func New() *Store {
	return &Store{
		categories: map[string]core.Category{},
		accounts:   map[string]core.Account{},
		journal:    map[string]core.Transaction{},
		balances:   map[string]core.MonthlyBalance{},
		exported:   map[string]bool{},
		order:      map[string]int64{},
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; ok {
		return fmt.Errorf("category %s: %w", c.ID, core.ErrConflict)
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) GetCategory(_ context.Context, familyID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.FamilyID != familyID {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, familyID string, ctype core.CategoryType) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.FamilyID != familyID {
			continue
		}
		if ctype != "" && c.Type != ctype {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, familyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.FamilyID != familyID {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("account %s: %w", a.ID, core.ErrConflict)
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, familyID, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.FamilyID != familyID {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, familyID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.FamilyID != familyID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// InsertTransaction writes the journal row and applies every posting
// under the same lock. Postings against unknown accounts reject the
// whole write, leaving no partial state.
func (s *Store) InsertTransaction(_ context.Context, t core.Transaction, postings []core.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.journal[t.ID]; ok {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrConflict)
	}
	for _, p := range postings {
		a, ok := s.accounts[p.AccountID]
		if !ok || a.FamilyID != t.FamilyID {
			return fmt.Errorf("account %s: %w", p.AccountID, core.ErrNotFound)
		}
	}
	for _, p := range postings {
		a := s.accounts[p.AccountID]
		a.CurrentBalance.Cents += p.Delta
		s.accounts[p.AccountID] = a
	}
	s.journal[t.ID] = t
	s.seq++
	s.order[t.ID] = s.seq
	return nil
}

func (s *Store) GetTransaction(_ context.Context, familyID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.journal[id]
	if !ok || t.FamilyID != familyID {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.journal {
		if t.FamilyID != f.FamilyID {
			continue
		}
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if !f.Start.IsZero() && t.Date.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && !t.Date.Before(f.End) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.journal[t.ID]
	if !ok || old.FamilyID != t.FamilyID {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	s.journal[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, familyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.journal[id]
	if !ok || t.FamilyID != familyID {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	delete(s.journal, id)
	delete(s.exported, id)
	delete(s.order, id)
	return nil
}

func (s *Store) ListUnexported(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for id, t := range s.journal {
		if s.exported[id] {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkExported(_ context.Context, familyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.journal[id]
	if !ok || t.FamilyID != familyID {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	s.exported[id] = true
	return nil
}

func balanceKey(familyID, userID string, month, year int) string {
	return fmt.Sprintf("%s|%s|%d-%02d", familyID, userID, year, month)
}

func (s *Store) GetMonthlyBalance(_ context.Context, familyID, userID string, month, year int) (core.MonthlyBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[balanceKey(familyID, userID, month, year)]
	if !ok {
		return core.MonthlyBalance{}, fmt.Errorf("monthly balance %d/%d: %w", month, year, core.ErrNotFound)
	}
	return b, nil
}

func (s *Store) UpsertMonthlyBalance(_ context.Context, b core.MonthlyBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[balanceKey(b.FamilyID, b.UserID, b.Month, b.Year)] = b
	return nil
}
