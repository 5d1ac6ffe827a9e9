// Package memory is the no-infrastructure statement writer used in
// tests and when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"hearth/internal/core"
)

type Writer struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Writer {
	return &Writer{}
}

// Append stores the row and returns a synthetic reference.
func (w *Writer) Append(_ context.Context, t core.Transaction) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, t)
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.Transaction(nil), w.rows...)
}
