package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hearth/internal/amqp"
	"hearth/internal/core"
	"hearth/internal/export"
	"hearth/internal/store"
)

// StatementWorker appends recorded transactions to the family
// statement. It is driven by export messages and backed by a periodic
// sweep over unexported rows, so lost messages only delay an export.
type StatementWorker struct {
	store     store.Store
	writer    export.StatementWriter
	batchSize int
}

func NewStatementWorker(st store.Store, writer export.StatementWriter, batchSize int) *StatementWorker {
	return &StatementWorker{
		store:     st,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single statement export request.
// A vanished transaction is dropped, not requeued: the row was deleted
// between publish and consume and will never reappear.
func (w *StatementWorker) HandleExportMessage(ctx context.Context, msg *amqp.StatementExportMessage) error {
	t, err := w.store.GetTransaction(ctx, msg.FamilyID, msg.TransactionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before export, dropping",
				"transaction_id", msg.TransactionID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.exportTransaction(ctx, t)
}

// ProcessPending exports any rows the message path missed. This is the
// backup mechanism for lost AMQP messages or worker downtime.
func (w *StatementWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListUnexported(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending statement exports", "count", len(pending))

	for _, t := range pending {
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"transaction_id", t.ID, "error", err)
			continue
		}
	}
	return nil
}

// RunSweep runs ProcessPending on a fixed interval until ctx ends. One
// pass runs immediately so restarts drain the backlog without waiting.
func (w *StatementWorker) RunSweep(ctx context.Context, interval time.Duration) error {
	if err := w.ProcessPending(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup statement sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Statement sweep failed", "error", err)
			}
		}
	}
}

func (w *StatementWorker) exportTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.writer.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to statement: %w", err)
	}

	if err := w.store.MarkExported(ctx, t.FamilyID, t.ID); err != nil {
		// The append succeeded; the sweep may export this row twice.
		slog.ErrorContext(ctx, "Failed to mark transaction exported",
			"transaction_id", t.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Exported transaction to statement",
		"transaction_id", t.ID,
		"statement_ref", ref,
		"amount_cents", t.Amount.Cents)
	return nil
}
