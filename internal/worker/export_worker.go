// Package worker moves transactions from SQLite to the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/sheets"
	"tally/internal/storage"
)

// ExportWorker consumes queue messages and also sweeps the database for
// rows a lost message left behind.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.LedgerWriter
	deleter   sheets.LedgerDeleter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, ledger sheets.LedgerWriter, deleter sheets.LedgerDeleter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		ledger:    ledger,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage processes one queue message.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	switch msg.Action {
	case amqp.ActionDelete:
		return w.handleDelete(ctx, msg.ID)
	default:
		return w.handleUpsert(ctx, msg.ID)
	}
}

func (w *ExportWorker) handleUpsert(ctx context.Context, id int64) error {
	t, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the message arrived; nothing to export.
		slog.InfoContext(ctx, "transaction gone before export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	return w.export(ctx, t.ID, func() error {
		_, err := w.ledger.AppendTransaction(ctx, t)
		return err
	})
}

func (w *ExportWorker) handleDelete(ctx context.Context, id int64) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "no ledger deleter configured, skipping delete", "id", id)
		return nil
	}
	if err := w.deleter.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete ledger row: %w", err)
	}
	slog.InfoContext(ctx, "ledger row deleted", "id", id)
	return nil
}

// ProcessPending exports transactions still marked pending. This is the
// safety net for lost queue messages; it runs periodically.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending export: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "processing pending exports", "count", len(pending))
	for _, t := range pending {
		t := t
		if err := w.export(ctx, t.ID, func() error {
			_, err := w.ledger.AppendTransaction(ctx, t)
			return err
		}); err != nil {
			slog.ErrorContext(ctx, "failed to export transaction", "id", t.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once at worker start, to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending export at startup: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "no pending exports on startup")
		return nil
	}

	slog.InfoContext(ctx, "found pending exports on startup", "count", len(pending))
	exported, failed := 0, 0
	for _, t := range pending {
		t := t
		if err := w.export(ctx, t.ID, func() error {
			_, err := w.ledger.AppendTransaction(ctx, t)
			return err
		}); err != nil {
			slog.ErrorContext(ctx, "startup export failed", "id", t.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// Run consumes the queue and sweeps for pending rows until the context
// is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, sweepInterval time.Duration) error {
	if err := w.StartupCheck(ctx); err != nil {
		slog.ErrorContext(ctx, "startup check failed", "error", err)
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "pending sweep failed", "error", err)
				}
			}
		}
	}()

	return client.ConsumeWithRetry(ctx, func(msg *amqp.ExportMessage) error {
		return w.HandleMessage(ctx, msg)
	})
}

func (w *ExportWorker) export(ctx context.Context, id int64, appendRow func() error) error {
	if err := appendRow(); err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}
	if err := w.storage.MarkExported(ctx, id); err != nil {
		// The row is on the ledger; only the local flag failed.
		slog.ErrorContext(ctx, "failed to mark exported", "id", id, "error", err)
	}
	return nil
}
