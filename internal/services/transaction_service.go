// Package services orchestrates writes across SQLite and the export
// queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

// ExportPublisher queues ledger export work. Publishing is best-effort:
// the worker's periodic sweep catches anything a failed publish misses.
type ExportPublisher interface {
	PublishTransactionUpsert(ctx context.Context, id int64) error
	PublishTransactionDelete(ctx context.Context, id int64) error
}

// TransactionService writes transactions to SQLite first and then
// notifies the export worker. A queue failure never fails the request;
// the row is already durable locally.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher ExportPublisher
}

func NewTransactionService(storage *storage.SQLiteRepository, publisher ExportPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.storage.GetCategory(ctx, t.CategoryID); err != nil {
		return core.Transaction{}, fmt.Errorf("resolve category %d: %w", t.CategoryID, err)
	}

	created, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishUpsert(ctx, created.ID)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, err := s.storage.GetCategory(ctx, t.CategoryID); err != nil {
		return core.Transaction{}, fmt.Errorf("resolve category %d: %w", t.CategoryID, err)
	}

	updated, err := s.storage.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishUpsert(ctx, updated.ID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "export publisher not available, skipping delete message", "id", id)
		return nil
	}
	if err := s.publisher.PublishTransactionDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *TransactionService) ListInRange(ctx context.Context, owner *int64, start, end time.Time) ([]core.Transaction, error) {
	return s.storage.ListTransactionsInRange(ctx, owner, start, end)
}

func (s *TransactionService) publishUpsert(ctx context.Context, id int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "export publisher not available, skipping export message", "id", id)
		return
	}
	if err := s.publisher.PublishTransactionUpsert(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish export message", "id", id, "error", err)
	}
}
