package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/core"
	"tally/internal/storage"
)

// SummaryService aggregates the transactions of a report window.
type SummaryService struct {
	storage *storage.SQLiteRepository
}

func NewSummaryService(storage *storage.SQLiteRepository) *SummaryService {
	return &SummaryService{storage: storage}
}

// Summarize loads the window's transactions and reduces them to totals
// and a per-category breakdown.
func (s *SummaryService) Summarize(ctx context.Context, owner *int64, w core.Window) (core.Summary, error) {
	transactions, err := s.storage.ListTransactionsInRange(ctx, owner, w.Start, w.End)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load window transactions: %w", err)
	}

	summary := core.Summarize(transactions)
	if summary.Skipped > 0 {
		slog.WarnContext(ctx, "summary skipped transactions with broken categories",
			"skipped", summary.Skipped,
			"window_start", w.Start,
			"window_end", w.End)
	}
	return summary, nil
}
