// Package sheets defines the outbound ports for the external ledger.
package sheets

import (
	"context"

	"tally/internal/core"
)

type (
	// LedgerWriter appends a transaction row to the external ledger.
	// Appending the same transaction ID twice replaces the existing row.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// LedgerDeleter removes a transaction's row from the external ledger.
	// Deleting an ID that was never exported is not an error.
	LedgerDeleter interface {
		DeleteTransaction(ctx context.Context, id int64) error
	}
)
