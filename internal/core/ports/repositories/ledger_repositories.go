package repositories

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
)

// LedgerReader defines read operations for ledger entries and lines.
type LedgerReader interface {
	// FindEntryByID retrieves an entry and its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error)

	// ListLinesByAccountID retrieves a keyset-paginated statement of an
	// account's ledger lines, newest first.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error)
}

// LedgerWriter is the only writer of balances and ledger lines in the whole
// system.
type LedgerWriter interface {
	// SaveEntry applies one settlement entry as a single atomic unit: it
	// locks every touched account (sorted ID order), rejects any line that
	// would take a balance below zero with ErrInsufficientFunds, updates
	// balances, and appends the entry with running balances per line.
	// A lock wait beyond the configured timeout surfaces as ErrConflict.
	SaveEntry(ctx context.Context, entry domain.Entry, lines []domain.EntryLine) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
