package repositories

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
)

// AccountReader defines read operations for account data. Roster
// administration creates and deletes accounts externally; the core only ever
// reads them. Balance mutation happens exclusively through the ledger
// repository's entry application.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByOwner retrieves the account owned by the given user.
	FindAccountByOwner(ctx context.Context, ownerUserID string) (*domain.Account, error)

	// FindAccountByNumber resolves a human-entered account number to an account.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindAccountByRole retrieves the shared role account (TEACHER treasury,
	// BANKER, MART). Exactly one active account carries each of those roles.
	FindAccountByRole(ctx context.Context, role domain.Role) (*domain.Account, error)

	// ListAccountsByRole retrieves accounts carrying the given role.
	ListAccountsByRole(ctx context.Context, role domain.Role, limit int, offset int) ([]domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
}
