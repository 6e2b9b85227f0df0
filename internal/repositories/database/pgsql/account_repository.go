package pgsql

import (
	"context"
	"errors"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(base BaseRepository) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: base}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, owner_user_id, role, account_number, qr_token, balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.OwnerUserID,
		&acc.Role,
		&acc.AccountNumber,
		&acc.QRToken,
		&acc.Balance,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan account row", err)
	}
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	return scanAccount(r.Pool.QueryRow(ctx, query, accountID))
}

// FindAccountByOwner retrieves the active account owned by the given user.
func (r *PgxAccountRepository) FindAccountByOwner(ctx context.Context, ownerUserID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_user_id = $1 AND is_active;`
	return scanAccount(r.Pool.QueryRow(ctx, query, ownerUserID))
}

// FindAccountByNumber resolves a human-entered account number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 AND is_active;`
	return scanAccount(r.Pool.QueryRow(ctx, query, accountNumber))
}

// FindAccountByRole retrieves the shared role account (TEACHER treasury,
// BANKER, MART).
func (r *PgxAccountRepository) FindAccountByRole(ctx context.Context, role domain.Role) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 AND is_active ORDER BY created_at LIMIT 1;`
	return scanAccount(r.Pool.QueryRow(ctx, query, role))
}

// ListAccountsByRole retrieves accounts carrying the given role.
func (r *PgxAccountRepository) ListAccountsByRole(ctx context.Context, role domain.Role, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE role = $1 AND is_active
		ORDER BY account_number
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, role, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by role", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return accounts, nil
}
