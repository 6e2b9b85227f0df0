package pgsql

import (
	"time"

	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgsql repository over one shared pool and
// lock timeout.
func NewRepositoryProvider(pool *pgxpool.Pool, lockTimeout time.Duration) *portsrepo.RepositoryProvider {
	base := BaseRepository{Pool: pool, LockTimeout: lockTimeout}
	return &portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(base),
		UserRepo:    newPgxUserRepository(base),
		LedgerRepo:  newPgxLedgerRepository(base),
		StockRepo:   newPgxStockRepository(base),
		SavingsRepo: newPgxSavingsRepository(base),
		FundRepo:    newPgxFundRepository(base),
		TaxRepo:     newPgxTaxRepository(base),
		JobRepo:     newPgxJobRepository(base),
	}
}
