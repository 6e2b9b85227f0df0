package repositories

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PayTaxParams carries one tax payment into the tax repository.
type PayTaxParams struct {
	TaxID             string
	AccountID         string // Paying student account
	Amount            decimal.Decimal
	TreasuryAccountID string
	Description       string
	RequestedBy       string
	Now               time.Time
}

// TaxReader defines read operations for tax items and recipients.
type TaxReader interface {
	// FindTaxByID retrieves a tax item.
	FindTaxByID(ctx context.Context, taxID string) (*domain.TaxItem, error)

	// ListTaxes retrieves tax items, newest first.
	ListTaxes(ctx context.Context, limit int, offset int) ([]domain.TaxItem, error)

	// ListRecipientsByTax retrieves all recipients of one tax item.
	ListRecipientsByTax(ctx context.Context, taxID string) ([]domain.TaxRecipient, error)

	// ListObligationsByAccount retrieves all tax obligations of an account.
	ListObligationsByAccount(ctx context.Context, accountID string) ([]domain.TaxRecipient, error)
}

// TaxWriter defines mutation operations for tax state.
type TaxWriter interface {
	// SaveTax persists a tax item and its recipient rows in one transaction.
	SaveTax(ctx context.Context, tax domain.TaxItem, recipients []domain.TaxRecipient) error

	// PayTax settles one (tax, account) obligation in one transaction:
	// recipient row lock, ErrAlreadyPaid guard, ledger entry debiting the
	// student and crediting the treasury, paid flag with timestamp. A
	// missing obligation fails with ErrNotFound.
	PayTax(ctx context.Context, p PayTaxParams) (*domain.TaxRecipient, error)
}

// TaxRepositoryFacade combines all tax repository interfaces.
type TaxRepositoryFacade interface {
	TaxReader
	TaxWriter
}
