package repositories

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SettleEnrollmentParams carries a cancellation or maturity payout into the
// savings repository. The repository re-checks the enrollment status under a
// row lock before paying, which is what makes redundant settlement calls
// harmless.
type SettleEnrollmentParams struct {
	EnrollmentID      string
	NewStatus         domain.EnrollmentStatus // CANCELLED or MATURED
	Payout            decimal.Decimal
	StudentAccountID  string
	TreasuryAccountID string
	Description       string
	RequestedBy       string
	Now               time.Time
}

// SavingsReader defines read operations for savings products and enrollments.
type SavingsReader interface {
	// FindProductByID retrieves a savings product.
	FindProductByID(ctx context.Context, productID string) (*domain.SavingsProduct, error)

	// ListProducts retrieves savings products, optionally including inactive ones.
	ListProducts(ctx context.Context, includeInactive bool) ([]domain.SavingsProduct, error)

	// FindEnrollmentByID retrieves an enrollment.
	FindEnrollmentByID(ctx context.Context, enrollmentID string) (*domain.SavingsEnrollment, error)

	// ListEnrollmentsByAccount retrieves all enrollments of an account.
	ListEnrollmentsByAccount(ctx context.Context, accountID string) ([]domain.SavingsEnrollment, error)

	// ListMaturedActiveEnrollmentIDs returns IDs of ACTIVE enrollments whose
	// maturity date is at or before asOf. Used by the settlement sweep.
	ListMaturedActiveEnrollmentIDs(ctx context.Context, asOf time.Time) ([]string, error)
}

// SavingsWriter defines mutation operations for savings state.
type SavingsWriter interface {
	// SaveProduct persists a new savings product.
	SaveProduct(ctx context.Context, product domain.SavingsProduct) error

	// OpenEnrollment debits the principal and creates the ACTIVE enrollment
	// in one transaction.
	OpenEnrollment(ctx context.Context, enrollment domain.SavingsEnrollment, entry domain.Entry, lines []domain.EntryLine) error

	// SettleEnrollment transitions an ACTIVE enrollment to CANCELLED or
	// MATURED and pays out from the treasury, all in one transaction. A
	// non-ACTIVE enrollment fails with ErrAlreadySettled (CANCELLED) or
	// ErrAlreadyMatured (MATURED) and produces no ledger entries.
	SettleEnrollment(ctx context.Context, p SettleEnrollmentParams) (*domain.SavingsEnrollment, error)
}

// SavingsRepositoryFacade combines all savings repository interfaces.
type SavingsRepositoryFacade interface {
	SavingsReader
	SavingsWriter
}
