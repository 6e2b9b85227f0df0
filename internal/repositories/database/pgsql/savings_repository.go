package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgxSavingsRepository struct {
	BaseRepository
}

// newPgxSavingsRepository creates a new repository for savings products and
// enrollments.
func newPgxSavingsRepository(base BaseRepository) portsrepo.SavingsRepositoryFacade {
	return &PgxSavingsRepository{BaseRepository: base}
}

var _ portsrepo.SavingsRepositoryFacade = (*PgxSavingsRepository)(nil)

const savingsProductColumns = `product_id, name, maturity_days, interest_rate, early_cancel_rate, max_amount, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanSavingsProduct(row pgx.Row) (*domain.SavingsProduct, error) {
	var p domain.SavingsProduct
	err := row.Scan(
		&p.ProductID,
		&p.Name,
		&p.MaturityDays,
		&p.InterestRate,
		&p.EarlyCancelRate,
		&p.MaxAmount,
		&p.IsActive,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan savings product row", err)
	}
	return &p, nil
}

const enrollmentColumns = `enrollment_id, account_id, product_id, principal, start_date, maturity_date, status, created_at, created_by, last_updated_at, last_updated_by`

func scanEnrollment(row pgx.Row) (*domain.SavingsEnrollment, error) {
	var e domain.SavingsEnrollment
	err := row.Scan(
		&e.EnrollmentID,
		&e.AccountID,
		&e.ProductID,
		&e.Principal,
		&e.StartDate,
		&e.MaturityDate,
		&e.Status,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan enrollment row", err)
	}
	return &e, nil
}

// FindProductByID retrieves a savings product.
func (r *PgxSavingsRepository) FindProductByID(ctx context.Context, productID string) (*domain.SavingsProduct, error) {
	query := `SELECT ` + savingsProductColumns + ` FROM savings_products WHERE product_id = $1;`
	return scanSavingsProduct(r.Pool.QueryRow(ctx, query, productID))
}

// ListProducts retrieves savings products, optionally including inactive ones.
func (r *PgxSavingsRepository) ListProducts(ctx context.Context, includeInactive bool) ([]domain.SavingsProduct, error) {
	query := `SELECT ` + savingsProductColumns + ` FROM savings_products`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query savings products", err)
	}
	defer rows.Close()

	products := []domain.SavingsProduct{}
	for rows.Next() {
		p, err := scanSavingsProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating savings product rows", err)
	}
	return products, nil
}

// FindEnrollmentByID retrieves an enrollment.
func (r *PgxSavingsRepository) FindEnrollmentByID(ctx context.Context, enrollmentID string) (*domain.SavingsEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM savings_enrollments WHERE enrollment_id = $1;`
	return scanEnrollment(r.Pool.QueryRow(ctx, query, enrollmentID))
}

// ListEnrollmentsByAccount retrieves all enrollments of an account.
func (r *PgxSavingsRepository) ListEnrollmentsByAccount(ctx context.Context, accountID string) ([]domain.SavingsEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM savings_enrollments WHERE account_id = $1 ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query enrollments for account "+accountID, err)
	}
	defer rows.Close()

	enrollments := []domain.SavingsEnrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating enrollment rows", err)
	}
	return enrollments, nil
}

// ListMaturedActiveEnrollmentIDs returns IDs of ACTIVE enrollments whose
// maturity date is at or before asOf.
func (r *PgxSavingsRepository) ListMaturedActiveEnrollmentIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT enrollment_id
		FROM savings_enrollments
		WHERE status = $1 AND maturity_date <= $2
		ORDER BY maturity_date;
	`
	rows, err := r.Pool.Query(ctx, query, domain.EnrollmentActive, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query matured enrollments", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan matured enrollment id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating matured enrollment rows", err)
	}
	return ids, nil
}

// SaveProduct persists a new savings product.
func (r *PgxSavingsRepository) SaveProduct(ctx context.Context, product domain.SavingsProduct) error {
	query := `
		INSERT INTO savings_products (product_id, name, maturity_days, interest_rate, early_cancel_rate, max_amount, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		product.ProductID,
		product.Name,
		product.MaturityDays,
		product.InterestRate,
		product.EarlyCancelRate,
		product.MaxAmount,
		product.IsActive,
		product.CreatedAt,
		product.CreatedBy,
		product.LastUpdatedAt,
		product.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: savings product %s", apperrors.ErrDuplicate, product.ProductID)
		}
		return apperrors.NewAppError(500, "failed to insert savings product "+product.ProductID, err)
	}
	return nil
}

// OpenEnrollment debits the principal and creates the ACTIVE enrollment in
// one transaction.
func (r *PgxSavingsRepository) OpenEnrollment(ctx context.Context, enrollment domain.SavingsEnrollment, entry domain.Entry, lines []domain.EntryLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
		return err
	}

	query := `
		INSERT INTO savings_enrollments (enrollment_id, account_id, product_id, principal, start_date, maturity_date, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		enrollment.EnrollmentID,
		enrollment.AccountID,
		enrollment.ProductID,
		enrollment.Principal,
		enrollment.StartDate,
		enrollment.MaturityDate,
		enrollment.Status,
		enrollment.CreatedAt,
		enrollment.CreatedBy,
		enrollment.LastUpdatedAt,
		enrollment.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert enrollment "+enrollment.EnrollmentID, err)
	}
	return r.Commit(ctx, tx)
}

// SettleEnrollment transitions an ACTIVE enrollment to CANCELLED or MATURED
// and pays out from the treasury, all in one transaction. The status is
// re-checked under the row lock, which is what makes concurrent or repeated
// settlement calls harmless.
func (r *PgxSavingsRepository) SettleEnrollment(ctx context.Context, p portsrepo.SettleEnrollmentParams) (*domain.SavingsEnrollment, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + enrollmentColumns + ` FROM savings_enrollments WHERE enrollment_id = $1 FOR UPDATE;`
	enrollment, err := scanEnrollment(tx.QueryRow(ctx, lockQuery, p.EnrollmentID))
	if err != nil {
		return nil, mapLockError(err)
	}
	if enrollment.Status != domain.EnrollmentActive {
		if enrollment.Status == domain.EnrollmentMatured {
			return nil, fmt.Errorf("%w: enrollment %s already matured", apperrors.ErrAlreadyMatured, p.EnrollmentID)
		}
		return nil, fmt.Errorf("%w: enrollment %s already settled", apperrors.ErrAlreadySettled, p.EnrollmentID)
	}

	updQuery := `
		UPDATE savings_enrollments
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE enrollment_id = $1;
	`
	if _, err := tx.Exec(ctx, updQuery, p.EnrollmentID, p.NewStatus, p.Now, p.RequestedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update enrollment "+p.EnrollmentID, err)
	}

	if p.Payout.IsPositive() {
		entryID := uuid.NewString()
		entry := domain.Entry{
			EntryID:     entryID,
			Kind:        domain.EntrySavingsPayout,
			Description: p.Description,
			Amount:      p.Payout,
			AuditFields: domain.AuditFields{
				CreatedAt:     p.Now,
				CreatedBy:     p.RequestedBy,
				LastUpdatedAt: p.Now,
				LastUpdatedBy: p.RequestedBy,
			},
		}
		lines := []domain.EntryLine{
			{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.TreasuryAccountID, Amount: p.Payout.Neg(), Memo: p.Description},
			{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.StudentAccountID, Amount: p.Payout, Memo: p.Description},
		}
		if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	enrollment.Status = p.NewStatus
	enrollment.LastUpdatedAt = p.Now
	enrollment.LastUpdatedBy = p.RequestedBy
	return enrollment, nil
}
