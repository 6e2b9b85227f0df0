package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PgxTaxRepository struct {
	BaseRepository
}

// newPgxTaxRepository creates a new repository for tax items and recipients.
func newPgxTaxRepository(base BaseRepository) portsrepo.TaxRepositoryFacade {
	return &PgxTaxRepository{BaseRepository: base}
}

var _ portsrepo.TaxRepositoryFacade = (*PgxTaxRepository)(nil)

const taxColumns = `tax_id, name, amount, due_date, created_at, created_by, last_updated_at, last_updated_by`

func scanTax(row pgx.Row) (*domain.TaxItem, error) {
	var t domain.TaxItem
	err := row.Scan(
		&t.TaxID,
		&t.Name,
		&t.Amount,
		&t.DueDate,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan tax row", err)
	}
	return &t, nil
}

const recipientColumns = `tax_id, account_id, is_paid, paid_at, created_at, created_by, last_updated_at, last_updated_by`

func scanRecipient(row pgx.Row) (*domain.TaxRecipient, error) {
	var rec domain.TaxRecipient
	err := row.Scan(
		&rec.TaxID,
		&rec.AccountID,
		&rec.IsPaid,
		&rec.PaidAt,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan tax recipient row", err)
	}
	return &rec, nil
}

// FindTaxByID retrieves a tax item.
func (r *PgxTaxRepository) FindTaxByID(ctx context.Context, taxID string) (*domain.TaxItem, error) {
	query := `SELECT ` + taxColumns + ` FROM taxes WHERE tax_id = $1;`
	return scanTax(r.Pool.QueryRow(ctx, query, taxID))
}

// ListTaxes retrieves tax items, newest first.
func (r *PgxTaxRepository) ListTaxes(ctx context.Context, limit int, offset int) ([]domain.TaxItem, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + taxColumns + ` FROM taxes ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query taxes", err)
	}
	defer rows.Close()

	taxes := []domain.TaxItem{}
	for rows.Next() {
		t, err := scanTax(rows)
		if err != nil {
			return nil, err
		}
		taxes = append(taxes, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating tax rows", err)
	}
	return taxes, nil
}

// ListRecipientsByTax retrieves all recipients of one tax item.
func (r *PgxTaxRepository) ListRecipientsByTax(ctx context.Context, taxID string) ([]domain.TaxRecipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM tax_recipients WHERE tax_id = $1 ORDER BY account_id;`
	return r.queryRecipients(ctx, query, taxID)
}

// ListObligationsByAccount retrieves all tax obligations of an account.
func (r *PgxTaxRepository) ListObligationsByAccount(ctx context.Context, accountID string) ([]domain.TaxRecipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM tax_recipients WHERE account_id = $1 ORDER BY created_at DESC;`
	return r.queryRecipients(ctx, query, accountID)
}

func (r *PgxTaxRepository) queryRecipients(ctx context.Context, query string, arg any) ([]domain.TaxRecipient, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query tax recipients", err)
	}
	defer rows.Close()

	recipients := []domain.TaxRecipient{}
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating tax recipient rows", err)
	}
	return recipients, nil
}

// SaveTax persists a tax item and its recipient rows in one transaction.
func (r *PgxTaxRepository) SaveTax(ctx context.Context, tax domain.TaxItem, recipients []domain.TaxRecipient) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	taxQuery := `
		INSERT INTO taxes (tax_id, name, amount, due_date, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, taxQuery,
		tax.TaxID,
		tax.Name,
		tax.Amount,
		tax.DueDate,
		tax.CreatedAt,
		tax.CreatedBy,
		tax.LastUpdatedAt,
		tax.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tax %s", apperrors.ErrDuplicate, tax.TaxID)
		}
		return apperrors.NewAppError(500, "failed to insert tax "+tax.TaxID, err)
	}

	batch := &pgx.Batch{}
	recipientQuery := `
		INSERT INTO tax_recipients (tax_id, account_id, is_paid, paid_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, rec := range recipients {
		batch.Queue(recipientQuery,
			rec.TaxID,
			rec.AccountID,
			rec.IsPaid,
			rec.PaidAt,
			rec.CreatedAt,
			rec.CreatedBy,
			rec.LastUpdatedAt,
			rec.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert recipients for tax "+tax.TaxID, err)
	}
	return r.Commit(ctx, tx)
}

// PayTax settles one (tax, account) obligation in one transaction. The paid
// flag is re-checked under the row lock so double submissions cannot pay
// twice.
func (r *PgxTaxRepository) PayTax(ctx context.Context, p portsrepo.PayTaxParams) (*domain.TaxRecipient, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + recipientColumns + ` FROM tax_recipients WHERE tax_id = $1 AND account_id = $2 FOR UPDATE;`
	recipient, err := scanRecipient(tx.QueryRow(ctx, lockQuery, p.TaxID, p.AccountID))
	if err != nil {
		return nil, mapLockError(err)
	}
	if recipient.IsPaid {
		return nil, fmt.Errorf("%w: tax %s already paid by account %s", apperrors.ErrAlreadyPaid, p.TaxID, p.AccountID)
	}

	entryID := uuid.NewString()
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntryTax,
		Description: p.Description,
		Amount:      p.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.RequestedBy,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.RequestedBy,
		},
	}
	lines := []domain.EntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.AccountID, Amount: p.Amount.Neg(), Memo: p.Description},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.TreasuryAccountID, Amount: p.Amount, Memo: p.Description},
	}
	if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
		return nil, err
	}

	updQuery := `
		UPDATE tax_recipients
		SET is_paid = TRUE, paid_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE tax_id = $1 AND account_id = $2;
	`
	if _, err := tx.Exec(ctx, updQuery, p.TaxID, p.AccountID, p.Now, p.RequestedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to mark tax paid for account "+p.AccountID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	paidAt := p.Now
	recipient.IsPaid = true
	recipient.PaidAt = &paidAt
	recipient.LastUpdatedAt = p.Now
	recipient.LastUpdatedBy = p.RequestedBy
	return recipient, nil
}
