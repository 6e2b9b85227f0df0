package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/classbank/class_bank_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entries and lines.
func newPgxLedgerRepository(base BaseRepository) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: base}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// SaveEntry applies one settlement entry as a single atomic unit.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.Entry, lines []domain.EntryLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

const lineColumns = `line_id, entry_id, account_id, amount, memo, running_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanEntryLine(row pgx.Row) (*domain.EntryLine, error) {
	var l domain.EntryLine
	err := row.Scan(
		&l.LineID,
		&l.EntryID,
		&l.AccountID,
		&l.Amount,
		&l.Memo,
		&l.RunningBalance,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan entry line row", err)
	}
	return &l, nil
}

// FindEntryByID retrieves an entry and its lines.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	query := `
		SELECT entry_id, kind, description, amount, created_at, created_by, last_updated_at, last_updated_by
		FROM entries
		WHERE entry_id = $1;
	`
	var e domain.Entry
	err := r.Pool.QueryRow(ctx, query, entryID).Scan(
		&e.EntryID,
		&e.Kind,
		&e.Description,
		&e.Amount,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	lineQuery := `SELECT ` + lineColumns + ` FROM entry_lines WHERE entry_id = $1 ORDER BY line_id;`
	rows, err := r.Pool.Query(ctx, lineQuery, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanEntryLine(rows)
		if err != nil {
			return nil, err
		}
		e.Lines = append(e.Lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry line rows for "+entryID, err)
	}
	return &e, nil
}

// ListLinesByAccountID retrieves a keyset-paginated statement of an account's
// ledger lines, newest first. The cursor is (created_at, line_id).
func (r *PgxLedgerRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + lineColumns + `
		FROM entry_lines
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, line_id DESC`

	args := []interface{}{accountID}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastLineID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `AND (created_at, line_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastLineID)
		baseQuery = baseQuery + " " + cursorClause
	}
	query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entry lines for account "+accountID, err)
	}
	defer rows.Close()

	lines := make([]domain.EntryLine, 0, fetchLimit)
	for rows.Next() {
		l, err := scanEntryLine(rows)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(lines) > limit {
		lines = lines[:limit]
		last := lines[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.LineID)
		nextTokenVal = &token
	}
	return lines, nextTokenVal, nil
}
