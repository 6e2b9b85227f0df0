package pgsql

import (
	"context"
	"fmt"
	"sort"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// lockAccountBalances locks the given accounts in sorted ID order and returns
// their current balances. Locking in a global order is what prevents deadlock
// between concurrent settlements touching the same accounts.
func lockAccountBalances(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]decimal.Decimal, error) {
	ids := make([]string, len(accountIDs))
	copy(ids, accountIDs)
	sort.Strings(ids)

	query := `
		SELECT account_id, balance, is_active
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, mapLockError(err)
	}
	defer rows.Close()

	balances := make(map[string]decimal.Decimal, len(ids))
	for rows.Next() {
		var accountID string
		var balance decimal.Decimal
		var isActive bool
		if err := rows.Scan(&accountID, &balance, &isActive); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account row", err)
		}
		if !isActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, accountID)
		}
		balances[accountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, mapLockError(err)
	}

	for _, id := range ids {
		if _, ok := balances[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return balances, nil
}

// applyEntryInTx posts one settlement entry inside an open transaction: it
// validates the lines, inserts the entry row, locks every touched account,
// rejects any line that would take a balance below zero, updates balances,
// and appends the lines with running balances. Callers own commit/rollback.
func applyEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.Entry, lines []domain.EntryLine) error {
	if err := accounting.ValidateEntryLines(entry.Kind, lines); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	entryQuery := `
		INSERT INTO entries (entry_id, kind, description, amount, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.Kind,
		entry.Description,
		entry.Amount,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+entry.EntryID, err)
	}

	changes := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		changes[l.AccountID] = changes[l.AccountID].Add(l.Amount)
	}
	accountIDs := make([]string, 0, len(changes))
	for accID := range changes {
		accountIDs = append(accountIDs, accID)
	}

	running, err := lockAccountBalances(ctx, tx, accountIDs)
	if err != nil {
		return err
	}

	if err := accounting.ApplyLines(running, lines); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInsufficientFunds, err.Error())
	}

	batch := &pgx.Batch{}
	balanceQuery := `
		UPDATE accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	for accID, newBalance := range running {
		batch.Queue(balanceQuery, accID, newBalance, entry.CreatedAt, entry.CreatedBy)
	}
	lineQuery := `
		INSERT INTO entry_lines (line_id, entry_id, account_id, amount, memo, running_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, l := range lines {
		batch.Queue(lineQuery,
			l.LineID,
			entry.EntryID,
			l.AccountID,
			l.Amount,
			l.Memo,
			l.RunningBalance,
			entry.CreatedAt,
			entry.CreatedBy,
			entry.LastUpdatedAt,
			entry.LastUpdatedBy,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to apply entry batch for "+entry.EntryID, err)
	}
	return nil
}
