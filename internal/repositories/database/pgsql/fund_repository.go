package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/classbank/class_bank_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxFundRepository struct {
	BaseRepository
}

// newPgxFundRepository creates a new repository for pooled funds.
func newPgxFundRepository(base BaseRepository) portsrepo.FundRepositoryFacade {
	return &PgxFundRepository{BaseRepository: base}
}

var _ portsrepo.FundRepositoryFacade = (*PgxFundRepository)(nil)

const fundColumns = `fund_id, creator_user_id, name, unit_price, target_amount, base_reward_rate, incentive_reward_rate, recruitment_deadline, maturity_date, status, invested_units, created_at, created_by, last_updated_at, last_updated_by`

func scanFund(row pgx.Row) (*domain.Fund, error) {
	var f domain.Fund
	err := row.Scan(
		&f.FundID,
		&f.CreatorUserID,
		&f.Name,
		&f.UnitPrice,
		&f.TargetAmount,
		&f.BaseRewardRate,
		&f.IncentiveRewardRate,
		&f.RecruitmentDeadline,
		&f.MaturityDate,
		&f.Status,
		&f.InvestedUnits,
		&f.CreatedAt,
		&f.CreatedBy,
		&f.LastUpdatedAt,
		&f.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan fund row", err)
	}
	return &f, nil
}

// FindFundByID retrieves a fund.
func (r *PgxFundRepository) FindFundByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM funds WHERE fund_id = $1;`
	return scanFund(r.Pool.QueryRow(ctx, query, fundID))
}

// ListFunds retrieves funds filtered by status; an empty filter lists all.
func (r *PgxFundRepository) ListFunds(ctx context.Context, statuses []domain.FundStatus, limit int, offset int) ([]domain.Fund, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows pgx.Rows
	var err error
	if len(statuses) > 0 {
		query := `SELECT ` + fundColumns + ` FROM funds WHERE status = ANY($1) ORDER BY created_at DESC LIMIT $2 OFFSET $3;`
		rows, err = r.Pool.Query(ctx, query, statuses, limit, offset)
	} else {
		query := `SELECT ` + fundColumns + ` FROM funds ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
		rows, err = r.Pool.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query funds", err)
	}
	defer rows.Close()

	funds := []domain.Fund{}
	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		funds = append(funds, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating fund rows", err)
	}
	return funds, nil
}

func listInvestments(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, fundID string) ([]domain.FundInvestment, error) {
	query := `
		SELECT fund_id, account_id, units, created_at, created_by, last_updated_at, last_updated_by
		FROM fund_investments
		WHERE fund_id = $1
		ORDER BY account_id;
	`
	rows, err := q.Query(ctx, query, fundID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query investments for fund "+fundID, err)
	}
	defer rows.Close()

	investments := []domain.FundInvestment{}
	for rows.Next() {
		var inv domain.FundInvestment
		if err := rows.Scan(
			&inv.FundID,
			&inv.AccountID,
			&inv.Units,
			&inv.CreatedAt,
			&inv.CreatedBy,
			&inv.LastUpdatedAt,
			&inv.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan investment row", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating investment rows", err)
	}
	return investments, nil
}

// ListInvestments retrieves all investments in a fund.
func (r *PgxFundRepository) ListInvestments(ctx context.Context, fundID string) ([]domain.FundInvestment, error) {
	return listInvestments(ctx, r.Pool, fundID)
}

// ListExpiredRecruitingFundIDs returns IDs of RECRUITING funds whose
// recruitment deadline is at or before asOf.
func (r *PgxFundRepository) ListExpiredRecruitingFundIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT fund_id
		FROM funds
		WHERE status = $1 AND recruitment_deadline <= $2
		ORDER BY recruitment_deadline;
	`
	rows, err := r.Pool.Query(ctx, query, domain.FundRecruiting, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expired recruiting funds", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expired fund id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating expired fund rows", err)
	}
	return ids, nil
}

// SaveFund persists a new fund.
func (r *PgxFundRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	query := `
		INSERT INTO funds (` + fundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		fund.FundID,
		fund.CreatorUserID,
		fund.Name,
		fund.UnitPrice,
		fund.TargetAmount,
		fund.BaseRewardRate,
		fund.IncentiveRewardRate,
		fund.RecruitmentDeadline,
		fund.MaturityDate,
		fund.Status,
		fund.InvestedUnits,
		fund.CreatedAt,
		fund.CreatedBy,
		fund.LastUpdatedAt,
		fund.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fund %s", apperrors.ErrDuplicate, fund.FundID)
		}
		return apperrors.NewAppError(500, "failed to insert fund "+fund.FundID, err)
	}
	return nil
}

func lockFund(ctx context.Context, tx pgx.Tx, fundID string) (*domain.Fund, error) {
	query := `SELECT ` + fundColumns + ` FROM funds WHERE fund_id = $1 FOR UPDATE;`
	f, err := scanFund(tx.QueryRow(ctx, query, fundID))
	if err != nil {
		return nil, mapLockError(err)
	}
	return f, nil
}

func setFundStatusInTx(ctx context.Context, tx pgx.Tx, fundID string, status domain.FundStatus, updatedBy string, now time.Time) error {
	query := `
		UPDATE funds
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE fund_id = $1;
	`
	if _, err := tx.Exec(ctx, query, fundID, status, now, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to update status of fund "+fundID, err)
	}
	return nil
}

// MarkOngoing persists the RECRUITING -> ONGOING transition under the fund
// row lock. Already-transitioned funds are a no-op.
func (r *PgxFundRepository) MarkOngoing(ctx context.Context, fundID string, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	fund, err := lockFund(ctx, tx, fundID)
	if err != nil {
		return err
	}
	if fund.Status == domain.FundRecruiting {
		if err := setFundStatusInTx(ctx, tx, fundID, domain.FundOngoing, updatedBy, now); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// JoinFund invests units in a RECRUITING fund in one transaction. A passed
// recruitment deadline is persisted as the ONGOING transition before the join
// is rejected, so read state never disagrees with the clock for long.
func (r *PgxFundRepository) JoinFund(ctx context.Context, p portsrepo.JoinFundParams) (*domain.FundInvestment, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	fund, err := lockFund(ctx, tx, p.FundID)
	if err != nil {
		return nil, err
	}
	if fund.Status != domain.FundRecruiting {
		return nil, fmt.Errorf("%w: fund %s is not recruiting", apperrors.ErrValidation, p.FundID)
	}
	if !p.Now.Before(fund.RecruitmentDeadline) {
		if err := setFundStatusInTx(ctx, tx, p.FundID, domain.FundOngoing, p.RequestedBy, p.Now); err != nil {
			return nil, err
		}
		if err := r.Commit(ctx, tx); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: recruitment for fund %s has closed", apperrors.ErrValidation, p.FundID)
	}
	if fund.InvestedUnits+p.Units > fund.MaxUnits() {
		return nil, fmt.Errorf("%w: %d units exceed the %d remaining", apperrors.ErrValidation, p.Units, fund.MaxUnits()-fund.InvestedUnits)
	}

	amount := accounting.RoundToUnit(fund.UnitPrice.Mul(decimal.NewFromInt(p.Units)))
	entryID := uuid.NewString()
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntryFund,
		Description: fmt.Sprintf("join fund %s: %d units", fund.Name, p.Units),
		Amount:      amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.RequestedBy,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.RequestedBy,
		},
	}
	lines := []domain.EntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.AccountID, Amount: amount.Neg(), Memo: fund.Name},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: p.TreasuryAccountID, Amount: amount, Memo: fund.Name},
	}
	if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
		return nil, err
	}

	var totalUnits int64
	upsertQuery := `
		INSERT INTO fund_investments (fund_id, account_id, units, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $4, $5)
		ON CONFLICT (fund_id, account_id)
		DO UPDATE SET units = fund_investments.units + EXCLUDED.units, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by
		RETURNING units;
	`
	if err := tx.QueryRow(ctx, upsertQuery, p.FundID, p.AccountID, p.Units, p.Now, p.RequestedBy).Scan(&totalUnits); err != nil {
		return nil, apperrors.NewAppError(500, "failed to upsert investment for fund "+p.FundID, err)
	}

	unitsQuery := `
		UPDATE funds
		SET invested_units = invested_units + $2, last_updated_at = $3, last_updated_by = $4
		WHERE fund_id = $1;
	`
	if _, err := tx.Exec(ctx, unitsQuery, p.FundID, p.Units, p.Now, p.RequestedBy); err != nil {
		return nil, apperrors.NewAppError(500, "failed to update invested units of fund "+p.FundID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &domain.FundInvestment{
		FundID:    p.FundID,
		AccountID: p.AccountID,
		Units:     totalUnits,
		AuditFields: domain.AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.RequestedBy,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.RequestedBy,
		},
	}, nil
}

// SettleFund transitions a fund to a terminal status and pays every investor
// from the treasury in one transaction. Each investor's payout is their
// invested amount times the multiplier, rounded per investor.
func (r *PgxFundRepository) SettleFund(ctx context.Context, p portsrepo.SettleFundParams) (*domain.Fund, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	fund, err := lockFund(ctx, tx, p.FundID)
	if err != nil {
		return nil, err
	}
	if fund.Status.Terminal() {
		return nil, fmt.Errorf("%w: fund %s already settled", apperrors.ErrAlreadySettled, p.FundID)
	}
	// A fund still marked RECRUITING may be settled once its deadline has
	// passed; the settlement subsumes the ONGOING transition.
	if fund.Status == domain.FundRecruiting && p.Now.Before(fund.RecruitmentDeadline) {
		return nil, fmt.Errorf("%w: fund %s is still recruiting", apperrors.ErrValidation, p.FundID)
	}

	investments, err := listInvestments(ctx, tx, p.FundID)
	if err != nil {
		return nil, err
	}

	entryID := uuid.NewString()
	lines := []domain.EntryLine{}
	total := decimal.Zero
	for _, inv := range investments {
		invested := fund.UnitPrice.Mul(decimal.NewFromInt(inv.Units))
		payout := accounting.RoundToUnit(invested.Mul(p.Multiplier))
		if !payout.IsPositive() {
			continue
		}
		total = total.Add(payout)
		lines = append(lines, domain.EntryLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: inv.AccountID,
			Amount:    payout,
			Memo:      fund.Name,
		})
	}

	if total.IsPositive() {
		lines = append(lines, domain.EntryLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: p.TreasuryAccountID,
			Amount:    total.Neg(),
			Memo:      fund.Name,
		})
		entry := domain.Entry{
			EntryID:     entryID,
			Kind:        domain.EntryFundPayout,
			Description: p.Description,
			Amount:      total,
			AuditFields: domain.AuditFields{
				CreatedAt:     p.Now,
				CreatedBy:     p.RequestedBy,
				LastUpdatedAt: p.Now,
				LastUpdatedBy: p.RequestedBy,
			},
		}
		if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
			return nil, err
		}
	}

	if err := setFundStatusInTx(ctx, tx, p.FundID, p.NewStatus, p.RequestedBy, p.Now); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	fund.Status = p.NewStatus
	fund.LastUpdatedAt = p.Now
	fund.LastUpdatedBy = p.RequestedBy
	return fund, nil
}
