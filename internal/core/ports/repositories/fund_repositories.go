package repositories

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JoinFundParams carries one investment order into the fund repository.
type JoinFundParams struct {
	FundID            string
	AccountID         string
	Units             int64
	TreasuryAccountID string
	RequestedBy       string
	Now               time.Time
}

// SettleFundParams carries a settlement verdict into the fund repository.
// Multiplier is applied to each investor's invested amount: on success
// 1 + baseReward + incentiveReward, on failure the configured failure ratio.
type SettleFundParams struct {
	FundID            string
	NewStatus         domain.FundStatus // SETTLED_SUCCESS or SETTLED_FAILURE
	Multiplier        decimal.Decimal
	TreasuryAccountID string
	Description       string
	RequestedBy       string
	Now               time.Time
}

// FundReader defines read operations for funds and investments.
type FundReader interface {
	// FindFundByID retrieves a fund.
	FindFundByID(ctx context.Context, fundID string) (*domain.Fund, error)

	// ListFunds retrieves funds filtered by status; an empty filter lists all.
	ListFunds(ctx context.Context, statuses []domain.FundStatus, limit int, offset int) ([]domain.Fund, error)

	// ListInvestments retrieves all investments in a fund.
	ListInvestments(ctx context.Context, fundID string) ([]domain.FundInvestment, error)

	// ListExpiredRecruitingFundIDs returns IDs of RECRUITING funds whose
	// recruitment deadline is at or before asOf. Used by the deadline sweep.
	ListExpiredRecruitingFundIDs(ctx context.Context, asOf time.Time) ([]string, error)
}

// FundWriter defines mutation operations for fund state.
type FundWriter interface {
	// SaveFund persists a new fund in RECRUITING status.
	SaveFund(ctx context.Context, fund domain.Fund) error

	// JoinFund invests units in a RECRUITING fund in one transaction: fund
	// row lock, deadline check (a passed deadline is persisted as the
	// ONGOING transition before the join is rejected), unit cap check,
	// ledger debit, investment upsert.
	JoinFund(ctx context.Context, p JoinFundParams) (*domain.FundInvestment, error)

	// MarkOngoing persists the RECRUITING -> ONGOING transition under the
	// fund row lock. Already-transitioned funds are a no-op.
	MarkOngoing(ctx context.Context, fundID string, updatedBy string, now time.Time) error

	// SettleFund transitions a fund to a terminal status and pays every
	// investor from the treasury in one transaction. A terminal fund fails
	// with ErrAlreadySettled and produces no ledger entries.
	SettleFund(ctx context.Context, p SettleFundParams) (*domain.Fund, error)
}

// FundRepositoryFacade combines all fund repository interfaces.
type FundRepositoryFacade interface {
	FundReader
	FundWriter
}
