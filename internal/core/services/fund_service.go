package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/classbank/class_bank_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// fundService runs student-created pooled funds. The teacher settles each
// fund with a success or failure verdict; payouts multiply the invested
// amount by the outcome's multiplier.
type fundService struct {
	fundRepo     portsrepo.FundRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	failureRatio decimal.Decimal
}

// NewFundService creates a new FundService. failureRatio is the fraction of
// the invested amount returned when a fund settles as FAILURE.
func NewFundService(fundRepo portsrepo.FundRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, failureRatio decimal.Decimal) portssvc.FundSvcFacade {
	return &fundService{fundRepo: fundRepo, accountRepo: accountRepo, failureRatio: failureRatio}
}

var _ portssvc.FundSvcFacade = (*fundService)(nil)

func (s *fundService) CreateFund(ctx context.Context, actor domain.Actor, req dto.CreateFundRequest) (*domain.Fund, error) {
	if !actor.Role.Can(domain.CapCreateFund) {
		return nil, fmt.Errorf("%w: fund creation is not permitted for this role", apperrors.ErrForbidden)
	}
	if err := validateAmount(req.UnitPrice); err != nil {
		return nil, err
	}
	if req.TargetAmount.LessThan(req.UnitPrice) {
		return nil, fmt.Errorf("%w: target amount must cover at least one unit", apperrors.ErrValidation)
	}
	if req.BaseRewardRate.IsNegative() || req.IncentiveRewardRate.IsNegative() {
		return nil, fmt.Errorf("%w: reward rates must not be negative", apperrors.ErrValidation)
	}
	now := time.Now()
	if !req.RecruitmentDeadline.After(now) {
		return nil, fmt.Errorf("%w: recruitment deadline must be in the future", apperrors.ErrValidation)
	}
	if !req.MaturityDate.After(req.RecruitmentDeadline) {
		return nil, fmt.Errorf("%w: maturity must come after the recruitment deadline", apperrors.ErrValidation)
	}

	fund := domain.Fund{
		FundID:              uuid.NewString(),
		CreatorUserID:       actor.UserID,
		Name:                req.Name,
		UnitPrice:           req.UnitPrice,
		TargetAmount:        accounting.RoundToUnit(req.TargetAmount),
		BaseRewardRate:      req.BaseRewardRate,
		IncentiveRewardRate: req.IncentiveRewardRate,
		RecruitmentDeadline: req.RecruitmentDeadline,
		MaturityDate:        req.MaturityDate,
		Status:              domain.FundRecruiting,
		InvestedUnits:       0,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.fundRepo.SaveFund(ctx, fund); err != nil {
		return nil, err
	}
	return &fund, nil
}

func (s *fundService) ListFunds(ctx context.Context, actor domain.Actor, params dto.ListFundsParams) ([]domain.Fund, error) {
	var statuses []domain.FundStatus
	if params.Status != nil {
		statuses = []domain.FundStatus{*params.Status}
	}
	return s.fundRepo.ListFunds(ctx, statuses, params.Limit, params.Offset)
}

func (s *fundService) GetFund(ctx context.Context, actor domain.Actor, fundID string) (*domain.Fund, []domain.FundInvestment, error) {
	fund, err := s.fundRepo.FindFundByID(ctx, fundID)
	if err != nil {
		return nil, nil, err
	}
	investments, err := s.fundRepo.ListInvestments(ctx, fundID)
	if err != nil {
		return nil, nil, err
	}
	return fund, investments, nil
}

func (s *fundService) Join(ctx context.Context, actor domain.Actor, fundID string, units int64) (*domain.FundInvestment, error) {
	if !actor.Role.Can(domain.CapJoinFund) {
		return nil, fmt.Errorf("%w: joining funds is not permitted for this role", apperrors.ErrForbidden)
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("student account lookup failed: %w", err)
	}
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}

	investment, err := s.fundRepo.JoinFund(ctx, portsrepo.JoinFundParams{
		FundID:            fundID,
		AccountID:         account.AccountID,
		Units:             units,
		TreasuryAccountID: treasury.AccountID,
		RequestedBy:       actor.UserID,
		Now:               time.Now(),
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("fund joined",
		"fundID", fundID, "accountID", account.AccountID, "units", units)
	return investment, nil
}

// Settle records the teacher's verdict: SUCCESS pays invested x
// (1 + base + incentive), FAILURE pays invested x the configured failure
// ratio.
func (s *fundService) Settle(ctx context.Context, actor domain.Actor, fundID string, outcome domain.FundOutcome) (*domain.Fund, error) {
	if !actor.Role.Can(domain.CapSettleFund) {
		return nil, fmt.Errorf("%w: fund settlement is not permitted for this role", apperrors.ErrForbidden)
	}

	fund, err := s.fundRepo.FindFundByID(ctx, fundID)
	if err != nil {
		return nil, err
	}
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}

	var newStatus domain.FundStatus
	var multiplier decimal.Decimal
	var description string
	one := decimal.NewFromInt(1)
	switch outcome {
	case domain.FundOutcomeSuccess:
		newStatus = domain.FundSettledSuccess
		multiplier = one.Add(fund.BaseRewardRate).Add(fund.IncentiveRewardRate)
		description = fmt.Sprintf("fund %s settled as success", fund.Name)
	case domain.FundOutcomeFailure:
		newStatus = domain.FundSettledFailure
		multiplier = s.failureRatio
		description = fmt.Sprintf("fund %s settled as failure", fund.Name)
	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", apperrors.ErrValidation, outcome)
	}

	settled, err := s.fundRepo.SettleFund(ctx, portsrepo.SettleFundParams{
		FundID:            fundID,
		NewStatus:         newStatus,
		Multiplier:        multiplier,
		TreasuryAccountID: treasury.AccountID,
		Description:       description,
		RequestedBy:       actor.UserID,
		Now:               time.Now(),
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("fund settled",
		"fundID", fundID, "outcome", outcome, "multiplier", multiplier.String())
	return settled, nil
}

// CloseExpiredRecruitments persists the ONGOING transition for every
// RECRUITING fund past its deadline.
func (s *fundService) CloseExpiredRecruitments(ctx context.Context) (*domain.BatchResult, error) {
	now := time.Now()
	ids, err := s.fundRepo.ListExpiredRecruitingFundIDs(ctx, now)
	if err != nil {
		return nil, err
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	result := &domain.BatchResult{}
	for _, id := range ids {
		if err := s.fundRepo.MarkOngoing(ctx, id, systemUserID, now); err != nil {
			logger.Error("recruitment close failed for fund", "fundID", id, "error", err)
			result.AddFailure(id, err)
			continue
		}
		result.AddSuccess(id)
	}
	if len(ids) > 0 {
		logger.Info("recruitment close sweep completed", "closed", len(result.Succeeded), "failed", len(result.Failed))
	}
	return result, nil
}
