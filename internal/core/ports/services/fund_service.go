package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/dto"
)

// FundSvcFacade runs pooled, teacher-settled funds.
type FundSvcFacade interface {
	CreateFund(ctx context.Context, actor domain.Actor, req dto.CreateFundRequest) (*domain.Fund, error)
	ListFunds(ctx context.Context, actor domain.Actor, params dto.ListFundsParams) ([]domain.Fund, error)
	GetFund(ctx context.Context, actor domain.Actor, fundID string) (*domain.Fund, []domain.FundInvestment, error)
	Join(ctx context.Context, actor domain.Actor, fundID string, units int64) (*domain.FundInvestment, error)
	Settle(ctx context.Context, actor domain.Actor, fundID string, outcome domain.FundOutcome) (*domain.Fund, error)
	// CloseExpiredRecruitments flips funds whose recruitment deadline has
	// passed from RECRUITING to ONGOING.
	CloseExpiredRecruitments(ctx context.Context) (*domain.BatchResult, error)
}
