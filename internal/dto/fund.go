package dto

import (
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFundRequest opens a pooled fund in RECRUITING status.
type CreateFundRequest struct {
	Name                string          `json:"name" binding:"required,max=100"`
	UnitPrice           decimal.Decimal `json:"unitPrice" binding:"required,dgt0"`
	TargetAmount        decimal.Decimal `json:"targetAmount" binding:"required,dgt0"`
	BaseRewardRate      decimal.Decimal `json:"baseRewardRate" binding:"required,dgte0"`
	IncentiveRewardRate decimal.Decimal `json:"incentiveRewardRate" binding:"dgte0"`
	RecruitmentDeadline time.Time       `json:"recruitmentDeadline" binding:"required"`
	MaturityDate        time.Time       `json:"maturityDate" binding:"required"`
}

// JoinFundRequest invests units in a recruiting fund.
type JoinFundRequest struct {
	Units int64 `json:"units" binding:"required,gt=0"`
}

// SettleFundRequest records the teacher's settlement verdict.
type SettleFundRequest struct {
	Outcome domain.FundOutcome `json:"outcome" binding:"required,oneof=SUCCESS FAILURE"`
}

// FundResponse mirrors domain.Fund.
type FundResponse struct {
	FundID              string               `json:"fundID"`
	CreatorUserID       string               `json:"creatorUserID"`
	Name                string               `json:"name"`
	UnitPrice           decimal.Decimal      `json:"unitPrice"`
	TargetAmount        decimal.Decimal      `json:"targetAmount"`
	BaseRewardRate      decimal.Decimal      `json:"baseRewardRate"`
	IncentiveRewardRate decimal.Decimal      `json:"incentiveRewardRate"`
	RecruitmentDeadline time.Time            `json:"recruitmentDeadline"`
	MaturityDate        time.Time            `json:"maturityDate"`
	Status              domain.FundStatus    `json:"status"`
	InvestedUnits       int64                `json:"investedUnits"`
	Investments         []InvestmentResponse `json:"investments,omitempty"`
}

// InvestmentResponse mirrors domain.FundInvestment.
type InvestmentResponse struct {
	AccountID string `json:"accountID"`
	Units     int64  `json:"units"`
}

// ListFundsParams filters a fund listing by status.
type ListFundsParams struct {
	ListParams
	Status *domain.FundStatus `form:"status" binding:"omitempty,oneof=RECRUITING ONGOING SETTLED_SUCCESS SETTLED_FAILURE"`
}

// ToFundResponse converts a domain.Fund to its DTO.
func ToFundResponse(f *domain.Fund, investments []domain.FundInvestment) FundResponse {
	resp := FundResponse{
		FundID:              f.FundID,
		CreatorUserID:       f.CreatorUserID,
		Name:                f.Name,
		UnitPrice:           f.UnitPrice,
		TargetAmount:        f.TargetAmount,
		BaseRewardRate:      f.BaseRewardRate,
		IncentiveRewardRate: f.IncentiveRewardRate,
		RecruitmentDeadline: f.RecruitmentDeadline,
		MaturityDate:        f.MaturityDate,
		Status:              f.Status,
		InvestedUnits:       f.InvestedUnits,
	}
	for _, inv := range investments {
		resp.Investments = append(resp.Investments, InvestmentResponse{AccountID: inv.AccountID, Units: inv.Units})
	}
	return resp
}

// ToFundResponses converts funds to DTOs without investments.
func ToFundResponses(funds []domain.Fund) []FundResponse {
	res := make([]FundResponse, len(funds))
	for i := range funds {
		res[i] = ToFundResponse(&funds[i], nil)
	}
	return res
}
