package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundStatus is the persisted lifecycle state of a pooled fund.
// RECRUITING -> ONGOING -> {SETTLED_SUCCESS, SETTLED_FAILURE}; the settled
// states are terminal. The RECRUITING -> ONGOING transition is persisted the
// moment it is observed, never derived at read time.
type FundStatus string

const (
	FundRecruiting     FundStatus = "RECRUITING"
	FundOngoing        FundStatus = "ONGOING"
	FundSettledSuccess FundStatus = "SETTLED_SUCCESS"
	FundSettledFailure FundStatus = "SETTLED_FAILURE"
)

// Terminal reports whether the status admits no further transitions.
func (s FundStatus) Terminal() bool {
	return s == FundSettledSuccess || s == FundSettledFailure
}

// FundOutcome is the teacher's verdict when settling a fund.
type FundOutcome string

const (
	FundOutcomeSuccess FundOutcome = "SUCCESS"
	FundOutcomeFailure FundOutcome = "FAILURE"
)

// Fund is a student-created pooled investment.
type Fund struct {
	FundID              string          `json:"fundID"` // Primary key (UUID)
	CreatorUserID       string          `json:"creatorUserID"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`    // Price per unit, > 0
	TargetAmount        decimal.Decimal `json:"targetAmount"` // Recruitment cap
	BaseRewardRate      decimal.Decimal `json:"baseRewardRate"`
	IncentiveRewardRate decimal.Decimal `json:"incentiveRewardRate"` // Teacher-adjustable bonus
	RecruitmentDeadline time.Time       `json:"recruitmentDeadline"`
	MaturityDate        time.Time       `json:"maturityDate"`
	Status              FundStatus      `json:"status"`
	InvestedUnits       int64           `json:"investedUnits"`
	AuditFields
}

// MaxUnits is the recruitment cap expressed in units.
func (f Fund) MaxUnits() int64 {
	if f.UnitPrice.IsZero() {
		return 0
	}
	return f.TargetAmount.Div(f.UnitPrice).IntPart()
}

// FundInvestment is one account's stake in one fund.
type FundInvestment struct {
	FundID    string `json:"fundID"`
	AccountID string `json:"accountID"`
	Units     int64  `json:"units"`
	AuditFields
}
