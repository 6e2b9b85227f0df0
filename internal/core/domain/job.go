package domain

import "github.com/shopspring/decimal"

// Job is a classroom job paying salary plus a teacher-adjustable incentive.
type Job struct {
	JobID       string          `json:"jobID"` // Primary key (UUID)
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Salary      decimal.Decimal `json:"salary"`
	Incentive   decimal.Decimal `json:"incentive"`
	AuditFields
	AssignedUserIDs []string `json:"assignedUserIDs,omitempty"`
}

// Payout reports the per-student amount one salary run pays.
func (j Job) Payout() decimal.Decimal {
	return j.Salary.Add(j.Incentive)
}
