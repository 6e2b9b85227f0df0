package repositories

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaySalaryParams carries one salary run into the job repository.
type PaySalaryParams struct {
	JobID             string
	TreasuryAccountID string
	RequestedBy       string
	Now               time.Time
}

// PayrollRunResult reports one executed salary run.
type PayrollRunResult struct {
	JobID       string          `json:"jobID"`
	EntryID     string          `json:"entryID,omitempty"` // Empty when nothing was paid
	PaidUserIDs []string        `json:"paidUserIDs"`
	PerStudent  decimal.Decimal `json:"perStudent"`
	Total       decimal.Decimal `json:"total"`
}

// JobReader defines read operations for jobs.
type JobReader interface {
	// FindJobByID retrieves a job including its assigned students.
	FindJobByID(ctx context.Context, jobID string) (*domain.Job, error)

	// ListJobs retrieves all jobs including their assigned students.
	ListJobs(ctx context.Context, limit int, offset int) ([]domain.Job, error)
}

// JobWriter defines mutation operations for jobs and payroll.
type JobWriter interface {
	// SaveJob persists a new job.
	SaveJob(ctx context.Context, job domain.Job) error

	// UpdateJob updates a job's salary, incentive, name and description.
	UpdateJob(ctx context.Context, job domain.Job) error

	// DeleteJob removes a job and its assignments.
	DeleteJob(ctx context.Context, jobID string) error

	// AssignStudent adds a student to a job.
	AssignStudent(ctx context.Context, jobID string, userID string, assignedBy string, now time.Time) error

	// UnassignStudent removes a student from a job.
	UnassignStudent(ctx context.Context, jobID string, userID string) error

	// PaySalaryRun pays salary + incentive to every student assigned to the
	// job in one transaction (job row lock, one batch entry from the
	// treasury). A job with no assigned students is a successful no-op with
	// zero payouts and no ledger entries.
	PaySalaryRun(ctx context.Context, p PaySalaryParams) (*PayrollRunResult, error)
}

// JobRepositoryFacade combines all job repository interfaces.
type JobRepositoryFacade interface {
	JobReader
	JobWriter
}
