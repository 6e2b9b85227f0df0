package services

import (
	"context"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/classbank/class_bank_app/internal/dto"
)

// PayrollSvcFacade manages classroom jobs and salary runs.
type PayrollSvcFacade interface {
	CreateJob(ctx context.Context, actor domain.Actor, req dto.CreateJobRequest) (*domain.Job, error)
	ListJobs(ctx context.Context, actor domain.Actor) ([]domain.Job, error)
	UpdateJob(ctx context.Context, actor domain.Actor, jobID string, req dto.UpdateJobRequest) (*domain.Job, error)
	Assign(ctx context.Context, actor domain.Actor, jobID, userID string) error
	Unassign(ctx context.Context, actor domain.Actor, jobID, userID string) error
	PaySalary(ctx context.Context, actor domain.Actor, jobID string) (*repositories.PayrollRunResult, error)
	PayAll(ctx context.Context, actor domain.Actor) (*domain.BatchResult, error)
	DeleteJobs(ctx context.Context, actor domain.Actor, jobIDs []string) (*domain.BatchResult, error)
}
