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
)

// payrollService manages classroom jobs and salary runs.
type payrollService struct {
	jobRepo     portsrepo.JobRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewPayrollService creates a new PayrollService.
func NewPayrollService(jobRepo portsrepo.JobRepositoryFacade, userRepo portsrepo.UserRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.PayrollSvcFacade {
	return &payrollService{jobRepo: jobRepo, userRepo: userRepo, accountRepo: accountRepo}
}

var _ portssvc.PayrollSvcFacade = (*payrollService)(nil)

func (s *payrollService) requireManage(actor domain.Actor) error {
	if !actor.Role.Can(domain.CapManagePayroll) {
		return fmt.Errorf("%w: payroll management is not permitted for this role", apperrors.ErrForbidden)
	}
	return nil
}

func (s *payrollService) CreateJob(ctx context.Context, actor domain.Actor, req dto.CreateJobRequest) (*domain.Job, error) {
	if err := s.requireManage(actor); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Salary); err != nil {
		return nil, err
	}
	if req.Incentive.IsNegative() || !req.Incentive.Equal(accounting.RoundToUnit(req.Incentive)) {
		return nil, fmt.Errorf("%w: incentive must be a non-negative whole currency unit", apperrors.ErrValidation)
	}

	now := time.Now()
	job := domain.Job{
		JobID:       uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Salary:      req.Salary,
		Incentive:   req.Incentive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.jobRepo.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *payrollService) ListJobs(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	return s.jobRepo.ListJobs(ctx, 100, 0)
}

func (s *payrollService) UpdateJob(ctx context.Context, actor domain.Actor, jobID string, req dto.UpdateJobRequest) (*domain.Job, error) {
	if err := s.requireManage(actor); err != nil {
		return nil, err
	}
	job, err := s.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		job.Name = *req.Name
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Salary != nil {
		if err := validateAmount(*req.Salary); err != nil {
			return nil, err
		}
		job.Salary = *req.Salary
	}
	if req.Incentive != nil {
		if req.Incentive.IsNegative() || !req.Incentive.Equal(accounting.RoundToUnit(*req.Incentive)) {
			return nil, fmt.Errorf("%w: incentive must be a non-negative whole currency unit", apperrors.ErrValidation)
		}
		job.Incentive = *req.Incentive
	}
	job.LastUpdatedAt = time.Now()
	job.LastUpdatedBy = actor.UserID

	if err := s.jobRepo.UpdateJob(ctx, *job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *payrollService) Assign(ctx context.Context, actor domain.Actor, jobID, userID string) error {
	if err := s.requireManage(actor); err != nil {
		return err
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleStudent {
		return fmt.Errorf("%w: only students can hold jobs", apperrors.ErrValidation)
	}
	if _, err := s.jobRepo.FindJobByID(ctx, jobID); err != nil {
		return err
	}
	return s.jobRepo.AssignStudent(ctx, jobID, userID, actor.UserID, time.Now())
}

func (s *payrollService) Unassign(ctx context.Context, actor domain.Actor, jobID, userID string) error {
	if err := s.requireManage(actor); err != nil {
		return err
	}
	return s.jobRepo.UnassignStudent(ctx, jobID, userID)
}

// PaySalary runs one job's payroll: salary plus incentive to every assigned
// student, in one batch entry from the treasury.
func (s *payrollService) PaySalary(ctx context.Context, actor domain.Actor, jobID string) (*portsrepo.PayrollRunResult, error) {
	if err := s.requireManage(actor); err != nil {
		return nil, err
	}
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}
	result, err := s.jobRepo.PaySalaryRun(ctx, portsrepo.PaySalaryParams{
		JobID:             jobID,
		TreasuryAccountID: treasury.AccountID,
		RequestedBy:       actor.UserID,
		Now:               time.Now(),
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("salary run completed",
		"jobID", jobID, "paid", len(result.PaidUserIDs), "total", result.Total.String())
	return result, nil
}

// PayAll runs payroll for every job as independent sub-transactions. One
// failing job does not stop the rest.
func (s *payrollService) PayAll(ctx context.Context, actor domain.Actor) (*domain.BatchResult, error) {
	if err := s.requireManage(actor); err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.ListJobs(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	result := &domain.BatchResult{}
	for _, job := range jobs {
		if _, err := s.PaySalary(ctx, actor, job.JobID); err != nil {
			logger.Error("payroll run failed for job", "jobID", job.JobID, "error", err)
			result.AddFailure(job.JobID, err)
			continue
		}
		result.AddSuccess(job.JobID)
	}
	return result, nil
}

// DeleteJobs removes jobs in one batch with per-item outcomes.
func (s *payrollService) DeleteJobs(ctx context.Context, actor domain.Actor, jobIDs []string) (*domain.BatchResult, error) {
	if err := s.requireManage(actor); err != nil {
		return nil, err
	}
	result := &domain.BatchResult{}
	for _, id := range jobIDs {
		if err := s.jobRepo.DeleteJob(ctx, id); err != nil {
			result.AddFailure(id, err)
			continue
		}
		result.AddSuccess(id)
	}
	return result, nil
}
