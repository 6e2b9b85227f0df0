package dto

import (
	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJobRequest defines a new classroom job.
type CreateJobRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description" binding:"max=500"`
	Salary      decimal.Decimal `json:"salary" binding:"required,dgt0"`
	Incentive   decimal.Decimal `json:"incentive" binding:"dgte0"`
}

// UpdateJobRequest updates a job. Nil fields are left unchanged.
type UpdateJobRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	Salary      *decimal.Decimal `json:"salary" binding:"omitempty,dgt0"`
	Incentive   *decimal.Decimal `json:"incentive" binding:"omitempty,dgte0"`
}

// AssignStudentRequest assigns a student to a job.
type AssignStudentRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// DeleteJobsRequest removes jobs in one batch with per-item outcomes.
type DeleteJobsRequest struct {
	JobIDs []string `json:"jobIDs" binding:"required,min=1,dive,required"`
}

// JobResponse mirrors domain.Job.
type JobResponse struct {
	JobID           string          `json:"jobID"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Salary          decimal.Decimal `json:"salary"`
	Incentive       decimal.Decimal `json:"incentive"`
	AssignedUserIDs []string        `json:"assignedUserIDs"`
}

// ToJobResponse converts a domain.Job to its DTO.
func ToJobResponse(j *domain.Job) JobResponse {
	return JobResponse{
		JobID:           j.JobID,
		Name:            j.Name,
		Description:     j.Description,
		Salary:          j.Salary,
		Incentive:       j.Incentive,
		AssignedUserIDs: j.AssignedUserIDs,
	}
}

// ToJobResponses converts jobs to DTOs.
func ToJobResponses(jobs []domain.Job) []JobResponse {
	res := make([]JobResponse, len(jobs))
	for i := range jobs {
		res[i] = ToJobResponse(&jobs[i])
	}
	return res
}
