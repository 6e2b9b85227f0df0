package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// payrollHandler handles HTTP requests for jobs and salary runs.
type payrollHandler struct {
	payrollService portssvc.PayrollSvcFacade
}

func newPayrollHandler(ps portssvc.PayrollSvcFacade) *payrollHandler {
	return &payrollHandler{payrollService: ps}
}

// registerPayrollRoutes registers routes related to payroll.
func registerPayrollRoutes(rg *gin.RouterGroup, payrollService portssvc.PayrollSvcFacade) {
	h := newPayrollHandler(payrollService)

	payroll := rg.Group("/payroll")
	{
		jobs := payroll.Group("/jobs")
		{
			jobs.POST("", h.createJob)
			jobs.GET("", h.listJobs)
			jobs.DELETE("", h.deleteJobs)
			jobs.PUT("/:jobID", h.updateJob)
			jobs.POST("/:jobID/assignments", h.assign)
			jobs.DELETE("/:jobID/assignments/:userID", h.unassign)
			jobs.POST("/:jobID/pay", h.paySalary)
		}
		payroll.POST("/pay-all", h.payAll)
	}
}

// createJob godoc
// @Summary Create a job
// @Description Defines a new classroom job with a salary and incentive
// @Tags payroll
// @Accept json
// @Produce json
// @Param job body dto.CreateJobRequest true "Job details"
// @Success 201 {object} dto.JobResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /payroll/jobs [post]
func (h *payrollHandler) createJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJob", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	job, err := h.payrollService.CreateJob(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create job")
		return
	}

	logger.Info("Job created", slog.String("job_id", job.JobID))
	c.JSON(http.StatusCreated, dto.ToJobResponse(job))
}

// listJobs godoc
// @Summary List jobs
// @Description Lists classroom jobs with their assigned students
// @Tags payroll
// @Produce json
// @Success 200 {array} dto.JobResponse
// @Security BearerAuth
// @Router /payroll/jobs [get]
func (h *payrollHandler) listJobs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	jobs, err := h.payrollService.ListJobs(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, dto.ToJobResponses(jobs))
}

// updateJob godoc
// @Summary Update a job
// @Description Patches the job's name, description, salary or incentive
// @Tags payroll
// @Accept json
// @Produce json
// @Param jobID path string true "Job ID"
// @Param job body dto.UpdateJobRequest true "Fields to update"
// @Success 200 {object} dto.JobResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Job not found"
// @Security BearerAuth
// @Router /payroll/jobs/{jobID} [put]
func (h *payrollHandler) updateJob(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	jobID := c.Param("jobID")
	logger = logger.With(slog.String("job_id", jobID))

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateJob", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	job, err := h.payrollService.UpdateJob(c.Request.Context(), actor, jobID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update job")
		return
	}

	logger.Info("Job updated")
	c.JSON(http.StatusOK, dto.ToJobResponse(job))
}

// deleteJobs godoc
// @Summary Delete jobs
// @Description Removes jobs in one batch. Reports a per-job outcome.
// @Tags payroll
// @Accept json
// @Produce json
// @Param jobs body dto.DeleteJobsRequest true "Job IDs to delete"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /payroll/jobs [delete]
func (h *payrollHandler) deleteJobs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.DeleteJobsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for DeleteJobs", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.payrollService.DeleteJobs(c.Request.Context(), actor, req.JobIDs)
	if err != nil {
		respondError(c, logger, err, "Failed to delete jobs")
		return
	}

	logger.Info("Jobs deleted", slog.Int("succeeded", len(result.Succeeded)), slog.Int("failed", len(result.Failed)))
	c.JSON(http.StatusOK, result)
}

// assign godoc
// @Summary Assign a student to a job
// @Description Adds the student to the job's salary run
// @Tags payroll
// @Accept json
// @Produce json
// @Param jobID path string true "Job ID"
// @Param assignment body dto.AssignStudentRequest true "Student to assign"
// @Success 204 "Assigned"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Job or student not found"
// @Failure 409 {object} map[string]string "Already assigned"
// @Security BearerAuth
// @Router /payroll/jobs/{jobID}/assignments [post]
func (h *payrollHandler) assign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	jobID := c.Param("jobID")
	logger = logger.With(slog.String("job_id", jobID))

	var req dto.AssignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Assign", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.payrollService.Assign(c.Request.Context(), actor, jobID, req.UserID); err != nil {
		respondError(c, logger, err, "Failed to assign student")
		return
	}

	logger.Info("Student assigned", slog.String("user_id", req.UserID))
	c.Status(http.StatusNoContent)
}

// unassign godoc
// @Summary Unassign a student from a job
// @Description Removes the student from the job's salary run
// @Tags payroll
// @Produce json
// @Param jobID path string true "Job ID"
// @Param userID path string true "User ID"
// @Success 204 "Unassigned"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Assignment not found"
// @Security BearerAuth
// @Router /payroll/jobs/{jobID}/assignments/{userID} [delete]
func (h *payrollHandler) unassign(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	jobID := c.Param("jobID")
	userID := c.Param("userID")
	logger = logger.With(slog.String("job_id", jobID), slog.String("user_id", userID))

	if err := h.payrollService.Unassign(c.Request.Context(), actor, jobID, userID); err != nil {
		respondError(c, logger, err, "Failed to unassign student")
		return
	}

	logger.Info("Student unassigned")
	c.Status(http.StatusNoContent)
}

// paySalary godoc
// @Summary Run payroll for one job
// @Description Pays every assigned student the job's salary plus incentive from the treasury
// @Tags payroll
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} repositories.PayrollRunResult
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 422 {object} map[string]string "Treasury underfunded"
// @Security BearerAuth
// @Router /payroll/jobs/{jobID}/pay [post]
func (h *payrollHandler) paySalary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	jobID := c.Param("jobID")
	logger = logger.With(slog.String("job_id", jobID))

	result, err := h.payrollService.PaySalary(c.Request.Context(), actor, jobID)
	if err != nil {
		respondError(c, logger, err, "Failed to run payroll")
		return
	}

	logger.Info("Payroll run completed", slog.Int("paid", len(result.PaidUserIDs)), slog.String("total", result.Total.String()))
	c.JSON(http.StatusOK, result)
}

// payAll godoc
// @Summary Run payroll for every job
// @Description Runs payroll job by job. Reports a per-job outcome.
// @Tags payroll
// @Produce json
// @Success 200 {object} domain.BatchResult
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /payroll/pay-all [post]
func (h *payrollHandler) payAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	result, err := h.payrollService.PayAll(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to run payroll")
		return
	}

	logger.Info("Payroll run completed for all jobs", slog.Int("succeeded", len(result.Succeeded)), slog.Int("failed", len(result.Failed)))
	c.JSON(http.StatusOK, result)
}
