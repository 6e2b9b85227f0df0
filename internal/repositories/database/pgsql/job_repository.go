package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxJobRepository struct {
	BaseRepository
}

// newPgxJobRepository creates a new repository for jobs and payroll.
func newPgxJobRepository(base BaseRepository) portsrepo.JobRepositoryFacade {
	return &PgxJobRepository{BaseRepository: base}
}

var _ portsrepo.JobRepositoryFacade = (*PgxJobRepository)(nil)

const jobColumns = `job_id, name, description, salary, incentive, created_at, created_by, last_updated_at, last_updated_by`

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.JobID,
		&j.Name,
		&j.Description,
		&j.Salary,
		&j.Incentive,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan job row", err)
	}
	return &j, nil
}

func listAssignedUserIDs(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, jobID string) ([]string, error) {
	query := `SELECT user_id FROM job_assignments WHERE job_id = $1 ORDER BY created_at;`
	rows, err := q.Query(ctx, query, jobID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query assignments for job "+jobID, err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan assignment row", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating assignment rows", err)
	}
	return userIDs, nil
}

// FindJobByID retrieves a job including its assigned students.
func (r *PgxJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1;`
	job, err := scanJob(r.Pool.QueryRow(ctx, query, jobID))
	if err != nil {
		return nil, err
	}
	job.AssignedUserIDs, err = listAssignedUserIDs(ctx, r.Pool, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs retrieves all jobs including their assigned students.
func (r *PgxJobRepository) ListJobs(ctx context.Context, limit int, offset int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY name LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query jobs", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	jobIDs := []string{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
		jobIDs = append(jobIDs, j.JobID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating job rows", err)
	}
	if len(jobIDs) == 0 {
		return jobs, nil
	}

	assignQuery := `SELECT job_id, user_id FROM job_assignments WHERE job_id = ANY($1) ORDER BY created_at;`
	assignRows, err := r.Pool.Query(ctx, assignQuery, jobIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query job assignments", err)
	}
	defer assignRows.Close()

	assignments := make(map[string][]string)
	for assignRows.Next() {
		var jobID, userID string
		if err := assignRows.Scan(&jobID, &userID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan assignment row", err)
		}
		assignments[jobID] = append(assignments[jobID], userID)
	}
	if err := assignRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating assignment rows", err)
	}
	for i := range jobs {
		jobs[i].AssignedUserIDs = assignments[jobs[i].JobID]
	}
	return jobs, nil
}

// SaveJob persists a new job.
func (r *PgxJobRepository) SaveJob(ctx context.Context, job domain.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		job.JobID,
		job.Name,
		job.Description,
		job.Salary,
		job.Incentive,
		job.CreatedAt,
		job.CreatedBy,
		job.LastUpdatedAt,
		job.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: job %s", apperrors.ErrDuplicate, job.JobID)
		}
		return apperrors.NewAppError(500, "failed to insert job "+job.JobID, err)
	}
	return nil
}

// UpdateJob updates a job's name, description, salary and incentive.
func (r *PgxJobRepository) UpdateJob(ctx context.Context, job domain.Job) error {
	query := `
		UPDATE jobs
		SET name = $2, description = $3, salary = $4, incentive = $5, last_updated_at = $6, last_updated_by = $7
		WHERE job_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		job.JobID,
		job.Name,
		job.Description,
		job.Salary,
		job.Incentive,
		job.LastUpdatedAt,
		job.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update job "+job.JobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("job " + job.JobID + " not found for update")
	}
	return nil
}

// DeleteJob removes a job and its assignments.
func (r *PgxJobRepository) DeleteJob(ctx context.Context, jobID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM job_assignments WHERE job_id = $1;`, jobID); err != nil {
		return apperrors.NewAppError(500, "failed to delete assignments for job "+jobID, err)
	}
	cmdTag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE job_id = $1;`, jobID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete job "+jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("job " + jobID + " not found for deletion")
	}
	return r.Commit(ctx, tx)
}

// AssignStudent adds a student to a job.
func (r *PgxJobRepository) AssignStudent(ctx context.Context, jobID string, userID string, assignedBy string, now time.Time) error {
	query := `
		INSERT INTO job_assignments (job_id, user_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $3, $4);
	`
	if _, err := r.Pool.Exec(ctx, query, jobID, userID, now, assignedBy); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s already assigned to job %s", apperrors.ErrDuplicate, userID, jobID)
		}
		return apperrors.NewAppError(500, "failed to assign user "+userID+" to job "+jobID, err)
	}
	return nil
}

// UnassignStudent removes a student from a job.
func (r *PgxJobRepository) UnassignStudent(ctx context.Context, jobID string, userID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM job_assignments WHERE job_id = $1 AND user_id = $2;`, jobID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to unassign user "+userID+" from job "+jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user " + userID + " is not assigned to job " + jobID)
	}
	return nil
}

// PaySalaryRun pays salary plus incentive to every student assigned to the
// job in one batch entry from the treasury. A job with no assigned students
// is a successful no-op with no ledger entries.
func (r *PgxJobRepository) PaySalaryRun(ctx context.Context, p portsrepo.PaySalaryParams) (*portsrepo.PayrollRunResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1 FOR UPDATE;`
	job, err := scanJob(tx.QueryRow(ctx, lockQuery, p.JobID))
	if err != nil {
		return nil, mapLockError(err)
	}
	userIDs, err := listAssignedUserIDs(ctx, tx, p.JobID)
	if err != nil {
		return nil, err
	}

	result := &portsrepo.PayrollRunResult{
		JobID:       p.JobID,
		PaidUserIDs: []string{},
		PerStudent:  decimal.Zero,
		Total:       decimal.Zero,
	}
	if len(userIDs) == 0 {
		if err := r.Commit(ctx, tx); err != nil {
			return nil, err
		}
		return result, nil
	}

	accountQuery := `SELECT owner_user_id, account_id FROM accounts WHERE owner_user_id = ANY($1) AND is_active;`
	accountRows, err := tx.Query(ctx, accountQuery, userIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to resolve accounts for job "+p.JobID, err)
	}
	defer accountRows.Close()

	accountByUser := make(map[string]string, len(userIDs))
	for accountRows.Next() {
		var ownerID, accountID string
		if err := accountRows.Scan(&ownerID, &accountID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row for payroll", err)
		}
		accountByUser[ownerID] = accountID
	}
	if err := accountRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating payroll account rows", err)
	}
	for _, userID := range userIDs {
		if _, ok := accountByUser[userID]; !ok {
			return nil, fmt.Errorf("%w: no active account for user %s", apperrors.ErrNotFound, userID)
		}
	}

	per := job.Payout()
	total := per.Mul(decimal.NewFromInt(int64(len(userIDs))))
	entryID := uuid.NewString()
	lines := make([]domain.EntryLine, 0, len(userIDs)+1)
	for _, userID := range userIDs {
		lines = append(lines, domain.EntryLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: accountByUser[userID],
			Amount:    per,
			Memo:      job.Name,
		})
	}
	lines = append(lines, domain.EntryLine{
		LineID:    uuid.NewString(),
		EntryID:   entryID,
		AccountID: p.TreasuryAccountID,
		Amount:    total.Neg(),
		Memo:      job.Name,
	})
	entry := domain.Entry{
		EntryID:     entryID,
		Kind:        domain.EntryPayroll,
		Description: fmt.Sprintf("salary run for %s", job.Name),
		Amount:      total,
		AuditFields: domain.AuditFields{
			CreatedAt:     p.Now,
			CreatedBy:     p.RequestedBy,
			LastUpdatedAt: p.Now,
			LastUpdatedBy: p.RequestedBy,
		},
	}
	if err := applyEntryInTx(ctx, tx, entry, lines); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	result.EntryID = entryID
	result.PaidUserIDs = userIDs
	result.PerStudent = per
	result.Total = total
	return result, nil
}
