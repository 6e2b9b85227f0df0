package services_test

import (
	"context"
	"testing"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/core/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PayrollServiceTestSuite struct {
	suite.Suite
	mockJobRepo     *MockJobRepository
	mockUserRepo    *MockUserRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.PayrollSvcFacade
	ctx             context.Context
	teacher         domain.Actor
	student         domain.Actor
}

func (suite *PayrollServiceTestSuite) SetupTest() {
	suite.mockJobRepo = new(MockJobRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewPayrollService(suite.mockJobRepo, suite.mockUserRepo, suite.mockAccountRepo)
	suite.ctx = context.Background()
	suite.teacher = domain.Actor{UserID: "user-teacher", Role: domain.RoleTeacher}
	suite.student = domain.Actor{UserID: "user-student", Role: domain.RoleStudent}
}

func (suite *PayrollServiceTestSuite) TestCreateJob_Success() {
	req := dto.CreateJobRequest{
		Name:        "board cleaner",
		Description: "wipes the board after class",
		Salary:      decimal.NewFromInt(100),
		Incentive:   decimal.NewFromInt(20),
	}

	suite.mockJobRepo.On("SaveJob", suite.ctx, mock.MatchedBy(func(job domain.Job) bool {
		return job.Name == "board cleaner" &&
			job.Salary.Equal(decimal.NewFromInt(100)) &&
			job.Payout().Equal(decimal.NewFromInt(120))
	})).Return(nil).Once()

	job, err := suite.service.CreateJob(suite.ctx, suite.teacher, req)

	suite.Require().NoError(err)
	suite.NotEmpty(job.JobID)
	suite.mockJobRepo.AssertExpectations(suite.T())
}

func (suite *PayrollServiceTestSuite) TestCreateJob_ForbiddenForStudent() {
	_, err := suite.service.CreateJob(suite.ctx, suite.student, dto.CreateJobRequest{Name: "x", Salary: decimal.NewFromInt(10)})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PayrollServiceTestSuite) TestCreateJob_NegativeIncentiveRejected() {
	req := dto.CreateJobRequest{Name: "x", Salary: decimal.NewFromInt(10), Incentive: decimal.NewFromInt(-5)}

	_, err := suite.service.CreateJob(suite.ctx, suite.teacher, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PayrollServiceTestSuite) TestUpdateJob_PartialUpdate() {
	existing := &domain.Job{
		JobID:       "job-1",
		Name:        "board cleaner",
		Description: "wipes the board",
		Salary:      decimal.NewFromInt(100),
		Incentive:   decimal.NewFromInt(20),
	}
	newSalary := decimal.NewFromInt(150)

	suite.mockJobRepo.On("FindJobByID", suite.ctx, "job-1").Return(existing, nil).Once()
	suite.mockJobRepo.On("UpdateJob", suite.ctx, mock.MatchedBy(func(job domain.Job) bool {
		return job.Salary.Equal(decimal.NewFromInt(150)) &&
			job.Name == "board cleaner" &&
			job.LastUpdatedBy == suite.teacher.UserID
	})).Return(nil).Once()

	job, err := suite.service.UpdateJob(suite.ctx, suite.teacher, "job-1", dto.UpdateJobRequest{Salary: &newSalary})

	suite.Require().NoError(err)
	suite.True(job.Salary.Equal(newSalary))
	suite.Equal("board cleaner", job.Name)
	suite.mockJobRepo.AssertExpectations(suite.T())
}

func (suite *PayrollServiceTestSuite) TestUpdateJob_FractionalSalaryRejected() {
	existing := &domain.Job{JobID: "job-1", Salary: decimal.NewFromInt(100)}
	bad := decimal.RequireFromString("100.5")

	suite.mockJobRepo.On("FindJobByID", suite.ctx, "job-1").Return(existing, nil).Once()

	_, err := suite.service.UpdateJob(suite.ctx, suite.teacher, "job-1", dto.UpdateJobRequest{Salary: &bad})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJobRepo.AssertNotCalled(suite.T(), "UpdateJob", mock.Anything, mock.Anything)
}

func (suite *PayrollServiceTestSuite) TestAssign_Success() {
	student := &domain.User{UserID: "student-a", Role: domain.RoleStudent}
	job := &domain.Job{JobID: "job-1"}

	suite.mockUserRepo.On("FindUserByID", suite.ctx, "student-a").Return(student, nil).Once()
	suite.mockJobRepo.On("FindJobByID", suite.ctx, "job-1").Return(job, nil).Once()
	suite.mockJobRepo.On("AssignStudent", suite.ctx, "job-1", "student-a", suite.teacher.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.Assign(suite.ctx, suite.teacher, "job-1", "student-a")

	suite.Require().NoError(err)
	suite.mockJobRepo.AssertExpectations(suite.T())
}

func (suite *PayrollServiceTestSuite) TestAssign_NonStudentRejected() {
	banker := &domain.User{UserID: "user-banker", Role: domain.RoleBanker}

	suite.mockUserRepo.On("FindUserByID", suite.ctx, "user-banker").Return(banker, nil).Once()

	err := suite.service.Assign(suite.ctx, suite.teacher, "job-1", "user-banker")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJobRepo.AssertNotCalled(suite.T(), "AssignStudent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PayrollServiceTestSuite) TestPaySalary_Success() {
	treasury := &domain.Account{AccountID: "acc-treasury"}
	runResult := &portsrepo.PayrollRunResult{
		JobID:       "job-1",
		EntryID:     "entry-1",
		PaidUserIDs: []string{"student-a", "student-b"},
		PerStudent:  decimal.NewFromInt(120),
		Total:       decimal.NewFromInt(240),
	}

	suite.mockAccountRepo.On("FindAccountByRole", suite.ctx, domain.RoleTeacher).Return(treasury, nil).Once()
	suite.mockJobRepo.On("PaySalaryRun", suite.ctx, mock.MatchedBy(func(p portsrepo.PaySalaryParams) bool {
		return p.JobID == "job-1" &&
			p.TreasuryAccountID == "acc-treasury" &&
			p.RequestedBy == suite.teacher.UserID
	})).Return(runResult, nil).Once()

	result, err := suite.service.PaySalary(suite.ctx, suite.teacher, "job-1")

	suite.Require().NoError(err)
	suite.Len(result.PaidUserIDs, 2)
	suite.True(result.Total.Equal(decimal.NewFromInt(240)))
	suite.mockJobRepo.AssertExpectations(suite.T())
}

func (suite *PayrollServiceTestSuite) TestPaySalary_ForbiddenForStudent() {
	_, err := suite.service.PaySalary(suite.ctx, suite.student, "job-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PayrollServiceTestSuite) TestPayAll_OneFailureDoesNotStopTheRun() {
	jobs := []domain.Job{{JobID: "job-a"}, {JobID: "job-b"}}
	treasury := &domain.Account{AccountID: "acc-treasury"}
	runResult := &portsrepo.PayrollRunResult{JobID: "job-a", PaidUserIDs: []string{"student-a"}, Total: decimal.NewFromInt(100)}

	suite.mockJobRepo.On("ListJobs", suite.ctx, 1000, 0).Return(jobs, nil).Once()
	suite.mockAccountRepo.On("FindAccountByRole", suite.ctx, domain.RoleTeacher).Return(treasury, nil).Twice()
	suite.mockJobRepo.On("PaySalaryRun", suite.ctx, mock.MatchedBy(func(p portsrepo.PaySalaryParams) bool {
		return p.JobID == "job-a"
	})).Return(runResult, nil).Once()
	suite.mockJobRepo.On("PaySalaryRun", suite.ctx, mock.MatchedBy(func(p portsrepo.PaySalaryParams) bool {
		return p.JobID == "job-b"
	})).Return(nil, apperrors.ErrInsufficientFunds).Once()

	result, err := suite.service.PayAll(suite.ctx, suite.teacher)

	suite.Require().NoError(err)
	suite.Equal([]string{"job-a"}, result.Succeeded)
	suite.Require().Len(result.Failed, 1)
	suite.Equal("job-b", result.Failed[0].ID)
	suite.False(result.Ok())
}

func (suite *PayrollServiceTestSuite) TestDeleteJobs_PerItemOutcomes() {
	suite.mockJobRepo.On("DeleteJob", suite.ctx, "job-a").Return(nil).Once()
	suite.mockJobRepo.On("DeleteJob", suite.ctx, "job-b").Return(apperrors.ErrNotFound).Once()

	result, err := suite.service.DeleteJobs(suite.ctx, suite.teacher, []string{"job-a", "job-b"})

	suite.Require().NoError(err)
	suite.Equal([]string{"job-a"}, result.Succeeded)
	suite.Require().Len(result.Failed, 1)
	suite.Equal("job-b", result.Failed[0].ID)
}

func (suite *PayrollServiceTestSuite) TestDeleteJobs_ForbiddenForStudent() {
	_, err := suite.service.DeleteJobs(suite.ctx, suite.student, []string{"job-a"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockJobRepo.AssertNotCalled(suite.T(), "DeleteJob", mock.Anything, mock.Anything)
}

func TestPayrollServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PayrollServiceTestSuite))
}
