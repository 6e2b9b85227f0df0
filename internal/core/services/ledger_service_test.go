package services_test

import (
	"context"
	"testing"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/core/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.LedgerSvcFacade
	ctx             context.Context
	teacher         domain.Actor
	student         domain.Actor
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAccountRepo)
	suite.ctx = context.Background()
	suite.teacher = domain.Actor{UserID: "user-teacher", Role: domain.RoleTeacher}
	suite.student = domain.Actor{UserID: "user-student", Role: domain.RoleStudent}
}

func (suite *LedgerServiceTestSuite) TestApplyEntries_Success() {
	req := dto.ApplyEntriesRequest{
		Description: "homework reward",
		Lines: []dto.EntryLineRequest{
			{AccountID: "acc-treasury", Amount: decimal.NewFromInt(-100)},
			{AccountID: "acc-student", Amount: decimal.NewFromInt(100)},
		},
	}

	suite.mockLedgerRepo.On("SaveEntry", suite.ctx, mock.MatchedBy(func(entry domain.Entry) bool {
		return entry.Kind == domain.EntryAdjustment &&
			entry.Description == "homework reward" &&
			entry.Amount.Equal(decimal.NewFromInt(100))
	}), mock.AnythingOfType("[]domain.EntryLine")).Return(nil).Once()

	entry, err := suite.service.ApplyEntries(suite.ctx, suite.teacher, req)

	suite.Require().NoError(err)
	suite.Len(entry.Lines, 2)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApplyEntries_ForbiddenForStudent() {
	req := dto.ApplyEntriesRequest{
		Description: "nope",
		Lines: []dto.EntryLineRequest{
			{AccountID: "acc-a", Amount: decimal.NewFromInt(-10)},
			{AccountID: "acc-b", Amount: decimal.NewFromInt(10)},
		},
	}

	_, err := suite.service.ApplyEntries(suite.ctx, suite.student, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApplyEntries_UnbalancedRejected() {
	req := dto.ApplyEntriesRequest{
		Description: "lopsided",
		Lines: []dto.EntryLineRequest{
			{AccountID: "acc-a", Amount: decimal.NewFromInt(-10)},
			{AccountID: "acc-b", Amount: decimal.NewFromInt(20)},
		},
	}

	_, err := suite.service.ApplyEntries(suite.ctx, suite.teacher, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApplyEntries_FractionalLineRejected() {
	req := dto.ApplyEntriesRequest{
		Description: "cents",
		Lines: []dto.EntryLineRequest{
			{AccountID: "acc-a", Amount: decimal.RequireFromString("-10.5")},
			{AccountID: "acc-b", Amount: decimal.RequireFromString("10.5")},
		},
	}

	_, err := suite.service.ApplyEntries(suite.ctx, suite.teacher, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestIssue_Success() {
	treasury := &domain.Account{AccountID: "acc-treasury", Role: domain.RoleTeacher}

	suite.mockAccountRepo.On("FindAccountByRole", suite.ctx, domain.RoleTeacher).Return(treasury, nil).Once()
	suite.mockLedgerRepo.On("SaveEntry", suite.ctx, mock.MatchedBy(func(entry domain.Entry) bool {
		return entry.Kind == domain.EntryIssuance && entry.Amount.Equal(decimal.NewFromInt(5000))
	}), mock.MatchedBy(func(lines []domain.EntryLine) bool {
		return len(lines) == 1 &&
			lines[0].AccountID == treasury.AccountID &&
			lines[0].Amount.Equal(decimal.NewFromInt(5000))
	})).Return(nil).Once()

	entry, err := suite.service.Issue(suite.ctx, suite.teacher, dto.IssueRequest{Amount: decimal.NewFromInt(5000)})

	suite.Require().NoError(err)
	suite.Equal("currency issuance", entry.Description)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestIssue_ForbiddenForStudent() {
	_, err := suite.service.Issue(suite.ctx, suite.student, dto.IssueRequest{Amount: decimal.NewFromInt(100)})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) TestIssue_FractionalAmountRejected() {
	_, err := suite.service.Issue(suite.ctx, suite.teacher, dto.IssueRequest{Amount: decimal.RequireFromString("100.25")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByRole", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetEntry_ViewAllSeesAny() {
	entry := &domain.Entry{EntryID: "entry-1", Lines: []domain.EntryLine{{AccountID: "acc-other"}}}

	suite.mockLedgerRepo.On("FindEntryByID", suite.ctx, "entry-1").Return(entry, nil).Once()

	got, err := suite.service.GetEntry(suite.ctx, suite.teacher, "entry-1")

	suite.Require().NoError(err)
	suite.Equal(entry, got)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByOwner", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetEntry_ParticipantSeesOwnEntry() {
	entry := &domain.Entry{EntryID: "entry-1", Lines: []domain.EntryLine{
		{AccountID: "acc-other"},
		{AccountID: "acc-student"},
	}}
	account := &domain.Account{AccountID: "acc-student", OwnerUserID: suite.student.UserID}

	suite.mockLedgerRepo.On("FindEntryByID", suite.ctx, "entry-1").Return(entry, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", suite.ctx, suite.student.UserID).Return(account, nil).Once()

	got, err := suite.service.GetEntry(suite.ctx, suite.student, "entry-1")

	suite.Require().NoError(err)
	suite.Equal(entry, got)
}

func (suite *LedgerServiceTestSuite) TestGetEntry_HiddenFromNonParticipant() {
	entry := &domain.Entry{EntryID: "entry-1", Lines: []domain.EntryLine{{AccountID: "acc-other"}}}
	account := &domain.Account{AccountID: "acc-student", OwnerUserID: suite.student.UserID}

	suite.mockLedgerRepo.On("FindEntryByID", suite.ctx, "entry-1").Return(entry, nil).Once()
	suite.mockAccountRepo.On("FindAccountByOwner", suite.ctx, suite.student.UserID).Return(account, nil).Once()

	_, err := suite.service.GetEntry(suite.ctx, suite.student, "entry-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LedgerServiceTestSuite) TestListAccountStatement_OwnerReadsOwnPage() {
	account := &domain.Account{AccountID: "acc-student", OwnerUserID: suite.student.UserID}
	lines := []domain.EntryLine{{LineID: "line-1", AccountID: "acc-student"}}
	next := "token-abc"

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-student").Return(account, nil).Once()
	suite.mockLedgerRepo.On("ListLinesByAccountID", suite.ctx, "acc-student", 20, (*string)(nil)).Return(lines, &next, nil).Once()

	got, token, err := suite.service.ListAccountStatement(suite.ctx, suite.student, "acc-student", 20, nil)

	suite.Require().NoError(err)
	suite.Len(got, 1)
	suite.Require().NotNil(token)
	suite.Equal("token-abc", *token)
}

func (suite *LedgerServiceTestSuite) TestListAccountStatement_ForbiddenForStranger() {
	account := &domain.Account{AccountID: "acc-other", OwnerUserID: "user-other"}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-other").Return(account, nil).Once()

	_, _, err := suite.service.ListAccountStatement(suite.ctx, suite.student, "acc-other", 20, nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ListLinesByAccountID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
