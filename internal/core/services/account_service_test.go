package services_test

import (
	"context"
	"testing"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
	ctx             context.Context
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
	suite.ctx = context.Background()
}

func (suite *AccountServiceTestSuite) TestGetAccount_OwnerCanSeeOwnAccount() {
	actor := domain.Actor{UserID: "user-1", Role: domain.RoleStudent}
	account := &domain.Account{AccountID: "acc-1", OwnerUserID: "user-1"}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-1").Return(account, nil).Once()

	got, err := suite.service.GetAccount(suite.ctx, actor, "acc-1")

	suite.Require().NoError(err)
	suite.Equal(account, got)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetAccount_StudentCannotSeeOthers() {
	actor := domain.Actor{UserID: "user-1", Role: domain.RoleStudent}
	account := &domain.Account{AccountID: "acc-2", OwnerUserID: "user-2"}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-2").Return(account, nil).Once()

	_, err := suite.service.GetAccount(suite.ctx, actor, "acc-2")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *AccountServiceTestSuite) TestGetAccount_ViewAllRolesSeeAny() {
	account := &domain.Account{AccountID: "acc-2", OwnerUserID: "user-2"}

	for _, role := range []domain.Role{domain.RoleTeacher, domain.RoleBanker} {
		suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-2").Return(account, nil).Once()

		got, err := suite.service.GetAccount(suite.ctx, domain.Actor{UserID: "someone-else", Role: role}, "acc-2")

		suite.Require().NoError(err, "role %s", role)
		suite.Equal(account, got)
	}
}

func (suite *AccountServiceTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccount(suite.ctx, domain.Actor{UserID: "user-1", Role: domain.RoleTeacher}, "acc-missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetMyAccount() {
	actor := domain.Actor{UserID: "user-1", Role: domain.RoleStudent}
	account := &domain.Account{AccountID: "acc-1", OwnerUserID: "user-1"}

	suite.mockAccountRepo.On("FindAccountByOwner", suite.ctx, "user-1").Return(account, nil).Once()

	got, err := suite.service.GetMyAccount(suite.ctx, actor)

	suite.Require().NoError(err)
	suite.Equal(account, got)
}

func (suite *AccountServiceTestSuite) TestListAccountsByRole_ForbiddenForStudent() {
	actor := domain.Actor{UserID: "user-1", Role: domain.RoleStudent}

	_, err := suite.service.ListAccountsByRole(suite.ctx, actor, domain.RoleStudent)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ListAccountsByRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestListAccountsByRole_InvalidRoleRejected() {
	actor := domain.Actor{UserID: "user-1", Role: domain.RoleTeacher}

	_, err := suite.service.ListAccountsByRole(suite.ctx, actor, domain.Role("PIRATE"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestListAccountsByRole_Success() {
	actor := domain.Actor{UserID: "user-1", Role: domain.RoleBanker}
	accounts := []domain.Account{{AccountID: "acc-1"}, {AccountID: "acc-2"}}

	suite.mockAccountRepo.On("ListAccountsByRole", suite.ctx, domain.RoleStudent, 100, 0).Return(accounts, nil).Once()

	got, err := suite.service.ListAccountsByRole(suite.ctx, actor, domain.RoleStudent)

	suite.Require().NoError(err)
	assert.Len(suite.T(), got, 2)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
