package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/classbank/class_bank_app/internal/apperrors"
	"github.com/classbank/class_bank_app/internal/core/domain"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/handlers"
	"github.com/classbank/class_bank_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, actor, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetMyAccount(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccountsByRole(ctx context.Context, actor domain.Actor, role domain.Role) ([]domain.Account, error) {
	args := m.Called(ctx, actor, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	jwtSecret          string
}

func (suite *AccountHandlerTestSuite) generateTestToken(userID string, role domain.Role) string {
	claims := struct {
		Role string `json:"role"`
		jwt.RegisteredClaims
	}{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockAccountService = new(MockAccountService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true}
	services := &portssvc.ServiceContainer{Account: suite.mockAccountService}
	handlers.RegisterRoutes(suite.router, cfg, services)
}

func (suite *AccountHandlerTestSuite) doRequest(method, url, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) TestGetMyAccount_Success() {
	account := &domain.Account{
		AccountID:     "acc-1",
		OwnerUserID:   "user-1",
		Role:          domain.RoleStudent,
		AccountNumber: "1001",
		Balance:       decimal.NewFromInt(250),
		IsActive:      true,
	}

	suite.mockAccountService.On("GetMyAccount",
		mock.Anything,
		domain.Actor{UserID: "user-1", Role: domain.RoleStudent},
	).Return(account, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/me", suite.generateTestToken("user-1", domain.RoleStudent))

	suite.Equal(http.StatusOK, w.Code)
	var body dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("acc-1", body.AccountID)
	suite.Equal("1001", body.AccountNumber)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestGetAccount_ForbiddenMapsTo403() {
	suite.mockAccountService.On("GetAccount",
		mock.Anything,
		domain.Actor{UserID: "user-1", Role: domain.RoleStudent},
		"acc-other",
	).Return(nil, apperrors.ErrForbidden).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/acc-other", suite.generateTestToken("user-1", domain.RoleStudent))

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFoundMapsTo404() {
	suite.mockAccountService.On("GetAccount", mock.Anything, mock.Anything, "acc-missing").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/acc-missing", suite.generateTestToken("user-t", domain.RoleTeacher))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_PassesRoleQuery() {
	accounts := []domain.Account{{AccountID: "acc-1", Role: domain.RoleStudent}}

	suite.mockAccountService.On("ListAccountsByRole",
		mock.Anything,
		domain.Actor{UserID: "user-t", Role: domain.RoleTeacher},
		domain.RoleStudent,
	).Return(accounts, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/accounts?role=STUDENT", suite.generateTestToken("user-t", domain.RoleTeacher))

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body, 1)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestMissingTokenRejected() {
	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/me", "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "GetMyAccount", mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestUnknownRoleClaimRejected() {
	w := suite.doRequest(http.MethodGet, "/api/v1/accounts/me", suite.generateTestToken("user-1", domain.Role("PIRATE")))

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
