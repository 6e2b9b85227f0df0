package services_test

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	portsrepo "github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Shared repository mocks for the service test suites.

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByOwner(ctx context.Context, ownerUserID string) (*domain.Account, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByRole(ctx context.Context, role domain.Role) (*domain.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByRole(ctx context.Context, role domain.Role, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.EntryLine, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var lines []domain.EntryLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.EntryLine)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return lines, token, args.Error(2)
}

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry domain.Entry, lines []domain.EntryLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

// --- Mock StockRepository ---
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) FindStockByID(ctx context.Context, stockID string) (*domain.StockProduct, error) {
	args := m.Called(ctx, stockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockProduct), args.Error(1)
}

func (m *MockStockRepository) ListStocks(ctx context.Context, includeInactive bool) ([]domain.StockProduct, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockProduct), args.Error(1)
}

func (m *MockStockRepository) FindHolding(ctx context.Context, accountID string, stockID string) (*domain.StockHolding, error) {
	args := m.Called(ctx, accountID, stockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockHolding), args.Error(1)
}

func (m *MockStockRepository) ListHoldingsByAccount(ctx context.Context, accountID string) ([]domain.StockHolding, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockHolding), args.Error(1)
}

func (m *MockStockRepository) ListPriceHistory(ctx context.Context, stockID string, since time.Time, limit int) ([]domain.StockPricePoint, error) {
	args := m.Called(ctx, stockID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockPricePoint), args.Error(1)
}

func (m *MockStockRepository) SaveStock(ctx context.Context, stock domain.StockProduct) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) UpdatePrice(ctx context.Context, stockID string, newPrice decimal.Decimal, updatedBy string, now time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, stockID, newPrice, updatedBy, now)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockRepository) AdjustPrice(ctx context.Context, stockID string, delta decimal.Decimal, updatedBy string, now time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, stockID, delta, updatedBy, now)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockRepository) ExecuteTrade(ctx context.Context, p portsrepo.ExecuteTradeParams) (*portsrepo.TradeResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.TradeResult), args.Error(1)
}

// --- Mock SavingsRepository ---
type MockSavingsRepository struct {
	mock.Mock
}

func (m *MockSavingsRepository) FindProductByID(ctx context.Context, productID string) (*domain.SavingsProduct, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsProduct), args.Error(1)
}

func (m *MockSavingsRepository) ListProducts(ctx context.Context, includeInactive bool) ([]domain.SavingsProduct, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavingsProduct), args.Error(1)
}

func (m *MockSavingsRepository) FindEnrollmentByID(ctx context.Context, enrollmentID string) (*domain.SavingsEnrollment, error) {
	args := m.Called(ctx, enrollmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsEnrollment), args.Error(1)
}

func (m *MockSavingsRepository) ListEnrollmentsByAccount(ctx context.Context, accountID string) ([]domain.SavingsEnrollment, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SavingsEnrollment), args.Error(1)
}

func (m *MockSavingsRepository) ListMaturedActiveEnrollmentIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSavingsRepository) SaveProduct(ctx context.Context, product domain.SavingsProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockSavingsRepository) OpenEnrollment(ctx context.Context, enrollment domain.SavingsEnrollment, entry domain.Entry, lines []domain.EntryLine) error {
	args := m.Called(ctx, enrollment, entry, lines)
	return args.Error(0)
}

func (m *MockSavingsRepository) SettleEnrollment(ctx context.Context, p portsrepo.SettleEnrollmentParams) (*domain.SavingsEnrollment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingsEnrollment), args.Error(1)
}

// --- Mock FundRepository ---
type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) FindFundByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fund), args.Error(1)
}

func (m *MockFundRepository) ListFunds(ctx context.Context, statuses []domain.FundStatus, limit int, offset int) ([]domain.Fund, error) {
	args := m.Called(ctx, statuses, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fund), args.Error(1)
}

func (m *MockFundRepository) ListInvestments(ctx context.Context, fundID string) ([]domain.FundInvestment, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundInvestment), args.Error(1)
}

func (m *MockFundRepository) ListExpiredRecruitingFundIDs(ctx context.Context, asOf time.Time) ([]string, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFundRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

func (m *MockFundRepository) JoinFund(ctx context.Context, p portsrepo.JoinFundParams) (*domain.FundInvestment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundInvestment), args.Error(1)
}

func (m *MockFundRepository) MarkOngoing(ctx context.Context, fundID string, updatedBy string, now time.Time) error {
	args := m.Called(ctx, fundID, updatedBy, now)
	return args.Error(0)
}

func (m *MockFundRepository) SettleFund(ctx context.Context, p portsrepo.SettleFundParams) (*domain.Fund, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fund), args.Error(1)
}

// --- Mock TaxRepository ---
type MockTaxRepository struct {
	mock.Mock
}

func (m *MockTaxRepository) FindTaxByID(ctx context.Context, taxID string) (*domain.TaxItem, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxItem), args.Error(1)
}

func (m *MockTaxRepository) ListTaxes(ctx context.Context, limit int, offset int) ([]domain.TaxItem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxItem), args.Error(1)
}

func (m *MockTaxRepository) ListRecipientsByTax(ctx context.Context, taxID string) ([]domain.TaxRecipient, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxRecipient), args.Error(1)
}

func (m *MockTaxRepository) ListObligationsByAccount(ctx context.Context, accountID string) ([]domain.TaxRecipient, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxRecipient), args.Error(1)
}

func (m *MockTaxRepository) SaveTax(ctx context.Context, tax domain.TaxItem, recipients []domain.TaxRecipient) error {
	args := m.Called(ctx, tax, recipients)
	return args.Error(0)
}

func (m *MockTaxRepository) PayTax(ctx context.Context, p portsrepo.PayTaxParams) (*domain.TaxRecipient, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxRecipient), args.Error(1)
}

// --- Mock JobRepository ---
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) ListJobs(ctx context.Context, limit int, offset int) ([]domain.Job, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepository) SaveJob(ctx context.Context, job domain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) UpdateJob(ctx context.Context, job domain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) DeleteJob(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockJobRepository) AssignStudent(ctx context.Context, jobID string, userID string, assignedBy string, now time.Time) error {
	args := m.Called(ctx, jobID, userID, assignedBy, now)
	return args.Error(0)
}

func (m *MockJobRepository) UnassignStudent(ctx context.Context, jobID string, userID string) error {
	args := m.Called(ctx, jobID, userID)
	return args.Error(0)
}

func (m *MockJobRepository) PaySalaryRun(ctx context.Context, p portsrepo.PaySalaryParams) (*portsrepo.PayrollRunResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.PayrollRunResult), args.Error(1)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsersByRole(ctx context.Context, role domain.Role, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
