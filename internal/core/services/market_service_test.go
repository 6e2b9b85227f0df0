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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// fixedStepModel always moves the price by a fixed delta. Lets the tick
// tests assert exact prices without a seeded walk.
type fixedStepModel struct {
	step decimal.Decimal
}

func (m fixedStepModel) Next(current, volatility decimal.Decimal) decimal.Decimal {
	if volatility.IntPart() <= 0 {
		return current
	}
	return current.Add(m.step)
}

type MarketServiceTestSuite struct {
	suite.Suite
	mockStockRepo   *MockStockRepository
	mockAccountRepo *MockAccountRepository
	priceModel      fixedStepModel
	service         portssvc.MarketSvcFacade
	ctx             context.Context
	teacher         domain.Actor
	student         domain.Actor
}

func (suite *MarketServiceTestSuite) SetupTest() {
	suite.mockStockRepo = new(MockStockRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.priceModel = fixedStepModel{step: decimal.NewFromInt(3)}
	suite.service = services.NewMarketService(suite.mockStockRepo, suite.mockAccountRepo, suite.priceModel)
	suite.ctx = context.Background()
	suite.teacher = domain.Actor{UserID: "user-teacher", Role: domain.RoleTeacher}
	suite.student = domain.Actor{UserID: "user-student", Role: domain.RoleStudent}
}

func (suite *MarketServiceTestSuite) TestCreateStock_Success() {
	req := dto.CreateStockRequest{Name: "Chalk Inc", InitialPrice: decimal.NewFromInt(100), Volatility: decimal.NewFromInt(10)}

	suite.mockStockRepo.On("SaveStock", suite.ctx, mock.MatchedBy(func(stock domain.StockProduct) bool {
		return stock.Name == "Chalk Inc" &&
			stock.CurrentPrice.Equal(decimal.NewFromInt(100)) &&
			stock.IsActive &&
			stock.StockID != ""
	})).Return(nil).Once()

	stock, err := suite.service.CreateStock(suite.ctx, suite.teacher, req)

	suite.Require().NoError(err)
	suite.Equal("Chalk Inc", stock.Name)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MarketServiceTestSuite) TestCreateStock_ForbiddenForStudent() {
	req := dto.CreateStockRequest{Name: "Chalk Inc", InitialPrice: decimal.NewFromInt(100)}

	_, err := suite.service.CreateStock(suite.ctx, suite.student, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *MarketServiceTestSuite) TestCreateStock_NonPositivePriceRejected() {
	req := dto.CreateStockRequest{Name: "Chalk Inc", InitialPrice: decimal.Zero}

	_, err := suite.service.CreateStock(suite.ctx, suite.teacher, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MarketServiceTestSuite) TestListStocks_StudentSeesActiveOnly() {
	suite.mockStockRepo.On("ListStocks", suite.ctx, false).Return([]domain.StockProduct{{StockID: "stock-1"}}, nil).Once()

	stocks, err := suite.service.ListStocks(suite.ctx, suite.student)

	suite.Require().NoError(err)
	suite.Len(stocks, 1)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MarketServiceTestSuite) TestListStocks_TeacherSeesInactiveToo() {
	suite.mockStockRepo.On("ListStocks", suite.ctx, true).Return([]domain.StockProduct{}, nil).Once()

	_, err := suite.service.ListStocks(suite.ctx, suite.teacher)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MarketServiceTestSuite) TestSetPrice_RoundsToUnit() {
	suite.mockStockRepo.On("UpdatePrice", suite.ctx, "stock-1",
		mock.MatchedBy(func(p decimal.Decimal) bool { return p.Equal(decimal.NewFromInt(120)) }),
		suite.teacher.UserID, mock.AnythingOfType("time.Time"),
	).Return(decimal.NewFromInt(120), nil).Once()

	price, err := suite.service.SetPrice(suite.ctx, suite.teacher, "stock-1", decimal.RequireFromString("120.4"))

	suite.Require().NoError(err)
	suite.True(price.Equal(decimal.NewFromInt(120)))
}

func (suite *MarketServiceTestSuite) TestAdjustPrice_ZeroDeltaRejected() {
	_, err := suite.service.AdjustPrice(suite.ctx, suite.teacher, "stock-1", decimal.Zero)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MarketServiceTestSuite) TestBuy_Success() {
	account := &domain.Account{AccountID: "acc-student", OwnerUserID: suite.student.UserID}
	treasury := &domain.Account{AccountID: "acc-treasury", Role: domain.RoleTeacher}
	result := &portsrepo.TradeResult{EntryID: "entry-1", Price: decimal.NewFromInt(100), Cost: decimal.NewFromInt(300), Quantity: 3, HoldingQuantity: 3}

	suite.mockAccountRepo.On("FindAccountByOwner", suite.ctx, suite.student.UserID).Return(account, nil).Once()
	suite.mockAccountRepo.On("FindAccountByRole", suite.ctx, domain.RoleTeacher).Return(treasury, nil).Once()
	suite.mockStockRepo.On("ExecuteTrade", suite.ctx, mock.MatchedBy(func(p portsrepo.ExecuteTradeParams) bool {
		return p.StockID == "stock-1" &&
			p.AccountID == account.AccountID &&
			p.TreasuryAccountID == treasury.AccountID &&
			p.Side == domain.TradeBuy &&
			p.Quantity == 3 &&
			p.RequestedBy == suite.student.UserID
	})).Return(result, nil).Once()

	got, err := suite.service.Buy(suite.ctx, suite.student, dto.TradeRequest{StockID: "stock-1", Quantity: 3})

	suite.Require().NoError(err)
	suite.Equal(result, got)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func (suite *MarketServiceTestSuite) TestSell_PassesSellSide() {
	account := &domain.Account{AccountID: "acc-student", OwnerUserID: suite.student.UserID}
	treasury := &domain.Account{AccountID: "acc-treasury"}
	result := &portsrepo.TradeResult{EntryID: "entry-1", Quantity: 2, HoldingQuantity: 1}

	suite.mockAccountRepo.On("FindAccountByOwner", suite.ctx, suite.student.UserID).Return(account, nil).Once()
	suite.mockAccountRepo.On("FindAccountByRole", suite.ctx, domain.RoleTeacher).Return(treasury, nil).Once()
	suite.mockStockRepo.On("ExecuteTrade", suite.ctx, mock.MatchedBy(func(p portsrepo.ExecuteTradeParams) bool {
		return p.Side == domain.TradeSell
	})).Return(result, nil).Once()

	_, err := suite.service.Sell(suite.ctx, suite.student, dto.TradeRequest{StockID: "stock-1", Quantity: 2})

	suite.Require().NoError(err)
}

func (suite *MarketServiceTestSuite) TestTrade_ForbiddenForTeacher() {
	_, err := suite.service.Buy(suite.ctx, suite.teacher, dto.TradeRequest{StockID: "stock-1", Quantity: 1})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockStockRepo.AssertNotCalled(suite.T(), "ExecuteTrade", mock.Anything, mock.Anything)
}

func (suite *MarketServiceTestSuite) TestTrade_NonPositiveQuantityRejected() {
	_, err := suite.service.Buy(suite.ctx, suite.student, dto.TradeRequest{StockID: "stock-1", Quantity: 0})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MarketServiceTestSuite) TestTrade_InsufficientFundsPropagates() {
	account := &domain.Account{AccountID: "acc-student", OwnerUserID: suite.student.UserID}
	treasury := &domain.Account{AccountID: "acc-treasury"}

	suite.mockAccountRepo.On("FindAccountByOwner", suite.ctx, suite.student.UserID).Return(account, nil).Once()
	suite.mockAccountRepo.On("FindAccountByRole", suite.ctx, domain.RoleTeacher).Return(treasury, nil).Once()
	suite.mockStockRepo.On("ExecuteTrade", suite.ctx, mock.Anything).Return(nil, apperrors.ErrInsufficientFunds).Once()

	_, err := suite.service.Buy(suite.ctx, suite.student, dto.TradeRequest{StockID: "stock-1", Quantity: 100})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *MarketServiceTestSuite) TestListHoldings_ForbiddenForStranger() {
	account := &domain.Account{AccountID: "acc-other", OwnerUserID: "user-other"}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, "acc-other").Return(account, nil).Once()

	_, err := suite.service.ListHoldings(suite.ctx, suite.student, "acc-other")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *MarketServiceTestSuite) TestTickPrices_UpdatesMovedStocksOnly() {
	stocks := []domain.StockProduct{
		{StockID: "stock-moving", CurrentPrice: decimal.NewFromInt(100), Volatility: decimal.NewFromInt(10)},
		{StockID: "stock-frozen", CurrentPrice: decimal.NewFromInt(50), Volatility: decimal.Zero},
	}

	suite.mockStockRepo.On("ListStocks", suite.ctx, false).Return(stocks, nil).Once()
	suite.mockStockRepo.On("UpdatePrice", suite.ctx, "stock-moving",
		mock.MatchedBy(func(p decimal.Decimal) bool { return p.Equal(decimal.NewFromInt(103)) }),
		"system", mock.AnythingOfType("time.Time"),
	).Return(decimal.NewFromInt(103), nil).Once()

	err := suite.service.TickPrices(suite.ctx)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
	suite.mockStockRepo.AssertNotCalled(suite.T(), "UpdatePrice", suite.ctx, "stock-frozen", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MarketServiceTestSuite) TestTickPrices_OneFailureDoesNotStopTheTick() {
	stocks := []domain.StockProduct{
		{StockID: "stock-a", CurrentPrice: decimal.NewFromInt(100), Volatility: decimal.NewFromInt(5)},
		{StockID: "stock-b", CurrentPrice: decimal.NewFromInt(200), Volatility: decimal.NewFromInt(5)},
	}

	suite.mockStockRepo.On("ListStocks", suite.ctx, false).Return(stocks, nil).Once()
	suite.mockStockRepo.On("UpdatePrice", suite.ctx, "stock-a", mock.Anything, "system", mock.Anything).Return(decimal.Zero, assert.AnError).Once()
	suite.mockStockRepo.On("UpdatePrice", suite.ctx, "stock-b", mock.Anything, "system", mock.Anything).Return(decimal.NewFromInt(203), nil).Once()

	err := suite.service.TickPrices(suite.ctx)

	suite.Require().NoError(err)
	suite.mockStockRepo.AssertExpectations(suite.T())
}

func TestMarketServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MarketServiceTestSuite))
}

func TestRandomWalkModel(t *testing.T) {
	model := services.NewRandomWalkModel(42)

	t.Run("StaysWithinVolatilityBound", func(t *testing.T) {
		current := decimal.NewFromInt(100)
		vol := decimal.NewFromInt(10)
		for i := 0; i < 200; i++ {
			next := model.Next(current, vol)
			diff := next.Sub(current).Abs()
			assert.True(t, diff.LessThanOrEqual(vol), "step %s exceeds volatility", diff)
			current = next
		}
	})

	t.Run("NeverWalksBelowOne", func(t *testing.T) {
		current := decimal.NewFromInt(2)
		vol := decimal.NewFromInt(10)
		for i := 0; i < 200; i++ {
			current = model.Next(current, vol)
			assert.True(t, current.GreaterThanOrEqual(decimal.NewFromInt(1)), "price %s fell below one", current)
		}
	})

	t.Run("ZeroVolatilityHoldsPrice", func(t *testing.T) {
		current := decimal.NewFromInt(77)
		assert.True(t, model.Next(current, decimal.Zero).Equal(current))
	})

	t.Run("SameSeedSameWalk", func(t *testing.T) {
		a := services.NewRandomWalkModel(7)
		b := services.NewRandomWalkModel(7)
		price := decimal.NewFromInt(100)
		vol := decimal.NewFromInt(5)
		for i := 0; i < 20; i++ {
			assert.True(t, a.Next(price, vol).Equal(b.Next(price, vol)))
		}
	})
}
