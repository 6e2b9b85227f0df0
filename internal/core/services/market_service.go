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
	"github.com/shopspring/decimal"
)

// systemUserID stamps audit fields on scheduler-driven mutations.
const systemUserID = "system"

// marketService runs the classroom stock market.
type marketService struct {
	stockRepo   portsrepo.StockRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	priceModel  PriceModel
}

// NewMarketService creates a new MarketService.
func NewMarketService(stockRepo portsrepo.StockRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, priceModel PriceModel) portssvc.MarketSvcFacade {
	return &marketService{stockRepo: stockRepo, accountRepo: accountRepo, priceModel: priceModel}
}

var _ portssvc.MarketSvcFacade = (*marketService)(nil)

func (s *marketService) CreateStock(ctx context.Context, actor domain.Actor, req dto.CreateStockRequest) (*domain.StockProduct, error) {
	if !actor.Role.Can(domain.CapManageMarket) {
		return nil, fmt.Errorf("%w: market management is not permitted for this role", apperrors.ErrForbidden)
	}
	if !req.InitialPrice.IsPositive() {
		return nil, fmt.Errorf("%w: initial price must be positive", apperrors.ErrValidation)
	}
	if req.Volatility.IsNegative() {
		return nil, fmt.Errorf("%w: volatility must not be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	stock := domain.StockProduct{
		StockID:      uuid.NewString(),
		Name:         req.Name,
		CurrentPrice: accounting.RoundToUnit(req.InitialPrice),
		Volatility:   req.Volatility,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.stockRepo.SaveStock(ctx, stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

func (s *marketService) ListStocks(ctx context.Context, actor domain.Actor) ([]domain.StockProduct, error) {
	includeInactive := actor.Role.Can(domain.CapManageMarket)
	return s.stockRepo.ListStocks(ctx, includeInactive)
}

func (s *marketService) SetPrice(ctx context.Context, actor domain.Actor, stockID string, price decimal.Decimal) (decimal.Decimal, error) {
	if !actor.Role.Can(domain.CapManageMarket) {
		return decimal.Zero, fmt.Errorf("%w: price management is not permitted for this role", apperrors.ErrForbidden)
	}
	return s.stockRepo.UpdatePrice(ctx, stockID, accounting.RoundToUnit(price), actor.UserID, time.Now())
}

func (s *marketService) AdjustPrice(ctx context.Context, actor domain.Actor, stockID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if !actor.Role.Can(domain.CapManageMarket) {
		return decimal.Zero, fmt.Errorf("%w: price management is not permitted for this role", apperrors.ErrForbidden)
	}
	if delta.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: price delta must be non-zero", apperrors.ErrValidation)
	}
	return s.stockRepo.AdjustPrice(ctx, stockID, accounting.RoundToUnit(delta), actor.UserID, time.Now())
}

func (s *marketService) trade(ctx context.Context, actor domain.Actor, req dto.TradeRequest, side domain.TradeSide) (*portsrepo.TradeResult, error) {
	if !actor.Role.Can(domain.CapTrade) {
		return nil, fmt.Errorf("%w: trading is not permitted for this role", apperrors.ErrForbidden)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: trade quantity must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("trading account lookup failed: %w", err)
	}
	treasury, err := s.accountRepo.FindAccountByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("treasury account lookup failed: %w", err)
	}

	result, err := s.stockRepo.ExecuteTrade(ctx, portsrepo.ExecuteTradeParams{
		StockID:           req.StockID,
		AccountID:         account.AccountID,
		TreasuryAccountID: treasury.AccountID,
		Side:              side,
		Quantity:          req.Quantity,
		RequestedBy:       actor.UserID,
		Now:               time.Now(),
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("trade executed",
		"entryID", result.EntryID, "stockID", req.StockID, "side", side, "quantity", req.Quantity, "cost", result.Cost.String())
	return result, nil
}

func (s *marketService) Buy(ctx context.Context, actor domain.Actor, req dto.TradeRequest) (*portsrepo.TradeResult, error) {
	return s.trade(ctx, actor, req, domain.TradeBuy)
}

func (s *marketService) Sell(ctx context.Context, actor domain.Actor, req dto.TradeRequest) (*portsrepo.TradeResult, error) {
	return s.trade(ctx, actor, req, domain.TradeSell)
}

func (s *marketService) ListHoldings(ctx context.Context, actor domain.Actor, accountID string) ([]domain.StockHolding, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerUserID != actor.UserID && !actor.Role.Can(domain.CapViewAllLedgers) {
		return nil, fmt.Errorf("%w: holdings of account %s are not visible to this user", apperrors.ErrForbidden, accountID)
	}
	return s.stockRepo.ListHoldingsByAccount(ctx, accountID)
}

func (s *marketService) GetPriceHistory(ctx context.Context, actor domain.Actor, stockID string, since time.Time, limit int) ([]domain.StockPricePoint, error) {
	if _, err := s.stockRepo.FindStockByID(ctx, stockID); err != nil {
		return nil, err
	}
	if since.IsZero() {
		since = time.Now().AddDate(0, -1, 0)
	}
	return s.stockRepo.ListPriceHistory(ctx, stockID, since, limit)
}

// TickPrices applies the price model to every active stock. Failures on one
// stock do not stop the tick.
func (s *marketService) TickPrices(ctx context.Context) error {
	stocks, err := s.stockRepo.ListStocks(ctx, false)
	if err != nil {
		return err
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()
	for _, stock := range stocks {
		next := s.priceModel.Next(stock.CurrentPrice, stock.Volatility)
		if next.Equal(stock.CurrentPrice) {
			continue
		}
		if _, err := s.stockRepo.UpdatePrice(ctx, stock.StockID, next, systemUserID, now); err != nil {
			logger.Error("price tick failed for stock", "stockID", stock.StockID, "error", err)
		}
	}
	return nil
}
