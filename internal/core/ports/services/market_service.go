package services

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/classbank/class_bank_app/internal/core/ports/repositories"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/shopspring/decimal"
)

// MarketSvcFacade runs the classroom stock market.
type MarketSvcFacade interface {
	CreateStock(ctx context.Context, actor domain.Actor, req dto.CreateStockRequest) (*domain.StockProduct, error)
	ListStocks(ctx context.Context, actor domain.Actor) ([]domain.StockProduct, error)
	SetPrice(ctx context.Context, actor domain.Actor, stockID string, price decimal.Decimal) (decimal.Decimal, error)
	AdjustPrice(ctx context.Context, actor domain.Actor, stockID string, delta decimal.Decimal) (decimal.Decimal, error)
	Buy(ctx context.Context, actor domain.Actor, req dto.TradeRequest) (*repositories.TradeResult, error)
	Sell(ctx context.Context, actor domain.Actor, req dto.TradeRequest) (*repositories.TradeResult, error)
	ListHoldings(ctx context.Context, actor domain.Actor, accountID string) ([]domain.StockHolding, error)
	GetPriceHistory(ctx context.Context, actor domain.Actor, stockID string, since time.Time, limit int) ([]domain.StockPricePoint, error)
	// TickPrices applies the random-walk price model to every active stock.
	TickPrices(ctx context.Context) error
}
