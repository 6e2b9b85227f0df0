package repositories

import (
	"context"
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExecuteTradeParams carries one buy or sell order into the stock repository.
// The price is read under the stock row lock inside the trade transaction so
// trades and price mutations on the same stock serialize.
type ExecuteTradeParams struct {
	StockID           string
	AccountID         string // Student cash account
	TreasuryAccountID string // Trade counterparty
	Side              domain.TradeSide
	Quantity          int64
	RequestedBy       string // Acting user for audit fields
	Now               time.Time
}

// TradeResult reports the executed trade.
type TradeResult struct {
	EntryID         string
	Price           decimal.Decimal // Price per unit at execution
	Cost            decimal.Decimal // Rounded cash value moved
	Quantity        int64
	HoldingQuantity int64 // Holding after the trade
}

// StockReader defines read operations for stock products, holdings and
// price history.
type StockReader interface {
	// FindStockByID retrieves a stock product.
	FindStockByID(ctx context.Context, stockID string) (*domain.StockProduct, error)

	// ListStocks retrieves stock products, optionally including inactive ones.
	ListStocks(ctx context.Context, includeInactive bool) ([]domain.StockProduct, error)

	// FindHolding retrieves one account's holding of one stock. A missing
	// row is returned as a zero-quantity holding, not ErrNotFound.
	FindHolding(ctx context.Context, accountID string, stockID string) (*domain.StockHolding, error)

	// ListHoldingsByAccount retrieves all non-zero holdings of an account.
	ListHoldingsByAccount(ctx context.Context, accountID string) ([]domain.StockHolding, error)

	// ListPriceHistory retrieves price samples for a stock within a bounded
	// window, oldest first.
	ListPriceHistory(ctx context.Context, stockID string, since time.Time, limit int) ([]domain.StockPricePoint, error)
}

// StockWriter defines mutation operations for stock products.
type StockWriter interface {
	// SaveStock persists a new stock product and its initial price sample.
	SaveStock(ctx context.Context, stock domain.StockProduct) error

	// UpdatePrice sets a stock's price under the stock row lock and appends
	// a price history sample in the same transaction. Returns the new price.
	UpdatePrice(ctx context.Context, stockID string, newPrice decimal.Decimal, updatedBy string, now time.Time) (decimal.Decimal, error)

	// AdjustPrice shifts a stock's price by a signed delta under the stock
	// row lock. The resulting price must stay positive. Returns the new price.
	AdjustPrice(ctx context.Context, stockID string, delta decimal.Decimal, updatedBy string, now time.Time) (decimal.Decimal, error)

	// ExecuteTrade runs one buy/sell as a single transaction: stock row
	// lock, authoritative price read, ledger entry against the treasury,
	// holding update. Sells exceeding the holding fail with
	// ErrInsufficientHoldings; buys exceeding cash with ErrInsufficientFunds.
	ExecuteTrade(ctx context.Context, p ExecuteTradeParams) (*TradeResult, error)
}

// StockRepositoryFacade combines all stock repository interfaces.
type StockRepositoryFacade interface {
	StockReader
	StockWriter
}
