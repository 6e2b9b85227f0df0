package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockProduct is a simulated stock the teacher offers for trading.
type StockProduct struct {
	StockID      string          `json:"stockID"` // Primary key (UUID)
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"currentPrice"` // Always > 0
	Volatility   decimal.Decimal `json:"volatility"`   // >= 0, bounds the random walk step
	IsActive     bool            `json:"isActive"`
	AuditFields
}

// StockHolding is the quantity of one stock held by one account.
// Quantity never goes below zero.
type StockHolding struct {
	AccountID string `json:"accountID"`
	StockID   string `json:"stockID"`
	Quantity  int64  `json:"quantity"`
	AuditFields
}

// StockPricePoint is an append-only price history sample.
type StockPricePoint struct {
	StockID    string          `json:"stockID"`
	Price      decimal.Decimal `json:"price"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// TradeSide distinguishes buys from sells.
type TradeSide string

const (
	TradeBuy  TradeSide = "BUY"
	TradeSell TradeSide = "SELL"
)
