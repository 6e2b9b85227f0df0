package dto

import (
	"time"

	"github.com/classbank/class_bank_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateStockRequest defines a new stock product.
type CreateStockRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	InitialPrice decimal.Decimal `json:"initialPrice" binding:"required,dgt0"`
	Volatility   decimal.Decimal `json:"volatility" binding:"required,dgte0"`
}

// SetPriceRequest replaces a stock's current price.
type SetPriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required,dgt0"`
}

// AdjustPriceRequest shifts a stock's current price by a signed delta.
type AdjustPriceRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

// TradeRequest is a buy or sell order.
type TradeRequest struct {
	StockID  string `json:"stockID" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// StockResponse mirrors domain.StockProduct.
type StockResponse struct {
	StockID      string          `json:"stockID"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Volatility   decimal.Decimal `json:"volatility"`
	IsActive     bool            `json:"isActive"`
}

// TradeResponse reports an executed trade.
type TradeResponse struct {
	EntryID         string           `json:"entryID"`
	StockID         string           `json:"stockID"`
	Side            domain.TradeSide `json:"side"`
	Quantity        int64            `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	Cost            decimal.Decimal  `json:"cost"`
	HoldingQuantity int64            `json:"holdingQuantity"`
}

// HoldingResponse mirrors domain.StockHolding.
type HoldingResponse struct {
	StockID  string `json:"stockID"`
	Quantity int64  `json:"quantity"`
}

// PricePointResponse is one price history sample.
type PricePointResponse struct {
	Price      decimal.Decimal `json:"price"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// PriceHistoryParams bounds a history query.
type PriceHistoryParams struct {
	Since time.Time `form:"since" time_format:"2006-01-02"`
	Limit int       `form:"limit,default=100" binding:"omitempty,min=1,max=1000"`
}

// ToStockResponse converts a domain.StockProduct to its DTO.
func ToStockResponse(s *domain.StockProduct) StockResponse {
	return StockResponse{
		StockID:      s.StockID,
		Name:         s.Name,
		CurrentPrice: s.CurrentPrice,
		Volatility:   s.Volatility,
		IsActive:     s.IsActive,
	}
}

// ToStockResponses converts a slice of stock products to DTOs.
func ToStockResponses(stocks []domain.StockProduct) []StockResponse {
	res := make([]StockResponse, len(stocks))
	for i := range stocks {
		res[i] = ToStockResponse(&stocks[i])
	}
	return res
}

// ToHoldingResponses converts holdings to DTOs.
func ToHoldingResponses(holdings []domain.StockHolding) []HoldingResponse {
	res := make([]HoldingResponse, len(holdings))
	for i, h := range holdings {
		res[i] = HoldingResponse{StockID: h.StockID, Quantity: h.Quantity}
	}
	return res
}

// ToPricePointResponses converts history samples to DTOs.
func ToPricePointResponses(points []domain.StockPricePoint) []PricePointResponse {
	res := make([]PricePointResponse, len(points))
	for i, p := range points {
		res[i] = PricePointResponse{Price: p.Price, RecordedAt: p.RecordedAt}
	}
	return res
}
