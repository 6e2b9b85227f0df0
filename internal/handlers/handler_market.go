package handlers

import (
	"log/slog"
	"net/http"

	"github.com/classbank/class_bank_app/internal/core/domain"
	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// marketHandler handles HTTP requests for the classroom stock market.
type marketHandler struct {
	marketService portssvc.MarketSvcFacade
}

func newMarketHandler(ms portssvc.MarketSvcFacade) *marketHandler {
	return &marketHandler{marketService: ms}
}

// registerMarketRoutes registers routes related to the stock market.
func registerMarketRoutes(rg *gin.RouterGroup, marketService portssvc.MarketSvcFacade) {
	h := newMarketHandler(marketService)

	market := rg.Group("/market")
	{
		stocks := market.Group("/stocks")
		{
			stocks.POST("", h.createStock)
			stocks.GET("", h.listStocks)
			stocks.PUT("/:stockID/price", h.setPrice)
			stocks.PATCH("/:stockID/price", h.adjustPrice)
			stocks.GET("/:stockID/history", h.getPriceHistory)
		}
		trades := market.Group("/trades")
		{
			trades.POST("/buy", h.buy)
			trades.POST("/sell", h.sell)
		}
		market.GET("/accounts/:accountID/holdings", h.listHoldings)
	}
}

// createStock godoc
// @Summary Create a stock product
// @Description Defines a new tradable stock with an initial price and volatility
// @Tags market
// @Accept json
// @Produce json
// @Param stock body dto.CreateStockRequest true "Stock details"
// @Success 201 {object} dto.StockResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Stock name already exists"
// @Security BearerAuth
// @Router /market/stocks [post]
func (h *marketHandler) createStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateStock", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	stock, err := h.marketService.CreateStock(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create stock")
		return
	}

	logger.Info("Stock created", slog.String("stock_id", stock.StockID))
	c.JSON(http.StatusCreated, dto.ToStockResponse(stock))
}

// listStocks godoc
// @Summary List stocks
// @Description Lists tradable stocks. Managers also see delisted stocks.
// @Tags market
// @Produce json
// @Success 200 {array} dto.StockResponse
// @Security BearerAuth
// @Router /market/stocks [get]
func (h *marketHandler) listStocks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	stocks, err := h.marketService.ListStocks(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to list stocks")
		return
	}

	c.JSON(http.StatusOK, dto.ToStockResponses(stocks))
}

// setPrice godoc
// @Summary Set a stock price
// @Description Replaces the stock's current price with the given value
// @Tags market
// @Accept json
// @Produce json
// @Param stockID path string true "Stock ID"
// @Param price body dto.SetPriceRequest true "New price"
// @Success 200 {object} map[string]string "Resulting price"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Stock not found"
// @Security BearerAuth
// @Router /market/stocks/{stockID}/price [put]
func (h *marketHandler) setPrice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stockID := c.Param("stockID")
	logger = logger.With(slog.String("stock_id", stockID))

	var req dto.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetPrice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	price, err := h.marketService.SetPrice(c.Request.Context(), actor, stockID, req.Price)
	if err != nil {
		respondError(c, logger, err, "Failed to set price")
		return
	}

	logger.Info("Stock price set", slog.String("price", price.String()))
	c.JSON(http.StatusOK, gin.H{"price": price.String()})
}

// adjustPrice godoc
// @Summary Adjust a stock price
// @Description Shifts the stock's current price by a signed delta
// @Tags market
// @Accept json
// @Produce json
// @Param stockID path string true "Stock ID"
// @Param delta body dto.AdjustPriceRequest true "Signed price delta"
// @Success 200 {object} map[string]string "Resulting price"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Stock not found"
// @Security BearerAuth
// @Router /market/stocks/{stockID}/price [patch]
func (h *marketHandler) adjustPrice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stockID := c.Param("stockID")
	logger = logger.With(slog.String("stock_id", stockID))

	var req dto.AdjustPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AdjustPrice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	price, err := h.marketService.AdjustPrice(c.Request.Context(), actor, stockID, req.Delta)
	if err != nil {
		respondError(c, logger, err, "Failed to adjust price")
		return
	}

	logger.Info("Stock price adjusted", slog.String("price", price.String()))
	c.JSON(http.StatusOK, gin.H{"price": price.String()})
}

// buy godoc
// @Summary Buy stock
// @Description Buys a quantity of a stock at its current price
// @Tags market
// @Accept json
// @Produce json
// @Param trade body dto.TradeRequest true "Trade details"
// @Success 201 {object} dto.TradeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Stock not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /market/trades/buy [post]
func (h *marketHandler) buy(c *gin.Context) {
	h.trade(c, domain.TradeBuy)
}

// sell godoc
// @Summary Sell stock
// @Description Sells a quantity of a held stock at its current price
// @Tags market
// @Accept json
// @Produce json
// @Param trade body dto.TradeRequest true "Trade details"
// @Success 201 {object} dto.TradeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Stock not found"
// @Failure 422 {object} map[string]string "Insufficient holdings"
// @Security BearerAuth
// @Router /market/trades/sell [post]
func (h *marketHandler) sell(c *gin.Context) {
	h.trade(c, domain.TradeSell)
}

func (h *marketHandler) trade(c *gin.Context, side domain.TradeSide) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Trade", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("stock_id", req.StockID), slog.String("side", string(side)))

	execute := h.marketService.Buy
	if side == domain.TradeSell {
		execute = h.marketService.Sell
	}
	result, err := execute(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to execute trade")
		return
	}

	logger.Info("Trade executed", slog.String("entry_id", result.EntryID), slog.Int64("quantity", result.Quantity))
	c.JSON(http.StatusCreated, dto.TradeResponse{
		EntryID:         result.EntryID,
		StockID:         req.StockID,
		Side:            side,
		Quantity:        result.Quantity,
		Price:           result.Price,
		Cost:            result.Cost,
		HoldingQuantity: result.HoldingQuantity,
	})
}

// listHoldings godoc
// @Summary List stock holdings for an account
// @Description Lists the account's non-empty stock positions
// @Tags market
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {array} dto.HoldingResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /market/accounts/{accountID}/holdings [get]
func (h *marketHandler) listHoldings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	accountID := c.Param("accountID")
	logger = logger.With(slog.String("account_id", accountID))

	holdings, err := h.marketService.ListHoldings(c.Request.Context(), actor, accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to list holdings")
		return
	}

	c.JSON(http.StatusOK, dto.ToHoldingResponses(holdings))
}

// getPriceHistory godoc
// @Summary Get stock price history
// @Description Lists recorded price samples for a stock since the given date
// @Tags market
// @Produce json
// @Param stockID path string true "Stock ID"
// @Param since query string false "Start date (YYYY-MM-DD, default one month ago)"
// @Param limit query int false "Max samples (default 100, max 1000)"
// @Success 200 {array} dto.PricePointResponse
// @Failure 404 {object} map[string]string "Stock not found"
// @Security BearerAuth
// @Router /market/stocks/{stockID}/history [get]
func (h *marketHandler) getPriceHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stockID := c.Param("stockID")
	logger = logger.With(slog.String("stock_id", stockID))

	var params dto.PriceHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetPriceHistory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	points, err := h.marketService.GetPriceHistory(c.Request.Context(), actor, stockID, params.Since, params.Limit)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve price history")
		return
	}

	c.JSON(http.StatusOK, dto.ToPricePointResponses(points))
}
