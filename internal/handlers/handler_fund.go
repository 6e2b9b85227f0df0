package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fundHandler handles HTTP requests for pooled funds.
type fundHandler struct {
	fundService portssvc.FundSvcFacade
}

func newFundHandler(fs portssvc.FundSvcFacade) *fundHandler {
	return &fundHandler{fundService: fs}
}

// registerFundRoutes registers routes related to funds.
func registerFundRoutes(rg *gin.RouterGroup, fundService portssvc.FundSvcFacade) {
	h := newFundHandler(fundService)

	funds := rg.Group("/funds")
	{
		funds.POST("", h.createFund)
		funds.GET("", h.listFunds)
		funds.GET("/:fundID", h.getFund)
		funds.POST("/:fundID/investments", h.join)
		funds.POST("/:fundID/settle", h.settle)
	}
}

// createFund godoc
// @Summary Create a fund
// @Description Opens a pooled fund in recruiting status
// @Tags funds
// @Accept json
// @Produce json
// @Param fund body dto.CreateFundRequest true "Fund details"
// @Success 201 {object} dto.FundResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /funds [post]
func (h *fundHandler) createFund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFund", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fund, err := h.fundService.CreateFund(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create fund")
		return
	}

	logger.Info("Fund created", slog.String("fund_id", fund.FundID))
	c.JSON(http.StatusCreated, dto.ToFundResponse(fund, nil))
}

// listFunds godoc
// @Summary List funds
// @Description Lists funds, optionally filtered by status, newest first
// @Tags funds
// @Produce json
// @Param status query string false "Status filter (RECRUITING, ONGOING, SETTLED_SUCCESS, SETTLED_FAILURE)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {array} dto.FundResponse
// @Security BearerAuth
// @Router /funds [get]
func (h *fundHandler) listFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var params dto.ListFundsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListFunds", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	funds, err := h.fundService.ListFunds(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list funds")
		return
	}

	c.JSON(http.StatusOK, dto.ToFundResponses(funds))
}

// getFund godoc
// @Summary Get a fund
// @Description Retrieves a fund and its investments
// @Tags funds
// @Produce json
// @Param fundID path string true "Fund ID"
// @Success 200 {object} dto.FundResponse
// @Failure 404 {object} map[string]string "Fund not found"
// @Security BearerAuth
// @Router /funds/{fundID} [get]
func (h *fundHandler) getFund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	fundID := c.Param("fundID")
	logger = logger.With(slog.String("fund_id", fundID))

	fund, investments, err := h.fundService.GetFund(c.Request.Context(), actor, fundID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve fund")
		return
	}

	c.JSON(http.StatusOK, dto.ToFundResponse(fund, investments))
}

// join godoc
// @Summary Invest in a fund
// @Description Buys units in a recruiting fund. The cash moves immediately.
// @Tags funds
// @Accept json
// @Produce json
// @Param fundID path string true "Fund ID"
// @Param investment body dto.JoinFundRequest true "Units to buy"
// @Success 201 {object} dto.InvestmentResponse
// @Failure 400 {object} map[string]string "Fund not recruiting or cap exceeded"
// @Failure 404 {object} map[string]string "Fund not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /funds/{fundID}/investments [post]
func (h *fundHandler) join(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	fundID := c.Param("fundID")
	logger = logger.With(slog.String("fund_id", fundID))

	var req dto.JoinFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for JoinFund", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	investment, err := h.fundService.Join(c.Request.Context(), actor, fundID, req.Units)
	if err != nil {
		respondError(c, logger, err, "Failed to join fund")
		return
	}

	logger.Info("Fund investment recorded", slog.Int64("units", investment.Units))
	c.JSON(http.StatusCreated, dto.InvestmentResponse{AccountID: investment.AccountID, Units: investment.Units})
}

// settle godoc
// @Summary Settle a fund
// @Description Records the fund outcome and pays every investor at the outcome multiplier
// @Tags funds
// @Accept json
// @Produce json
// @Param fundID path string true "Fund ID"
// @Param settlement body dto.SettleFundRequest true "Outcome verdict"
// @Success 200 {object} dto.FundResponse
// @Failure 400 {object} map[string]string "Fund still recruiting"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Fund not found"
// @Failure 409 {object} map[string]string "Already settled"
// @Security BearerAuth
// @Router /funds/{fundID}/settle [post]
func (h *fundHandler) settle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	fundID := c.Param("fundID")
	logger = logger.With(slog.String("fund_id", fundID))

	var req dto.SettleFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SettleFund", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	fund, err := h.fundService.Settle(c.Request.Context(), actor, fundID, req.Outcome)
	if err != nil {
		respondError(c, logger, err, "Failed to settle fund")
		return
	}

	logger.Info("Fund settled", slog.String("status", string(fund.Status)))
	c.JSON(http.StatusOK, dto.ToFundResponse(fund, nil))
}
