package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// taxHandler handles HTTP requests for tax billing and payment.
type taxHandler struct {
	taxService portssvc.TaxSvcFacade
}

func newTaxHandler(ts portssvc.TaxSvcFacade) *taxHandler {
	return &taxHandler{taxService: ts}
}

// registerTaxRoutes registers routes related to taxes.
func registerTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxSvcFacade) {
	h := newTaxHandler(taxService)

	taxes := rg.Group("/taxes")
	{
		taxes.POST("", h.createTax)
		taxes.GET("", h.listTaxes)
		taxes.GET("/obligations", h.listMyObligations)
		taxes.GET("/:taxID/recipients", h.listRecipients)
		taxes.POST("/:taxID/pay", h.pay)
	}
}

// createTax godoc
// @Summary Create a tax
// @Description Bills the named students. Each student gets an unpaid obligation.
// @Tags taxes
// @Accept json
// @Produce json
// @Param tax body dto.CreateTaxRequest true "Tax details"
// @Success 201 {object} dto.TaxResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Student account not found"
// @Security BearerAuth
// @Router /taxes [post]
func (h *taxHandler) createTax(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTax", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tax, err := h.taxService.CreateTax(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create tax")
		return
	}

	logger.Info("Tax created", slog.String("tax_id", tax.TaxID))
	c.JSON(http.StatusCreated, dto.ToTaxResponse(tax))
}

// listTaxes godoc
// @Summary List taxes
// @Description Lists all tax items
// @Tags taxes
// @Produce json
// @Success 200 {array} dto.TaxResponse
// @Security BearerAuth
// @Router /taxes [get]
func (h *taxHandler) listTaxes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	taxes, err := h.taxService.ListTaxes(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to list taxes")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaxResponses(taxes))
}

// listRecipients godoc
// @Summary List tax recipients
// @Description Lists the billed accounts and their payment state for a tax
// @Tags taxes
// @Produce json
// @Param taxID path string true "Tax ID"
// @Success 200 {array} dto.ObligationResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Tax not found"
// @Security BearerAuth
// @Router /taxes/{taxID}/recipients [get]
func (h *taxHandler) listRecipients(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taxID := c.Param("taxID")
	logger = logger.With(slog.String("tax_id", taxID))

	recipients, err := h.taxService.ListRecipients(c.Request.Context(), actor, taxID)
	if err != nil {
		respondError(c, logger, err, "Failed to list recipients")
		return
	}

	c.JSON(http.StatusOK, dto.ToObligationResponses(recipients))
}

// pay godoc
// @Summary Pay a tax
// @Description Moves the tax amount from the caller's account into the treasury
// @Tags taxes
// @Produce json
// @Param taxID path string true "Tax ID"
// @Success 200 {object} dto.ObligationResponse
// @Failure 404 {object} map[string]string "Tax or obligation not found"
// @Failure 409 {object} map[string]string "Already paid"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /taxes/{taxID}/pay [post]
func (h *taxHandler) pay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taxID := c.Param("taxID")
	logger = logger.With(slog.String("tax_id", taxID))

	recipient, err := h.taxService.Pay(c.Request.Context(), actor, taxID)
	if err != nil {
		respondError(c, logger, err, "Failed to pay tax")
		return
	}

	logger.Info("Tax paid")
	c.JSON(http.StatusOK, dto.ToObligationResponse(recipient))
}

// listMyObligations godoc
// @Summary List the caller's tax obligations
// @Description Lists all taxes billed to the caller's account with payment state
// @Tags taxes
// @Produce json
// @Success 200 {array} dto.ObligationResponse
// @Security BearerAuth
// @Router /taxes/obligations [get]
func (h *taxHandler) listMyObligations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	obligations, err := h.taxService.ListMyObligations(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to list obligations")
		return
	}

	c.JSON(http.StatusOK, dto.ToObligationResponses(obligations))
}
