package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// savingsHandler handles HTTP requests for term-deposit products.
type savingsHandler struct {
	savingsService portssvc.SavingsSvcFacade
}

func newSavingsHandler(ss portssvc.SavingsSvcFacade) *savingsHandler {
	return &savingsHandler{savingsService: ss}
}

// registerSavingsRoutes registers routes related to savings.
func registerSavingsRoutes(rg *gin.RouterGroup, savingsService portssvc.SavingsSvcFacade) {
	h := newSavingsHandler(savingsService)

	savings := rg.Group("/savings")
	{
		products := savings.Group("/products")
		{
			products.POST("", h.createProduct)
			products.GET("", h.listProducts)
		}
		enrollments := savings.Group("/enrollments")
		{
			enrollments.POST("", h.enroll)
			enrollments.GET("", h.listEnrollments)
			enrollments.POST("/:enrollmentID/cancel", h.cancel)
			enrollments.POST("/:enrollmentID/settle", h.settle)
		}
	}
}

// createProduct godoc
// @Summary Create a savings product
// @Description Defines a new term-deposit product
// @Tags savings
// @Accept json
// @Produce json
// @Param product body dto.CreateSavingsProductRequest true "Product details"
// @Success 201 {object} dto.SavingsProductResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /savings/products [post]
func (h *savingsHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateSavingsProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProduct", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	product, err := h.savingsService.CreateProduct(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create product")
		return
	}

	logger.Info("Savings product created", slog.String("product_id", product.ProductID))
	c.JSON(http.StatusCreated, dto.ToSavingsProductResponse(product))
}

// listProducts godoc
// @Summary List savings products
// @Description Lists active term-deposit products
// @Tags savings
// @Produce json
// @Success 200 {array} dto.SavingsProductResponse
// @Security BearerAuth
// @Router /savings/products [get]
func (h *savingsHandler) listProducts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	products, err := h.savingsService.ListProducts(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, dto.ToSavingsProductResponses(products))
}

// enroll godoc
// @Summary Open a term deposit
// @Description Moves the principal into the treasury and opens an active enrollment
// @Tags savings
// @Accept json
// @Produce json
// @Param enrollment body dto.EnrollRequest true "Enrollment details"
// @Success 201 {object} dto.EnrollmentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /savings/enrollments [post]
func (h *savingsHandler) enroll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Enroll", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	enrollment, err := h.savingsService.Enroll(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to enroll")
		return
	}

	logger.Info("Savings enrollment opened", slog.String("enrollment_id", enrollment.EnrollmentID))
	c.JSON(http.StatusCreated, dto.ToEnrollmentResponse(enrollment, nil))
}

// listEnrollments godoc
// @Summary List enrollments for an account
// @Description Lists term deposits held by the given account
// @Tags savings
// @Produce json
// @Param accountID query string true "Account ID"
// @Success 200 {array} dto.EnrollmentResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /savings/enrollments [get]
func (h *savingsHandler) listEnrollments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	accountID := c.Query("accountID")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accountID query parameter is required"})
		return
	}
	logger = logger.With(slog.String("account_id", accountID))

	enrollments, err := h.savingsService.ListEnrollments(c.Request.Context(), actor, accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to list enrollments")
		return
	}

	c.JSON(http.StatusOK, dto.ToEnrollmentResponses(enrollments))
}

// cancel godoc
// @Summary Cancel a term deposit early
// @Description Pays back the principal plus the reduced early-cancellation interest
// @Tags savings
// @Produce json
// @Param enrollmentID path string true "Enrollment ID"
// @Success 200 {object} dto.EnrollmentResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Enrollment not found"
// @Failure 409 {object} map[string]string "Already settled"
// @Security BearerAuth
// @Router /savings/enrollments/{enrollmentID}/cancel [post]
func (h *savingsHandler) cancel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	enrollmentID := c.Param("enrollmentID")
	logger = logger.With(slog.String("enrollment_id", enrollmentID))

	enrollment, payout, err := h.savingsService.Cancel(c.Request.Context(), actor, enrollmentID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel enrollment")
		return
	}

	logger.Info("Savings enrollment cancelled", slog.String("payout", payout.String()))
	c.JSON(http.StatusOK, dto.ToEnrollmentResponse(enrollment, &payout))
}

// settle godoc
// @Summary Settle a matured term deposit
// @Description Pays out the principal plus full interest for a deposit past maturity
// @Tags savings
// @Produce json
// @Param enrollmentID path string true "Enrollment ID"
// @Success 200 {object} dto.EnrollmentResponse
// @Failure 400 {object} map[string]string "Not yet matured"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Enrollment not found"
// @Failure 409 {object} map[string]string "Already settled"
// @Security BearerAuth
// @Router /savings/enrollments/{enrollmentID}/settle [post]
func (h *savingsHandler) settle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	enrollmentID := c.Param("enrollmentID")
	logger = logger.With(slog.String("enrollment_id", enrollmentID))

	enrollment, payout, err := h.savingsService.SettleMatured(c.Request.Context(), actor, enrollmentID)
	if err != nil {
		respondError(c, logger, err, "Failed to settle enrollment")
		return
	}

	logger.Info("Savings enrollment settled", slog.String("payout", payout.String()))
	c.JSON(http.StatusOK, dto.ToEnrollmentResponse(enrollment, &payout))
}
