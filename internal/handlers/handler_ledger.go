package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/classbank/class_bank_app/internal/core/ports/services"
	"github.com/classbank/class_bank_app/internal/dto"
	"github.com/classbank/class_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for the raw ledger primitives.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.applyEntries)
		ledger.POST("/issue", h.issue)
		ledger.GET("/entries/:entryID", h.getEntry)
		ledger.GET("/accounts/:accountID/statement", h.getStatement)
	}
}

// applyEntries godoc
// @Summary Post a balanced ledger entry
// @Description Applies an arbitrary set of balance changes atomically. Lines must sum to zero.
// @Tags ledger
// @Accept json
// @Produce json
// @Param entry body dto.ApplyEntriesRequest true "Entry lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /ledger/entries [post]
func (h *ledgerHandler) applyEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.ApplyEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.ledgerService.ApplyEntries(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to apply entry")
		return
	}

	logger.Info("Ledger entry applied", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// issue godoc
// @Summary Issue currency into the treasury
// @Description Mints new currency. The only operation allowed to create money.
// @Tags ledger
// @Accept json
// @Produce json
// @Param issuance body dto.IssueRequest true "Amount to mint"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /ledger/issue [post]
func (h *ledgerHandler) issue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Issue", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.ledgerService.Issue(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, logger, err, "Failed to issue currency")
		return
	}

	logger.Info("Currency issued", slog.String("entry_id", entry.EntryID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a ledger entry
// @Description Retrieves an entry and its lines by entry ID
// @Tags ledger
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /ledger/entries/{entryID} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	entryID := c.Param("entryID")
	logger = logger.With(slog.String("entry_id", entryID))

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), actor, entryID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// getStatement godoc
// @Summary Get an account statement page
// @Description Lists ledger lines for an account, newest first, with keyset pagination
// @Tags ledger
// @Produce json
// @Param accountID path string true "Account ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Opaque cursor from the previous page"
// @Success 200 {object} dto.StatementResponse
// @Failure 400 {object} map[string]string "Invalid cursor"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /ledger/accounts/{accountID}/statement [get]
func (h *ledgerHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	accountID := c.Param("accountID")
	logger = logger.With(slog.String("account_id", accountID))

	var params dto.CursorParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	lines, nextToken, err := h.ledgerService.ListAccountStatement(c.Request.Context(), actor, accountID, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve statement")
		return
	}

	c.JSON(http.StatusOK, dto.StatementResponse{
		Lines:     dto.ToEntryLineResponses(lines),
		NextToken: nextToken,
	})
}
