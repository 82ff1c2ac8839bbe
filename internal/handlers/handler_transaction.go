package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
	"github.com/tallyledger/tally/internal/middleware"
)

// transactionHandler handles direct transaction access and adjustments.
type transactionHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ls portssvc.LedgerSvcFacade) *transactionHandler {
	return &transactionHandler{ledgerService: ls}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade) {
	h := newTransactionHandler(ls)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/adjust", h.adjust)
		transactions.POST("/:id/reverse", h.reverse)
		transactions.GET("/lookup", h.lookupByExternalRef)
		transactions.GET("/:id", h.getTransaction)
		transactions.GET("/:id/children", h.getChildren)
		transactions.DELETE("/:id", h.deleteTransaction)
	}
}

// adjust godoc
// @Summary Post a manual adjustment
// @Description Records caller-supplied balanced entries with no overdraft enforcement
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   adjustment body dto.AdjustRequest true "Adjustment entries"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or imbalanced entries"
// @Failure 409 {object} map[string]string "Duplicate external reference"
// @Security BearerAuth
// @Router /transactions/adjust [post]
func (h *transactionHandler) adjust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for adjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.ledgerService.Adjust(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to record adjustment")
		return
	}

	logger.Info("Adjustment recorded", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// reverse godoc
// @Summary Reverse a transaction
// @Description Posts an adjustment carrying the direction-swapped entries of a prior transaction
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 201 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id}/reverse [post]
func (h *transactionHandler) reverse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	txn, err := h.ledgerService.ReverseTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondServiceError(c, err, "Failed to reverse transaction")
		return
	}

	logger.Info("Transaction reversed",
		slog.String("original_transaction_id", transactionID),
		slog.String("reversal_transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction
// @Description Retrieves a transaction together with its entries
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.ledgerService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// lookupByExternalRef godoc
// @Summary Look up a transaction by external reference
// @Description Retrieves the transaction recorded under an idempotency key, together with its entries
// @Tags transactions
// @Produce  json
// @Param   source query string true "External source system"
// @Param   externalID query string true "Identifier within the source system"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Missing source or externalID"
// @Failure 404 {object} map[string]string "No transaction recorded under this reference"
// @Security BearerAuth
// @Router /transactions/lookup [get]
func (h *transactionHandler) lookupByExternalRef(c *gin.Context) {
	source := c.Query("source")
	externalID := c.Query("externalID")
	if source == "" || externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source and externalID query parameters are required"})
		return
	}

	txn, err := h.ledgerService.GetTransactionByExternalRef(c.Request.Context(), source, externalID)
	if err != nil {
		respondServiceError(c, err, "Failed to look up transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// getChildren godoc
// @Summary List child transactions
// @Description Retrieves the transactions linked to a parent via parent_transaction_id, oldest first
// @Tags transactions
// @Produce  json
// @Param   id path string true "Parent transaction ID"
// @Success 200 {array} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id}/children [get]
func (h *transactionHandler) getChildren(c *gin.Context) {
	children, err := h.ledgerService.GetTransactionChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve child transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponses(children))
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Removes a transaction; refused with 409 while entries or child transactions reference it
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction still referenced"
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	if err := h.ledgerService.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		respondServiceError(c, err, "Failed to delete transaction")
		return
	}

	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	c.Status(http.StatusNoContent)
}
