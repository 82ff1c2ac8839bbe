package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
	"github.com/tallyledger/tally/internal/middleware"
	"github.com/tallyledger/tally/internal/utils"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	auditService   portssvc.AuditSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, aus portssvc.AuditSvcFacade, ls portssvc.LedgerSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		auditService:   aus,
		ledgerService:  ls,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, aus portssvc.AuditSvcFacade, ls portssvc.LedgerSvcFacade) {
	h := newAccountHandler(as, aus, ls)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/:code", h.getAccount)
		accounts.GET("/:code/balance", h.getBalance)
		accounts.POST("/:code/reconcile", h.reconcile)
		accounts.GET("/:code/entries", h.listEntries)
		accounts.DELETE("/:code", h.deleteAccount)
	}
}

// createAccount godoc
// @Summary Find or create an account
// @Description Returns the existing account for the code or creates it with balance zero
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.FindOrCreateAccount(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account ready", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by code
// @Description Retrieves details for a specific account by its deterministic code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{code} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getBalance godoc
// @Summary Get an account balance
// @Description Returns both the cached balance and the balance recomputed from entry history
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	code := c.Param("code")

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	calculated, err := h.auditService.CalculateBalance(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, err, "Failed to calculate balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Code:              code,
		Balance:           account.Balance,
		BalanceDisplay:    utils.FormatBaseUnits(account.Balance),
		Calculated:        calculated,
		CalculatedDisplay: utils.FormatBaseUnits(calculated),
	})
}

// reconcile godoc
// @Summary Reconcile an account balance
// @Description Recomputes the balance from entry history and repairs the cached value when drifted
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/reconcile [post]
func (h *accountHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	calculated, err := h.auditService.ReconcileAccount(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, err, "Failed to reconcile account")
		return
	}

	logger.Info("Account reconciled", slog.String("code", code), slog.Int64("balance", calculated))
	c.JSON(http.StatusOK, dto.BalanceResponse{
		Code:              code,
		Balance:           calculated,
		BalanceDisplay:    utils.FormatBaseUnits(calculated),
		Calculated:        calculated,
		CalculatedDisplay: utils.FormatBaseUnits(calculated),
	})
}

// listEntries godoc
// @Summary List account entries
// @Description Retrieves the entry history of an account, newest first, with token pagination
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/entries [get]
func (h *accountHandler) listEntries(c *gin.Context) {
	code := c.Param("code")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	entries, newNextToken, err := h.ledgerService.ListAccountEntries(c.Request.Context(), code, limit, nextToken)
	if err != nil {
		respondServiceError(c, err, "Failed to list account entries")
		return
	}

	c.JSON(http.StatusOK, dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: newNextToken,
	})
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Removes an account; refused with 409 while entries reference it
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account still referenced by entries"
// @Security BearerAuth
// @Router /accounts/{code} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	if err := h.accountService.DeleteAccount(c.Request.Context(), code); err != nil {
		respondServiceError(c, err, "Failed to delete account")
		return
	}

	logger.Info("Account deleted", slog.String("code", code))
	c.Status(http.StatusNoContent)
}
