package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tallyledger/tally/internal/core/domain"
	portssvc "github.com/tallyledger/tally/internal/core/ports/services"
	"github.com/tallyledger/tally/internal/dto"
	"github.com/tallyledger/tally/internal/middleware"
	"github.com/tallyledger/tally/internal/utils"
)

// ownerHandler handles the wallet operations addressed by owner reference.
type ownerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	accountService portssvc.AccountSvcFacade
	auditService   portssvc.AuditSvcFacade
}

// newOwnerHandler creates a new ownerHandler.
func newOwnerHandler(ls portssvc.LedgerSvcFacade, as portssvc.AccountSvcFacade, aus portssvc.AuditSvcFacade) *ownerHandler {
	return &ownerHandler{
		ledgerService:  ls,
		accountService: as,
		auditService:   aus,
	}
}

// registerOwnerRoutes registers routes related to owner wallets.
func registerOwnerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade, as portssvc.AccountSvcFacade, aus portssvc.AuditSvcFacade) {
	h := newOwnerHandler(ls, as, aus)

	owners := rg.Group("/owners/:kind/:id")
	{
		owners.POST("/deposit", h.deposit)
		owners.POST("/spend", h.spend)
		owners.POST("/reserve", h.reserve)
		owners.POST("/reconcile", h.reconcile)
		owners.GET("/balance", h.getBalance)
	}
}

func ownerFromPath(c *gin.Context) domain.OwnerRef {
	return domain.OwnerRef{Kind: c.Param("kind"), ID: c.Param("id")}
}

// deposit godoc
// @Summary Deposit funds into an owner's wallet
// @Description Records a deposit transaction crediting a source account and debiting the owner's wallet
// @Tags owners
// @Accept  json
// @Produce  json
// @Param   kind path string true "Owner kind"
// @Param   id path string true "Owner id"
// @Param   operation body dto.LedgerOperationRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Duplicate external reference"
// @Failure 503 {object} map[string]string "Account lock contention"
// @Security BearerAuth
// @Router /owners/{kind}/{id}/deposit [post]
func (h *ownerHandler) deposit(c *gin.Context) {
	h.runOperation(c, h.ledgerService.Deposit, "Failed to record deposit")
}

// spend godoc
// @Summary Spend funds from an owner's wallet
// @Description Records a spend transaction; fails with 422 when the wallet would go negative
// @Tags owners
// @Accept  json
// @Produce  json
// @Param   kind path string true "Owner kind"
// @Param   id path string true "Owner id"
// @Param   operation body dto.LedgerOperationRequest true "Spend details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 503 {object} map[string]string "Account lock contention"
// @Security BearerAuth
// @Router /owners/{kind}/{id}/spend [post]
func (h *ownerHandler) spend(c *gin.Context) {
	h.runOperation(c, h.ledgerService.Spend, "Failed to record spend")
}

// reserve godoc
// @Summary Reserve funds from an owner's wallet
// @Description Moves funds from the wallet into its reserved sub-account pending capture or release
// @Tags owners
// @Accept  json
// @Produce  json
// @Param   kind path string true "Owner kind"
// @Param   id path string true "Owner id"
// @Param   operation body dto.LedgerOperationRequest true "Reserve details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /owners/{kind}/{id}/reserve [post]
func (h *ownerHandler) reserve(c *gin.Context) {
	h.runOperation(c, h.ledgerService.Reserve, "Failed to record reservation")
}

// ownerOperation is the shared shape of the deposit, spend and reserve calls.
type ownerOperation func(ctx context.Context, owner domain.OwnerRef, req dto.LedgerOperationRequest) (*domain.Transaction, error)

func (h *ownerHandler) runOperation(c *gin.Context, op ownerOperation, fallbackMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	owner := ownerFromPath(c)

	var req dto.LedgerOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ledger operation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := op(c.Request.Context(), owner, req)
	if err != nil {
		respondServiceError(c, err, fallbackMsg)
		return
	}

	logger.Info("Ledger operation recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
		slog.String("owner_kind", owner.Kind),
		slog.String("owner_id", owner.ID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// reconcile godoc
// @Summary Reconcile an owner's wallet balance
// @Description Recomputes the wallet balance from entry history, repairs drift and mirrors the result
// @Tags owners
// @Produce  json
// @Param   kind path string true "Owner kind"
// @Param   id path string true "Owner id"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Owner wallet not found"
// @Security BearerAuth
// @Router /owners/{kind}/{id}/reconcile [post]
func (h *ownerHandler) reconcile(c *gin.Context) {
	owner := ownerFromPath(c)

	calculated, err := h.auditService.ReconcileOwner(c.Request.Context(), owner)
	if err != nil {
		respondServiceError(c, err, "Failed to reconcile owner balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		Code:              owner.WalletCode(),
		Balance:           calculated,
		BalanceDisplay:    utils.FormatBaseUnits(calculated),
		Calculated:        calculated,
		CalculatedDisplay: utils.FormatBaseUnits(calculated),
	})
}

// getBalance godoc
// @Summary Get an owner's wallet balance
// @Description Returns the cached wallet balance for an owner
// @Tags owners
// @Produce  json
// @Param   kind path string true "Owner kind"
// @Param   id path string true "Owner id"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Owner wallet not found"
// @Security BearerAuth
// @Router /owners/{kind}/{id}/balance [get]
func (h *ownerHandler) getBalance(c *gin.Context) {
	owner := ownerFromPath(c)

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), owner.WalletCode())
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve owner balance")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
