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
)

// reservationAction is the shared shape of the capture and release calls.
type reservationAction func(ctx context.Context, reservationID string, req dto.ReservationActionRequest) (*domain.Transaction, error)

// reservationHandler handles the capture/release lifecycle of reservations.
type reservationHandler struct {
	reservationService portssvc.ReservationSvcFacade
}

// newReservationHandler creates a new reservationHandler.
func newReservationHandler(rs portssvc.ReservationSvcFacade) *reservationHandler {
	return &reservationHandler{reservationService: rs}
}

// registerReservationRoutes registers routes related to reservations.
func registerReservationRoutes(rg *gin.RouterGroup, rs portssvc.ReservationSvcFacade) {
	h := newReservationHandler(rs)

	reservations := rg.Group("/reservations/:id")
	{
		reservations.POST("/capture", h.capture)
		reservations.POST("/release", h.release)
		reservations.POST("/complete", h.complete)
	}
}

// capture godoc
// @Summary Capture a reservation
// @Description Consumes part or all of a reservation into a sink account; amount defaults to the remaining reserved amount
// @Tags reservations
// @Accept  json
// @Produce  json
// @Param   id path string true "Reservation transaction ID"
// @Param   action body dto.ReservationActionRequest true "Capture details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 422 {object} map[string]string "Unknown or non-reservation id, or amount exceeds remaining"
// @Security BearerAuth
// @Router /reservations/{id}/capture [post]
func (h *reservationHandler) capture(c *gin.Context) {
	h.runAction(c, h.reservationService.Capture, "Failed to capture reservation")
}

// release godoc
// @Summary Release a reservation
// @Description Returns part or all of a reservation to the owner's wallet; amount defaults to the remaining reserved amount
// @Tags reservations
// @Accept  json
// @Produce  json
// @Param   id path string true "Reservation transaction ID"
// @Param   action body dto.ReservationActionRequest true "Release details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 422 {object} map[string]string "Unknown or non-reservation id, or amount exceeds remaining"
// @Security BearerAuth
// @Router /reservations/{id}/release [post]
func (h *reservationHandler) release(c *gin.Context) {
	h.runAction(c, h.reservationService.Release, "Failed to release reservation")
}

func (h *reservationHandler) runAction(c *gin.Context, action reservationAction, fallbackMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reservationID := c.Param("id")

	var req dto.ReservationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reservation action", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := action(c.Request.Context(), reservationID, req)
	if err != nil {
		respondServiceError(c, err, fallbackMsg)
		return
	}

	logger.Info("Reservation action recorded",
		slog.String("reservation_id", reservationID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// complete godoc
// @Summary Complete a reservation with a reported outcome
// @Description Closes the reservation saga: dispatches to capture or release based on the reported outcome
// @Tags reservations
// @Accept  json
// @Produce  json
// @Param   id path string true "Reservation transaction ID"
// @Param   completion body dto.CompleteReservationRequest true "Outcome and optional amount"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or unknown outcome"
// @Failure 422 {object} map[string]string "Unknown or non-reservation id, or amount exceeds remaining"
// @Security BearerAuth
// @Router /reservations/{id}/complete [post]
func (h *reservationHandler) complete(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reservationID := c.Param("id")

	var req dto.CompleteReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reservation completion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.reservationService.Complete(c.Request.Context(), reservationID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to complete reservation")
		return
	}

	logger.Info("Reservation completed",
		slog.String("reservation_id", reservationID),
		slog.String("outcome", req.Outcome),
		slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}
