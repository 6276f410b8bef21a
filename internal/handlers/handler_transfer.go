package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fintrellis/bank-accounts/internal/core/ports/services"
	"github.com/fintrellis/bank-accounts/internal/dto"
	"github.com/fintrellis/bank-accounts/internal/middleware"
)

// transferHandler handles HTTP requests for account-to-account transfers.
type transferHandler struct {
	accountService portssvc.AccountService
}

// registerTransferRoutes registers the transfer endpoint.
func registerTransferRoutes(rg *gin.RouterGroup, accountService portssvc.AccountService) {
	h := &transferHandler{accountService: accountService}

	rg.POST("/transfers", h.transfer)
}

// transfer moves funds between two accounts atomically.
func (h *transferHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("source_account_id", req.SourceAccountID),
		slog.String("destination_account_id", req.DestinationAccountID),
	)
	logger.Info("Received request to transfer funds",
		slog.String("amount", req.Amount.String()),
		slog.String("currency_code", req.CurrencyCode))

	if err := h.accountService.Transfer(c.Request.Context(), req); err != nil {
		respondWithServiceError(c, logger, err, "Failed to transfer funds")
		return
	}

	logger.Info("Transfer completed successfully")
	c.Status(http.StatusNoContent)
}
