package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portssvc "github.com/fintrellis/bank-accounts/internal/core/ports/services"
	"github.com/fintrellis/bank-accounts/internal/dto"
	"github.com/fintrellis/bank-accounts/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountService
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountService) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountService) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/transactions", h.listTransactions)
		accounts.POST("/:accountID/credit", h.creditAccount)
		accounts.POST("/:accountID/debit", h.debitAccount)
		accounts.POST("/:accountID/interest", h.updateInterestRate)
		accounts.POST("/:accountID/interest/accrue", h.accrueInterest)
		accounts.DELETE("/:accountID", h.closeAccount)
	}
}

// respondWithServiceError maps service errors onto HTTP statuses. Conflicts
// (insufficient funds, frozen client, version races) come back as 409 so
// callers know a retry or different input may succeed.
func respondWithServiceError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrCurrencyMismatch),
		errors.Is(err, apperrors.ErrUnsupportedCurrency),
		errors.Is(err, apperrors.ErrInvalidTransactionKind):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrAccountFrozen),
		errors.Is(err, apperrors.ErrAccountClosed),
		errors.Is(err, apperrors.ErrConcurrencyConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflicting account state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}

// openAccount creates a new account for a client.
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to open account",
		slog.String("owner_id", req.OwnerID),
		slog.String("account_kind", req.AccountKind),
		slog.String("currency_code", req.CurrencyCode))

	newAccount, err := h.accountService.OpenAccount(c.Request.Context(), req)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to open account")
		return
	}

	logger.Info("Account opened successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount retrieves details for a specific account by its ID.
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to get account")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listTransactions returns the account's transaction history, newest first.
func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to list transactions", slog.Int("limit", limit), slog.Int("offset", offset))

	txns, err := h.accountService.ListTransactions(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTransactionResponseSlice(txns)})
}

// creditAccount withdraws funds from the account.
func (h *accountHandler) creditAccount(c *gin.Context) {
	h.registerTransaction(c, domain.Credit)
}

// debitAccount deposits funds into the account.
func (h *accountHandler) debitAccount(c *gin.Context) {
	h.registerTransaction(c, domain.Debit)
}

func (h *accountHandler) registerTransaction(c *gin.Context, kind domain.TransactionType) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("account_id", accountID),
		slog.String("transaction_type", string(kind)),
	)
	logger.Info("Received request to register transaction",
		slog.String("amount", req.Amount.String()),
		slog.String("currency_code", req.CurrencyCode))

	txn, err := h.accountService.RegisterTransaction(c.Request.Context(), accountID, kind, req)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to register transaction")
		return
	}

	logger.Info("Transaction registered successfully", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// updateInterestRate changes the interest rate on a deposit or credit account.
func (h *accountHandler) updateInterestRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.UpdateInterestRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateInterestRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to update interest rate", slog.String("interest_rate", req.InterestRate.String()))

	if err := h.accountService.UpdateInterestRate(c.Request.Context(), accountID, req.InterestRate); err != nil {
		respondWithServiceError(c, logger, err, "Failed to update interest rate")
		return
	}

	logger.Info("Interest rate updated successfully")
	c.Status(http.StatusNoContent)
}

// accrueInterest applies one interest accrual to a deposit account.
func (h *accountHandler) accrueInterest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to accrue interest")

	txn, err := h.accountService.AccrueInterest(c.Request.Context(), accountID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to accrue interest")
		return
	}

	if txn == nil {
		// Nothing to accrue (zero balance or zero rate)
		c.Status(http.StatusNoContent)
		return
	}

	logger.Info("Interest accrued successfully", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// closeAccount closes an account with a zero balance.
func (h *accountHandler) closeAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	logger = logger.With(slog.String("account_id", accountID))
	logger.Info("Received request to close account")

	if err := h.accountService.CloseAccount(c.Request.Context(), accountID); err != nil {
		respondWithServiceError(c, logger, err, "Failed to close account")
		return
	}

	logger.Info("Account closed successfully")
	c.Status(http.StatusNoContent)
}
