package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrellis/bank-accounts/internal/core/services"
	"github.com/fintrellis/bank-accounts/internal/middleware"
)

// currencyHandler serves supported-currency reference data.
type currencyHandler struct {
	currencyService *services.CurrencyService
}

// registerCurrencyRoutes registers the currency reference endpoints.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService *services.CurrencyService) {
	h := &currencyHandler{currencyService: currencyService}

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:currencyCode", h.getCurrency)
	}
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list currencies")
		return
	}

	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

func (h *currencyHandler) getCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currencyCode := c.Param("currencyCode")

	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), currencyCode)
	if err != nil {
		logger.Warn("Failed to get currency", slog.String("currency_code", currencyCode))
		respondWithServiceError(c, logger, err, "Failed to get currency")
		return
	}

	c.JSON(http.StatusOK, currency)
}
