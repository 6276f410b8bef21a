package repositories

import (
	"context"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
)

// CurrencyRepository reads supported-currency reference data.
type CurrencyRepository interface {
	// FindCurrencyByCode returns the currency or apperrors.ErrNotFound.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies returns all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
