package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
)

// CurrencyService reads supported-currency reference data. Currencies are
// seeded by migration; the service surface is read-only.
type CurrencyService struct {
	currencyRepo portsrepo.CurrencyRepository
}

func NewCurrencyService(currencyRepo portsrepo.CurrencyRepository) *CurrencyService {
	return &CurrencyService{currencyRepo: currencyRepo}
}

func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, strings.ToUpper(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", currencyCode, err)
	}
	return currency, nil
}

func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}
