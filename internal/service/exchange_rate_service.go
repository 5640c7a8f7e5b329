package service

import (
	"context"
	"log/slog"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
	"money-transfers/internal/repository"
)

type ExchangeRateService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewExchangeRateService(store *repository.Store, logger *slog.Logger) *ExchangeRateService {
	return &ExchangeRateService{
		store:  store,
		logger: logger,
	}
}

// CreateRate stores a new pair and fails with a conflict when it already exists.
func (s *ExchangeRateService) CreateRate(ctx context.Context, rate *domain.ExchangeRate) error {
	s.logger.Info("Creating exchange rate", "from", rate.From, "to", rate.To, "rate", rate.Rate)

	if err := rate.Validate(); err != nil {
		return err
	}
	return s.store.ExchangeRate().CreateRate(ctx, rate)
}

// PutRate creates the pair or replaces its rate.
func (s *ExchangeRateService) PutRate(ctx context.Context, rate *domain.ExchangeRate) error {
	s.logger.Info("Updating exchange rate", "from", rate.From, "to", rate.To, "rate", rate.Rate)

	if err := rate.Validate(); err != nil {
		return err
	}
	return s.store.ExchangeRate().UpdateRate(ctx, rate)
}

func (s *ExchangeRateService) GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	from, ok := domain.ParseCurrency(fromCode)
	if !ok {
		return nil, errors.ErrInvalidCurrency.WithDetails(fromCode)
	}
	to, ok := domain.ParseCurrency(toCode)
	if !ok {
		return nil, errors.ErrInvalidCurrency.WithDetails(toCode)
	}

	return s.store.ExchangeRate().FindRate(ctx, from, to)
}

func (s *ExchangeRateService) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	return s.store.ExchangeRate().ListRates(ctx)
}
