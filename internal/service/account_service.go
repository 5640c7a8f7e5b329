package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
	"money-transfers/internal/repository"
)

type AccountService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// CreateAccount opens an empty account in the given currency. Balances only
// change through orders.
func (s *AccountService) CreateAccount(ctx context.Context, currencyCode string) (*domain.Account, error) {
	s.logger.Info("Creating account", "currency", currencyCode)

	currency, ok := domain.ParseCurrency(currencyCode)
	if !ok {
		return nil, errors.ErrInvalidCurrency.WithDetails(currencyCode)
	}

	account := &domain.Account{
		Currency: currency,
		Balance:  decimal.Zero,
	}

	if err := s.store.Account().CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created successfully", "account_id", account.ID)
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	s.logger.Info("Getting account", "account_id", accountID)

	id, err := parseID(accountID)
	if err != nil {
		return nil, errors.ErrInvalidAccountID
	}

	return s.store.Account().GetAccount(ctx, id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
