package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (currency_code, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		query,
		string(account.Currency),
		account.Balance.String(),
		now,
		now,
	).Scan(&account.ID)
	if err != nil {
		r.logger.Error("Failed to create account", "currency", account.Currency, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID)
	return nil
}

func (r *accountRepository) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, currency_code, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`

	var account domain.Account
	var currency, balanceStr string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&currency,
		&balanceStr,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Account not found", "account_id", id)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		r.logger.Error("Failed to parse balance", "account_id", id, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	account.Currency = domain.Currency(currency)
	account.Balance = balance
	return &account, nil
}

// UpdateAccount overwrites the stored row; concurrent writers race and the last one wins.
func (r *accountRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, currency_code, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET currency_code = EXCLUDED.currency_code,
			balance = EXCLUDED.balance,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, account.ID, string(account.Currency), account.Balance.String(), now)
	if err != nil {
		r.logger.Error("Failed to update account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update account").WithDetails(err.Error())
	}

	account.UpdatedAt = now
	r.logger.Info("Account balance updated", "account_id", account.ID, "new_balance", account.Balance)
	return nil
}
