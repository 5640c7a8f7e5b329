package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

type exchangeRateRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewExchangeRateRepository(db SQLExecutor, logger *slog.Logger) domain.ExchangeRateRepository {
	return &exchangeRateRepository{
		db:     db,
		logger: logger,
	}
}

func (r *exchangeRateRepository) CreateRate(ctx context.Context, rate *domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (currency_code_from, currency_code_to, rate)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, string(rate.From), string(rate.To), rate.Rate.String())
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			r.logger.Warn("Duplicate exchange rate", "from", rate.From, "to", rate.To)
			return errors.ErrDuplicateRate
		}
		r.logger.Error("Failed to create exchange rate", "from", rate.From, "to", rate.To, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create exchange rate").WithDetails(err.Error())
	}

	r.logger.Info("Exchange rate created", "from", rate.From, "to", rate.To, "rate", rate.Rate)
	return nil
}

func (r *exchangeRateRepository) FindRate(ctx context.Context, from, to domain.Currency) (*domain.ExchangeRate, error) {
	query := `
		SELECT currency_code_from, currency_code_to, rate
		FROM exchange_rates WHERE currency_code_from = $1 AND currency_code_to = $2
	`

	rate, err := scanRate(r.db.QueryRowContext(ctx, query, string(from), string(to)))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrRateNotFound
		}
		r.logger.Error("Failed to get exchange rate", "from", from, "to", to, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get exchange rate").WithDetails(err.Error())
	}
	return rate, nil
}

func (r *exchangeRateRepository) UpdateRate(ctx context.Context, rate *domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (currency_code_from, currency_code_to, rate)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency_code_from, currency_code_to) DO UPDATE
		SET rate = EXCLUDED.rate
	`

	_, err := r.db.ExecContext(ctx, query, string(rate.From), string(rate.To), rate.Rate.String())
	if err != nil {
		r.logger.Error("Failed to update exchange rate", "from", rate.From, "to", rate.To, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update exchange rate").WithDetails(err.Error())
	}

	r.logger.Info("Exchange rate updated", "from", rate.From, "to", rate.To, "rate", rate.Rate)
	return nil
}

func (r *exchangeRateRepository) ListRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := `
		SELECT currency_code_from, currency_code_to, rate
		FROM exchange_rates ORDER BY currency_code_from, currency_code_to
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list exchange rates", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list exchange rates").WithDetails(err.Error())
	}
	defer rows.Close()

	rates := make([]domain.ExchangeRate, 0)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to read exchange rate").WithDetails(err.Error())
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list exchange rates").WithDetails(err.Error())
	}
	return rates, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRate(row rowScanner) (*domain.ExchangeRate, error) {
	var from, to, rateStr string
	if err := row.Scan(&from, &to, &rateStr); err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, err
	}

	return &domain.ExchangeRate{
		From: domain.Currency(from),
		To:   domain.Currency(to),
		Rate: value,
	}, nil
}
