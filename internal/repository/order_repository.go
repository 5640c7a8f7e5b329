package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

const defaultOrderListLimit = 100

var orderColumns = []string{
	"id",
	"creation_date",
	"sender_account",
	"receiver_account",
	"operation_currency_code",
	"amount",
	"order_type",
	"description",
	"order_status",
}

type orderRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewOrderRepository(db SQLExecutor, logger *slog.Logger) domain.OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders
		(creation_date, sender_account, receiver_account, operation_currency_code, amount, order_type, description, order_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	if order.CreationDate.IsZero() {
		order.CreationDate = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx,
		query,
		order.CreationDate,
		order.SenderAccount,
		order.ReceiverAccount,
		string(order.OperationCurrency),
		order.Amount.String(),
		string(order.Type),
		nullString(order.Description),
		string(order.Status),
	).Scan(&order.ID)
	if err != nil {
		r.logger.Error("Failed to create order", "order_type", order.Type, "amount", order.Amount, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create order").WithDetails(err.Error())
	}

	r.logger.Info("Order created successfully", "order_id", order.ID, "status", order.Status)
	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to build order query").WithDetails(err.Error())
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Order not found", "order_id", id)
			return nil, errors.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order", "order_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get order").WithDetails(err.Error())
	}
	return order, nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders
		(id, creation_date, sender_account, receiver_account, operation_currency_code, amount, order_type, description, order_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET sender_account = EXCLUDED.sender_account,
			receiver_account = EXCLUDED.receiver_account,
			operation_currency_code = EXCLUDED.operation_currency_code,
			amount = EXCLUDED.amount,
			order_type = EXCLUDED.order_type,
			description = EXCLUDED.description,
			order_status = EXCLUDED.order_status
	`

	_, err := r.db.ExecContext(ctx,
		query,
		order.ID,
		order.CreationDate,
		order.SenderAccount,
		order.ReceiverAccount,
		string(order.OperationCurrency),
		order.Amount.String(),
		string(order.Type),
		nullString(order.Description),
		string(order.Status),
	)
	if err != nil {
		r.logger.Error("Failed to update order", "order_id", order.ID, "status", order.Status, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update order").WithDetails(err.Error())
	}

	r.logger.Info("Order status updated", "order_id", order.ID, "status", order.Status)
	return nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	limit := filter.Limit
	if limit == 0 {
		limit = defaultOrderListLimit
	}

	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("id DESC").
		Limit(limit).
		PlaceholderFormat(sq.Dollar)

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"order_status": string(filter.Status)})
	}
	if filter.AccountID != 0 {
		builder = builder.Where(sq.Or{
			sq.Eq{"sender_account": filter.AccountID},
			sq.Eq{"receiver_account": filter.AccountID},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to build order query").WithDetails(err.Error())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list orders").WithDetails(err.Error())
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to read order").WithDetails(err.Error())
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list orders").WithDetails(err.Error())
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var sender, receiver sql.NullInt64
	var description sql.NullString
	var currency, amountStr, orderType, status string

	err := row.Scan(
		&order.ID,
		&order.CreationDate,
		&sender,
		&receiver,
		&currency,
		&amountStr,
		&orderType,
		&description,
		&status,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}

	if sender.Valid {
		order.SenderAccount = &sender.Int64
	}
	if receiver.Valid {
		order.ReceiverAccount = &receiver.Int64
	}
	order.OperationCurrency = domain.Currency(currency)
	order.Amount = amount
	order.Type = domain.OrderType(orderType)
	order.Description = description.String
	order.Status = domain.OrderStatus(status)
	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
