package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
	"money-transfers/internal/money"
)

// OrderFailure is a business outcome that turns an order FAILED. It is
// recorded in the order description and never returned to the caller.
type OrderFailure struct {
	Reason string
}

func (f *OrderFailure) Error() string {
	return f.Reason
}

func failuref(format string, args ...any) *OrderFailure {
	return &OrderFailure{Reason: fmt.Sprintf(format, args...)}
}

// stagedOrder holds the accounts an order touches after both legs were
// applied in memory. Nothing in it has been persisted.
type stagedOrder struct {
	order    *domain.Order
	sender   *domain.Account
	receiver *domain.Account
}

// OrderWorker applies queued orders to account balances.
//
// Accounts are read and written without locks, so two orders touching the
// same account at the same time may overwrite each other's balance.
type OrderWorker struct {
	orders    domain.OrderRepository
	accounts  domain.AccountRepository
	converter *CurrencyConverter
	formatter money.Formatter
	logger    *slog.Logger
}

func NewOrderWorker(
	orders domain.OrderRepository,
	accounts domain.AccountRepository,
	converter *CurrencyConverter,
	formatter money.Formatter,
	logger *slog.Logger,
) *OrderWorker {
	return &OrderWorker{
		orders:    orders,
		accounts:  accounts,
		converter: converter,
		formatter: formatter,
		logger:    logger,
	}
}

// Accept processes one order and records it as DONE or FAILED. Business
// failures are stored on the order. The returned error is always an
// infrastructure error, in which case the order is left untouched.
func (w *OrderWorker) Accept(ctx context.Context, order *domain.Order) error {
	logger := w.logger.With("order_id", order.ID, "order_type", order.Type)
	logger.Debug("Processing order",
		"amount", w.formatter.Format(order.Amount, order.OperationCurrency.String()))

	staged, err := w.stage(ctx, order)
	switch {
	case err == nil:
		if err := w.commit(ctx, staged); err != nil {
			logger.Error("Failed to persist accounts", "error", err)
			return fmt.Errorf("persist accounts of order %d: %w", order.ID, err)
		}
		order.Status = domain.OrderDone
	case isOrderFailure(err):
		order.Status = domain.OrderFailed
		order.Description = err.Error()
		logger.Info("Order failed", "reason", order.Description)
	default:
		logger.Error("Failed to process order", "error", err)
		return fmt.Errorf("process order %d: %w", order.ID, err)
	}

	if err := w.orders.UpdateOrder(ctx, order); err != nil {
		logger.Error("Failed to save order", "status", order.Status, "error", err)
		return fmt.Errorf("save order %d: %w", order.ID, err)
	}

	logger.Info("Order processed", "status", order.Status)
	return nil
}

func (w *OrderWorker) stage(ctx context.Context, order *domain.Order) (*stagedOrder, error) {
	if !order.Type.IsValid() {
		return nil, failuref("Unknown order type: %s", order.Type)
	}

	staged := &stagedOrder{order: order}
	outgoing, incoming := order.Type.Legs()

	if outgoing {
		sender, err := w.debit(ctx, order)
		if err != nil {
			return nil, err
		}
		staged.sender = sender
	}

	if incoming {
		receiver, err := w.credit(ctx, order)
		if err != nil {
			return nil, err
		}
		staged.receiver = receiver
	}

	return staged, nil
}

// debit subtracts the converted amount from the sender in memory.
func (w *OrderWorker) debit(ctx context.Context, order *domain.Order) (*domain.Account, error) {
	if order.SenderAccount == nil {
		return nil, failuref("Order %d has no sender account", order.ID)
	}

	sender, err := w.loadAccount(ctx, *order.SenderAccount, "Sender")
	if err != nil {
		return nil, err
	}

	required, err := w.converter.Convert(ctx, order.OperationCurrency, sender.Currency, order.Amount)
	if err != nil {
		return nil, err
	}

	if sender.Balance.LessThan(required) {
		code := sender.Currency.String()
		return nil, failuref("Insufficient funds. '%s' is required, '%s' is available",
			money.Plain(required.RoundUp(money.DisplayScale), code),
			money.Plain(sender.Balance.RoundDown(money.DisplayScale), code))
	}

	w.logger.Debug("Debiting account",
		"order_id", order.ID,
		"account_id", sender.ID,
		"amount", w.formatter.Format(required, sender.Currency.String()))

	sender.Balance = sender.Balance.Sub(required)
	return sender, nil
}

// credit adds the converted amount to the receiver in memory.
func (w *OrderWorker) credit(ctx context.Context, order *domain.Order) (*domain.Account, error) {
	if order.ReceiverAccount == nil {
		return nil, failuref("Order %d has no receiver account", order.ID)
	}

	receiver, err := w.loadAccount(ctx, *order.ReceiverAccount, "Receiver")
	if err != nil {
		return nil, err
	}

	income, err := w.converter.Convert(ctx, order.OperationCurrency, receiver.Currency, order.Amount)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("Crediting account",
		"order_id", order.ID,
		"account_id", receiver.ID,
		"amount", w.formatter.Format(income, receiver.Currency.String()))

	receiver.Balance = receiver.Balance.Add(income)
	return receiver, nil
}

func (w *OrderWorker) loadAccount(ctx context.Context, id int64, role string) (*domain.Account, error) {
	account, err := w.accounts.GetAccount(ctx, id)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			return nil, failuref("%s account with id: %d does not exist", role, id)
		}
		return nil, err
	}
	return account, nil
}

func (w *OrderWorker) commit(ctx context.Context, staged *stagedOrder) error {
	if staged.sender != nil {
		if err := w.accounts.UpdateAccount(ctx, staged.sender); err != nil {
			return err
		}
	}
	if staged.receiver != nil {
		if err := w.accounts.UpdateAccount(ctx, staged.receiver); err != nil {
			return err
		}
	}
	return nil
}

func isOrderFailure(err error) bool {
	var failure *OrderFailure
	var conversion *ConversionError
	return stderrors.As(err, &failure) || stderrors.As(err, &conversion)
}
