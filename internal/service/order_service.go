package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
	"money-transfers/internal/repository"
)

// OrderPublisher hands a saved order to the processing queue.
type OrderPublisher interface {
	Send(ctx context.Context, v any) error
}

type OrderService struct {
	store     *repository.Store
	publisher OrderPublisher
	logger    *slog.Logger
}

func NewOrderService(store *repository.Store, publisher OrderPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit saves the order as NEW and publishes it for processing. The
// returned order carries its generated id. Balances are not touched here.
func (s *OrderService) Submit(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	s.logger.Info("Submitting order",
		"order_type", order.Type,
		"amount", order.Amount,
		"currency", order.OperationCurrency)

	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.ID = 0
	order.Status = domain.OrderNew
	order.CreationDate = time.Now().UTC()

	err := s.store.WithTransaction(ctx, func(store *repository.Store) error {
		accounts := store.Account()

		if order.SenderAccount != nil {
			if err := requireAccount(ctx, accounts, *order.SenderAccount, errors.ErrSenderAccountMissing); err != nil {
				return err
			}
		}
		if order.ReceiverAccount != nil {
			if err := requireAccount(ctx, accounts, *order.ReceiverAccount, errors.ErrReceiverAccountMissing); err != nil {
				return err
			}
		}

		return store.Order().CreateOrder(ctx, order)
	})
	if err != nil {
		s.logger.Error("Order submission failed", "error", err)
		return nil, err
	}

	if err := s.publisher.Send(ctx, order); err != nil {
		s.logger.Error("Failed to publish order", "order_id", order.ID, "error", err)
		return nil, errors.NewAppError(errors.PublishFailed, "failed to publish order").WithDetails(err.Error())
	}

	s.logger.Info("Order submitted", "order_id", order.ID)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, errors.ErrInvalidOrderID
	}
	return s.store.Order().GetOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown order status %q", filter.Status)
	}
	return s.store.Order().ListOrders(ctx, filter)
}

func requireAccount(ctx context.Context, accounts domain.AccountRepository, id int64, missing error) error {
	_, err := accounts.GetAccount(ctx, id)
	if stderrors.Is(err, errors.ErrAccountNotFound) {
		return missing
	}
	return err
}
