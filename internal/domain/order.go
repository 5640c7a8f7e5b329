package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"money-transfers/internal/errors"
)

type OrderType string

const (
	OrderIncome   OrderType = "INCOME"
	OrderOutcome  OrderType = "OUTCOME"
	OrderTransfer OrderType = "TRANSFER"
)

type legs struct {
	outgoing bool
	incoming bool
}

var orderLegs = map[OrderType]legs{
	OrderIncome:   {outgoing: false, incoming: true},
	OrderOutcome:  {outgoing: true, incoming: false},
	OrderTransfer: {outgoing: true, incoming: true},
}

func (t OrderType) IsValid() bool {
	_, ok := orderLegs[t]
	return ok
}

// Legs reports whether the type debits a sender and whether it credits a receiver.
func (t OrderType) Legs() (outgoing, incoming bool) {
	l := orderLegs[t]
	return l.outgoing, l.incoming
}

type OrderStatus string

const (
	OrderNew    OrderStatus = "NEW"
	OrderDone   OrderStatus = "DONE"
	OrderFailed OrderStatus = "FAILED"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderNew || s == OrderDone || s == OrderFailed
}

// IsTerminal is true once the worker has finished with the order.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDone || s == OrderFailed
}

// Order is also the payload published onto the orders queue.
type Order struct {
	ID                int64           `json:"order_id"`
	CreationDate      time.Time       `json:"creation_date"`
	SenderAccount     *int64          `json:"sender_account,omitempty"`
	ReceiverAccount   *int64          `json:"receiver_account,omitempty"`
	OperationCurrency Currency        `json:"operation_currency_code"`
	Amount            decimal.Decimal `json:"amount"`
	Type              OrderType       `json:"order_type"`
	Description       string          `json:"description,omitempty"`
	Status            OrderStatus     `json:"order_status"`
}

// Validate checks the order shape before it is accepted for processing.
func (o *Order) Validate() error {
	if !o.Type.IsValid() {
		return errors.NewAppErrorf(errors.InvalidOrder, "unknown order type %q", o.Type)
	}
	if !o.OperationCurrency.IsValid() {
		return errors.ErrInvalidCurrency
	}
	if !o.Amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	switch o.Type {
	case OrderIncome:
		if o.SenderAccount != nil {
			return errors.NewAppError(errors.InvalidOrder, "Income order cannot contain sender")
		}
		if o.ReceiverAccount == nil {
			return errors.NewAppError(errors.InvalidOrder, "Income order should contain receiver")
		}
	case OrderOutcome:
		if o.ReceiverAccount != nil {
			return errors.NewAppError(errors.InvalidOrder, "Outcome order cannot contain receiver")
		}
		if o.SenderAccount == nil {
			return errors.NewAppError(errors.InvalidOrder, "Outcome order should contain sender")
		}
	case OrderTransfer:
		if o.SenderAccount == nil || o.ReceiverAccount == nil {
			return errors.NewAppError(errors.InvalidOrder, "Transfer order should contain sender and receiver")
		}
		if *o.SenderAccount == *o.ReceiverAccount {
			return errors.ErrSameAccountTransfer
		}
	}
	return nil
}

type OrderFilter struct {
	Status    OrderStatus
	AccountID int64
	Limit     uint64
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	// UpdateOrder writes the whole record, inserting it when missing.
	UpdateOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
}
