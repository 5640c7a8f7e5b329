package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"

	"money-transfers/internal/domain"
	apperrors "money-transfers/internal/errors"
)

func transferOrder() *domain.Order {
	return &domain.Order{
		SenderAccount:     pointy.Int64(1),
		ReceiverAccount:   pointy.Int64(2),
		OperationCurrency: domain.USD,
		Amount:            decimal.NewFromInt(5),
		Type:              domain.OrderTransfer,
		Status:            domain.OrderDone,
	}
}

func expectAccount(mock sqlmock.Sqlmock, id int64, currency string) {
	now := time.Now()
	mock.ExpectQuery(selectAccount).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(accountColumns).AddRow(id, currency, "5.00", now, now))
}

func TestOrderService_Submit(t *testing.T) {
	store, dbMock := newMockStore(t)
	publisher := new(MockPublisher)
	svc := NewOrderService(store, publisher, discardLogger())

	dbMock.ExpectBegin()
	expectAccount(dbMock, 1, "USD")
	expectAccount(dbMock, 2, "EUR")
	dbMock.ExpectQuery("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "USD", "5", "TRANSFER", sqlmock.AnyArg(), "NEW").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
	dbMock.ExpectCommit()

	publisher.On("Send", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.ID == 77 && o.Status == domain.OrderNew
	})).Return(nil).Once()

	order, err := svc.Submit(context.Background(), transferOrder())

	require.NoError(t, err)
	assert.Equal(t, int64(77), order.ID)
	assert.Equal(t, domain.OrderNew, order.Status)
	assert.False(t, order.CreationDate.IsZero())
	assert.NoError(t, dbMock.ExpectationsWereMet())
	publisher.AssertExpectations(t)
}

func TestOrderService_SubmitMissingSender(t *testing.T) {
	store, dbMock := newMockStore(t)
	publisher := new(MockPublisher)
	svc := NewOrderService(store, publisher, discardLogger())

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(selectAccount).WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)
	dbMock.ExpectRollback()

	_, err := svc.Submit(context.Background(), transferOrder())

	assert.True(t, errors.Is(err, apperrors.ErrSenderAccountMissing))
	assert.Equal(t, "Cannot submit order. Sender account doesn't exist", err.(*apperrors.AppError).Message)
	assert.NoError(t, dbMock.ExpectationsWereMet())
	publisher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestOrderService_SubmitMissingReceiver(t *testing.T) {
	store, dbMock := newMockStore(t)
	publisher := new(MockPublisher)
	svc := NewOrderService(store, publisher, discardLogger())

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(selectAccount).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)
	dbMock.ExpectRollback()

	order := &domain.Order{
		ReceiverAccount:   pointy.Int64(2),
		OperationCurrency: domain.EUR,
		Amount:            decimal.NewFromInt(1),
		Type:              domain.OrderIncome,
	}
	_, err := svc.Submit(context.Background(), order)

	assert.Equal(t, apperrors.ErrReceiverAccountMissing, err)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestOrderService_SubmitRejectsInvalidShape(t *testing.T) {
	store, dbMock := newMockStore(t)
	svc := NewOrderService(store, new(MockPublisher), discardLogger())

	tests := []struct {
		name  string
		order domain.Order
		want  apperrors.ErrorCode
	}{
		{
			name:  "income with sender",
			order: domain.Order{SenderAccount: pointy.Int64(1), ReceiverAccount: pointy.Int64(2), OperationCurrency: domain.USD, Amount: decimal.NewFromInt(1), Type: domain.OrderIncome},
			want:  apperrors.InvalidOrder,
		},
		{
			name:  "outcome with receiver",
			order: domain.Order{SenderAccount: pointy.Int64(1), ReceiverAccount: pointy.Int64(2), OperationCurrency: domain.USD, Amount: decimal.NewFromInt(1), Type: domain.OrderOutcome},
			want:  apperrors.InvalidOrder,
		},
		{
			name:  "transfer to itself",
			order: domain.Order{SenderAccount: pointy.Int64(1), ReceiverAccount: pointy.Int64(1), OperationCurrency: domain.USD, Amount: decimal.NewFromInt(1), Type: domain.OrderTransfer},
			want:  apperrors.SameAccountTransfer,
		},
		{
			name:  "negative amount",
			order: domain.Order{ReceiverAccount: pointy.Int64(1), OperationCurrency: domain.USD, Amount: decimal.NewFromInt(-1), Type: domain.OrderIncome},
			want:  apperrors.InvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := tt.order
			_, err := svc.Submit(context.Background(), &order)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.want, appErr.Code)
		})
	}
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestOrderService_SubmitPublishFailure(t *testing.T) {
	store, dbMock := newMockStore(t)
	publisher := new(MockPublisher)
	svc := NewOrderService(store, publisher, discardLogger())

	dbMock.ExpectBegin()
	expectAccount(dbMock, 1, "USD")
	dbMock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(78)))
	dbMock.ExpectCommit()
	publisher.On("Send", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))

	order := &domain.Order{
		SenderAccount:     pointy.Int64(1),
		OperationCurrency: domain.USD,
		Amount:            decimal.NewFromInt(2),
		Type:              domain.OrderOutcome,
	}
	_, err := svc.Submit(context.Background(), order)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.PublishFailed, appErr.Code)
	assert.Equal(t, "broker unavailable", appErr.Details)
}

func TestOrderService_GetOrder(t *testing.T) {
	store, dbMock := newMockStore(t)
	svc := NewOrderService(store, new(MockPublisher), discardLogger())

	dbMock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "creation_date", "sender_account", "receiver_account", "operation_currency_code",
			"amount", "order_type", "description", "order_status",
		}).AddRow(int64(5), time.Now(), nil, int64(2), "EUR", "3.5", "INCOME", nil, "DONE"))

	order, err := svc.GetOrder(context.Background(), "5")

	require.NoError(t, err)
	assert.Nil(t, order.SenderAccount)
	assert.Equal(t, int64(2), *order.ReceiverAccount)
	assert.Equal(t, domain.OrderDone, order.Status)

	_, err = svc.GetOrder(context.Background(), "five")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOrderID))
}

func TestOrderService_ListOrdersRejectsUnknownStatus(t *testing.T) {
	store, _ := newMockStore(t)
	svc := NewOrderService(store, new(MockPublisher), discardLogger())

	_, err := svc.ListOrders(context.Background(), domain.OrderFilter{Status: "PENDING"})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.InvalidInput, appErr.Code)
}
