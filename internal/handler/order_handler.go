package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

type OrderService interface {
	Submit(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

type SubmitOrderRequest struct {
	SenderAccount     *int64      `json:"sender_account" validate:"omitempty,gt=0"`
	ReceiverAccount   *int64      `json:"receiver_account" validate:"omitempty,gt=0"`
	OperationCurrency string      `json:"operation_currency_code" validate:"required,currency"`
	Amount            json.Number `json:"amount" validate:"required"`
	Type              string      `json:"order_type" validate:"required,oneof=INCOME OUTCOME TRANSFER"`
	Description       string      `json:"description" validate:"max=255"`
}

// SubmitOrder accepts the order for asynchronous processing. The response
// carries the NEW order; its final status is read back with GetOrder.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}
	currency, _ := domain.ParseCurrency(req.OperationCurrency)

	order, err := h.orderService.Submit(r.Context(), &domain.Order{
		SenderAccount:     req.SenderAccount,
		ReceiverAccount:   req.ReceiverAccount,
		OperationCurrency: currency,
		Amount:            amount,
		Type:              domain.OrderType(req.Type),
		Description:       req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), mux.Vars(r)["order_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListOrders supports the status, account_id and limit query parameters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.OrderFilter{
		Status: domain.OrderStatus(query.Get("status")),
	}

	if v := query.Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, errors.ErrInvalidAccountID.WithDetails(v))
			return
		}
		filter.AccountID = id
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil || limit == 0 {
			writeError(w, errors.NewAppError(errors.InvalidInput, "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	orders, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
