package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound         ErrorCode = "account_not_found"
	OrderNotFound           ErrorCode = "order_not_found"
	RateNotFound            ErrorCode = "rate_not_found"
	DuplicateRate           ErrorCode = "duplicate_rate"
	InvalidInput            ErrorCode = "invalid_input"
	InvalidAmount           ErrorCode = "invalid_amount"
	InvalidCurrency         ErrorCode = "invalid_currency"
	InvalidOrder            ErrorCode = "invalid_order"
	InvalidAccountID        ErrorCode = "invalid_account_id"
	InvalidOrderID          ErrorCode = "invalid_order_id"
	SameAccountTransfer     ErrorCode = "same_account_transfer"
	AccountUpdateProhibited ErrorCode = "account_update_prohibited"
	PublishFailed           ErrorCode = "publish_failed"
	CannotBeginTransaction  ErrorCode = "cannot_begin_transaction"
	InternalError           ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so predefined errors
// still match after WithDetails.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy of e with details attached.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// HTTPStatus maps the error code onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound, OrderNotFound, RateNotFound:
		return http.StatusNotFound
	case DuplicateRate:
		return http.StatusConflict
	case InvalidInput, InvalidAmount, InvalidCurrency, InvalidOrder,
		InvalidAccountID, InvalidOrderID, SameAccountTransfer:
		return http.StatusBadRequest
	case AccountUpdateProhibited:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound         = NewAppError(AccountNotFound, "account not found")
	ErrOrderNotFound           = NewAppError(OrderNotFound, "order not found")
	ErrRateNotFound            = NewAppError(RateNotFound, "exchange rate not found")
	ErrDuplicateRate           = NewAppError(DuplicateRate, "exchange rate already exists")
	ErrInvalidAmount           = NewAppError(InvalidAmount, "amount must be positive")
	ErrInvalidCurrency         = NewAppError(InvalidCurrency, "unsupported currency")
	ErrInvalidAccountID        = NewAppError(InvalidAccountID, "invalid account id")
	ErrInvalidOrderID          = NewAppError(InvalidOrderID, "invalid order id")
	ErrSameAccountTransfer     = NewAppError(SameAccountTransfer, "sender and receiver must differ")
	ErrAccountUpdateProhibited = NewAppError(AccountUpdateProhibited, "account updates are prohibited")
	ErrCannotBeginTransaction  = NewAppError(CannotBeginTransaction, "cannot begin transaction on a transactional store")
	ErrSenderAccountMissing    = NewAppError(InvalidOrder, "Cannot submit order. Sender account doesn't exist")
	ErrReceiverAccountMissing  = NewAppError(InvalidOrder, "Cannot submit order. Receiver account doesn't exist")
)
