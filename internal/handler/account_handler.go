package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

type AccountService interface {
	CreateAccount(ctx context.Context, currencyCode string) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
}

type AccountHandler struct {
	accountService AccountService
}

func NewAccountHandler(accountService AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	Currency string `json:"currency" validate:"required,currency"`
}

type AccountResponse struct {
	AccountID int64  `json:"account_id"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

func newAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: account.ID,
		Currency:  account.Currency.String(),
		Balance:   account.Balance.String(),
	}
}

// CreateAccount serves both POST and PUT on the collection. New accounts
// always start with a zero balance.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), req.Currency)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account_id"]

	account, err := h.accountService.GetAccount(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// UpdateAccount always refuses: balances change only through orders.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	writeError(w, errors.ErrAccountUpdateProhibited)
}
