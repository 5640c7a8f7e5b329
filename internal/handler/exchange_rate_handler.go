package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

type ExchangeRateService interface {
	CreateRate(ctx context.Context, rate *domain.ExchangeRate) error
	PutRate(ctx context.Context, rate *domain.ExchangeRate) error
	GetRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)
	ListRates(ctx context.Context) ([]domain.ExchangeRate, error)
}

type ExchangeRateHandler struct {
	rateService ExchangeRateService
}

func NewExchangeRateHandler(rateService ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{
		rateService: rateService,
	}
}

type ExchangeRateRequest struct {
	From string `json:"currency_code_from" validate:"required,currency"`
	To   string `json:"currency_code_to" validate:"required,currency,nefield=From"`
	Rate string `json:"rate" validate:"required"`
}

func (req *ExchangeRateRequest) toDomain() (*domain.ExchangeRate, error) {
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, errors.NewAppError(errors.InvalidAmount, "invalid rate format").WithDetails(err.Error())
	}
	from, _ := domain.ParseCurrency(req.From)
	to, _ := domain.ParseCurrency(req.To)
	return &domain.ExchangeRate{From: from, To: to, Rate: rate}, nil
}

// CreateRate answers 409 when the pair is already stored.
func (h *ExchangeRateHandler) CreateRate(w http.ResponseWriter, r *http.Request) {
	h.saveRate(w, r, http.StatusCreated, h.rateService.CreateRate)
}

func (h *ExchangeRateHandler) PutRate(w http.ResponseWriter, r *http.Request) {
	h.saveRate(w, r, http.StatusOK, h.rateService.PutRate)
}

func (h *ExchangeRateHandler) saveRate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	save func(context.Context, *domain.ExchangeRate) error,
) {
	var req ExchangeRateRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rate, err := req.toDomain()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := save(r.Context(), rate); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, status, rate)
}

func (h *ExchangeRateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	rate, err := h.rateService.GetRate(r.Context(), vars["from"], vars["to"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rate)
}

func (h *ExchangeRateHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rateService.ListRates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rates)
}
