package handler

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseCurrency(fl.Field().String())
		return ok
	})
	return v
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := Response{Data: data}
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	writeErrorResponse(w, appErr.HTTPStatus(), &Error{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, errResponse *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{Error: errResponse})
}

// writeServiceError hides anything that is not an AppError behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		writeError(w, appErr)
		return
	}
	writeError(w, errors.NewAppError(errors.InternalError, "an unexpected error occurred"))
}

// decodeRequest reads a JSON body into dst and runs the struct validation
// tags. It writes the error response itself and reports whether to go on.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return false
	}

	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request").WithDetails(err.Error()))
		return false
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fe.Field()] = fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	writeErrorResponse(w, http.StatusBadRequest, &Error{
		Code:    string(errors.InvalidInput),
		Message: "request validation failed",
		Fields:  fields,
	})
	return false
}
