package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/models"
	"github.com/api-sage/multicurrency-account/src/internal/commons"
	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
	"github.com/api-sage/multicurrency-account/src/internal/usecase/service_interfaces"
)

const maxBodyBytes = 1 << 20

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, middleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"POST /api/accounts": c.registerAccount,
		"POST /api/accounts/{pesel}/transactions/currency-exchanges": c.exchangeMoney,
		"GET /api/accounts/{pesel}":                                  c.accountDetails,
		"GET /api/accounts/{pesel}/transactions":                     c.accountTransactions,
	}
	for pattern, handler := range routes {
		mux.Handle(pattern, wrap(handler, middleware))
	}
}

func (c *AccountController) registerAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RegisterAccountRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.service.RegisterAccount(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *AccountController) exchangeMoney(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ExchangeMoneyRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.service.ExchangeMoney(r.Context(), r.PathValue("pesel"), req)
	if err != nil {
		writeFailure(w, r, err, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) accountDetails(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.AccountDetails(r.Context(), r.PathValue("pesel"))
	if err != nil {
		writeFailure(w, r, err, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) accountTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.AccountTransactions(r.Context(), r.PathValue("pesel"))
	if err != nil {
		writeFailure(w, r, err, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func wrap(handler http.HandlerFunc, middleware func(http.Handler) http.Handler) http.Handler {
	if middleware == nil {
		return handler
	}
	return middleware(handler)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, start time.Time) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[struct{}]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP statuses. Anything not recognised
// is an infrastructure failure.
func statusFor(err error) int {
	switch {
	case domain.IsRejection(err), errors.Is(err, commons.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error, response any, start time.Time) {
	status := statusFor(err)
	logError(r, err, logger.Fields{"status": status})

	if status == http.StatusNotFound {
		w.WriteHeader(status)
		logResponse(r, status, nil, start)
		return
	}

	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
