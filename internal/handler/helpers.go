package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps a domain error to its HTTP status code.
func statusFor(err error) int {
	var notFound *domain.ErrNotFound
	var noData *domain.ErrNoData
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound), errors.As(err, &noData):
		return http.StatusNotFound
	case errors.As(err, &circuitOpen):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &external):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status := statusFor(err)
	switch status {
	case http.StatusNotFound, http.StatusBadRequest:
		logger.Debug("request rejected", zap.Int("status", status), zap.String("error", err.Error()))
		writeError(w, status, err.Error())
	case http.StatusUnauthorized:
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, status, err.Error())
	case http.StatusServiceUnavailable:
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, status, err.Error())
	case http.StatusGatewayTimeout:
		logger.Error("request timeout", zap.Error(err))
		writeError(w, status, err.Error())
	case http.StatusBadGateway:
		logger.Error("data source failure", zap.Error(err))
		writeError(w, status, "data source unavailable")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
