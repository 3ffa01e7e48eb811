package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/core"
	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
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

// parseCriteria reads the filter query params. Raw strings go in as
// is; bound parsing and its fail-soft rules live in the pipeline.
func parseCriteria(r *http.Request) core.Criteria {
	q := r.URL.Query()
	return core.Criteria{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		AmountMin: q.Get("amount_min"),
		AmountMax: q.Get("amount_max"),
	}
}

// parseSort reads sort_by/order, falling back to the default
// newest-first ordering on anything unrecognized.
func parseSort(r *http.Request) core.SortSpec {
	q := r.URL.Query()
	spec := core.DefaultSort()

	switch core.SortKey(q.Get("sort_by")) {
	case core.SortByAmount:
		spec.Key = core.SortByAmount
	case core.SortByCategory:
		spec.Key = core.SortByCategory
	case core.SortByDescription:
		spec.Key = core.SortByDescription
	case core.SortByDate:
		spec.Key = core.SortByDate
	}

	switch q.Get("order") {
	case core.Asc:
		spec.Direction = core.Asc
	case core.Desc:
		spec.Direction = core.Desc
	}
	return spec
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var external *domain.ErrExternalService
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var inFlight *domain.ErrRequestInFlight

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &inFlight):
		logger.Debug("request already in flight", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &external):
		logger.Error("external service error", zap.String("service", external.Service), zap.Error(external.Err))
		writeError(w, http.StatusBadGateway, "external service unavailable: "+external.Service)
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
