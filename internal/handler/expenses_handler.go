package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/authctx"
	"github.com/smartspend/expense-tracker-bff-go/internal/core"
	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/service"
)

// listExpensesHandler returns the handler for GET /v1/expenses.
//
// Query params: search, category, date_from, date_to, amount_min,
// amount_max narrow the view; sort_by and order control ordering.
// Unknown values fall back to defaults rather than erroring.
func listExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		userID := authctx.UserID(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		resp, err := svc.List(ctx, userID, authctx.Token(ctx), parseCriteria(r), parseSort(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// createExpenseHandler returns the handler for POST /v1/expenses.
func createExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		var req domain.ExpenseCreate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := svc.Create(ctx, authctx.UserID(ctx), authctx.Token(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// updateExpenseHandler returns the handler for PUT /v1/expenses/{id}.
func updateExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/expenses/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("expense.id", id))

		var req domain.ExpenseUpdate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		updated, err := svc.Update(ctx, authctx.UserID(ctx), authctx.Token(ctx), id, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// deleteExpenseHandler returns the handler for DELETE /v1/expenses/{id}.
func deleteExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("expense.id", id))

		if err := svc.Delete(ctx, authctx.UserID(ctx), authctx.Token(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "expense deleted", ID: id})
	}
}

// exportExpensesHandler returns the handler for GET /v1/expenses/export.
//
// The download streams the same filtered, sorted view List would
// return for the same query params, rendered as a CSV attachment. It
// reads the current snapshot only; a fresh fetch happens on the next
// list call, not here.
func exportExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/export")
		defer span.End()

		userID := authctx.UserID(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+core.ExportFilename(time.Now())+`"`)

		if err := svc.ExportCSV(w, userID, parseCriteria(r), parseSort(r)); err != nil {
			logger.Error("csv export failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}
