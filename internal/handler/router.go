// Package handler wires the HTTP surface of the BFF: the expense CRUD
// and export routes, the analytics routes, the chat routes, and the
// operational endpoints.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	chathandler "github.com/smartspend/expense-tracker-bff-go/internal/chat/handler"
	chatservice "github.com/smartspend/expense-tracker-bff-go/internal/chat/service"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/service"
)

var tracer = otel.Tracer("handler")

// NewRouter builds the full route tree.
//
// Operational endpoints (/healthz, /readyz, /ping, /metrics) and the
// category catalog are open; everything else under /v1 requires a
// valid bearer token.
func NewRouter(
	expenses *service.ExpenseService,
	analytics *service.AnalyticsService,
	chat *chatservice.ChatService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	jwtSecret string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", categoriesHandler(analytics, logger))
		r.Get("/metrics/assistant", assistantMetricsHandler(metrics))

		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(jwtSecret, logger))

			r.Get("/expenses", listExpensesHandler(expenses, logger))
			r.Post("/expenses", createExpenseHandler(expenses, logger))
			r.Get("/expenses/export", exportExpensesHandler(expenses, logger))
			r.Put("/expenses/{id}", updateExpenseHandler(expenses, logger))
			r.Delete("/expenses/{id}", deleteExpenseHandler(expenses, logger))

			r.Get("/analytics/summary", summaryHandler(analytics, logger))
			r.Get("/analytics/insights", insightsHandler(analytics, logger))
			r.Get("/overview", overviewHandler(analytics, logger))

			r.Post("/chat", chathandler.AskHandler(chat, logger))
			r.Get("/chat/history", chathandler.HistoryHandler(chat))
			r.Delete("/chat/history", chathandler.ClearHandler(chat))
		})
	})

	return r
}
