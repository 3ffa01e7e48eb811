package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/authctx"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/service"
)

// summaryHandler returns the handler for GET /v1/analytics/summary.
func summaryHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/summary")
		defer span.End()

		userID := authctx.UserID(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		summary, err := svc.Summary(ctx, userID, authctx.Token(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// insightsHandler returns the handler for GET /v1/analytics/insights.
func insightsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analytics/insights")
		defer span.End()

		userID := authctx.UserID(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		resp, err := svc.Insights(ctx, userID, authctx.Token(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// overviewHandler returns the handler for GET /v1/overview.
func overviewHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/overview")
		defer span.End()

		userID := authctx.UserID(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		resp, err := svc.Overview(ctx, userID, authctx.Token(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// categoriesHandler returns the handler for GET /v1/categories. The
// catalog never fails outward: the client falls back to a built-in
// default set, so any error here is genuinely unexpected.
func categoriesHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/categories")
		defer span.End()

		categories, err := svc.Categories(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

// assistantMetricsHandler returns the handler for GET /v1/metrics/assistant.
func assistantMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/assistant")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetAssistantSnapshot())
	}
}
