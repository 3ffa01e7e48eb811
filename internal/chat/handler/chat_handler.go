// Package handler implements the chat routes:
//
//	POST   /v1/chat          submit a question
//	GET    /v1/chat/history  read the transcript
//	DELETE /v1/chat/history  clear the transcript
//
// All three run behind the auth middleware, which injects the user ID
// and raw bearer token into the request context. The handlers are
// thin; the single-flight rule and transcript bookkeeping live in the
// chat service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/authctx"
	"github.com/smartspend/expense-tracker-bff-go/internal/chat/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/chat/service"
	maindomain "github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

var tracer = otel.Tracer("chat/handler")

// AskHandler returns the http.HandlerFunc for POST /v1/chat.
//
// Request:
//
//	Content-Type: application/json
//	Body: {"question": "How much did I spend on transport in March?"}
//
// Response (200 OK): the appended turns, with a notice when the
// advisor was down. A submit while a question is still in flight gets
// 409 Conflict and changes nothing.
func AskHandler(chatSvc *service.ChatService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		userID := authctx.UserID(ctx)
		span.SetAttributes(attribute.String("user.id", userID))

		var req domain.AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: expected {\"question\": \"your message\"}")
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			writeError(w, http.StatusBadRequest, "question is required")
			return
		}

		resp, err := chatSvc.Ask(ctx, userID, authctx.Token(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HistoryHandler returns the handler for GET /v1/chat/history.
func HistoryHandler(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/chat/history")
		defer span.End()

		writeJSON(w, http.StatusOK, chatSvc.History(authctx.UserID(ctx)))
	}
}

// ClearHandler returns the handler for DELETE /v1/chat/history.
func ClearHandler(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/chat/history")
		defer span.End()

		chatSvc.Clear(authctx.UserID(ctx))
		writeJSON(w, http.StatusOK, map[string]string{"message": "conversation cleared"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleServiceError maps chat errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var inFlight *maindomain.ErrRequestInFlight
	var external *maindomain.ErrExternalService

	switch {
	case errors.As(err, &inFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &external):
		logger.Error("external service error", zap.String("service", external.Service), zap.Error(external.Err))
		writeError(w, http.StatusBadGateway, "external service unavailable: "+external.Service)
	default:
		logger.Error("unexpected error in chat handler", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
