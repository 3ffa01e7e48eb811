// Package service implements the conversational session.
//
// Each user has one session: an append-only transcript plus a busy
// flag. The busy flag enforces the single-flight rule: while a
// question is out to the advisor, any further submit for that user is
// refused immediately. Nothing is queued, and no second user turn is
// recorded for the refused submit.
//
// Both outcomes of an advisor call leave the session idle again:
//   - success appends the advisor's answer as an assistant turn
//   - failure appends one fixed fallback turn, flagged Fallback, and
//     the response carries a transient notice
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/chat/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/chat/port"
	maindomain "github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

var chatTracer = otel.Tracer("chat/service")

// FallbackAnswer is the canned assistant text appended when the
// advisor cannot be reached. It is fixed so the UI can rely on the
// Fallback flag, not on string matching.
const FallbackAnswer = "Sorry, I could not reach the spending advisor just now. Your question was kept in the transcript; please try again in a moment."

// ChatMetrics is the slice of the metrics registry the session needs.
type ChatMetrics interface {
	IncrChatRequest(status string)
	IncrChatFallback()
	RecordTokens(prompt, completion int)
}

type session struct {
	mu    sync.Mutex
	turns []domain.Turn
	busy  bool
}

// ChatService owns all user sessions.
type ChatService struct {
	advisor port.AdvisorCaller
	metrics ChatMetrics
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewChatService creates the session manager.
func NewChatService(advisor port.AdvisorCaller, metrics ChatMetrics, logger *zap.Logger) *ChatService {
	return &ChatService{
		advisor:  advisor,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Ask submits a question for the user. Exactly one of these holds on
// return:
//   - the transcript grew by a user turn and a real assistant turn
//   - the transcript grew by a user turn and a fallback turn, and the
//     response carries a notice
//   - nothing changed and the error is ErrRequestInFlight
func (s *ChatService) Ask(ctx context.Context, userID, token string, req *domain.AskRequest) (*domain.AskResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Ask")
	defer span.End()

	sess := s.session(userID)

	// Admission: refuse, do not queue, when a question is in flight.
	sess.mu.Lock()
	if sess.busy {
		sess.mu.Unlock()
		s.logger.Warn("chat submit refused, question already in flight",
			zap.String("user_id", userID),
		)
		return nil, &maindomain.ErrRequestInFlight{Operation: "chat"}
	}
	sess.busy = true
	userTurn := s.newTurn(domain.RoleUser, req.Question, false)
	sess.turns = append(sess.turns, userTurn)
	sess.mu.Unlock()

	// The session always returns to idle, whatever the advisor does.
	defer func() {
		sess.mu.Lock()
		sess.busy = false
		sess.mu.Unlock()
	}()

	resp, err := s.advisor.Ask(ctx, token, &domain.AdvisorRequest{Question: req.Question})
	if err != nil {
		s.logger.Error("advisor call failed, appending fallback turn",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		s.metrics.IncrChatRequest("error")
		s.metrics.IncrChatFallback()

		fallbackTurn := s.newTurn(domain.RoleAssistant, FallbackAnswer, true)
		sess.mu.Lock()
		sess.turns = append(sess.turns, fallbackTurn)
		sess.mu.Unlock()

		return &domain.AskResponse{
			UserTurn:      userTurn,
			AssistantTurn: fallbackTurn,
			Notice:        "The advisor is temporarily unavailable.",
		}, nil
	}

	s.metrics.IncrChatRequest("success")
	s.metrics.RecordTokens(0, resp.TokensUsed)

	assistantTurn := s.newTurn(domain.RoleAssistant, resp.Answer, false)
	sess.mu.Lock()
	sess.turns = append(sess.turns, assistantTurn)
	sess.mu.Unlock()

	return &domain.AskResponse{
		UserTurn:      userTurn,
		AssistantTurn: assistantTurn,
	}, nil
}

// History returns a copy of the user's transcript in append order.
func (s *ChatService) History(userID string) *domain.HistoryResponse {
	sess := s.session(userID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	turns := make([]domain.Turn, len(sess.turns))
	copy(turns, sess.turns)
	return &domain.HistoryResponse{Turns: turns, Count: len(turns)}
}

// Clear empties the user's transcript. An in-flight question keeps
// its busy flag; only the recorded turns are dropped.
func (s *ChatService) Clear(userID string) {
	sess := s.session(userID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = nil
}

func (s *ChatService) session(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *ChatService) newTurn(role, text string, fallback bool) domain.Turn {
	return domain.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Fallback:  fallback,
	}
}
