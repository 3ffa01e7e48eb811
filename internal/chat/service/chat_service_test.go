package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/chat/domain"
	maindomain "github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

// fakeAdvisor lets a test decide when and how each call completes.
type fakeAdvisor struct {
	mu      sync.Mutex
	calls   int
	answer  string
	err     error
	started chan struct{} // closed when a call begins, if set
	release chan struct{} // call blocks until closed, if set
}

func (f *fakeAdvisor) Ask(ctx context.Context, token string, req *domain.AdvisorRequest) (*domain.AdvisorResponse, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	// Only the first call blocks; later calls run straight through.
	f.started, f.release = nil, nil
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AdvisorResponse{Answer: f.answer, TokensUsed: 42}, nil
}

func (f *fakeAdvisor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMetrics struct {
	mu        sync.Mutex
	requests  map[string]int
	fallbacks int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{requests: make(map[string]int)}
}

func (m *fakeMetrics) IncrChatRequest(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[status]++
}

func (m *fakeMetrics) IncrChatFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *fakeMetrics) RecordTokens(prompt, completion int) {}

func TestAskAppendsBothTurns(t *testing.T) {
	advisor := &fakeAdvisor{answer: "You spent 120.50 on food."}
	svc := NewChatService(advisor, newFakeMetrics(), zap.NewNop())

	resp, err := svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "food spend?"})
	if err != nil {
		t.Fatal(err)
	}

	if resp.UserTurn.Role != domain.RoleUser || resp.UserTurn.Text != "food spend?" {
		t.Errorf("user turn = %+v", resp.UserTurn)
	}
	if resp.AssistantTurn.Role != domain.RoleAssistant || resp.AssistantTurn.Text != advisor.answer {
		t.Errorf("assistant turn = %+v", resp.AssistantTurn)
	}
	if resp.AssistantTurn.Fallback {
		t.Error("real answer must not be flagged as fallback")
	}
	if resp.Notice != "" {
		t.Errorf("unexpected notice %q", resp.Notice)
	}

	hist := svc.History("u1")
	if hist.Count != 2 {
		t.Fatalf("transcript has %d turns, want 2", hist.Count)
	}
	if hist.Turns[0].Role != domain.RoleUser || hist.Turns[1].Role != domain.RoleAssistant {
		t.Errorf("transcript order wrong: %+v", hist.Turns)
	}
}

func TestAskFailureAppendsFallbackTurn(t *testing.T) {
	advisor := &fakeAdvisor{err: errors.New("advisor down")}
	metrics := newFakeMetrics()
	svc := NewChatService(advisor, metrics, zap.NewNop())

	resp, err := svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "hi"})
	if err != nil {
		t.Fatalf("advisor failure must not surface as an Ask error: %v", err)
	}

	if !resp.AssistantTurn.Fallback {
		t.Error("failure turn must carry the fallback flag")
	}
	if resp.AssistantTurn.Text != FallbackAnswer {
		t.Errorf("fallback text = %q", resp.AssistantTurn.Text)
	}
	if resp.Notice == "" {
		t.Error("failure response must carry a notice")
	}

	if metrics.fallbacks != 1 || metrics.requests["error"] != 1 {
		t.Errorf("metrics = %+v fallbacks=%d", metrics.requests, metrics.fallbacks)
	}

	// The session is idle again: a follow-up submit goes through.
	advisor.err = nil
	advisor.answer = "better now"
	if _, err := svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "again"}); err != nil {
		t.Fatalf("session did not return to idle: %v", err)
	}
	if svc.History("u1").Count != 4 {
		t.Errorf("transcript has %d turns, want 4", svc.History("u1").Count)
	}
}

func TestAskRefusesWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	advisor := &fakeAdvisor{answer: "slow answer", started: started, release: release}
	svc := NewChatService(advisor, newFakeMetrics(), zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "first"}); err != nil {
			t.Errorf("first ask failed: %v", err)
		}
	}()

	<-started

	_, err := svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "second"})
	var inFlight *maindomain.ErrRequestInFlight
	if !errors.As(err, &inFlight) {
		t.Fatalf("expected ErrRequestInFlight, got %v", err)
	}

	close(release)
	<-done

	// The refused submit left no trace: only the first exchange exists
	// and the advisor saw one call.
	if got := svc.History("u1").Count; got != 2 {
		t.Errorf("transcript has %d turns, want 2", got)
	}
	if advisor.callCount() != 1 {
		t.Errorf("advisor saw %d calls, want 1", advisor.callCount())
	}
}

func TestAskInFlightDoesNotBlockOtherUsers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	advisor := &fakeAdvisor{answer: "a", started: started, release: release}
	svc := NewChatService(advisor, newFakeMetrics(), zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "q"})
	}()
	<-started

	// A different user is not subject to u1's single-flight.
	if _, err := svc.Ask(context.Background(), "u2", "tok", &domain.AskRequest{Question: "q"}); err != nil {
		t.Fatalf("second user blocked by first user's flight: %v", err)
	}

	close(release)
	<-done
}

func TestClearEmptiesTranscript(t *testing.T) {
	advisor := &fakeAdvisor{answer: "a"}
	svc := NewChatService(advisor, newFakeMetrics(), zap.NewNop())

	svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "q"})
	svc.Clear("u1")

	if got := svc.History("u1").Count; got != 0 {
		t.Errorf("transcript has %d turns after clear", got)
	}
}

func TestHistoryReturnsACopy(t *testing.T) {
	advisor := &fakeAdvisor{answer: "a"}
	svc := NewChatService(advisor, newFakeMetrics(), zap.NewNop())

	svc.Ask(context.Background(), "u1", "tok", &domain.AskRequest{Question: "q"})

	hist := svc.History("u1")
	hist.Turns[0].Text = "tampered"

	if svc.History("u1").Turns[0].Text == "tampered" {
		t.Fatal("mutating a history copy must not affect the session")
	}
}
