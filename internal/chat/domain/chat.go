// Package domain defines the types of the conversational expense
// assistant.
//
// The flow:
//  1. User submits a question via POST /v1/chat
//  2. The session records the user turn and marks itself busy
//  3. The BFF forwards the question to the advisor service (POST /v1/ask)
//  4. The advisor answers; the session records the assistant turn
//  5. If the advisor fails, the session records a fixed fallback turn
//     instead, flagged so the UI can render it differently
//
// The session accepts at most one in-flight question at a time. A
// submit while busy is refused outright, not queued.
package domain

// Roles a turn can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in a conversation transcript. The transcript is
// append-only; turns are never edited after the fact.
type Turn struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // RFC 3339

	// Fallback marks an assistant turn whose text is the canned
	// failure message rather than a real advisor answer.
	Fallback bool `json:"fallback,omitempty"`
}

// AskRequest is the body the caller sends to POST /v1/chat.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is what the BFF returns for a chat submit: the two
// turns that were appended, plus a notice when the advisor failed.
type AskResponse struct {
	UserTurn      Turn   `json:"user_turn"`
	AssistantTurn Turn   `json:"assistant_turn"`
	Notice        string `json:"notice,omitempty"`
}

// HistoryResponse wraps a transcript for GET /v1/chat/history.
type HistoryResponse struct {
	Turns []Turn `json:"turns"`
	Count int    `json:"count"`
}

// AdvisorRequest is the payload sent to the advisor service
// (POST /v1/ask). The advisor holds the NLU model; the BFF only
// forwards the raw question.
type AdvisorRequest struct {
	Question string `json:"question"`
}

// AdvisorResponse matches the advisor's contract:
//
//	{"answer": "...", "tokens_used": 412, "timestamp": "..."}
type AdvisorResponse struct {
	Answer     string `json:"answer"`
	TokensUsed int    `json:"tokens_used"`
	Timestamp  string `json:"timestamp"`
}
