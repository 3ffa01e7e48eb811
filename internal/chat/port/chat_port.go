// Package port defines the interface for the advisor client used by
// the chat session.
//
// Following hexagonal architecture, the session service depends on
// this interface rather than the concrete HTTP client, which keeps
// the single-flight logic testable with a hand-rolled fake.
package port

import (
	"context"

	chatdomain "github.com/smartspend/expense-tracker-bff-go/internal/chat/domain"
)

// AdvisorCaller sends a question to the advisor service. The caller's
// bearer token is forwarded so the advisor can scope its answer to
// the user's data.
type AdvisorCaller interface {
	Ask(ctx context.Context, token string, req *chatdomain.AdvisorRequest) (*chatdomain.AdvisorResponse, error)
}
