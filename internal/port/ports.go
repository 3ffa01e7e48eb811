// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

// ExpenseAPI is the upstream expense service. Every call carries the
// caller's bearer token; the upstream owns persistence and is the
// source of truth the local snapshot mirrors.
type ExpenseAPI interface {
	ListExpenses(ctx context.Context, token string) ([]domain.Expense, error)
	CreateExpense(ctx context.Context, token string, req *domain.ExpenseCreate) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, token, id string, req *domain.ExpenseUpdate) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, token, id string) error
}

// CategoryCatalog retrieves the category catalog. The catalog endpoint
// is public upstream, so no token is involved.
type CategoryCatalog interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// InsightGenerator produces the human-readable insight lines for an
// analytics payload. Implementations may call an AI model; they must
// degrade to deterministic text rather than fail.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, summary domain.InsightsSummary, trend []domain.TrendEntry, categories domain.CategoryAnalysis) ([]string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
