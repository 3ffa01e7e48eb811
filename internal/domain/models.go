// Package domain defines the core business entities for the expense
// tracker BFF. These models are independent of external services and
// represent the canonical data structures used throughout the service.
package domain

// ============================================================
// Expenses
// ============================================================

// Expense represents a single recorded spend event.
// Dates are plain calendar dates in ISO format (YYYY-MM-DD, no time
// component); the fixed-width format makes lexicographic comparison
// equivalent to chronological comparison, and the pipeline relies on
// that.
type Expense struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id,omitempty"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"` // YYYY-MM-DD
	ReceiptURL  string  `json:"receipt_url,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// ExpenseCreate is the payload to record a new expense.
type ExpenseCreate struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	ReceiptURL  string  `json:"receipt_url,omitempty"`
}

// ExpenseUpdate carries the mutable fields of an expense. Nil fields
// are left untouched by the update.
type ExpenseUpdate struct {
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

// ExpenseListResponse wraps a filtered/sorted expense view.
// Count and TotalAmount describe the view, not the full store.
type ExpenseListResponse struct {
	Data        []Expense `json:"data"`
	Count       int       `json:"count"`
	TotalAmount float64   `json:"total_amount"`
}

// ============================================================
// Categories
// ============================================================

// Category is a catalog entry. The catalog is owned by an external
// service; expenses may reference names the catalog no longer knows
// and the pipeline must still display them.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// ============================================================
// Analytics
// ============================================================

// AnalyticsSummary is the compact summary consumed by the overview
// cards and charts.
type AnalyticsSummary struct {
	TotalExpenses     float64            `json:"total_expenses"`
	ExpenseCount      int                `json:"expense_count"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	MonthlyTrend      []MonthAmount      `json:"monthly_trend"`
}

// MonthAmount is one month's total in the summary trend series.
type MonthAmount struct {
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
}

// TrendEntry is one period's aggregate plus its delta from the prior
// period. ChangePercent is nil for the first entry and for any entry
// whose predecessor total is zero.
type TrendEntry struct {
	Month         string   `json:"month"` // YYYY-MM
	Total         float64  `json:"total"`
	Count         int      `json:"count"`
	Average       float64  `json:"average"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Direction     string   `json:"trend,omitempty"` // up, down, flat
}

// BudgetHealth classifies recent spend against a trailing baseline.
// Status is always exactly one of good, normal, warning.
type BudgetHealth struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Predictions is a simple forward projection from the trend series.
// Absent (nil) when there is not enough history; consumers must
// tolerate its absence.
type Predictions struct {
	NextMonthEstimate float64 `json:"next_month_estimate"`
	AnnualProjection  float64 `json:"annual_projection"`
}

// CategoryAnalysis describes the per-category breakdown of a subset.
type CategoryAnalysis struct {
	Breakdown     map[string]float64 `json:"breakdown"`
	TopCategory   string             `json:"top_category"`
	CategoryCount int                `json:"category_count"`
}

// InsightsSummary is the scalar section of the insights payload.
type InsightsSummary struct {
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// InsightsResponse is the full analytics/insights payload. Optional
// sections are pointers: the engine may omit any of them and
// consumers render a neutral fallback instead.
type InsightsResponse struct {
	Insights         []string          `json:"insights"`
	SpendingTrends   []TrendEntry      `json:"spending_trends"`
	CategoryAnalysis *CategoryAnalysis `json:"category_analysis,omitempty"`
	BudgetHealth     *BudgetHealth     `json:"budget_health,omitempty"`
	Predictions      *Predictions      `json:"predictions,omitempty"`
	Summary          *InsightsSummary  `json:"summary,omitempty"`
}

// OverviewResponse is the combined dashboard bootstrap payload.
type OverviewResponse struct {
	Summary    *AnalyticsSummary `json:"summary"`
	Categories []Category        `json:"categories"`
}

// ============================================================
// Metrics snapshot (GET /v1/metrics/assistant)
// ============================================================

// AssistantMetrics is a point-in-time view of the conversational and
// insight pipelines, derived from the Prometheus counters.
type AssistantMetrics struct {
	TotalRequests       int64   `json:"totalRequests"`
	ErrorRate           float64 `json:"errorRate"`
	FallbackRate        float64 `json:"fallbackRate"`
	AvgTokensPerRequest float64 `json:"avgTokensPerRequest"`
	EstimatedCostUsd    float64 `json:"estimatedCostUsd"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}

// ============================================================
// Generic API response wrappers
// ============================================================

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
