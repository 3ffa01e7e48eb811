package core

import (
	"testing"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleExpenses())
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if s.Total != 187.24 {
		t.Errorf("Total = %v, want 187.24", s.Total)
	}
	if s.Average != 37.45 {
		t.Errorf("Average = %v, want 37.45", s.Average)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.Total != 0 || s.Average != 0 {
		t.Errorf("empty subset should be all zeros, got %+v", s)
	}
}

func TestBreakdownByCategory(t *testing.T) {
	b := BreakdownByCategory(sampleExpenses())
	want := map[string]float64{
		"Food":      21.25,
		"Transport": 45.00,
		"Other":     0.00,
		"Shopping":  120.99,
	}
	if len(b) != len(want) {
		t.Fatalf("got %d categories, want %d: %v", len(b), len(want), b)
	}
	for name, total := range want {
		if b[name] != total {
			t.Errorf("breakdown[%s] = %v, want %v", name, b[name], total)
		}
	}
}

func TestBreakdownKeepsUnknownCategories(t *testing.T) {
	b := BreakdownByCategory([]domain.Expense{
		{Category: "Time Travel", Amount: 99},
	})
	if b["Time Travel"] != 99 {
		t.Errorf("unknown category dropped: %v", b)
	}
}

func TestAnalyzeCategories(t *testing.T) {
	a := AnalyzeCategories(sampleExpenses())
	if a.TopCategory != "Shopping" {
		t.Errorf("TopCategory = %q, want Shopping", a.TopCategory)
	}
	if a.CategoryCount != 4 {
		t.Errorf("CategoryCount = %d, want 4", a.CategoryCount)
	}
}

func TestMonthlyTrend(t *testing.T) {
	trend := MonthlyTrend(sampleExpenses())
	if len(trend) != 3 {
		t.Fatalf("got %d months, want 3", len(trend))
	}

	jan, feb, mar := trend[0], trend[1], trend[2]

	if jan.Month != "2026-01" || feb.Month != "2026-02" || mar.Month != "2026-03" {
		t.Fatalf("months out of order: %v %v %v", jan.Month, feb.Month, mar.Month)
	}

	if jan.Total != 57.50 || jan.Count != 2 || jan.Average != 28.75 {
		t.Errorf("jan = %+v", jan)
	}
	if jan.ChangePercent != nil {
		t.Errorf("first entry must have no change percent, got %v", *jan.ChangePercent)
	}

	if feb.Total != 120.99 {
		t.Errorf("feb total = %v, want 120.99", feb.Total)
	}
	if feb.ChangePercent == nil || *feb.ChangePercent != 110.4 {
		t.Errorf("feb change = %v, want 110.4", feb.ChangePercent)
	}
	if feb.Direction != "up" {
		t.Errorf("feb direction = %q, want up", feb.Direction)
	}

	if mar.ChangePercent == nil || *mar.ChangePercent != -92.8 {
		t.Errorf("mar change = %v, want -92.8", mar.ChangePercent)
	}
	if mar.Direction != "down" {
		t.Errorf("mar direction = %q, want down", mar.Direction)
	}
}

func TestMonthlyTrendZeroPredecessor(t *testing.T) {
	trend := MonthlyTrend([]domain.Expense{
		{Amount: 0, Date: "2026-01-15"},
		{Amount: 50, Date: "2026-02-15"},
	})
	if len(trend) != 2 {
		t.Fatalf("got %d months, want 2", len(trend))
	}
	if trend[1].ChangePercent != nil {
		t.Errorf("zero-predecessor entry must have no change percent, got %v", *trend[1].ChangePercent)
	}
}

func TestMonthlyTrendFlat(t *testing.T) {
	trend := MonthlyTrend([]domain.Expense{
		{Amount: 50, Date: "2026-01-15"},
		{Amount: 50, Date: "2026-02-15"},
	})
	if trend[1].ChangePercent == nil || *trend[1].ChangePercent != 0 {
		t.Fatalf("equal months should report a 0%% change, got %v", trend[1].ChangePercent)
	}
	if trend[1].Direction != "flat" {
		t.Errorf("direction = %q, want flat", trend[1].Direction)
	}
}

func TestMonthlyTrendSkipsShortDates(t *testing.T) {
	trend := MonthlyTrend([]domain.Expense{
		{Amount: 10, Date: "bad"},
		{Amount: 20, Date: "2026-01-01"},
	})
	if len(trend) != 1 || trend[0].Total != 20 {
		t.Errorf("malformed dates should be dropped from the trend, got %+v", trend)
	}
}

func TestSummaryShape(t *testing.T) {
	s := Summary(sampleExpenses())
	if s.TotalExpenses != 187.24 || s.ExpenseCount != 5 {
		t.Errorf("summary scalars = %v/%v", s.TotalExpenses, s.ExpenseCount)
	}
	if len(s.MonthlyTrend) != 3 || s.MonthlyTrend[0].Month != "2026-01" {
		t.Errorf("monthly trend = %+v", s.MonthlyTrend)
	}
	if s.CategoryBreakdown["Food"] != 21.25 {
		t.Errorf("breakdown = %+v", s.CategoryBreakdown)
	}
}

func monthsOf(totals ...float64) []domain.TrendEntry {
	out := make([]domain.TrendEntry, len(totals))
	for i, total := range totals {
		out[i] = domain.TrendEntry{Total: total}
	}
	return out
}

func TestAssessBudgetHealth(t *testing.T) {
	policy := DefaultBudgetPolicy()

	tests := []struct {
		name   string
		trend  []domain.TrendEntry
		status string
	}{
		{"no history", nil, "normal"},
		{"one month", monthsOf(100), "normal"},
		{"steady spend", monthsOf(100, 100, 100), "normal"},
		{"recent spike", monthsOf(100, 100, 200), "warning"},
		{"recent drop", monthsOf(100, 100, 10), "good"},
		{"just under warn threshold", monthsOf(100, 100, 120), "normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AssessBudgetHealth(tt.trend, policy)
			if h.Status != tt.status {
				t.Errorf("status = %q, want %q", h.Status, tt.status)
			}
			if h.Message == "" {
				t.Error("every verdict needs a message")
			}
		})
	}
}

func TestPredict(t *testing.T) {
	if p := Predict(monthsOf(100, 200)); p != nil {
		t.Fatalf("under three months must yield no prediction, got %+v", p)
	}

	p := Predict(monthsOf(50, 100, 200, 300))
	if p == nil {
		t.Fatal("expected a prediction")
	}
	if p.NextMonthEstimate != 200 {
		t.Errorf("NextMonthEstimate = %v, want 200", p.NextMonthEstimate)
	}
	if p.AnnualProjection != 2400 {
		t.Errorf("AnnualProjection = %v, want 2400", p.AnnualProjection)
	}
}
