package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

// Summarize computes the scalar section for a subset: total, count,
// and average (zero, not NaN, on an empty subset).
func Summarize(expenses []domain.Expense) domain.InsightsSummary {
	s := domain.InsightsSummary{Count: len(expenses)}
	for _, e := range expenses {
		s.Total += e.Amount
	}
	if s.Count > 0 {
		s.Average = round2(s.Total / float64(s.Count))
	}
	s.Total = round2(s.Total)
	return s
}

// BreakdownByCategory totals the subset per category name. Categories
// unknown to the catalog still get an entry; the view layer decides
// how to render them.
func BreakdownByCategory(expenses []domain.Expense) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range expenses {
		out[e.Category] = round2(out[e.Category] + e.Amount)
	}
	return out
}

// AnalyzeCategories derives the breakdown plus the dominant category.
func AnalyzeCategories(expenses []domain.Expense) domain.CategoryAnalysis {
	breakdown := BreakdownByCategory(expenses)
	top := ""
	best := math.Inf(-1)
	for name, total := range breakdown {
		if total > best || (total == best && name < top) {
			top, best = name, total
		}
	}
	return domain.CategoryAnalysis{
		Breakdown:     breakdown,
		TopCategory:   top,
		CategoryCount: len(breakdown),
	}
}

// MonthlyTrend groups a subset by calendar month (the YYYY-MM prefix
// of the date) and returns one entry per month in ascending month
// order, each with its total, count, average, and the percentage
// change from the previous month.
//
// ChangePercent is nil for the first entry and for any entry whose
// predecessor total is zero; there is no meaningful delta in either
// case and emitting 0 or Inf would both mislead.
func MonthlyTrend(expenses []domain.Expense) []domain.TrendEntry {
	type bucket struct {
		total float64
		count int
	}
	buckets := make(map[string]*bucket)
	for _, e := range expenses {
		if len(e.Date) < 7 {
			continue
		}
		key := e.Date[:7]
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.total += e.Amount
		b.count++
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]domain.TrendEntry, 0, len(months))
	for i, m := range months {
		b := buckets[m]
		entry := domain.TrendEntry{
			Month:   m,
			Total:   round2(b.total),
			Count:   b.count,
			Average: round2(b.total / float64(b.count)),
		}
		if i > 0 {
			prev := buckets[months[i-1]].total
			if prev != 0 {
				pct := round1((b.total - prev) / prev * 100)
				entry.ChangePercent = &pct
				switch {
				case pct > 0:
					entry.Direction = "up"
				case pct < 0:
					entry.Direction = "down"
				default:
					entry.Direction = "flat"
				}
			}
		}
		trend = append(trend, entry)
	}
	return trend
}

// Summary produces the compact dashboard aggregate: overall totals,
// the per-category breakdown, and the monthly totals series.
func Summary(expenses []domain.Expense) domain.AnalyticsSummary {
	trend := MonthlyTrend(expenses)
	monthly := make([]domain.MonthAmount, len(trend))
	for i, t := range trend {
		monthly[i] = domain.MonthAmount{Month: t.Month, Amount: t.Total}
	}
	scalar := Summarize(expenses)
	return domain.AnalyticsSummary{
		TotalExpenses:     scalar.Total,
		ExpenseCount:      scalar.Count,
		CategoryBreakdown: BreakdownByCategory(expenses),
		MonthlyTrend:      monthly,
	}
}

// BudgetPolicy holds the thresholds for health classification, as
// multiples of the trailing monthly average.
type BudgetPolicy struct {
	WarnAbove float64
	GoodBelow float64
}

// DefaultBudgetPolicy warns above 120% of the trailing average and
// reports good below 80%.
func DefaultBudgetPolicy() BudgetPolicy {
	return BudgetPolicy{WarnAbove: 1.2, GoodBelow: 0.8}
}

// AssessBudgetHealth compares the most recent month against the
// trailing average of all months in the trend. It always resolves to
// exactly one of good, normal, or warning; thin history (fewer than
// two months) reads as normal rather than an unknown status, so
// consumers never branch on a missing verdict.
func AssessBudgetHealth(trend []domain.TrendEntry, policy BudgetPolicy) domain.BudgetHealth {
	if len(trend) < 2 {
		return domain.BudgetHealth{
			Status:  "normal",
			Message: "Not enough history yet to compare against a baseline.",
		}
	}

	var sum float64
	for _, t := range trend {
		sum += t.Total
	}
	avg := sum / float64(len(trend))
	recent := trend[len(trend)-1].Total

	switch {
	case avg > 0 && recent > avg*policy.WarnAbove:
		return domain.BudgetHealth{
			Status:         "warning",
			Message:        fmt.Sprintf("This month's spending (%.2f) is well above your monthly average (%.2f).", recent, avg),
			Recommendation: "Review your largest categories and consider trimming discretionary spend.",
		}
	case recent < avg*policy.GoodBelow:
		return domain.BudgetHealth{
			Status:         "good",
			Message:        fmt.Sprintf("This month's spending (%.2f) is below your monthly average (%.2f).", recent, avg),
			Recommendation: "Nice pace. Consider moving the surplus into savings.",
		}
	default:
		return domain.BudgetHealth{
			Status:  "normal",
			Message: fmt.Sprintf("This month's spending (%.2f) is in line with your monthly average (%.2f).", recent, avg),
		}
	}
}

// Predict projects forward from the trend series: the next-month
// estimate is the mean of the last three monthly totals, and the
// annual projection is twelve times that. Returns nil with fewer than
// three months of history.
func Predict(trend []domain.TrendEntry) *domain.Predictions {
	if len(trend) < 3 {
		return nil
	}
	last := trend[len(trend)-3:]
	var sum float64
	for _, t := range last {
		sum += t.Total
	}
	estimate := round2(sum / float64(len(last)))
	return &domain.Predictions{
		NextMonthEstimate: estimate,
		AnnualProjection:  round2(estimate * 12),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
