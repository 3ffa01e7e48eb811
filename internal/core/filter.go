// Package core holds the pure expense pipeline: filter predicates,
// sort comparators, aggregates, and the CSV export encoder. Nothing
// in this package touches the network or mutates the store; every
// function takes a subset of expenses and returns derived data.
package core

import (
	"strconv"
	"strings"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

// CategoryAll is the sentinel meaning "no category constraint".
const CategoryAll = "all"

// Criteria is the active set of filter constraints. Empty fields
// impose no constraint; all present fields are AND-composed, so the
// zero value is the identity filter.
//
// Amount bounds are kept as the raw strings the caller supplied.
// This is deliberate: an empty string means "no bound" while the
// string "0" is a real inclusive bound of zero, and coercing to a
// number at the edge would collapse the two.
type Criteria struct {
	Search    string
	Category  string // exact match, or "all"/empty for no constraint
	DateFrom  string // YYYY-MM-DD inclusive, empty for no bound
	DateTo    string // YYYY-MM-DD inclusive, empty for no bound
	AmountMin string // decimal string, empty or malformed for no bound
	AmountMax string // decimal string, empty or malformed for no bound
}

// IsZero reports whether the criteria impose no constraint at all.
func (c Criteria) IsZero() bool {
	return c == Criteria{} || c == Criteria{Category: CategoryAll}
}

// Key returns a stable string form of the criteria, usable as part of
// a cache key for derived views.
func (c Criteria) Key() string {
	return strings.Join([]string{c.Search, c.Category, c.DateFrom, c.DateTo, c.AmountMin, c.AmountMax}, "|")
}

// Matches reports whether a single expense passes every constraint.
func (c Criteria) Matches(e domain.Expense) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Category), q) {
			return false
		}
	}

	if c.Category != "" && c.Category != CategoryAll && e.Category != c.Category {
		return false
	}

	// Dates compare lexicographically; valid only because the format
	// is fixed-width YYYY-MM-DD.
	if c.DateFrom != "" && e.Date < c.DateFrom {
		return false
	}
	if c.DateTo != "" && e.Date > c.DateTo {
		return false
	}

	// Malformed bounds degrade to "no bound" (fail-soft), never to an
	// error or an accidental zero bound.
	if min, ok := parseBound(c.AmountMin); ok && e.Amount < min {
		return false
	}
	if max, ok := parseBound(c.AmountMax); ok && e.Amount > max {
		return false
	}

	return true
}

// Filter returns the expenses matching the criteria, in their input
// order. The input slice is never modified.
func Filter(c Criteria, expenses []domain.Expense) []domain.Expense {
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if c.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func parseBound(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
