package core

import (
	"testing"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

func sampleExpenses() []domain.Expense {
	return []domain.Expense{
		{ID: "1", Amount: 12.50, Category: "Food", Description: "Lunch at cafe", Date: "2026-01-05"},
		{ID: "2", Amount: 45.00, Category: "Transport", Description: "Monthly bus pass", Date: "2026-01-10"},
		{ID: "3", Amount: 0.00, Category: "Other", Description: "Free sample", Date: "2026-02-01"},
		{ID: "4", Amount: 120.99, Category: "Shopping", Description: "Winter coat", Date: "2026-02-14"},
		{ID: "5", Amount: 8.75, Category: "Food", Description: "Coffee beans", Date: "2026-03-01"},
	}
}

func ids(expenses []domain.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

func assertIDs(t *testing.T, got []domain.Expense, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func TestFilterIdentity(t *testing.T) {
	all := sampleExpenses()

	for name, c := range map[string]Criteria{
		"zero value":   {},
		"category all": {Category: CategoryAll},
	} {
		t.Run(name, func(t *testing.T) {
			if !c.IsZero() {
				t.Errorf("IsZero() = false for %+v", c)
			}
			assertIDs(t, Filter(c, all), "1", "2", "3", "4", "5")
		})
	}
}

func TestFilterSearch(t *testing.T) {
	all := sampleExpenses()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"matches description case-insensitively", "COFFEE", []string{"5"}},
		{"matches category too", "foo", []string{"1", "5"}},
		{"substring anywhere", "pass", []string{"2"}},
		{"no match", "yacht", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertIDs(t, Filter(Criteria{Search: tt.search}, all), tt.want...)
		})
	}
}

func TestFilterCategory(t *testing.T) {
	all := sampleExpenses()
	assertIDs(t, Filter(Criteria{Category: "Food"}, all), "1", "5")
	assertIDs(t, Filter(Criteria{Category: "Healthcare"}, all))
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	all := sampleExpenses()

	got := Filter(Criteria{DateFrom: "2026-01-10", DateTo: "2026-02-14"}, all)
	assertIDs(t, got, "2", "3", "4")

	// A single-day window keeps expenses on exactly that day.
	assertIDs(t, Filter(Criteria{DateFrom: "2026-02-01", DateTo: "2026-02-01"}, all), "3")
}

func TestFilterAmountBounds(t *testing.T) {
	all := sampleExpenses()

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"min only", Criteria{AmountMin: "45"}, []string{"2", "4"}},
		{"max only", Criteria{AmountMax: "12.50"}, []string{"1", "3", "5"}},
		{"zero is a real bound", Criteria{AmountMin: "0"}, []string{"1", "2", "3", "4", "5"}},
		{"zero max keeps only free items", Criteria{AmountMax: "0"}, []string{"3"}},
		{"malformed bound is ignored", Criteria{AmountMin: "abc"}, []string{"1", "2", "3", "4", "5"}},
		{"malformed max with valid min", Criteria{AmountMin: "100", AmountMax: "oops"}, []string{"4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertIDs(t, Filter(tt.c, all), tt.want...)
		})
	}
}

func TestFilterComposesWithAND(t *testing.T) {
	all := sampleExpenses()
	c := Criteria{Search: "c", Category: "Food", DateFrom: "2026-02-01"}
	assertIDs(t, Filter(c, all), "5")
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	all := sampleExpenses()
	Filter(Criteria{Category: "Food"}, all)
	assertIDs(t, all, "1", "2", "3", "4", "5")
}

func TestCriteriaKeyDistinguishesBounds(t *testing.T) {
	a := Criteria{AmountMin: "0"}
	b := Criteria{}
	if a.Key() == b.Key() {
		t.Fatal("a zero bound and no bound must produce different cache keys")
	}
}
