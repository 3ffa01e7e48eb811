package core

import (
	"sort"
	"strings"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

// SortKey names the field a view is ordered by.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByAmount      SortKey = "amount"
	SortByCategory    SortKey = "category"
	SortByDescription SortKey = "description"
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// SortSpec is the active ordering: exactly one key, one direction.
type SortSpec struct {
	Key       SortKey `json:"key"`
	Direction string  `json:"direction"`
}

// DefaultSort is the ordering applied when the caller specifies none:
// newest first.
func DefaultSort() SortSpec {
	return SortSpec{Key: SortByDate, Direction: Desc}
}

// Toggle returns the spec after the user activates a column header:
// re-selecting the current key flips the direction, selecting a new
// key resets the direction to descending.
func (s SortSpec) Toggle(key SortKey) SortSpec {
	if s.Key == key {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
		return s
	}
	return SortSpec{Key: key, Direction: Desc}
}

// Key returns a stable string form of the spec for cache keys.
func (s SortSpec) CacheKey() string {
	return string(s.Key) + ":" + s.Direction
}

// Apply returns a new slice ordered by the spec. The sort is stable:
// expenses with equal keys keep their relative order from the input,
// and the input slice itself is never reordered.
func Apply(s SortSpec, expenses []domain.Expense) []domain.Expense {
	out := make([]domain.Expense, len(expenses))
	copy(out, expenses)

	cmp := comparator(s.Key)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if s.Direction == Asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

func comparator(key SortKey) func(a, b domain.Expense) int {
	switch key {
	case SortByAmount:
		return func(a, b domain.Expense) int {
			switch {
			case a.Amount < b.Amount:
				return -1
			case a.Amount > b.Amount:
				return 1
			default:
				return 0
			}
		}
	case SortByCategory:
		return func(a, b domain.Expense) int { return strings.Compare(a.Category, b.Category) }
	case SortByDescription:
		return func(a, b domain.Expense) int { return strings.Compare(a.Description, b.Description) }
	default: // date
		return func(a, b domain.Expense) int { return strings.Compare(a.Date, b.Date) }
	}
}
