package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
)

// csvHeader is the fixed column set of an export. Columns the app
// tracks internally (ids, receipt links) are deliberately left out.
var csvHeader = []string{"Date", "Description", "Category", "Amount"}

// WriteCSV encodes the subset, one row per expense in the order
// given, after a single header row. Amounts are formatted with
// exactly two decimals; fields containing delimiters, quotes, or
// newlines are quoted per RFC 4180 by encoding/csv.
func WriteCSV(w io.Writer, expenses []domain.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		row := []string{e.Date, e.Description, e.Category, fmt.Sprintf("%.2f", e.Amount)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names a download after the day it was produced,
// e.g. expenses_2026-08-29.csv.
func ExportFilename(now time.Time) string {
	return "expenses_" + now.Format("2006-01-02") + ".csv"
}
