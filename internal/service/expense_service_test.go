package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/core"
	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/store"
)

// fakeExpenseAPI is a scriptable upstream.
type fakeExpenseAPI struct {
	listResult  []domain.Expense
	listErr     error
	listCalls   int
	createErr   error
	updateErr   error
	deleteErr   error
	lastToken   string
	nextID      string
	deleteCalls int
}

func (f *fakeExpenseAPI) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	f.listCalls++
	f.lastToken = token
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Expense, len(f.listResult))
	copy(out, f.listResult)
	return out, nil
}

func (f *fakeExpenseAPI) CreateExpense(ctx context.Context, token string, req *domain.ExpenseCreate) (*domain.Expense, error) {
	f.lastToken = token
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.nextID
	if id == "" {
		id = "generated"
	}
	return &domain.Expense{
		ID:          id,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}, nil
}

func (f *fakeExpenseAPI) UpdateExpense(ctx context.Context, token, id string, req *domain.ExpenseUpdate) (*domain.Expense, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	stored := domain.Expense{ID: id, Amount: 1, Category: "Food", Description: "x", Date: "2026-01-01"}
	if req.Amount != nil {
		stored.Amount = *req.Amount
	}
	if req.Category != nil {
		stored.Category = *req.Category
	}
	if req.Description != nil {
		stored.Description = *req.Description
	}
	if req.Date != nil {
		stored.Date = *req.Date
	}
	return &stored, nil
}

func (f *fakeExpenseAPI) DeleteExpense(ctx context.Context, token, id string) error {
	f.deleteCalls++
	return f.deleteErr
}

func newExpenseService(api *fakeExpenseAPI) (*ExpenseService, *store.ExpenseStore) {
	st := store.NewExpenseStore()
	svc := NewExpenseService(api, st, observability.NewMetrics(), zap.NewNop())
	return svc, st
}

func strPtr(s string) *string { return &s }

func f64Ptr(v float64) *float64 { return &v }

func TestListRefreshesAndRunsPipeline(t *testing.T) {
	api := &fakeExpenseAPI{listResult: []domain.Expense{
		{ID: "1", Amount: 10, Category: "Food", Description: "lunch", Date: "2026-01-02"},
		{ID: "2", Amount: 99, Category: "Bills", Description: "power", Date: "2026-01-05"},
		{ID: "3", Amount: 5, Category: "Food", Description: "snack", Date: "2026-01-09"},
	}}
	svc, _ := newExpenseService(api)

	resp, err := svc.List(context.Background(), "u1", "tok", core.Criteria{Category: "Food"}, core.DefaultSort())
	if err != nil {
		t.Fatal(err)
	}

	if api.lastToken != "tok" {
		t.Errorf("token not forwarded, got %q", api.lastToken)
	}
	if resp.Count != 2 || resp.TotalAmount != 15 {
		t.Fatalf("count=%d total=%v", resp.Count, resp.TotalAmount)
	}
	// Newest first by default.
	if resp.Data[0].ID != "3" || resp.Data[1].ID != "1" {
		t.Errorf("order = %v, %v", resp.Data[0].ID, resp.Data[1].ID)
	}
}

func TestListServesStaleSnapshotWhenUpstreamFails(t *testing.T) {
	api := &fakeExpenseAPI{listResult: []domain.Expense{
		{ID: "1", Amount: 10, Category: "Food", Description: "lunch", Date: "2026-01-02"},
	}}
	svc, _ := newExpenseService(api)

	if _, err := svc.List(context.Background(), "u1", "tok", core.Criteria{}, core.DefaultSort()); err != nil {
		t.Fatal(err)
	}

	api.listErr = errors.New("upstream down")
	resp, err := svc.List(context.Background(), "u1", "tok", core.Criteria{}, core.DefaultSort())
	if err != nil {
		t.Fatalf("expected stale snapshot, got error %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("stale view count = %d", resp.Count)
	}
}

func TestListFailsWithoutAnySnapshot(t *testing.T) {
	api := &fakeExpenseAPI{listErr: errors.New("upstream down")}
	svc, _ := newExpenseService(api)

	if _, err := svc.List(context.Background(), "u1", "tok", core.Criteria{}, core.DefaultSort()); err == nil {
		t.Fatal("first fetch failure with no snapshot must surface")
	}
}

func TestCreateValidation(t *testing.T) {
	api := &fakeExpenseAPI{}
	svc, st := newExpenseService(api)

	tests := []struct {
		name string
		req  domain.ExpenseCreate
	}{
		{"zero amount", domain.ExpenseCreate{Amount: 0, Category: "Food", Description: "x", Date: "2026-01-01"}},
		{"negative amount", domain.ExpenseCreate{Amount: -5, Category: "Food", Description: "x", Date: "2026-01-01"}},
		{"missing description", domain.ExpenseCreate{Amount: 5, Category: "Food", Date: "2026-01-01"}},
		{"missing category", domain.ExpenseCreate{Amount: 5, Description: "x", Date: "2026-01-01"}},
		{"bad date shape", domain.ExpenseCreate{Amount: 5, Category: "Food", Description: "x", Date: "01/02/2026"}},
		{"impossible date", domain.ExpenseCreate{Amount: 5, Category: "Food", Description: "x", Date: "2026-02-30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", "tok", &tt.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if rev := st.Revision("u1"); rev != 0 {
		t.Errorf("rejected creates must not touch the snapshot, rev=%d", rev)
	}
}

func TestCreatePrependsOnSuccess(t *testing.T) {
	api := &fakeExpenseAPI{nextID: "new-1", listResult: []domain.Expense{
		{ID: "old", Amount: 1, Category: "Food", Description: "old", Date: "2026-01-01"},
	}}
	svc, st := newExpenseService(api)
	svc.Refresh(context.Background(), "u1", "tok")

	created, err := svc.Create(context.Background(), "u1", "tok", &domain.ExpenseCreate{
		Amount: 9.99, Category: "Food", Description: "new", Date: "2026-01-10",
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "new-1" {
		t.Errorf("created id = %q", created.ID)
	}

	snapshot, rev := st.Snapshot("u1")
	if len(snapshot) != 2 || snapshot[0].ID != "new-1" {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if rev != 2 {
		t.Errorf("rev = %d, want 2", rev)
	}
}

func TestCreateFailureLeavesSnapshotUntouched(t *testing.T) {
	api := &fakeExpenseAPI{createErr: &domain.ErrExternalService{Service: "expenses", Err: errors.New("boom")}}
	svc, st := newExpenseService(api)
	st.Replace("u1", []domain.Expense{{ID: "a"}})

	_, err := svc.Create(context.Background(), "u1", "tok", &domain.ExpenseCreate{
		Amount: 5, Category: "Food", Description: "x", Date: "2026-01-01",
	})
	if err == nil {
		t.Fatal("expected upstream error")
	}

	snapshot, rev := st.Snapshot("u1")
	if len(snapshot) != 1 || rev != 1 {
		t.Errorf("failed create mutated the snapshot: %d items rev %d", len(snapshot), rev)
	}
}

func TestUpdateMirrorsStoredEntity(t *testing.T) {
	api := &fakeExpenseAPI{}
	svc, st := newExpenseService(api)
	st.Replace("u1", []domain.Expense{
		{ID: "a", Amount: 1, Category: "Food", Description: "x", Date: "2026-01-01"},
		{ID: "b", Amount: 2, Category: "Food", Description: "y", Date: "2026-01-02"},
	})

	updated, err := svc.Update(context.Background(), "u1", "tok", "b", &domain.ExpenseUpdate{Amount: f64Ptr(50)})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Amount != 50 {
		t.Errorf("updated amount = %v", updated.Amount)
	}

	snapshot, _ := st.Snapshot("u1")
	if snapshot[1].ID != "b" || snapshot[1].Amount != 50 {
		t.Errorf("snapshot entry = %+v", snapshot[1])
	}
}

func TestUpdateValidation(t *testing.T) {
	api := &fakeExpenseAPI{}
	svc, _ := newExpenseService(api)

	_, err := svc.Update(context.Background(), "u1", "tok", "a", &domain.ExpenseUpdate{Date: strPtr("tomorrow")})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRemovesOnSuccessOnly(t *testing.T) {
	api := &fakeExpenseAPI{}
	svc, st := newExpenseService(api)
	st.Replace("u1", []domain.Expense{{ID: "a"}, {ID: "b"}})

	if err := svc.Delete(context.Background(), "u1", "tok", "a"); err != nil {
		t.Fatal(err)
	}
	if snapshot, _ := st.Snapshot("u1"); len(snapshot) != 1 {
		t.Errorf("snapshot has %d items after delete", len(snapshot))
	}

	api.deleteErr = &domain.ErrExternalService{Service: "expenses", Err: errors.New("boom")}
	if err := svc.Delete(context.Background(), "u1", "tok", "b"); err == nil {
		t.Fatal("expected upstream error")
	}
	if snapshot, _ := st.Snapshot("u1"); len(snapshot) != 1 {
		t.Errorf("failed delete mutated the snapshot")
	}
}

func TestExportCSVUsesFilteredView(t *testing.T) {
	api := &fakeExpenseAPI{}
	svc, st := newExpenseService(api)
	st.Replace("u1", []domain.Expense{
		{ID: "1", Amount: 10, Category: "Food", Description: "lunch", Date: "2026-01-02"},
		{ID: "2", Amount: 99, Category: "Bills", Description: "power", Date: "2026-01-05"},
	})

	var buf bytes.Buffer
	if err := svc.ExportCSV(&buf, "u1", core.Criteria{Category: "Food"}, core.DefaultSort()); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[1][1] != "lunch" || rows[1][3] != "10.00" {
		t.Errorf("row = %v", rows[1])
	}
}
