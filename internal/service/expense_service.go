package service

import (
	"context"
	"io"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/core"
	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/port"
	"github.com/smartspend/expense-tracker-bff-go/internal/store"
)

var tracer = otel.Tracer("service/expense")

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ExpenseService owns the expense snapshot and runs the view pipeline
// over it. All writes go to the upstream first; the snapshot is only
// touched after the upstream confirms, so a failed call leaves local
// state exactly as it was.
type ExpenseService struct {
	api     port.ExpenseAPI
	store   *store.ExpenseStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewExpenseService creates the expense service.
func NewExpenseService(api port.ExpenseAPI, st *store.ExpenseStore, metrics *observability.Metrics, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		api:     api,
		store:   st,
		metrics: metrics,
		logger:  logger,
	}
}

// Store exposes the underlying snapshot store for collaborating
// services (analytics reads the same snapshot).
func (s *ExpenseService) Store() *store.ExpenseStore {
	return s.store
}

// Refresh fetches the user's expense list from upstream and replaces
// the snapshot. When the fetch fails but a previous snapshot exists,
// the stale snapshot is kept and no error is returned; the caller
// serves slightly old data instead of nothing.
func (s *ExpenseService) Refresh(ctx context.Context, userID, token string) error {
	ctx, span := tracer.Start(ctx, "ExpenseService.Refresh")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("expenses_refresh", time.Since(start))
	}()

	expenses, err := s.api.ListExpenses(ctx, token)
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		if s.store.Revision(userID) > 0 {
			s.logger.Warn("expense refresh failed, serving previous snapshot",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	s.store.Replace(userID, expenses)
	return nil
}

// List refreshes the snapshot and returns the filtered, sorted view
// with its count and total.
func (s *ExpenseService) List(ctx context.Context, userID, token string, criteria core.Criteria, sortSpec core.SortSpec) (*domain.ExpenseListResponse, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.List")
	defer span.End()

	if err := s.Refresh(ctx, userID, token); err != nil {
		return nil, err
	}
	return s.View(userID, criteria, sortSpec), nil
}

// View runs the pipeline over the current snapshot without touching
// the upstream. Export uses this so a download never triggers I/O.
func (s *ExpenseService) View(userID string, criteria core.Criteria, sortSpec core.SortSpec) *domain.ExpenseListResponse {
	snapshot, _ := s.store.Snapshot(userID)

	view := core.Apply(sortSpec, core.Filter(criteria, snapshot))

	total := 0.0
	for _, e := range view {
		total += e.Amount
	}
	return &domain.ExpenseListResponse{
		Data:        view,
		Count:       len(view),
		TotalAmount: total,
	}
}

// Create records a new expense upstream, then prepends it to the
// snapshot so it shows up first in the default newest-first view.
func (s *ExpenseService) Create(ctx context.Context, userID, token string, req *domain.ExpenseCreate) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.Create")
	defer span.End()

	if err := validateCreate(req); err != nil {
		return nil, err
	}

	created, err := s.api.CreateExpense(ctx, token, req)
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, err
	}

	s.store.Prepend(userID, *created)
	s.logger.Info("expense created",
		zap.String("user_id", userID),
		zap.String("expense_id", created.ID),
		zap.String("category", created.Category),
	)
	return created, nil
}

// Update applies a partial update upstream, then mirrors the stored
// entity into the snapshot in place.
func (s *ExpenseService) Update(ctx context.Context, userID, token, id string, req *domain.ExpenseUpdate) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpenseService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateExpense(ctx, token, id, req)
	if err != nil {
		s.metrics.IncrExternalError("expenses")
		return nil, err
	}

	if !s.store.Update(userID, *updated) {
		// Snapshot drifted (entry created elsewhere); fold it in.
		s.store.Prepend(userID, *updated)
	}
	return updated, nil
}

// Delete removes an expense upstream, then drops it from the snapshot.
func (s *ExpenseService) Delete(ctx context.Context, userID, token, id string) error {
	ctx, span := tracer.Start(ctx, "ExpenseService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	if err := s.api.DeleteExpense(ctx, token, id); err != nil {
		s.metrics.IncrExternalError("expenses")
		return err
	}

	s.store.Remove(userID, id)
	s.logger.Info("expense deleted",
		zap.String("user_id", userID),
		zap.String("expense_id", id),
	)
	return nil
}

// ExportCSV writes the current filtered view as CSV. The subset and
// its order are exactly what List with the same arguments would show.
func (s *ExpenseService) ExportCSV(w io.Writer, userID string, criteria core.Criteria, sortSpec core.SortSpec) error {
	view := s.View(userID, criteria, sortSpec)
	return core.WriteCSV(w, view.Data)
}

func validateCreate(req *domain.ExpenseCreate) error {
	switch {
	case req.Amount <= 0:
		return &domain.ErrValidation{Field: "amount", Message: "must be greater than zero"}
	case req.Description == "":
		return &domain.ErrValidation{Field: "description", Message: "is required"}
	case req.Category == "":
		return &domain.ErrValidation{Field: "category", Message: "is required"}
	case !dateFormat.MatchString(req.Date):
		return &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return &domain.ErrValidation{Field: "date", Message: "is not a valid calendar date"}
	}
	return nil
}

func validateUpdate(req *domain.ExpenseUpdate) error {
	if req.Amount != nil && *req.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}
	if req.Date != nil {
		if !dateFormat.MatchString(*req.Date) {
			return &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			return &domain.ErrValidation{Field: "date", Message: "is not a valid calendar date"}
		}
	}
	if req.Description != nil && *req.Description == "" {
		return &domain.ErrValidation{Field: "description", Message: "cannot be emptied"}
	}
	if req.Category != nil && *req.Category == "" {
		return &domain.ErrValidation{Field: "category", Message: "cannot be emptied"}
	}
	return nil
}
