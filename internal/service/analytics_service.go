package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartspend/expense-tracker-bff-go/internal/core"
	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/port"
)

// AnalyticsService computes summaries, insights, and the dashboard
// overview from the expense snapshot.
//
// Derived payloads are cached under the snapshot's version key
// (user:revision). Any mutation bumps the revision, which changes the
// key, so a cached payload can never outlive the data it was computed
// from; superseded entries just expire.
type AnalyticsService struct {
	expenses   *ExpenseService
	categories port.CategoryCatalog
	insights   port.InsightGenerator
	cache      port.Cache[any]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAnalyticsService creates the analytics service.
func NewAnalyticsService(
	expenses *ExpenseService,
	categories port.CategoryCatalog,
	insights port.InsightGenerator,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		expenses:   expenses,
		categories: categories,
		insights:   insights,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// Summary returns the compact dashboard aggregate for the user's full
// expense set.
func (s *AnalyticsService) Summary(ctx context.Context, userID, token string) (*domain.AnalyticsSummary, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := s.expenses.Refresh(ctx, userID, token); err != nil {
		return nil, err
	}

	cacheKey := s.expenses.Store().VersionKey(userID) + "|summary"
	if cached, ok := s.cache.Get(cacheKey); ok {
		if summary, ok := cached.(*domain.AnalyticsSummary); ok {
			s.metrics.IncrCacheHit("analytics")
			return summary, nil
		}
	}
	s.metrics.IncrCacheMiss("analytics")

	snapshot, _ := s.expenses.Store().Snapshot(userID)
	summary := core.Summary(snapshot)

	s.cache.Set(cacheKey, &summary)
	return &summary, nil
}

// Insights returns the full analytics payload: insight lines, the
// monthly trend, category analysis, budget health, predictions, and
// the scalar summary. Sections without enough history are omitted;
// the payload itself is always returned.
func (s *AnalyticsService) Insights(ctx context.Context, userID, token string) (*domain.InsightsResponse, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Insights")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("insights", time.Since(start))
	}()

	if err := s.expenses.Refresh(ctx, userID, token); err != nil {
		return nil, err
	}

	cacheKey := s.expenses.Store().VersionKey(userID) + "|insights"
	if cached, ok := s.cache.Get(cacheKey); ok {
		if resp, ok := cached.(*domain.InsightsResponse); ok {
			s.metrics.IncrCacheHit("analytics")
			return resp, nil
		}
	}
	s.metrics.IncrCacheMiss("analytics")

	snapshot, _ := s.expenses.Store().Snapshot(userID)

	summary := core.Summarize(snapshot)
	trend := core.MonthlyTrend(snapshot)
	categories := core.AnalyzeCategories(snapshot)
	health := core.AssessBudgetHealth(trend, core.DefaultBudgetPolicy())

	lines, err := s.insights.GenerateInsights(ctx, summary, trend, categories)
	if err != nil {
		// The generator degrades internally; an error here means even
		// the fallback path broke. Serve the payload without lines.
		s.logger.Error("insight generation failed", zap.Error(err))
		lines = nil
	}

	resp := &domain.InsightsResponse{
		Insights:       lines,
		SpendingTrends: trend,
		BudgetHealth:   &health,
		Predictions:    core.Predict(trend),
		Summary:        &summary,
	}
	if summary.Count > 0 {
		resp.CategoryAnalysis = &categories
	}

	s.cache.Set(cacheKey, resp)
	return resp, nil
}

// Overview assembles the dashboard bootstrap payload: the analytics
// summary and the category catalog, fetched concurrently.
func (s *AnalyticsService) Overview(ctx context.Context, userID, token string) (*domain.OverviewResponse, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Overview")
	defer span.End()

	var (
		summary    *domain.AnalyticsSummary
		categories []domain.Category
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		summary, err = s.Summary(gCtx, userID, token)
		return err
	})

	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gCtx)
		if err != nil {
			s.metrics.IncrExternalError("categories")
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.OverviewResponse{
		Summary:    summary,
		Categories: categories,
	}, nil
}

// Categories returns the catalog for the expense form.
func (s *AnalyticsService) Categories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsService.Categories")
	defer span.End()

	return s.categories.ListCategories(ctx)
}
