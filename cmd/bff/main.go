package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	chatinfra "github.com/smartspend/expense-tracker-bff-go/internal/chat/infra"
	chatservice "github.com/smartspend/expense-tracker-bff-go/internal/chat/service"
	"github.com/smartspend/expense-tracker-bff-go/internal/config"
	"github.com/smartspend/expense-tracker-bff-go/internal/handler"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/cache"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/client"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/openai"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/resilience"
	"github.com/smartspend/expense-tracker-bff-go/internal/service"
	"github.com/smartspend/expense-tracker-bff-go/internal/store"
)

func main() {
	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("expense_api_url", cfg.ExpenseAPIURL),
		zap.String("advisor_api_url", cfg.AdvisorAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("openai_enabled", cfg.OpenAIAPIKey != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "smartspend-expense-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	analyticsCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	expensesCB := resilience.NewCircuitBreaker("expenses", resilience.DefaultBreakerSettings())
	advisorCB := resilience.NewCircuitBreaker("advisor", resilience.DefaultBreakerSettings())
	insightBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	expensesClient := client.NewExpensesClient(httpClient, cfg.ExpenseAPIURL, expensesCB, resilienceCfg)
	categoriesClient := client.NewCategoriesClient(httpClient, cfg.CategoryAPIURL, expensesCB, resilienceCfg)
	advisorClient := chatinfra.NewAdvisorClient(httpClient, cfg.AdvisorAPIURL, advisorCB, resilienceCfg)
	insightGen := openai.NewInsightGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, insightBulkhead, metrics, logger)

	// --- Services ---
	expenseStore := store.NewExpenseStore()
	expenseSvc := service.NewExpenseService(expensesClient, expenseStore, metrics, logger)
	analyticsSvc := service.NewAnalyticsService(expenseSvc, categoriesClient, insightGen, analyticsCache, metrics, logger)
	chatSvc := chatservice.NewChatService(advisorClient, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(expenseSvc, analyticsSvc, chatSvc, metrics, logger, cfg.JWTSecret)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
