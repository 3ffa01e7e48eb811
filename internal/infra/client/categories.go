package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/resilience"
)

// defaultCategories is served when the catalog service is unreachable
// or returns an empty list, so expense forms always have something to
// offer.
var defaultCategories = []domain.Category{
	{ID: "1", Name: "Food", Icon: "restaurant", Color: "#FF6B6B"},
	{ID: "2", Name: "Transport", Icon: "directions_car", Color: "#4ECDC4"},
	{ID: "3", Name: "Shopping", Icon: "shopping_bag", Color: "#45B7D1"},
	{ID: "4", Name: "Entertainment", Icon: "movie", Color: "#96CEB4"},
	{ID: "5", Name: "Bills", Icon: "receipt", Color: "#FFEAA7"},
	{ID: "6", Name: "Healthcare", Icon: "local_hospital", Color: "#DDA0DD"},
	{ID: "7", Name: "Education", Icon: "school", Color: "#98D8C8"},
	{ID: "8", Name: "Other", Icon: "category", Color: "#B0B0B0"},
}

// DefaultCategories returns a copy of the built-in catalog.
func DefaultCategories() []domain.Category {
	out := make([]domain.Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// CategoriesClient fetches the category catalog. The endpoint is
// public, so requests carry no credentials.
type CategoriesClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewCategoriesClient creates a new CategoriesClient.
func NewCategoriesClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CategoriesClient {
	return &CategoriesClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// ListCategories fetches the catalog, falling back to the built-in
// list when the upstream is down or empty.
func (c *CategoriesClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoriesClient.ListCategories")
	defer span.End()

	var categories []domain.Category

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/categories", c.baseURL)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("category API returned status %d", resp.StatusCode)
			}
			return json.NewDecoder(resp.Body).Decode(&categories)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return categories, nil
	})

	if err != nil {
		span.SetAttributes(attribute.Bool("categories.fallback", true))
		return DefaultCategories(), nil
	}

	list := result.([]domain.Category)
	if len(list) == 0 {
		span.SetAttributes(attribute.Bool("categories.fallback", true))
		return DefaultCategories(), nil
	}
	span.SetAttributes(attribute.Int("categories.count", len(list)))
	return list, nil
}
