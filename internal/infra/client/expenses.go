// Package client holds the HTTP adapters for the upstream expense and
// category services. Every call runs inside the shared circuit breaker
// and retries with backoff; the caller's bearer token is forwarded
// verbatim on credentialed endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/resilience"
)

var tracer = otel.Tracer("client")

// ExpensesClient talks to the expense service.
type ExpensesClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewExpensesClient creates a new ExpensesClient.
func NewExpensesClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *ExpensesClient {
	return &ExpensesClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// ListExpenses fetches the caller's full expense list, newest first.
func (c *ExpensesClient) ListExpenses(ctx context.Context, token string) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpensesClient.ListExpenses")
	defer span.End()

	var expenses []domain.Expense

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/expenses", c.baseURL)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			setAuth(req, token)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if err := checkStatus(resp, "expense", ""); err != nil {
				return err
			}
			return json.NewDecoder(resp.Body).Decode(&expenses)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return expenses, nil
	})

	if err != nil {
		return nil, wrapClientErr(err)
	}

	list := result.([]domain.Expense)
	span.SetAttributes(attribute.Int("expenses.count", len(list)))
	return list, nil
}

// CreateExpense records a new expense upstream and returns the stored entity.
func (c *ExpensesClient) CreateExpense(ctx context.Context, token string, payload *domain.ExpenseCreate) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpensesClient.CreateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.category", payload.Category))

	created, err := c.doMutation(ctx, token, http.MethodPost, fmt.Sprintf("%s/v1/expenses", c.baseURL), payload, "")
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateExpense applies a partial update and returns the stored entity.
func (c *ExpensesClient) UpdateExpense(ctx context.Context, token, id string, payload *domain.ExpenseUpdate) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "ExpensesClient.UpdateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	return c.doMutation(ctx, token, http.MethodPut, fmt.Sprintf("%s/v1/expenses/%s", c.baseURL, id), payload, id)
}

// DeleteExpense removes an expense upstream.
func (c *ExpensesClient) DeleteExpense(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "ExpensesClient.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", id))

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/expenses/%s", c.baseURL, id)
			req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
			if err != nil {
				return err
			}
			setAuth(req, token)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			return checkStatus(resp, "expense", id)
		})
		return nil, innerErr
	})
	if err != nil {
		return wrapClientErr(err)
	}
	return nil
}

func (c *ExpensesClient) doMutation(ctx context.Context, token, method, url string, payload any, id string) (*domain.Expense, error) {
	var stored domain.Expense

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(payload)
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			setAuth(req, token)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if err := checkStatus(resp, "expense", id); err != nil {
				return err
			}
			return json.NewDecoder(resp.Body).Decode(&stored)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &stored, nil
	})

	if err != nil {
		return nil, wrapClientErr(err)
	}
	return result.(*domain.Expense), nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func checkStatus(resp *http.Response, resource, id string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &domain.ErrNotFound{Resource: resource, ID: id}
	case resp.StatusCode == http.StatusUnauthorized:
		return &domain.ErrUnauthorized{Message: "upstream rejected credentials"}
	case resp.StatusCode >= 300:
		return fmt.Errorf("expense API returned status %d", resp.StatusCode)
	}
	return nil
}

func wrapClientErr(err error) error {
	// Typed errors pass through untouched so the handler layer can map
	// them; everything else reads as an upstream failure.
	switch err.(type) {
	case *domain.ErrNotFound, *domain.ErrUnauthorized:
		return err
	}
	return &domain.ErrExternalService{Service: "expenses", Err: err}
}
