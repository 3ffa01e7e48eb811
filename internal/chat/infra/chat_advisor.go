package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smartspend/expense-tracker-bff-go/internal/chat/domain"
	maindomain "github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/resilience"
)

var tracer = otel.Tracer("chat/infra")

// AdvisorClient is the HTTP client for the advisor service.
//
// Contract:
//
//	Request:  POST {baseURL}/v1/ask  {"question": "How much did I spend on food?"}
//	Response: {"answer": "...", "tokens_used": 412, "timestamp": "..."}
//
// The circuit breaker opens when the advisor is down so subsequent
// submits fail fast; retry with backoff covers transient errors.
type AdvisorClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewAdvisorClient creates the advisor client. baseURL is the advisor
// root, without /v1/ask.
func NewAdvisorClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AdvisorClient {
	return &AdvisorClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// Ask forwards a question and the caller's bearer token to the advisor.
func (c *AdvisorClient) Ask(ctx context.Context, token string, req *domain.AdvisorRequest) (*domain.AdvisorResponse, error) {
	ctx, span := tracer.Start(ctx, "AdvisorClient.Ask")
	defer span.End()
	span.SetAttributes(attribute.Int("question.length", len(req.Question)))

	var advisorResp domain.AdvisorResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("marshal advisor request: %w", err)
			}

			url := fmt.Sprintf("%s/v1/ask", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("create http request: %w", err)
			}
			httpReq.Header.Set("Content-Type", "application/json")
			if token != "" {
				httpReq.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return fmt.Errorf("http call to advisor: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("advisor /v1/ask returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&advisorResp)
		})

		if innerErr != nil {
			return nil, innerErr
		}
		return &advisorResp, nil
	})

	if err != nil {
		return nil, &maindomain.ErrExternalService{Service: "advisor", Err: err}
	}

	return result.(*domain.AdvisorResponse), nil
}
