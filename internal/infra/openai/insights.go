// Package openai generates the natural-language insight lines of the
// analytics payload. When no API key is configured, or the model is
// slow, saturated, or failing, it degrades to deterministic text
// derived from the aggregates, so the insights section is never empty
// and never blocks the analytics endpoint.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smartspend/expense-tracker-bff-go/internal/domain"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/observability"
	"github.com/smartspend/expense-tracker-bff-go/internal/infra/resilience"
)

var tracer = otel.Tracer("infra/openai")

const systemPrompt = "You are a personal finance assistant. Given spending aggregates, write 3 short, concrete observations about the user's spending. One sentence each, no preamble, no list markers."

// InsightGenerator produces insight lines, preferring the model and
// falling back to deterministic text.
type InsightGenerator struct {
	client   *goopenai.Client
	model    string
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewInsightGenerator creates the generator. An empty apiKey disables
// the model entirely; every call then takes the deterministic path.
func NewInsightGenerator(apiKey, model string, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *InsightGenerator {
	var client *goopenai.Client
	if apiKey != "" {
		client = goopenai.NewClient(apiKey)
	}
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &InsightGenerator{
		client:   client,
		model:    model,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// GenerateInsights returns up to three insight lines for the subset's
// aggregates.
func (g *InsightGenerator) GenerateInsights(ctx context.Context, summary domain.InsightsSummary, trend []domain.TrendEntry, categories domain.CategoryAnalysis) ([]string, error) {
	ctx, span := tracer.Start(ctx, "InsightGenerator.GenerateInsights")
	defer span.End()

	if g.client == nil {
		g.metrics.IncrInsightGeneration("deterministic")
		span.SetAttributes(attribute.String("insights.source", "deterministic"))
		return deterministicInsights(summary, trend, categories), nil
	}

	// The bulkhead caps concurrent model calls. When saturated we
	// degrade instead of queueing behind other users.
	if !g.bulkhead.TryAcquire() {
		g.logger.Warn("insight generation bulkhead saturated, using deterministic text")
		g.metrics.IncrInsightGeneration("deterministic")
		span.SetAttributes(attribute.String("insights.source", "deterministic"))
		return deterministicInsights(summary, trend, categories), nil
	}
	defer g.bulkhead.Release()

	lines, err := g.callModel(ctx, summary, trend, categories)
	if err != nil {
		g.logger.Error("insight model call failed, using deterministic text", zap.Error(err))
		g.metrics.IncrExternalError("openai")
		g.metrics.IncrInsightGeneration("deterministic")
		span.SetAttributes(attribute.String("insights.source", "deterministic"))
		return deterministicInsights(summary, trend, categories), nil
	}

	g.metrics.IncrInsightGeneration("model")
	span.SetAttributes(attribute.String("insights.source", "model"))
	return lines, nil
}

func (g *InsightGenerator) callModel(ctx context.Context, summary domain.InsightsSummary, trend []domain.TrendEntry, categories domain.CategoryAnalysis) ([]string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total spent: %.2f across %d expenses (average %.2f).\n", summary.Total, summary.Count, summary.Average)
	if categories.TopCategory != "" {
		fmt.Fprintf(&sb, "Top category: %s (%.2f) of %d categories.\n", categories.TopCategory, categories.Breakdown[categories.TopCategory], categories.CategoryCount)
	}
	for _, t := range trend {
		fmt.Fprintf(&sb, "%s: %.2f over %d expenses", t.Month, t.Total, t.Count)
		if t.ChangePercent != nil {
			fmt.Fprintf(&sb, " (%+.1f%%)", *t.ChangePercent)
		}
		sb.WriteString("\n")
	}

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: sb.String()},
		},
		MaxTokens:   200,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	g.metrics.RecordTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	lines := splitInsightLines(resp.Choices[0].Message.Content)
	if len(lines) == 0 {
		return nil, fmt.Errorf("model returned no usable lines")
	}
	return lines, nil
}

// splitInsightLines normalizes model output into clean lines, dropping
// list markers the prompt asked it not to produce anyway.
func splitInsightLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line != "" {
			out = append(out, line)
		}
		if len(out) == 3 {
			break
		}
	}
	return out
}

// deterministicInsights derives readable lines straight from the
// aggregates. Same shape as the model output, always available.
func deterministicInsights(summary domain.InsightsSummary, trend []domain.TrendEntry, categories domain.CategoryAnalysis) []string {
	if summary.Count == 0 {
		return []string{"No expenses recorded yet. Add your first expense to see insights."}
	}

	lines := []string{
		fmt.Sprintf("You spent %.2f across %d expenses, averaging %.2f per expense.", summary.Total, summary.Count, summary.Average),
	}

	if categories.TopCategory != "" {
		share := 0.0
		if summary.Total > 0 {
			share = categories.Breakdown[categories.TopCategory] / summary.Total * 100
		}
		lines = append(lines, fmt.Sprintf("%s is your biggest category at %.2f (%.0f%% of total spend).", categories.TopCategory, categories.Breakdown[categories.TopCategory], share))
	}

	if len(trend) >= 2 {
		last := trend[len(trend)-1]
		switch {
		case last.ChangePercent == nil:
		case *last.ChangePercent == 0:
			lines = append(lines, fmt.Sprintf("Spending in %s held steady compared to the month before.", last.Month))
		case *last.ChangePercent > 0:
			lines = append(lines, fmt.Sprintf("Spending in %s rose %.1f%% compared to the month before.", last.Month, *last.ChangePercent))
		default:
			lines = append(lines, fmt.Sprintf("Spending in %s fell %.1f%% compared to the month before.", last.Month, abs(*last.ChangePercent)))
		}
	}

	if len(lines) < 3 && len(categories.Breakdown) > 1 {
		names := make([]string, 0, len(categories.Breakdown))
		for name := range categories.Breakdown {
			names = append(names, name)
		}
		sort.Strings(names)
		lines = append(lines, fmt.Sprintf("Your spending spans %d categories: %s.", len(names), strings.Join(names, ", ")))
	}

	return lines
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
