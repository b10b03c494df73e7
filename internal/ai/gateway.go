// internal/ai/gateway.go
package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"rm-copilot/internal/common/config"
	"rm-copilot/internal/common/errors"
	"rm-copilot/internal/common/logger"
	"rm-copilot/internal/common/metrics"
	"rm-copilot/internal/common/observability"
	"rm-copilot/internal/models"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// Disclaimer is attached to every AI response regardless of model output.
const Disclaimer = "Decision-support only. Verify independently. Not a credit decision or approval."

const explainSystemPrompt = "You are a corporate credit/risk assistant. " +
	"Do not invent facts not present in the deal data. " +
	"If information is missing, say what is missing."

const qaSystemPrompt = "You are a corporate banking RM copilot. " +
	"Give practical next steps and clarify missing info. " +
	"Be concise and actionable."

// ExplainResult is the structured explanation of an assessed deal.
type ExplainResult struct {
	ExecutiveSummary  string   `json:"executive_summary"`
	KeyRisksExplained []string `json:"key_risks_explained"`
	RMTalkingPoints   []string `json:"rm_talking_points"`
	Disclaimer        string   `json:"disclaimer"`
}

// AnswerResult is the response to an ad-hoc question.
type AnswerResult struct {
	Answer     string `json:"answer"`
	Disclaimer string `json:"disclaimer"`
}

// Gateway proxies a computed DealSummary to the hosted model. Both
// operations are stateless per call; every response carries the fixed
// disclaimer, and failures surface as errors, never canned answers.
type Gateway struct {
	provider Provider
	cfg      config.AIConfig
	obs      *observability.Observability
	logger   logger.Logger
}

func NewGateway(provider Provider, cfg config.AIConfig, obs *observability.Observability, log logger.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		cfg:      cfg,
		obs:      obs,
		logger:   log,
	}
}

// Configured reports whether a model provider is wired up.
func (g *Gateway) Configured() bool {
	return g.provider != nil
}

// Explain sends the summary as context and parses the model's structured
// response. Model output that cannot be coerced into the expected JSON
// shape fails the request rather than being substituted.
func (g *Gateway) Explain(ctx context.Context, summary *models.DealSummary) (*ExplainResult, error) {
	content, err := g.complete(ctx, "explain", explainSystemPrompt, explainUserPrompt(summary))
	if err != nil {
		return nil, err
	}

	var result ExplainResult
	if err := parseModelJSON(content, &result); err != nil {
		g.logger.Error("explain response unparsable", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.AIRequestsTotal.WithLabelValues("explain", "unparsable").Inc()
		return nil, errors.NewAIResponseUnparsableError(err)
	}

	result.Disclaimer = Disclaimer
	return &result, nil
}

// Answer relays a free-text question, optionally grounded in a previously
// computed summary, and returns the model's answer verbatim.
func (g *Gateway) Answer(ctx context.Context, summary *models.DealSummary, question string) (*AnswerResult, error) {
	content, err := g.complete(ctx, "qa", qaSystemPrompt, qaUserPrompt(summary, question))
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		Answer:     content,
		Disclaimer: Disclaimer,
	}, nil
}

func (g *Gateway) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	if g.provider == nil {
		return "", errors.NewAINotConfiguredError()
	}

	ctx, span := g.obs.StartSpan(ctx, "ai."+operation)
	defer span.End()

	timeout := config.GetDuration(g.cfg.Timeout)
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.provider.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    g.cfg.MaxTokens,
		Temperature:  g.cfg.Temperature,
	})
	elapsed := time.Since(start)

	metrics.AIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	g.obs.RecordAIDuration(ctx, elapsed, operation)

	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			g.logger.Warn("model call timed out", map[string]interface{}{
				"operation": operation,
				"timeout":   timeout.String(),
			})
			metrics.AIRequestsTotal.WithLabelValues(operation, "timeout").Inc()
			return "", errors.NewAITimeoutError(operation)
		}

		g.logger.Error("model call failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
		metrics.AIRequestsTotal.WithLabelValues(operation, "error").Inc()
		return "", errors.NewAIUpstreamError(err)
	}

	g.logger.Info("model call completed", map[string]interface{}{
		"operation":   operation,
		"model":       resp.Model,
		"tokens_used": resp.TokensUsed,
		"duration_ms": elapsed.Milliseconds(),
	})
	metrics.AIRequestsTotal.WithLabelValues(operation, "success").Inc()

	return resp.Content, nil
}

// explainUserPrompt asks for strict JSON so the response can be parsed into
// ExplainResult. Models still wrap JSON in prose or fences often enough
// that parsing goes through a repair pass first.
func explainUserPrompt(summary *models.DealSummary) string {
	data, _ := json.MarshalIndent(summary, "", "  ")
	return fmt.Sprintf(`Here is an assessed corporate deal:

%s

Explain this assessment for the relationship manager. Respond with ONLY a JSON object of this exact shape:
{
  "executive_summary": "two or three sentences on the overall picture",
  "key_risks_explained": ["one entry per constraint, explaining why it matters"],
  "rm_talking_points": ["concrete points the RM can raise with the client"]
}`, data)
}

func qaUserPrompt(summary *models.DealSummary, question string) string {
	if summary == nil {
		return question
	}
	data, _ := json.MarshalIndent(summary, "", "  ")
	return fmt.Sprintf("Deal context:\n\n%s\n\nQuestion: %s", data, question)
}

// parseModelJSON repairs common model JSON defects (code fences, trailing
// commas, single quotes) before unmarshalling.
func parseModelJSON(content string, target interface{}) error {
	repaired, err := jsonrepair.RepairJSON(content)
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}
	return json.Unmarshal([]byte(repaired), target)
}
