// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rm-copilot/internal/ai"
	"rm-copilot/internal/common/config"
	"rm-copilot/internal/common/database"
	"rm-copilot/internal/common/logger"
	"rm-copilot/internal/common/observability"
	"rm-copilot/internal/engine/assess"
	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/models"
	"rm-copilot/internal/server"
)

// startStack brings up the full service against a mocked model upstream and
// an in-process Redis, and returns its base URL.
func startStack(t *testing.T) string {
	t.Helper()

	// The model upstream answers every explain/qa call with valid JSON.
	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-e2e",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{
					"role":    "assistant",
					"content": `{"executive_summary": "A conditional deal with manageable risks.", "key_risks_explained": ["Leverage is elevated."], "rm_talking_points": ["Revenue momentum is positive."]}`,
				}},
			},
			"usage": map[string]int{"total_tokens": 25},
		})
	}))
	t.Cleanup(modelServer.Close)

	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.App.Name = "rm-copilot-e2e"
	cfg.Server.Address = ":0"
	cfg.Server.MaxBodyBytes = 1 << 20
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.AI = config.AIConfig{
		Provider:  "openai",
		APIKey:    "e2e-key",
		Model:     "gpt-4o-mini",
		BaseURL:   modelServer.URL + "/v1",
		Timeout:   5000,
		MaxTokens: 500,
	}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerMinute = 1000
	cfg.RateLimit.Burst = 1000
	cfg.Database.Redis.Address = mr.Addr()

	pol, err := policy.Load("../../configs/policy.yaml")
	require.NoError(t, err)

	obs := observability.New(cfg.App.Name, "")
	t.Cleanup(obs.Shutdown)
	log := logger.NewTestLogger(t)

	redis, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	t.Cleanup(func() { redis.Close() })

	provider, err := ai.NewOpenAIProvider(cfg.AI)
	require.NoError(t, err)

	svc := assess.NewService(pol, obs, log)
	gateway := ai.NewGateway(provider, cfg.AI, obs, log)

	apiServer := httptest.NewServer(server.New(cfg, svc, gateway, redis, log).Handler())
	t.Cleanup(apiServer.Close)

	return apiServer.URL
}

func postJSON(t *testing.T, url string, body []byte) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestFullAssessmentFlow(t *testing.T) {
	baseURL := startStack(t)

	// 1. Assess a deal.
	assessBody := []byte(`{
		"client_name": "Al Noor Industries",
		"sector": "Manufacturing",
		"rating_anchor": {"system": "Internal", "grade": "BBB"},
		"eligibility": {"score": 4.8, "drivers": "Local manufacturing, Export growth"},
		"financial_signals": {
			"revenue_trend_3y": "Improving",
			"leverage_position": "Elevated"
		}
	}`)

	resp, data := postJSON(t, baseURL+"/assess", assessBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var summary models.DealSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, models.ReadinessConditional, summary.DealReadiness.Status)
	assert.Equal(t, []string{"Leverage position"}, summary.DealReadiness.Constraints)
	assert.Contains(t, summary.MandateFitSummary, "Operates in strategic sector: Manufacturing.")

	// 2. Explain the computed summary.
	explainBody, err := json.Marshal(map[string]interface{}{"deal_summary": summary})
	require.NoError(t, err)

	resp, data = postJSON(t, baseURL+"/ai/explain", explainBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var explain ai.ExplainResult
	require.NoError(t, json.Unmarshal(data, &explain))
	assert.Equal(t, "A conditional deal with manageable risks.", explain.ExecutiveSummary)
	assert.Equal(t, ai.Disclaimer, explain.Disclaimer)

	// 3. Ask a follow-up question with the summary as context.
	qaBody, err := json.Marshal(map[string]interface{}{
		"deal_summary": summary,
		"question":     "What should I clarify with the client?",
	})
	require.NoError(t, err)

	resp, data = postJSON(t, baseURL+"/ai/qa", qaBody)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var answer ai.AnswerResult
	require.NoError(t, json.Unmarshal(data, &answer))
	assert.NotEmpty(t, answer.Answer)
	assert.Equal(t, ai.Disclaimer, answer.Disclaimer)
}

func TestFullFlowRejectsInvalidDeal(t *testing.T) {
	baseURL := startStack(t)

	resp, data := postJSON(t, baseURL+"/assess",
		[]byte(`{"client_name": "", "rating_anchor": {"grade": "BBB"}, "eligibility": {"score": 7}}`))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "VALIDATION_FAILED")
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	baseURL := startStack(t)

	resp, err := http.Get(baseURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, true, health["ai_configured"])
	assert.Equal(t, "ok", health["redis"])

	metricsResp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}
