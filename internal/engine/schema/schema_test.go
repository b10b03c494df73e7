// internal/engine/schema/schema_test.go
package schema

import (
	"testing"

	"rm-copilot/internal/common/errors"
	"rm-copilot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() string {
	return `{
		"client_name": "Al Noor Industries",
		"group_name": "Al Noor Holding",
		"sector": "Manufacturing",
		"rating_anchor": {"system": "Internal", "grade": "BBB", "outlook": "Stable", "as_of": "2026-06-30"},
		"eligibility": {
			"score": 4.8,
			"drivers": "Local manufacturing, Export growth, In-country value",
			"breakdown": {"sector_fit": 2.0, "strategic_alignment": 2.8}
		},
		"financial_signals": {
			"revenue_trend_3y": "Improving",
			"margin_trend_3y": "Stable",
			"leverage_position": "Low",
			"cashflow_quality": "Strong",
			"earnings_volatility": "Moderate",
			"capex_growth_investment": "High",
			"financial_transparency": "Strong"
		},
		"notes": "Expansion financing for a second production line."
	}`
}

func TestParseAndValidateAcceptsFullPayload(t *testing.T) {
	input, err := ParseAndValidate([]byte(validPayload()))
	require.NoError(t, err)

	assert.Equal(t, "Al Noor Industries", input.ClientName)
	assert.Equal(t, models.SectorManufacturing, input.Sector)
	assert.Equal(t, "BBB", input.RatingAnchor.Grade)
	assert.Equal(t, 4.8, input.Eligibility.Score)
	assert.Equal(t, []string{"Local manufacturing", "Export growth", "In-country value"}, input.Eligibility.Drivers)
	assert.Equal(t, "Improving", input.FinancialSignals.RevenueTrend3Y)
}

func TestParseAndValidateAppliesNeutralDefaults(t *testing.T) {
	payload := `{
		"client_name": "Gulf Foods",
		"rating_anchor": {"grade": "BB+"},
		"eligibility": {"score": 3.0}
	}`

	input, err := ParseAndValidate([]byte(payload))
	require.NoError(t, err)

	assert.Equal(t, models.SectorOther, input.Sector)
	assert.Equal(t, "Stable", input.FinancialSignals.RevenueTrend3Y)
	assert.Equal(t, "Stable", input.FinancialSignals.MarginTrend3Y)
	assert.Equal(t, "Moderate", input.FinancialSignals.LeveragePosition)
	assert.Equal(t, "Adequate", input.FinancialSignals.CashflowQuality)
	assert.Equal(t, "Moderate", input.FinancialSignals.EarningsVolatility)
	assert.Equal(t, "Moderate", input.FinancialSignals.CapexGrowthInvestment)
	assert.Equal(t, "Adequate", input.FinancialSignals.FinancialTransparency)
	assert.Empty(t, input.Eligibility.Drivers)
	assert.Empty(t, input.Notes)
}

func TestParseAndValidateDriversAsArray(t *testing.T) {
	payload := `{
		"client_name": "Gulf Foods",
		"rating_anchor": {"grade": "BB+"},
		"eligibility": {"score": 3.0, "drivers": [" Food security ", "", "Localization"]}
	}`

	input, err := ParseAndValidate([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, []string{"Food security", "Localization"}, input.Eligibility.Drivers)
}

func TestParseAndValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{
			"empty client name",
			`{"client_name": "", "rating_anchor": {"grade": "BBB"}, "eligibility": {"score": 3.0}}`,
			"client_name",
		},
		{
			"whitespace client name",
			`{"client_name": "   ", "rating_anchor": {"grade": "BBB"}, "eligibility": {"score": 3.0}}`,
			"client_name",
		},
		{
			"empty rating grade",
			`{"client_name": "Gulf Foods", "rating_anchor": {"grade": ""}, "eligibility": {"score": 3.0}}`,
			"rating_anchor.grade",
		},
		{
			"score above range",
			`{"client_name": "Gulf Foods", "rating_anchor": {"grade": "BBB"}, "eligibility": {"score": 7}}`,
			"eligibility.score",
		},
		{
			"score below range",
			`{"client_name": "Gulf Foods", "rating_anchor": {"grade": "BBB"}, "eligibility": {"score": -0.1}}`,
			"eligibility.score",
		},
		{
			"unknown signal value",
			`{"client_name": "Gulf Foods", "rating_anchor": {"grade": "BBB"}, "eligibility": {"score": 3.0},
			  "financial_signals": {"leverage_position": "Sideways"}}`,
			"financial_signals.leverage_position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ParseAndValidate([]byte(tt.payload))
			require.Error(t, err)
			assert.Nil(t, input)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)

			found := false
			for _, fe := range stdErr.Fields {
				if fe.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a field error for %s, got %+v", tt.field, stdErr.Fields)
		})
	}
}

func TestParseAndValidateMalformedJSON(t *testing.T) {
	_, err := ParseAndValidate([]byte(`{"client_name": `))
	require.Error(t, err)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMalformedRequest, stdErr.Code)
}
