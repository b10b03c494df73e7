// internal/engine/narrative/generator_test.go
package narrative

import (
	"testing"

	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/engine/readiness"
	"rm-copilot/internal/engine/signals"
	"rm-copilot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInput(sector models.Sector, score float64, overrides map[models.SignalField]string) *models.DealInput {
	input := &models.DealInput{
		ClientName:   "Al Noor Industries",
		Sector:       sector,
		RatingAnchor: models.RatingAnchor{Grade: "BBB"},
		Eligibility: models.Eligibility{
			Score:   score,
			Drivers: []string{"Local manufacturing", "Export growth"},
		},
	}
	for _, field := range models.SignalFieldOrder {
		if field == models.FieldEligibility {
			continue
		}
		value := models.NeutralValue(field)
		if v, ok := overrides[field]; ok {
			value = v
		}
		input.FinancialSignals.SetValue(field, value)
	}
	return input
}

func generate(t *testing.T, input *models.DealInput) (Narrative, models.DealReadiness) {
	t.Helper()

	p := policy.Default()
	interp, err := signals.New(p).Interpret(input)
	require.NoError(t, err)

	verdict := readiness.New(p).Classify(interp, input.RatingAnchor.Grade)
	return New(p).Generate(input, verdict, interp), verdict
}

func TestMandateFitSummaryStrategicSector(t *testing.T) {
	input := buildInput(models.SectorManufacturing, 4.8, map[models.SignalField]string{
		models.FieldRevenueTrend: "Improving",
	})

	narrative, verdict := generate(t, input)

	assert.Equal(t, models.ReadinessStrong, verdict.Status)
	assert.Contains(t, narrative.MandateFitSummary,
		"The deal operates in the Manufacturing sector with an eligibility score of 4.8.")
	assert.Contains(t, narrative.MandateFitSummary, "Overall readiness is assessed as Strong.")
	assert.Contains(t, narrative.MandateFitSummary, "Operates in strategic sector: Manufacturing.")
	assert.Contains(t, narrative.MandateFitSummary, "Key eligibility drivers: Local manufacturing; Export growth.")
}

func TestMandateFitSummaryNonStrategicSector(t *testing.T) {
	input := buildInput(models.SectorOther, 3.0, nil)
	input.Eligibility.Drivers = nil

	narrative, _ := generate(t, input)

	assert.Contains(t, narrative.MandateFitSummary, "Sector is not a core strategic priority.")
	assert.NotContains(t, narrative.MandateFitSummary, "Key eligibility drivers")
}

func TestRMActionsOnePerConstraint(t *testing.T) {
	input := buildInput(models.SectorHealthcare, 2.0, map[models.SignalField]string{
		models.FieldMarginTrend: "Under Pressure",
		models.FieldLeverage:    "Elevated",
		models.FieldCashflow:    "Weak",
	})

	narrative, verdict := generate(t, input)

	assert.Equal(t, models.ReadinessWeak, verdict.Status)
	assert.Equal(t, []string{
		"Discuss margin recovery or cost optimisation plans",
		"Assess deleveraging or capital support options",
		"Clarify cash flow sustainability and liquidity buffers",
		"Identify actions to improve eligibility drivers",
	}, narrative.RMActions)
}

func TestRMActionsCleanDeal(t *testing.T) {
	input := buildInput(models.SectorRenewables, 5.0, map[models.SignalField]string{
		models.FieldRevenueTrend: "Improving",
	})

	narrative, _ := generate(t, input)

	assert.Equal(t, []string{"Proceed with credit submission preparation"}, narrative.RMActions)
}

func TestTalkingPointsOnePerStrengthPlusSector(t *testing.T) {
	input := buildInput(models.SectorRenewables, 5.0, map[models.SignalField]string{
		models.FieldRevenueTrend: "Improving",
		models.FieldCashflow:     "Strong",
	})

	narrative, _ := generate(t, input)

	assert.Equal(t, []string{
		"Sustained revenue growth over the last three years",
		"Strong cash flow quality",
		"Eligibility score supports mandate alignment",
		"Operates in strategic sector: Renewables",
	}, narrative.TalkingPoints)
}

func TestGenerateIsDeterministic(t *testing.T) {
	input := buildInput(models.SectorManufacturing, 4.5, map[models.SignalField]string{
		models.FieldLeverage: "Elevated",
		models.FieldCapex:    "High",
	})

	first, _ := generate(t, input)
	second, _ := generate(t, input)

	assert.Equal(t, first, second)
}
