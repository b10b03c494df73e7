// internal/engine/narrative/generator.go
package narrative

import (
	"fmt"
	"strings"

	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/engine/signals"
	"rm-copilot/internal/models"
)

// Generator renders the mandate-fit paragraph, RM actions and talking
// points from the classifier output. It is template-driven and byte-for-byte
// deterministic for identical inputs; no model call is ever made here.
type Generator struct {
	policy *policy.Policy
}

func New(p *policy.Policy) *Generator {
	return &Generator{policy: p}
}

// Narrative is the deterministic text portion of a DealSummary.
type Narrative struct {
	MandateFitSummary string
	RMActions         []string
	TalkingPoints     []string
}

var statusIntros = map[models.ReadinessStatus]string{
	models.ReadinessStrong:      "The deal presents a credible, well-supported financing case.",
	models.ReadinessConditional: "The deal is broadly viable but requires clarification on specific points before submission.",
	models.ReadinessWeak:        "The deal requires substantial strengthening before it can be advanced.",
}

// constraintActions holds the per-signal remediation suggestions. Fields
// without a bespoke suggestion fall back to a generic one.
var constraintActions = map[models.SignalField]string{
	models.FieldRevenueTrend: "Understand drivers of revenue decline and recovery outlook",
	models.FieldMarginTrend:  "Discuss margin recovery or cost optimisation plans",
	models.FieldLeverage:     "Assess deleveraging or capital support options",
	models.FieldCashflow:     "Clarify cash flow sustainability and liquidity buffers",
	models.FieldVolatility:   "Explore measures to stabilise earnings volatility",
	models.FieldCapex:        "Review the investment plan underpinning future growth",
	models.FieldTransparency: "Request audited financials and improved disclosure",
	models.FieldEligibility:  "Identify actions to improve eligibility drivers",
}

var strengthTalkingPoints = map[models.SignalField]string{
	models.FieldRevenueTrend: "Sustained revenue growth over the last three years",
	models.FieldMarginTrend:  "Improving margin trajectory",
	models.FieldLeverage:     "Conservative leverage position",
	models.FieldCashflow:     "Strong cash flow quality",
	models.FieldVolatility:   "Low earnings volatility",
	models.FieldCapex:        "Active investment in capacity and growth",
	models.FieldTransparency: "Strong financial transparency and reporting",
	models.FieldEligibility:  "Eligibility score supports mandate alignment",
}

// Generate renders all narrative text for one assessed deal.
func (g *Generator) Generate(input *models.DealInput, readiness models.DealReadiness, interp *signals.Interpretation) Narrative {
	return Narrative{
		MandateFitSummary: g.mandateFitSummary(input, readiness),
		RMActions:         g.rmActions(interp),
		TalkingPoints:     g.talkingPoints(input, interp),
	}
}

func (g *Generator) mandateFitSummary(input *models.DealInput, readiness models.DealReadiness) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The deal operates in the %s sector with an eligibility score of %.1f. Overall readiness is assessed as %s.",
		input.Sector, input.Eligibility.Score, readiness.Status)
	b.WriteString(" ")
	b.WriteString(statusIntros[readiness.Status])

	if g.policy.IsStrategicSector(input.Sector) {
		fmt.Fprintf(&b, " Operates in strategic sector: %s.", input.Sector)
	} else {
		b.WriteString(" Sector is not a core strategic priority.")
	}

	if len(input.Eligibility.Drivers) > 0 {
		fmt.Fprintf(&b, " Key eligibility drivers: %s.", strings.Join(input.Eligibility.Drivers, "; "))
	}

	return b.String()
}

// rmActions emits one suggestion per negative signal, in fixed field order.
// A clean deal gets a single submission-ready action.
func (g *Generator) rmActions(interp *signals.Interpretation) []string {
	actions := []string{}
	for _, fj := range interp.Judgments {
		if fj.Judgment != policy.JudgmentNegative {
			continue
		}
		if action, ok := constraintActions[fj.Field]; ok {
			actions = append(actions, action)
		} else {
			actions = append(actions, fmt.Sprintf("Address %s before submission", fj.Label))
		}
	}

	if len(actions) == 0 {
		actions = append(actions, "Proceed with credit submission preparation")
	}

	return actions
}

// talkingPoints emits one positive discussion point per strength, plus a
// sector point when the client sits in a strategic sector.
func (g *Generator) talkingPoints(input *models.DealInput, interp *signals.Interpretation) []string {
	points := []string{}
	for _, fj := range interp.Judgments {
		if fj.Judgment != policy.JudgmentPositive {
			continue
		}
		if point, ok := strengthTalkingPoints[fj.Field]; ok {
			points = append(points, point)
		} else {
			points = append(points, fmt.Sprintf("%s is a relative strength", fj.Label))
		}
	}

	if g.policy.IsStrategicSector(input.Sector) {
		points = append(points, fmt.Sprintf("Operates in strategic sector: %s", input.Sector))
	}

	return points
}
