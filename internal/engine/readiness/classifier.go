// internal/engine/readiness/classifier.go
package readiness

import (
	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/engine/signals"
	"rm-copilot/internal/models"
)

// Classifier combines the interpreted signals with the rating grade into a
// readiness verdict. The decision is a pure function of its inputs.
type Classifier struct {
	policy *policy.Policy
}

func New(p *policy.Policy) *Classifier {
	return &Classifier{policy: p}
}

// Classify applies the two independent readiness rules and takes the worse
// outcome. Ties break toward caution, a deliberate governance choice.
func (c *Classifier) Classify(interp *signals.Interpretation, grade string) models.DealReadiness {
	byCount := c.countStatus(interp.Negative)
	byBand := c.bandStatus(grade)

	return models.DealReadiness{
		Status:      byCount.Worse(byBand),
		Strengths:   interp.Fields(policy.JudgmentPositive),
		Constraints: interp.Fields(policy.JudgmentNegative),
	}
}

func (c *Classifier) countStatus(negatives int) models.ReadinessStatus {
	switch {
	case negatives >= c.policy.Readiness.WeakNegativeCount:
		return models.ReadinessWeak
	case negatives > 0:
		return models.ReadinessConditional
	default:
		return models.ReadinessStrong
	}
}

func (c *Classifier) bandStatus(grade string) models.ReadinessStatus {
	if c.policy.IsWeakGrade(grade) {
		return models.ReadinessWeak
	}
	return models.ReadinessStrong
}
