// internal/engine/signals/interpreter.go
package signals

import (
	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/models"
)

// FieldJudgment pairs one signal field with its policy verdict.
type FieldJudgment struct {
	Field    models.SignalField
	Label    string
	Judgment policy.Judgment
}

// Interpretation is the interpreter output: one judgment per signal in
// fixed field order, plus the counts the classifier consumes.
type Interpretation struct {
	Judgments []FieldJudgment
	Positive  int
	Neutral   int
	Negative  int
}

// Interpreter maps the seven categorical signals and the eligibility score
// to positive/neutral/negative judgments via the policy lookup tables.
type Interpreter struct {
	policy *policy.Policy
}

func New(p *policy.Policy) *Interpreter {
	return &Interpreter{policy: p}
}

// Interpret judges every signal of a validated input. A value outside its
// enumeration means the payload passed a stale schema and is a defect, not
// a user error; it surfaces as INVALID_SIGNAL_VALUE.
func (i *Interpreter) Interpret(input *models.DealInput) (*Interpretation, error) {
	out := &Interpretation{
		Judgments: make([]FieldJudgment, 0, len(models.SignalFieldOrder)),
	}

	for _, field := range models.SignalFieldOrder {
		var judgment policy.Judgment

		if field == models.FieldEligibility {
			judgment = i.policy.JudgeEligibility(input.Eligibility.Score)
		} else {
			value, err := input.FinancialSignals.Value(field)
			if err != nil {
				return nil, err
			}
			judgment, err = i.policy.JudgeSignal(field, value)
			if err != nil {
				return nil, err
			}
		}

		out.Judgments = append(out.Judgments, FieldJudgment{
			Field:    field,
			Label:    field.Label(),
			Judgment: judgment,
		})

		switch judgment {
		case policy.JudgmentPositive:
			out.Positive++
		case policy.JudgmentNegative:
			out.Negative++
		default:
			out.Neutral++
		}
	}

	return out, nil
}

// Fields returns the labels of signals carrying the given judgment, in
// fixed field order.
func (r *Interpretation) Fields(j policy.Judgment) []string {
	labels := []string{}
	for _, fj := range r.Judgments {
		if fj.Judgment == j {
			labels = append(labels, fj.Label)
		}
	}
	return labels
}
