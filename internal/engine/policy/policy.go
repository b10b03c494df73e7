// internal/engine/policy/policy.go
package policy

import (
	"fmt"
	"sort"

	"rm-copilot/internal/common/errors"
	"rm-copilot/internal/models"

	"github.com/spf13/viper"
)

// Judgment is the verdict the interpreter assigns to a single signal value.
type Judgment string

const (
	JudgmentPositive Judgment = "positive"
	JudgmentNeutral  Judgment = "neutral"
	JudgmentNegative Judgment = "negative"
)

// ==========================
// POLICY SHAPE
// ==========================
// Policy holds the bank-owned decision tables: the per-signal judgment
// lookup, the eligibility score bands, the weak rating band, and the
// strategic sector list. These are governance data, reviewed by policy
// owners, and are loaded from a YAML file rather than compiled in.
type Policy struct {
	Eligibility EligibilityBands           `mapstructure:"eligibility"`
	Readiness   ReadinessRules             `mapstructure:"readiness"`
	Rating      RatingRules                `mapstructure:"rating"`
	Signals     map[string]SignalJudgments `mapstructure:"signals"`
	Sectors     SectorRules                `mapstructure:"sectors"`
}

// EligibilityBands fixes the score cut-points. PositiveMin itself is
// positive; anything below NegativeBelow is negative.
type EligibilityBands struct {
	PositiveMin   float64 `mapstructure:"positive_min"`
	NegativeBelow float64 `mapstructure:"negative_below"`
}

type ReadinessRules struct {
	WeakNegativeCount int `mapstructure:"weak_negative_count"`
}

// RatingRules lists the grades the bank treats as the weak band. Matching
// is exact against the normalized grade string.
type RatingRules struct {
	WeakGrades []string `mapstructure:"weak_grades"`
}

// SignalJudgments maps enumeration values to judgments for one signal field.
type SignalJudgments struct {
	Positive []string `mapstructure:"positive"`
	Neutral  []string `mapstructure:"neutral"`
	Negative []string `mapstructure:"negative"`
}

type SectorRules struct {
	Strategic []string `mapstructure:"strategic"`
}

// ==========================
// LOADING
// ==========================

// Load reads the policy file and validates it against the signal model.
func Load(path string) (*Policy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewPolicyLoadFailedError(fmt.Errorf("failed to read policy file %s: %w", path, err))
	}

	var p Policy
	if err := v.Unmarshal(&p); err != nil {
		return nil, errors.NewPolicyLoadFailedError(fmt.Errorf("failed to unmarshal policy: %w", err))
	}

	if err := p.Validate(); err != nil {
		return nil, errors.NewPolicyLoadFailedError(err)
	}

	return &p, nil
}

// Default returns the shipped policy, identical in content to
// configs/policy.yaml. Tests and the policy linter use it as the baseline.
func Default() *Policy {
	return &Policy{
		Eligibility: EligibilityBands{
			PositiveMin:   4.5,
			NegativeBelow: 2.5,
		},
		Readiness: ReadinessRules{
			WeakNegativeCount: 3,
		},
		Rating: RatingRules{
			WeakGrades: []string{"B+", "B", "B-", "CCC+", "CCC", "CCC-", "CC", "C", "D"},
		},
		Signals: map[string]SignalJudgments{
			string(models.FieldRevenueTrend): {
				Positive: []string{"Improving"},
				Neutral:  []string{"Stable"},
				Negative: []string{"Declining"},
			},
			string(models.FieldMarginTrend): {
				Positive: []string{"Improving"},
				Neutral:  []string{"Stable"},
				Negative: []string{"Under Pressure"},
			},
			string(models.FieldLeverage): {
				Positive: []string{"Low"},
				Neutral:  []string{"Moderate"},
				Negative: []string{"Elevated"},
			},
			string(models.FieldCashflow): {
				Positive: []string{"Strong"},
				Neutral:  []string{"Adequate"},
				Negative: []string{"Weak"},
			},
			string(models.FieldVolatility): {
				Positive: []string{"Low"},
				Neutral:  []string{"Moderate"},
				Negative: []string{"High"},
			},
			string(models.FieldCapex): {
				Positive: []string{"High"},
				Neutral:  []string{"Moderate"},
				Negative: []string{"Low"},
			},
			string(models.FieldTransparency): {
				Positive: []string{"Strong"},
				Neutral:  []string{"Adequate"},
				Negative: []string{"Weak"},
			},
		},
		Sectors: SectorRules{
			Strategic: []string{
				string(models.SectorManufacturing),
				string(models.SectorAdvancedTech),
				string(models.SectorHealthcare),
				string(models.SectorFoodSecurity),
				string(models.SectorRenewables),
			},
		},
	}
}

// ==========================
// LOOKUPS
// ==========================

// JudgeSignal returns the judgment for one categorical signal value.
// A value outside the policy table indicates a schema/policy mismatch and
// surfaces as INVALID_SIGNAL_VALUE.
func (p *Policy) JudgeSignal(field models.SignalField, value string) (Judgment, error) {
	table, ok := p.Signals[string(field)]
	if !ok {
		return "", errors.NewInvalidSignalValueError(string(field), value)
	}

	for _, v := range table.Positive {
		if v == value {
			return JudgmentPositive, nil
		}
	}
	for _, v := range table.Neutral {
		if v == value {
			return JudgmentNeutral, nil
		}
	}
	for _, v := range table.Negative {
		if v == value {
			return JudgmentNegative, nil
		}
	}

	return "", errors.NewInvalidSignalValueError(string(field), value)
}

// JudgeEligibility bands the pre-computed eligibility score. The score at
// PositiveMin is positive.
func (p *Policy) JudgeEligibility(score float64) Judgment {
	switch {
	case score >= p.Eligibility.PositiveMin:
		return JudgmentPositive
	case score < p.Eligibility.NegativeBelow:
		return JudgmentNegative
	default:
		return JudgmentNeutral
	}
}

// IsWeakGrade reports whether the rating grade falls in the weak band.
func (p *Policy) IsWeakGrade(grade string) bool {
	for _, g := range p.Rating.WeakGrades {
		if g == grade {
			return true
		}
	}
	return false
}

// IsStrategicSector reports whether the sector is a bank priority.
func (p *Policy) IsStrategicSector(sector models.Sector) bool {
	for _, s := range p.Sectors.Strategic {
		if s == string(sector) {
			return true
		}
	}
	return false
}

// ==========================
// VALIDATION
// ==========================

// Validate checks the policy tables against the signal model: every
// categorical field must have a table, every enumeration value must map to
// exactly one judgment, and the numeric cut-points must be ordered.
func (p *Policy) Validate() error {
	if p.Eligibility.PositiveMin <= p.Eligibility.NegativeBelow {
		return fmt.Errorf("eligibility.positive_min (%.2f) must exceed eligibility.negative_below (%.2f)",
			p.Eligibility.PositiveMin, p.Eligibility.NegativeBelow)
	}
	if p.Eligibility.NegativeBelow < 0 || p.Eligibility.PositiveMin > 6 {
		return fmt.Errorf("eligibility bands must lie within the 0-6 score range")
	}

	if p.Readiness.WeakNegativeCount < 1 {
		return fmt.Errorf("readiness.weak_negative_count must be at least 1")
	}

	if len(p.Rating.WeakGrades) == 0 {
		return fmt.Errorf("rating.weak_grades must not be empty")
	}

	for _, field := range models.SignalFieldOrder {
		if field == models.FieldEligibility {
			continue
		}

		table, ok := p.Signals[string(field)]
		if !ok {
			return fmt.Errorf("signals.%s: table missing", field)
		}

		seen := map[string]string{}
		record := func(values []string, judgment string) error {
			for _, v := range values {
				if prev, dup := seen[v]; dup {
					return fmt.Errorf("signals.%s: value %q mapped to both %s and %s", field, v, prev, judgment)
				}
				seen[v] = judgment
			}
			return nil
		}
		if err := record(table.Positive, string(JudgmentPositive)); err != nil {
			return err
		}
		if err := record(table.Neutral, string(JudgmentNeutral)); err != nil {
			return err
		}
		if err := record(table.Negative, string(JudgmentNegative)); err != nil {
			return err
		}

		members := models.SignalMembers(field)
		for _, m := range members {
			if _, ok := seen[m]; !ok {
				return fmt.Errorf("signals.%s: enumeration value %q has no judgment", field, m)
			}
		}
		if len(seen) != len(members) {
			extras := make([]string, 0, len(seen))
			for v := range seen {
				known := false
				for _, m := range members {
					if m == v {
						known = true
						break
					}
				}
				if !known {
					extras = append(extras, v)
				}
			}
			sort.Strings(extras)
			return fmt.Errorf("signals.%s: unknown values in table: %v", field, extras)
		}
	}

	return nil
}
