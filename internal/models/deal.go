// internal/models/deal.go
package models

import "fmt"

// Sector is the bank's strategic sector classification for a client.
type Sector string

const (
	SectorManufacturing Sector = "Manufacturing"
	SectorAdvancedTech  Sector = "Advanced Technology"
	SectorHealthcare    Sector = "Healthcare"
	SectorFoodSecurity  Sector = "Food Security"
	SectorRenewables    Sector = "Renewables"
	SectorOther         Sector = "Other"
)

// Sectors lists every valid sector value.
var Sectors = []Sector{
	SectorManufacturing,
	SectorAdvancedTech,
	SectorHealthcare,
	SectorFoodSecurity,
	SectorRenewables,
	SectorOther,
}

// ReadinessStatus is the principal output classification of an assessment.
type ReadinessStatus string

const (
	ReadinessStrong      ReadinessStatus = "Strong"
	ReadinessConditional ReadinessStatus = "Conditional"
	ReadinessWeak        ReadinessStatus = "Weak"
)

// rank orders statuses from best to worst for the worse-wins tie-break.
func (s ReadinessStatus) rank() int {
	switch s {
	case ReadinessStrong:
		return 0
	case ReadinessConditional:
		return 1
	default:
		return 2
	}
}

// Worse returns the lower (more cautious) of two statuses.
func (s ReadinessStatus) Worse(other ReadinessStatus) ReadinessStatus {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// SignalField identifies one of the eight inputs to the readiness decision:
// the seven categorical financial signals plus the eligibility score.
type SignalField string

const (
	FieldRevenueTrend SignalField = "revenue_trend_3y"
	FieldMarginTrend  SignalField = "margin_trend_3y"
	FieldLeverage     SignalField = "leverage_position"
	FieldCashflow     SignalField = "cashflow_quality"
	FieldVolatility   SignalField = "earnings_volatility"
	FieldCapex        SignalField = "capex_growth_investment"
	FieldTransparency SignalField = "financial_transparency"
	FieldEligibility  SignalField = "eligibility_score"
)

// SignalFieldOrder is the fixed presentation order for strengths and
// constraints. Eligibility always comes last.
var SignalFieldOrder = []SignalField{
	FieldRevenueTrend,
	FieldMarginTrend,
	FieldLeverage,
	FieldCashflow,
	FieldVolatility,
	FieldCapex,
	FieldTransparency,
	FieldEligibility,
}

var signalLabels = map[SignalField]string{
	FieldRevenueTrend: "Revenue trend (3Y)",
	FieldMarginTrend:  "Margin trend (3Y)",
	FieldLeverage:     "Leverage position",
	FieldCashflow:     "Cash flow quality",
	FieldVolatility:   "Earnings volatility",
	FieldCapex:        "Capex & growth investment",
	FieldTransparency: "Financial transparency",
	FieldEligibility:  "Eligibility score",
}

// Label returns the human-readable name used in strengths, constraints and
// narrative text.
func (f SignalField) Label() string {
	if l, ok := signalLabels[f]; ok {
		return l
	}
	return string(f)
}

// signalMembers is the closed enumeration for each categorical signal field.
var signalMembers = map[SignalField][]string{
	FieldRevenueTrend: {"Improving", "Stable", "Declining"},
	FieldMarginTrend:  {"Improving", "Stable", "Under Pressure"},
	FieldLeverage:     {"Low", "Moderate", "Elevated"},
	FieldCashflow:     {"Strong", "Adequate", "Weak"},
	FieldVolatility:   {"Low", "Moderate", "High"},
	FieldCapex:        {"High", "Moderate", "Low"},
	FieldTransparency: {"Strong", "Adequate", "Weak"},
}

// SignalMembers returns the allowed values for a categorical signal field.
func SignalMembers(f SignalField) []string {
	return signalMembers[f]
}

// signalNeutral is the default applied when a signal is left unspecified.
var signalNeutral = map[SignalField]string{
	FieldRevenueTrend: "Stable",
	FieldMarginTrend:  "Stable",
	FieldLeverage:     "Moderate",
	FieldCashflow:     "Adequate",
	FieldVolatility:   "Moderate",
	FieldCapex:        "Moderate",
	FieldTransparency: "Adequate",
}

// NeutralValue returns the neutral default for a categorical signal field.
func NeutralValue(f SignalField) string {
	return signalNeutral[f]
}

// RatingAnchor is an externally sourced rating snapshot attached to the deal.
// It is echoed through the assessment unchanged.
type RatingAnchor struct {
	System  string `json:"system"`
	Grade   string `json:"grade"`
	Outlook string `json:"outlook,omitempty"`
	AsOf    string `json:"as_of,omitempty"`
}

// Eligibility is the pre-computed 0-6 mandate-alignment figure. The engine
// reads it and never recomputes it.
type Eligibility struct {
	Score     float64            `json:"score"`
	Drivers   []string           `json:"drivers"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// FinancialSignals holds the seven RM-judgment categorical inputs.
type FinancialSignals struct {
	RevenueTrend3Y        string `json:"revenue_trend_3y"`
	MarginTrend3Y         string `json:"margin_trend_3y"`
	LeveragePosition      string `json:"leverage_position"`
	CashflowQuality       string `json:"cashflow_quality"`
	EarningsVolatility    string `json:"earnings_volatility"`
	CapexGrowthInvestment string `json:"capex_growth_investment"`
	FinancialTransparency string `json:"financial_transparency"`
}

// Value returns the raw value for a categorical signal field.
func (s FinancialSignals) Value(f SignalField) (string, error) {
	switch f {
	case FieldRevenueTrend:
		return s.RevenueTrend3Y, nil
	case FieldMarginTrend:
		return s.MarginTrend3Y, nil
	case FieldLeverage:
		return s.LeveragePosition, nil
	case FieldCashflow:
		return s.CashflowQuality, nil
	case FieldVolatility:
		return s.EarningsVolatility, nil
	case FieldCapex:
		return s.CapexGrowthInvestment, nil
	case FieldTransparency:
		return s.FinancialTransparency, nil
	default:
		return "", fmt.Errorf("unknown signal field %q", f)
	}
}

// SetValue sets the value for a categorical signal field.
func (s *FinancialSignals) SetValue(f SignalField, v string) {
	switch f {
	case FieldRevenueTrend:
		s.RevenueTrend3Y = v
	case FieldMarginTrend:
		s.MarginTrend3Y = v
	case FieldLeverage:
		s.LeveragePosition = v
	case FieldCashflow:
		s.CashflowQuality = v
	case FieldVolatility:
		s.EarningsVolatility = v
	case FieldCapex:
		s.CapexGrowthInvestment = v
	case FieldTransparency:
		s.FinancialTransparency = v
	}
}

// DealInput is the validated, normalized assessment request.
type DealInput struct {
	ClientName       string           `json:"client_name"`
	GroupName        string           `json:"group_name,omitempty"`
	Sector           Sector           `json:"sector"`
	RatingAnchor     RatingAnchor     `json:"rating_anchor"`
	Eligibility      Eligibility      `json:"eligibility"`
	FinancialSignals FinancialSignals `json:"financial_signals"`
	Notes            string           `json:"notes,omitempty"`
}

// DealReadiness is the classifier verdict: the status plus the signal labels
// driving it, in fixed field order.
type DealReadiness struct {
	Status      ReadinessStatus `json:"status"`
	Strengths   []string        `json:"strengths"`
	Constraints []string        `json:"constraints"`
}

// DealSummary is the sole derived entity. Created fresh on every assessment,
// never mutated, never persisted.
type DealSummary struct {
	ClientName        string           `json:"client_name"`
	GroupName         string           `json:"group_name,omitempty"`
	Sector            Sector           `json:"sector"`
	RatingAnchor      RatingAnchor     `json:"rating_anchor"`
	Eligibility       Eligibility      `json:"eligibility"`
	FinancialSignals  FinancialSignals `json:"financial_signals"`
	DealReadiness     DealReadiness    `json:"deal_readiness"`
	MandateFitSummary string           `json:"mandate_fit_summary"`
	RMActions         []string         `json:"rm_actions"`
	TalkingPoints     []string         `json:"talking_points"`
	CreatedAt         string           `json:"created_at,omitempty"`
	Notes             string           `json:"notes,omitempty"`
}
