// internal/engine/schema/schema.go
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"rm-copilot/internal/common/errors"
	"rm-copilot/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// ==========================
// WIRE SCHEMA
// ==========================
// dealInputSchema is the structural contract for the assessment payload.
// Semantic rules that JSON Schema cannot express cleanly (whitespace-only
// names, driver normalization, neutral defaults) are applied after this
// structural pass.
const dealInputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["client_name", "rating_anchor", "eligibility"],
  "additionalProperties": false,
  "properties": {
    "client_name": {"type": "string"},
    "group_name": {"type": "string"},
    "sector": {
      "type": "string",
      "enum": ["Manufacturing", "Advanced Technology", "Healthcare", "Food Security", "Renewables", "Other", ""]
    },
    "rating_anchor": {
      "type": "object",
      "required": ["grade"],
      "additionalProperties": false,
      "properties": {
        "system": {"type": "string"},
        "grade": {"type": "string"},
        "outlook": {"type": "string"},
        "as_of": {"type": "string"}
      }
    },
    "eligibility": {
      "type": "object",
      "required": ["score"],
      "additionalProperties": false,
      "properties": {
        "score": {"type": "number", "minimum": 0, "maximum": 6},
        "drivers": {
          "oneOf": [
            {"type": "string"},
            {"type": "array", "items": {"type": "string"}},
            {"type": "null"}
          ]
        },
        "breakdown": {
          "type": "object",
          "additionalProperties": {"type": "number"}
        }
      }
    },
    "financial_signals": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "revenue_trend_3y": {"type": "string", "enum": ["Improving", "Stable", "Declining", ""]},
        "margin_trend_3y": {"type": "string", "enum": ["Improving", "Stable", "Under Pressure", ""]},
        "leverage_position": {"type": "string", "enum": ["Low", "Moderate", "Elevated", ""]},
        "cashflow_quality": {"type": "string", "enum": ["Strong", "Adequate", "Weak", ""]},
        "earnings_volatility": {"type": "string", "enum": ["Low", "Moderate", "High", ""]},
        "capex_growth_investment": {"type": "string", "enum": ["High", "Moderate", "Low", ""]},
        "financial_transparency": {"type": "string", "enum": ["Strong", "Adequate", "Weak", ""]}
      }
    },
    "notes": {"type": ["string", "null"]}
  }
}`

// compiledSchema is built once at init; the schema text is a constant and a
// compile failure is a programming error.
var compiledSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(dealInputSchema))
	if err != nil {
		panic(fmt.Sprintf("deal input schema invalid: %v", err))
	}
	return s
}()

// rawDealInput is the decode target before normalization. Drivers stays raw
// because the form submits it as a comma-separated string while API clients
// send an array.
type rawDealInput struct {
	ClientName   string              `json:"client_name"`
	GroupName    string              `json:"group_name"`
	Sector       string              `json:"sector"`
	RatingAnchor models.RatingAnchor `json:"rating_anchor"`
	Eligibility  struct {
		Score     float64            `json:"score"`
		Drivers   json.RawMessage    `json:"drivers"`
		Breakdown map[string]float64 `json:"breakdown"`
	} `json:"eligibility"`
	FinancialSignals models.FinancialSignals `json:"financial_signals"`
	Notes            string                  `json:"notes"`
}

// ParseAndValidate validates the raw request body and produces the
// normalized DealInput the rest of the pipeline consumes. Structural and
// semantic failures are collected into one VALIDATION_FAILED error with
// field-level detail.
func ParseAndValidate(body []byte) (*models.DealInput, error) {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, errors.NewMalformedRequestError(err)
	}

	if !result.Valid() {
		fieldErrors := make([]errors.FieldError, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			fieldErrors = append(fieldErrors, errors.FieldError{
				Field:   desc.Field(),
				Message: desc.Description(),
				Code:    strings.ToUpper(desc.Type()),
			})
		}
		return nil, errors.NewValidationFailedError(fieldErrors)
	}

	fieldErrors := []errors.FieldError{}

	var raw rawDealInput
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewMalformedRequestError(err)
	}

	input := &models.DealInput{
		ClientName:   strings.TrimSpace(raw.ClientName),
		GroupName:    strings.TrimSpace(raw.GroupName),
		RatingAnchor: raw.RatingAnchor,
		Notes:        strings.TrimSpace(raw.Notes),
	}
	input.RatingAnchor.System = strings.TrimSpace(raw.RatingAnchor.System)
	input.RatingAnchor.Grade = strings.TrimSpace(raw.RatingAnchor.Grade)
	input.Eligibility = models.Eligibility{
		Score:     raw.Eligibility.Score,
		Drivers:   normalizeDrivers(raw.Eligibility.Drivers),
		Breakdown: raw.Eligibility.Breakdown,
	}

	// Semantic checks the structural schema cannot catch.
	if input.ClientName == "" {
		fieldErrors = append(fieldErrors, errors.FieldError{
			Field:   "client_name",
			Message: "client name must not be empty",
			Code:    "REQUIRED",
		})
	}
	if input.RatingAnchor.Grade == "" {
		fieldErrors = append(fieldErrors, errors.FieldError{
			Field:   "rating_anchor.grade",
			Message: "rating grade must not be empty",
			Code:    "REQUIRED",
		})
	}

	// Neutral defaults for everything optional.
	input.Sector = normalizeSector(raw.Sector)
	input.FinancialSignals = raw.FinancialSignals
	for _, field := range models.SignalFieldOrder {
		if field == models.FieldEligibility {
			continue
		}
		value, _ := input.FinancialSignals.Value(field)
		if strings.TrimSpace(value) == "" {
			input.FinancialSignals.SetValue(field, models.NeutralValue(field))
		}
	}

	if len(fieldErrors) > 0 {
		return nil, errors.NewValidationFailedError(fieldErrors)
	}

	return input, nil
}

// normalizeDrivers accepts either a comma-separated string (the form input)
// or a JSON array and returns an ordered list of trimmed non-empty entries.
func normalizeDrivers(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return splitDrivers(asString)
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		drivers := make([]string, 0, len(asList))
		for _, d := range asList {
			if trimmed := strings.TrimSpace(d); trimmed != "" {
				drivers = append(drivers, trimmed)
			}
		}
		return drivers
	}

	return []string{}
}

func splitDrivers(s string) []string {
	parts := strings.Split(s, ",")
	drivers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			drivers = append(drivers, trimmed)
		}
	}
	return drivers
}

func normalizeSector(s string) models.Sector {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return models.SectorOther
	}
	for _, sector := range models.Sectors {
		if string(sector) == trimmed {
			return sector
		}
	}
	return models.SectorOther
}
