// internal/engine/assess/service.go
package assess

import (
	"context"
	"time"

	"rm-copilot/internal/common/errors"
	"rm-copilot/internal/common/logger"
	"rm-copilot/internal/common/metrics"
	"rm-copilot/internal/common/observability"
	"rm-copilot/internal/engine/narrative"
	"rm-copilot/internal/engine/policy"
	"rm-copilot/internal/engine/readiness"
	"rm-copilot/internal/engine/schema"
	"rm-copilot/internal/engine/signals"
	"rm-copilot/internal/models"
)

// Clock supplies the assessment date. Injectable so tests can pin it.
type Clock func() time.Time

// Service runs the full assessment pipeline: schema validation, signal
// interpretation, readiness classification, narrative generation. It is
// stateless; concurrent calls never interact.
type Service struct {
	interpreter *signals.Interpreter
	classifier  *readiness.Classifier
	generator   *narrative.Generator
	obs         *observability.Observability
	logger      logger.Logger
	now         Clock
}

func NewService(p *policy.Policy, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		interpreter: signals.New(p),
		classifier:  readiness.New(p),
		generator:   narrative.New(p),
		obs:         obs,
		logger:      log,
		now:         time.Now,
	}
}

// WithClock overrides the assessment clock.
func (s *Service) WithClock(c Clock) *Service {
	s.now = c
	return s
}

// Assess validates the raw payload and produces a fresh DealSummary. The
// summary is a pure function of the input apart from created_at.
func (s *Service) Assess(ctx context.Context, body []byte) (*models.DealSummary, error) {
	ctx, span := s.obs.StartSpan(ctx, "engine.assess")
	defer span.End()

	input, err := schema.ParseAndValidate(body)
	if err != nil {
		s.logger.Warn("assessment rejected", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.ValidationFailuresTotal.WithLabelValues(errorCode(err)).Inc()
		return nil, err
	}

	interp, err := s.interpreter.Interpret(input)
	if err != nil {
		s.logger.Error("signal interpretation failed", map[string]interface{}{
			"client_name": input.ClientName,
			"error":       err.Error(),
		})
		return nil, err
	}

	verdict := s.classifier.Classify(interp, input.RatingAnchor.Grade)
	text := s.generator.Generate(input, verdict, interp)

	summary := &models.DealSummary{
		ClientName:        input.ClientName,
		GroupName:         input.GroupName,
		Sector:            input.Sector,
		RatingAnchor:      input.RatingAnchor,
		Eligibility:       input.Eligibility,
		FinancialSignals:  input.FinancialSignals,
		DealReadiness:     verdict,
		MandateFitSummary: text.MandateFitSummary,
		RMActions:         text.RMActions,
		TalkingPoints:     text.TalkingPoints,
		CreatedAt:         s.now().UTC().Format("2006-01-02"),
		Notes:             input.Notes,
	}

	s.logger.Info("assessment completed", map[string]interface{}{
		"client_name": summary.ClientName,
		"sector":      summary.Sector,
		"status":      summary.DealReadiness.Status,
		"negatives":   interp.Negative,
		"positives":   interp.Positive,
	})
	metrics.AssessmentsTotal.WithLabelValues(string(verdict.Status)).Inc()
	s.obs.RecordAssessment(ctx, string(verdict.Status))

	return summary, nil
}

func errorCode(err error) string {
	if stdErr, ok := errors.AsStandardError(err); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
