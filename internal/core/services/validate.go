package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// Ensure ValidationService implements the interface.
var _ driving.Validator = (*ValidationService)(nil)

// ValidationService runs the grounding battery: direct questions whose
// answers must contain known facts, and adversarial questions that must
// be refused rather than answered with fabrications. It owns no
// persistent state; it is a pure evaluator over the records it produces.
type ValidationService struct {
	answerer driving.Answerer
}

// NewValidationService creates a validator over the given answerer.
func NewValidationService(answerer driving.Answerer) *ValidationService {
	return &ValidationService{answerer: answerer}
}

// Validate answers every question in the suite and checks the grounding
// expectations. Per-question failures are isolated: one bad answer, or
// one failed generation, never aborts the rest of the battery. Only
// structural errors (empty index, invalid configuration) abort the run,
// since they would fail every remaining question the same way.
func (s *ValidationService) Validate(ctx context.Context, suite domain.ValidationSuite) (domain.ValidationReport, error) {
	if suite.Questions() == 0 {
		return domain.ValidationReport{}, fmt.Errorf("%w: validation suite has no questions", domain.ErrInvalidConfig)
	}

	report := domain.ValidationReport{
		Outcomes: make([]domain.ValidationOutcome, 0, suite.Questions()),
	}

	for _, q := range suite.Direct {
		outcome, err := s.checkDirect(ctx, q)
		if err != nil {
			return domain.ValidationReport{}, err
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	for _, q := range suite.Adversarial {
		outcome, err := s.checkAdversarial(ctx, q, suite.Markers)
		if err != nil {
			return domain.ValidationReport{}, err
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	passed := 0
	for _, outcome := range report.Outcomes {
		if outcome.Passed {
			passed++
		}
	}
	report.PassRate = float64(passed) / float64(len(report.Outcomes))
	report.Healthy = passed == len(report.Outcomes)

	logger.Info("Validation: %d/%d passed (%.0f%%)", passed, len(report.Outcomes), report.PassRate*100)
	return report, nil
}

// checkDirect requires every expected substring in the answer,
// case-insensitively.
func (s *ValidationService) checkDirect(ctx context.Context, q domain.DirectQuestion) (domain.ValidationOutcome, error) {
	answer, failed, err := s.ask(ctx, q.Question)
	if err != nil || failed != nil {
		return orOutcome(failed), err
	}

	lower := strings.ToLower(answer)
	for _, want := range q.RequiredSubstrings {
		if !strings.Contains(lower, strings.ToLower(want)) {
			return domain.ValidationOutcome{
				Question: q.Question,
				Passed:   false,
				Reason:   fmt.Sprintf("answer missing %q", want),
			}, nil
		}
	}
	return domain.ValidationOutcome{Question: q.Question, Passed: true}, nil
}

// checkAdversarial requires a refusal marker and rejects any fabricated
// entity token, marker or not.
func (s *ValidationService) checkAdversarial(ctx context.Context, q domain.AdversarialQuestion, markers []string) (domain.ValidationOutcome, error) {
	answer, failed, err := s.ask(ctx, q.Question)
	if err != nil || failed != nil {
		return orOutcome(failed), err
	}

	lower := strings.ToLower(answer)
	for _, token := range q.ForbiddenTokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			return domain.ValidationOutcome{
				Question: q.Question,
				Passed:   false,
				Reason:   fmt.Sprintf("answer contains fabricated token %q", token),
			}, nil
		}
	}

	for _, marker := range markers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return domain.ValidationOutcome{Question: q.Question, Passed: true}, nil
		}
	}
	return domain.ValidationOutcome{
		Question: q.Question,
		Passed:   false,
		Reason:   "answer lacks a no-information marker",
	}, nil
}

// ask runs one question through the answerer. A non-nil failed outcome
// means the question could not be checked but the run continues; a
// non-nil error means the run itself must stop.
func (s *ValidationService) ask(ctx context.Context, question string) (string, *domain.ValidationOutcome, error) {
	record, err := s.answerer.Answer(ctx, question)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) || errors.Is(err, domain.ErrInvalidConfig) || ctx.Err() != nil {
			return "", nil, err
		}
		return "", &domain.ValidationOutcome{
			Question: question,
			Passed:   false,
			Reason:   fmt.Sprintf("query failed: %v", err),
		}, nil
	}
	if !record.Answered() {
		return "", &domain.ValidationOutcome{
			Question: question,
			Passed:   false,
			Reason:   fmt.Sprintf("no answer produced: %s", record.Error),
		}, nil
	}
	return *record.Answer, nil, nil
}

func orOutcome(outcome *domain.ValidationOutcome) domain.ValidationOutcome {
	if outcome == nil {
		return domain.ValidationOutcome{}
	}
	return *outcome
}
