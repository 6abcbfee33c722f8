package ai

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
	"github.com/spigell/mockwise/internal/utils"
)

const (
	defaultMaxLogLength = 200
	// DefaultFeedback is the feedback of the result substituted on failure.
	DefaultFeedback = "Unable to generate feedback"
)

// DefaultResult is returned by Score whenever scoring fails.
func DefaultResult() model.ScoringResult {
	return model.ScoringResult{Ratings: 0, Feedback: DefaultFeedback}
}

// Scorer grades a user's answer against the model answer.
type Scorer struct {
	generator ContentGenerator
	notifier  notify.Notifier
	observer  Observer
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator ContentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		notifier:  notify.Nop,
		observer:  nopObserver{},
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// WithNotifier returns a copy of the scorer reporting to n.
func (s *Scorer) WithNotifier(n notify.Notifier) *Scorer {
	c := *s
	c.notifier = notify.OrNop(n)
	return &c
}

// WithObserver returns a copy of the scorer counting outcomes on o.
func (s *Scorer) WithObserver(o Observer) *Scorer {
	c := *s
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
	return &c
}

// Score never fails: any error is logged, reported as a notice and replaced
// by DefaultResult so the caller always moves forward.
func (s *Scorer) Score(ctx context.Context, question, modelAnswer, userAnswer string) model.ScoringResult {
	result, err := s.score(ctx, question, modelAnswer, userAnswer)
	if err != nil {
		s.logger.Warn("scoring failed, using default result", zap.Error(err))
		s.notifier.Notify(notify.Error("Error", "An error occurred while generating feedback."))
		s.observer.ObserveScoring(OutcomeDegraded)
		return DefaultResult()
	}

	s.observer.ObserveScoring(OutcomeOK)
	return result
}

func (s *Scorer) score(ctx context.Context, question, modelAnswer, userAnswer string) (model.ScoringResult, error) {
	if s.generator == nil {
		return model.ScoringResult{}, fmt.Errorf("content generator is not configured")
	}

	prompt := FormatScoringPrompt(question, modelAnswer, userAnswer)

	s.logger.Debug("scoring request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return model.ScoringResult{}, fmt.Errorf("generate content: %w", err)
	}

	s.logger.Debug("scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseScoringResult(raw)
}

func parseScoringResult(raw string) (model.ScoringResult, error) {
	data, err := SanitizeObject(raw)
	if err != nil {
		return model.ScoringResult{}, err
	}

	ratings := coerceFloat(data["ratings"])
	if math.IsNaN(ratings) {
		return model.ScoringResult{}, fmt.Errorf("%w: ratings is missing or not a number", ErrMalformedResponse)
	}

	return model.ScoringResult{
		Ratings:  ratings,
		Feedback: coerceString(data["feedback"]),
	}, nil
}
