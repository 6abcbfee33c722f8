package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/utils"
)

// QuestionGenerator asks the generative service for interview questions.
type QuestionGenerator struct {
	generator ContentGenerator
	count     int
	observer  Observer
	logger    *zap.Logger
	maxLogLen int
}

func NewQuestionGenerator(generator ContentGenerator, count int, logger *zap.Logger, maxLogLength int) *QuestionGenerator {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuestionGenerator{
		generator: generator,
		count:     count,
		observer:  nopObserver{},
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// WithObserver returns a copy of the generator counting questions on o.
func (q *QuestionGenerator) WithObserver(o Observer) *QuestionGenerator {
	c := *q
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
	return &c
}

// Generate returns the questions for profile. Unlike scoring there is no
// fallback: errors are returned to the caller.
func (q *QuestionGenerator) Generate(ctx context.Context, profile model.JobProfile) ([]model.Question, error) {
	if q.generator == nil {
		return nil, errors.New("content generator is not configured")
	}

	prompt := FormatQuestionsPrompt(profile, q.count)

	q.logger.Debug("question generation request",
		zap.String("position", profile.Position),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := q.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	q.logger.Debug("question generation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, q.maxLogLen)),
	)

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	q.observer.ObserveQuestions(len(questions))
	return questions, nil
}

func parseQuestions(raw string) ([]model.Question, error) {
	items, err := SanitizeArray(raw)
	if err != nil {
		return nil, err
	}

	var questions []model.Question
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &questions,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("%w: decode questions: %v", ErrMalformedResponse, err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions returned", ErrMalformedResponse)
	}

	for i := range questions {
		questions[i].Question = strings.TrimSpace(questions[i].Question)
		if questions[i].Question == "" {
			return nil, fmt.Errorf("%w: question %d is empty", ErrMalformedResponse, i+1)
		}
		if strings.TrimSpace(questions[i].ID) == "" {
			questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}

	return questions, nil
}
