// Package interview creates and maintains mock interviews and their
// generated questions.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
	"github.com/spigell/mockwise/internal/storage"
)

const (
	MaxPositionLength    = 100
	MinDescriptionLength = 10
)

var ErrInvalidProfile = errors.New("invalid job profile")

// FieldError describes one invalid profile field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidProfile
}

// ValidateProfile returns every problem with p joined into one error.
func ValidateProfile(p model.JobProfile) error {
	var errs []error

	position := utf8.RuneCountInString(strings.TrimSpace(p.Position))
	switch {
	case position == 0:
		errs = append(errs, &FieldError{Field: "position", Message: "Position is required"})
	case position > MaxPositionLength:
		errs = append(errs, &FieldError{Field: "position", Message: "Position must be 100 characters or less"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(p.Description)) < MinDescriptionLength {
		errs = append(errs, &FieldError{Field: "description", Message: "Description is required"})
	}
	if p.Experience < 0 {
		errs = append(errs, &FieldError{Field: "experience", Message: "Experience cannot be empty or negative"})
	}
	if strings.TrimSpace(p.TechStack) == "" {
		errs = append(errs, &FieldError{Field: "techStack", Message: "Tech stack must be at least a character"})
	}

	return errors.Join(errs...)
}

// FieldErrors unpacks the per-field problems of a ValidateProfile error.
func FieldErrors(err error) []*FieldError {
	var out []*FieldError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		out = append(out, fe)
	}
	return out
}

// QuestionSource produces the questions for a profile.
type QuestionSource interface {
	Generate(ctx context.Context, profile model.JobProfile) ([]model.Question, error)
}

type Service struct {
	store     storage.InterviewStore
	questions QuestionSource
	notifier  notify.Notifier
	logger    *zap.Logger
}

func NewService(store storage.InterviewStore, questions QuestionSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		questions: questions,
		notifier:  notify.Nop,
		logger:    logger,
	}
}

// WithNotifier returns a copy of the service reporting to n.
func (s *Service) WithNotifier(n notify.Notifier) *Service {
	c := *s
	c.notifier = notify.OrNop(n)
	return &c
}

func (s *Service) somethingWentWrong() {
	s.notifier.Notify(notify.Error("Error!", "Something went wrong. Please try again later."))
}

// Create validates profile, generates its questions and stores the interview.
func (s *Service) Create(ctx context.Context, userID string, profile model.JobProfile) (model.Interview, error) {
	if err := ValidateProfile(profile); err != nil {
		return model.Interview{}, err
	}

	log := s.logger.With(zap.String("user_id", userID), zap.String("position", profile.Position))

	questions, err := s.questions.Generate(ctx, profile)
	if err != nil {
		log.Error("question generation failed", zap.Error(err))
		s.somethingWentWrong()
		return model.Interview{}, fmt.Errorf("generate questions: %w", err)
	}

	created, err := s.store.CreateInterview(ctx, model.Interview{
		UserID:      userID,
		Position:    profile.Position,
		Description: profile.Description,
		Experience:  profile.Experience,
		TechStack:   profile.TechStack,
		Questions:   questions,
	})
	if err != nil {
		log.Error("storing interview failed", zap.Error(err))
		s.somethingWentWrong()
		return model.Interview{}, fmt.Errorf("create interview: %w", err)
	}

	log.Info("interview created", zap.String("interview_id", created.ID), zap.Int("questions", len(questions)))
	s.notifier.Notify(notify.Success("Created!", "New Mock Interview created."))
	return created, nil
}

// Update replaces the profile of interview id and regenerates its questions.
func (s *Service) Update(ctx context.Context, id string, profile model.JobProfile) (model.Interview, error) {
	if err := ValidateProfile(profile); err != nil {
		return model.Interview{}, err
	}

	existing, err := s.store.GetInterview(ctx, id)
	if err != nil {
		return model.Interview{}, fmt.Errorf("get interview: %w", err)
	}

	log := s.logger.With(zap.String("interview_id", id))

	questions, err := s.questions.Generate(ctx, profile)
	if err != nil {
		log.Error("question generation failed", zap.Error(err))
		s.somethingWentWrong()
		return model.Interview{}, fmt.Errorf("generate questions: %w", err)
	}

	existing.Position = profile.Position
	existing.Description = profile.Description
	existing.Experience = profile.Experience
	existing.TechStack = profile.TechStack
	existing.Questions = questions

	updated, err := s.store.UpdateInterview(ctx, existing)
	if err != nil {
		log.Error("updating interview failed", zap.Error(err))
		s.somethingWentWrong()
		return model.Interview{}, fmt.Errorf("update interview: %w", err)
	}

	log.Info("interview updated", zap.Int("questions", len(questions)))
	s.notifier.Notify(notify.Success("Updated!", "Changes saved successfully."))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteInterview(ctx, id); err != nil {
		s.logger.Error("deleting interview failed", zap.String("interview_id", id), zap.Error(err))
		s.notifier.Notify(notify.Error("Error!", "Failed to delete interview."))
		return fmt.Errorf("delete interview: %w", err)
	}
	s.notifier.Notify(notify.Success("Deleted", "Deleted interview successfully."))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Interview, error) {
	in, err := s.store.GetInterview(ctx, id)
	if err != nil {
		return model.Interview{}, fmt.Errorf("get interview: %w", err)
	}
	return in, nil
}

// List returns the interviews of userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]model.Interview, error) {
	list, err := s.store.ListInterviews(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return list, nil
}
