// Package answers saves scored answers at most once per (user, question) and
// builds the per-interview feedback report.
package answers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
	"github.com/spigell/mockwise/internal/storage"
)

var (
	// ErrPersistence wraps store failures during a save.
	ErrPersistence = errors.New("persistence failure")
	// ErrNoUser is returned when there is no signed-in user to save for.
	ErrNoUser = errors.New("no signed-in user")
)

const (
	OutcomeSaved     = "saved"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// SaveObserver counts save outcomes. Implemented by internal/metrics.
type SaveObserver interface {
	ObserveSave(outcome string)
}

type nopSaveObserver struct{}

func (nopSaveObserver) ObserveSave(string) {}

// SaveResult reports whether a record was written.
type SaveResult struct {
	Saved bool `json:"saved"`
}

// Guard enforces at-most-one answer per (user, question). The check is a
// read followed by a write without isolation; a concurrent save from a second
// client can still slip through unless the backend rejects it (sqlite does).
type Guard struct {
	store    storage.AnswerStore
	notifier notify.Notifier
	observer SaveObserver
	logger   *zap.Logger
}

func NewGuard(store storage.AnswerStore, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		store:    store,
		notifier: notify.Nop,
		observer: nopSaveObserver{},
		logger:   logger,
	}
}

// WithNotifier returns a copy of the guard reporting to n.
func (g *Guard) WithNotifier(n notify.Notifier) *Guard {
	c := *g
	c.notifier = notify.OrNop(n)
	return &c
}

// WithObserver returns a copy of the guard counting outcomes on o.
func (g *Guard) WithObserver(o SaveObserver) *Guard {
	c := *g
	if o == nil {
		o = nopSaveObserver{}
	}
	c.observer = o
	return &c
}

// TrySave writes rec for userID and question unless one already exists.
// A duplicate is an outcome, not an error.
func (g *Guard) TrySave(ctx context.Context, userID, question string, rec model.AnswerRecord) (SaveResult, error) {
	if userID == "" {
		g.notifier.Notify(notify.Error("Error", "You must be signed in to save your answer."))
		return SaveResult{}, ErrNoUser
	}

	rec.UserID = userID
	rec.Question = question

	logger := g.logger.With(
		zap.String("user_id", userID),
		zap.String("interview_id", rec.MockIDRef),
	)

	existing, err := g.store.FindAnswers(ctx, storage.AnswerFilter{UserID: userID, Question: question})
	if err != nil {
		return SaveResult{}, g.fail(logger, fmt.Errorf("find existing answers: %w", err))
	}

	if len(existing) > 0 {
		logger.Info("answer already saved", zap.Int("existing", len(existing)))
		return g.duplicate(), nil
	}

	if _, err := g.store.InsertAnswer(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			logger.Info("answer rejected by store as duplicate")
			return g.duplicate(), nil
		}
		return SaveResult{}, g.fail(logger, fmt.Errorf("insert answer: %w", err))
	}

	logger.Info("answer saved", zap.Float64("rating", rec.Rating))
	g.notifier.Notify(notify.Success("Saved", "Your answer has been saved.."))
	g.observer.ObserveSave(OutcomeSaved)
	return SaveResult{Saved: true}, nil
}

func (g *Guard) duplicate() SaveResult {
	g.notifier.Notify(notify.Info("Already Answered", "You have already answered this question"))
	g.observer.ObserveSave(OutcomeDuplicate)
	return SaveResult{Saved: false}
}

func (g *Guard) fail(logger *zap.Logger, err error) error {
	logger.Error("saving answer failed", zap.Error(err))
	g.notifier.Notify(notify.Error("Error", "An error occurred while saving your answer."))
	g.observer.ObserveSave(OutcomeError)
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
