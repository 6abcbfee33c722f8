// Package recorder drives the answer capture workflow for one question at a
// time: speech capture, the length gate, scoring and the guarded save.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/answers"
	"github.com/spigell/mockwise/internal/logger"
	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
)

// SpeechEngine is the speech-to-text source. Subscribers receive the full
// fragment history each time it changes and are never called from Start,
// Stop or Reset.
type SpeechEngine interface {
	Start() error
	Stop()
	Reset()
	Recording() bool
	Results() []Fragment
	Interim() string
	Subscribe(fn func(history []Fragment))
}

// Scorer grades an answer and always returns a result.
type Scorer interface {
	Score(ctx context.Context, question, modelAnswer, userAnswer string) model.ScoringResult
}

// Saver persists a scored answer at most once per user and question.
type Saver interface {
	TrySave(ctx context.Context, userID, question string, rec model.AnswerRecord) (answers.SaveResult, error)
}

type Options struct {
	InterviewID string
	UserID      string
	Notifier    notify.Notifier
	Logger      *zap.Logger
}

// Snapshot is a read-only view of the recorder for presentation.
type Snapshot struct {
	State      State
	Generation uint64
	Question   model.Question
	Answer     string
	Interim    string
	Result     *model.ScoringResult
	Saving     bool
}

type Recorder struct {
	mu       sync.Mutex
	machine  Machine
	acc      Accumulator
	question model.Question
	saving   bool
	active   bool

	engine      SpeechEngine
	scorer      Scorer
	saver       Saver
	notifier    notify.Notifier
	logger      *zap.Logger
	interviewID string
	userID      string
}

func New(engine SpeechEngine, scorer Scorer, saver Saver, opts Options) *Recorder {
	r := &Recorder{
		active:      true,
		engine:      engine,
		scorer:      scorer,
		saver:       saver,
		notifier:    notify.OrNop(opts.Notifier),
		logger:      logger.Component(opts.Logger, "recorder"),
		interviewID: opts.InterviewID,
		userID:      opts.UserID,
	}
	engine.Subscribe(r.onFragments)
	return r
}

func (r *Recorder) onFragments(history []Fragment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}
	r.machine = r.machine.WithTranscript(r.acc.OnFragments(history))
}

func (r *Recorder) sessionLogger() *zap.Logger {
	return r.logger.With(logger.SessionFields(r.interviewID, r.question.ID, r.userID)...)
}

// SetQuestion switches to q, stopping capture and dropping anything pending
// for the previous question.
func (r *Recorder) SetQuestion(q model.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.engine.Stop()
	r.engine.Reset()
	r.acc.Reset()
	r.machine = r.machine.NextQuestion()
	r.question = q
	r.saving = false
}

// Toggle is the single start/stop control: it stops when the engine is
// recording and starts otherwise.
func (r *Recorder) Toggle(ctx context.Context) error {
	if r.engine.Recording() {
		_, err := r.Stop(ctx)
		return err
	}
	return r.Start()
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.machine.Start()
	if err != nil {
		return err
	}
	if err := r.engine.Start(); err != nil {
		r.notifier.Notify(notify.Error("Error", "Unable to start speech recognition."))
		return fmt.Errorf("start speech engine: %w", err)
	}
	r.machine = next
	r.sessionLogger().Debug("recording started")
	return nil
}

// Stop ends capture and scores the answer. Capture stops even when the
// answer is too short; in that case the state stays Recording.
func (r *Recorder) Stop(ctx context.Context) (model.ScoringResult, error) {
	r.mu.Lock()
	if r.machine.State != Recording {
		_, err := r.machine.Stop()
		r.mu.Unlock()
		return model.ScoringResult{}, err
	}

	r.engine.Stop()

	next, err := r.machine.Stop()
	if err != nil {
		if errors.Is(err, ErrAnswerTooShort) {
			r.notifier.Notify(notify.Error("Error",
				fmt.Sprintf("Your answer should be more than %d characters", MinAnswerLength)))
		}
		r.mu.Unlock()
		return model.ScoringResult{}, err
	}

	r.machine = next
	gen := next.Generation
	question := r.question
	answer := next.Answer
	log := r.sessionLogger()
	r.mu.Unlock()

	log.Info("scoring answer", zap.Int("answer_length", len(answer)))
	result := r.scorer.Score(ctx, question.Question, question.Answer, answer)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		log.Debug("dropping score for closed recorder")
		return result, ErrStale
	}
	scored, err := r.machine.Scored(gen, result)
	if err != nil {
		log.Debug("dropping score", zap.Error(err))
		return result, err
	}
	r.machine = scored
	return result, nil
}

// RecordAgain discards the answer and result and restarts capture.
func (r *Recorder) RecordAgain() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saving {
		return ErrBusy
	}
	next, err := r.machine.Discard()
	if err != nil {
		return err
	}

	r.engine.Stop()
	r.engine.Reset()
	r.acc.Reset()
	if err := r.engine.Start(); err != nil {
		r.notifier.Notify(notify.Error("Error", "Unable to start speech recognition."))
		return fmt.Errorf("start speech engine: %w", err)
	}
	r.machine = next
	return nil
}

// Save stores the reviewed answer through the guard. A duplicate also ends
// the review; a persistence error keeps it so the user can retry.
func (r *Recorder) Save(ctx context.Context) (answers.SaveResult, error) {
	r.mu.Lock()
	if r.machine.State != ReviewReady || r.machine.Result == nil {
		_, err := r.machine.Saved(r.machine.Generation)
		r.mu.Unlock()
		return answers.SaveResult{}, err
	}
	if r.saving {
		r.mu.Unlock()
		return answers.SaveResult{}, ErrBusy
	}
	r.saving = true

	gen := r.machine.Generation
	question := r.question.Question
	rec := model.AnswerRecord{
		MockIDRef:  r.interviewID,
		CorrectAns: r.question.Answer,
		UserAns:    r.machine.Answer,
		Feedback:   r.machine.Result.Feedback,
		Rating:     r.machine.Result.Ratings,
	}
	userID := r.userID
	r.mu.Unlock()

	res, err := r.saver.TrySave(ctx, userID, question, rec)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active || gen != r.machine.Generation {
		return res, ErrStale
	}
	r.saving = false
	if err != nil {
		return res, err
	}

	saved, err := r.machine.Saved(gen)
	if err != nil {
		return res, err
	}
	r.machine = saved
	r.engine.Stop()
	r.engine.Reset()
	r.acc.Reset()
	return res, nil
}

// Close stops capture and makes every later result a no-op.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = false
	r.engine.Stop()
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *model.ScoringResult
	if r.machine.Result != nil {
		copied := *r.machine.Result
		result = &copied
	}
	return Snapshot{
		State:      r.machine.State,
		Generation: r.machine.Generation,
		Question:   r.question,
		Answer:     r.machine.Answer,
		Interim:    r.engine.Interim(),
		Result:     result,
		Saving:     r.saving,
	}
}
