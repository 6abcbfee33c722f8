package recorder

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spigell/mockwise/internal/model"
)

// MinAnswerLength is the shortest answer, in characters, that can be scored.
const MinAnswerLength = 30

var (
	ErrAnswerTooShort    = errors.New("answer is too short")
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStale is returned when a result arrives for a question that is no
	// longer current or after the recorder was closed.
	ErrStale = errors.New("stale result")
	ErrBusy  = errors.New("operation already in progress")
)

type State int

const (
	Idle State = iota
	Recording
	Scoring
	ReviewReady
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Scoring:
		return "scoring"
	case ReviewReady:
		return "review_ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Machine is the per-question answer workflow. Every transition returns a
// new value and leaves the receiver untouched; on error the returned value
// equals the receiver.
type Machine struct {
	State      State
	Generation uint64
	Answer     string
	Result     *model.ScoringResult
}

func (m Machine) invalid(action string) (Machine, error) {
	return m, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, m.State)
}

// Start begins capture. Starting while already recording is allowed: a stop
// refused by the length gate leaves the machine in Recording with capture off.
func (m Machine) Start() (Machine, error) {
	switch m.State {
	case Idle, Recording:
		m.State = Recording
		return m, nil
	case Scoring:
		return m, ErrBusy
	default:
		return m.invalid("start")
	}
}

// Stop moves to Scoring when the answer passes the length gate.
func (m Machine) Stop() (Machine, error) {
	if m.State != Recording {
		return m.invalid("stop")
	}
	if utf8.RuneCountInString(m.Answer) < MinAnswerLength {
		return m, ErrAnswerTooShort
	}
	m.State = Scoring
	return m, nil
}

// Scored stores the result of the scoring round trip started at generation gen.
func (m Machine) Scored(gen uint64, result model.ScoringResult) (Machine, error) {
	if gen != m.Generation {
		return m, ErrStale
	}
	if m.State != Scoring {
		return m.invalid("scored")
	}
	m.State = ReviewReady
	m.Result = &result
	return m, nil
}

// Discard drops the answer and result and resumes capture (record again).
func (m Machine) Discard() (Machine, error) {
	if m.State == Scoring {
		return m, ErrBusy
	}
	m.State = Recording
	m.Answer = ""
	m.Result = nil
	return m, nil
}

// Saved ends the review. It is used for both a written and a duplicate answer.
func (m Machine) Saved(gen uint64) (Machine, error) {
	if gen != m.Generation {
		return m, ErrStale
	}
	if m.State != ReviewReady {
		return m.invalid("saved")
	}
	m.State = Idle
	m.Answer = ""
	m.Result = nil
	return m, nil
}

// NextQuestion resets the machine and invalidates every in-flight result.
func (m Machine) NextQuestion() Machine {
	return Machine{State: Idle, Generation: m.Generation + 1}
}

// WithTranscript updates the answer while capture can still change it.
func (m Machine) WithTranscript(answer string) Machine {
	if m.State == Idle || m.State == Recording {
		m.Answer = answer
	}
	return m
}
