// Package speech adapts transcript sources to the recorder's speech engine.
package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/recorder"
)

// PartialPrefix marks an interim line: "~ so the answer" is shown as a
// preview and never becomes part of the transcript.
const PartialPrefix = "~"

var ErrNotRecording = errors.New("engine is not recording")

// LineEngine turns a line-oriented text stream into recognition results.
// Each non-empty line is a final fragment. Input arriving while the engine
// is stopped is dropped.
type LineEngine struct {
	mu        sync.Mutex
	recording bool
	history   []recorder.Fragment
	interim   string
	subs      []func([]recorder.Fragment)
	logger    *zap.Logger
}

var _ recorder.SpeechEngine = (*LineEngine)(nil)

func NewLineEngine(logger *zap.Logger) *LineEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineEngine{logger: logger}
}

func (e *LineEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recording = true
	return nil
}

func (e *LineEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recording = false
	e.interim = ""
}

func (e *LineEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
	e.interim = ""
}

func (e *LineEngine) Recording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recording
}

func (e *LineEngine) Results() []recorder.Fragment {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]recorder.Fragment, len(e.history))
	copy(out, e.history)
	return out
}

func (e *LineEngine) Interim() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interim
}

func (e *LineEngine) Subscribe(fn func([]recorder.Fragment)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// Feed handles one line of input.
func (e *LineEngine) Feed(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	e.mu.Lock()
	if !e.recording {
		e.mu.Unlock()
		return ErrNotRecording
	}

	if strings.HasPrefix(line, PartialPrefix) {
		e.interim = strings.TrimSpace(strings.TrimPrefix(line, PartialPrefix))
		e.mu.Unlock()
		return nil
	}

	e.interim = ""
	e.history = append(e.history, recorder.FinalFragment(line))
	history := make([]recorder.Fragment, len(e.history))
	copy(history, e.history)
	subs := make([]func([]recorder.Fragment), len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	for _, fn := range subs {
		fn(history)
	}
	return nil
}

// Consume feeds every line of r until EOF or ctx is done. Lines read while
// the engine is stopped are logged and skipped.
func (e *LineEngine) Consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Feed(scanner.Text()); err != nil {
			if errors.Is(err, ErrNotRecording) {
				e.logger.Debug("dropping line while not recording")
				continue
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	return nil
}
