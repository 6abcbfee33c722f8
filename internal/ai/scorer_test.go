package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/model"
	"github.com/spigell/mockwise/internal/notify"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type countingObserver struct {
	scoring   map[string]int
	questions int
}

func (c *countingObserver) ObserveScoring(outcome string) {
	if c.scoring == nil {
		c.scoring = map[string]int{}
	}
	c.scoring[outcome]++
}

func (c *countingObserver) ObserveQuestions(n int) { c.questions += n }

func TestScorerScore(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"ratings\": 8, \"feedback\": \"Solid answer\"}\n```"}
	observer := &countingObserver{}
	collector := &notify.Collector{}

	scorer := NewScorer(stub, zap.NewNop(), 0).WithNotifier(collector).WithObserver(observer)

	got := scorer.Score(context.Background(), "What is a channel?", "A typed conduit.", "A pipe between goroutines.")

	want := model.ScoringResult{Ratings: 8, Feedback: "Solid answer"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if !strings.Contains(stub.lastPrompt, "A pipe between goroutines.") {
		t.Fatalf("expected user answer in prompt, got %s", stub.lastPrompt)
	}

	if len(collector.Notices()) != 0 {
		t.Fatalf("expected no notices, got %+v", collector.Notices())
	}

	if observer.scoring[OutcomeOK] != 1 {
		t.Fatalf("expected one ok outcome, got %+v", observer.scoring)
	}
}

func TestScorerDegradesOnFailure(t *testing.T) {
	tests := []struct {
		name string
		stub *stubGenerator
	}{
		{name: "service error", stub: &stubGenerator{err: errors.New("connection reset")}},
		{name: "malformed response", stub: &stubGenerator{response: "not json at all"}},
		{name: "missing ratings", stub: &stubGenerator{response: `{"feedback": "no score"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := &notify.Collector{}
			observer := &countingObserver{}
			scorer := NewScorer(tt.stub, zap.NewNop(), 0).WithNotifier(collector).WithObserver(observer)

			got := scorer.Score(context.Background(), "Q", "A", "user answer")

			if got != DefaultResult() {
				t.Fatalf("expected default result, got %+v", got)
			}
			if got.Ratings != 0 || got.Feedback != "Unable to generate feedback" {
				t.Fatalf("unexpected default result: %+v", got)
			}

			notices := collector.Notices()
			if len(notices) != 1 || notices[0].Level != notify.LevelError {
				t.Fatalf("expected one error notice, got %+v", notices)
			}

			if observer.scoring[OutcomeDegraded] != 1 {
				t.Fatalf("expected one degraded outcome, got %+v", observer.scoring)
			}
		})
	}
}

func TestScorerWithoutGenerator(t *testing.T) {
	got := NewScorer(nil, nil, 0).Score(context.Background(), "Q", "A", "U")
	if got != DefaultResult() {
		t.Fatalf("expected default result, got %+v", got)
	}
}

func TestParseScoringResultCoercesStrings(t *testing.T) {
	got, err := parseScoringResult(`{"ratings": "6", "feedback": "  Mention buffering.  "}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Ratings != 6 || got.Feedback != "Mention buffering." {
		t.Fatalf("unexpected result: %+v", got)
	}
}
