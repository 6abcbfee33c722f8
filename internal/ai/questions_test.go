package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/mockwise/internal/model"
)

func TestQuestionGeneratorGenerate(t *testing.T) {
	stub := &stubGenerator{response: "```json\n[\n" +
		`{"id": "q1", "question": "Explain interfaces.", "answer": "Implicit method sets."},` + "\n" +
		`{"id": "", "question": "What is a slice?", "answer": "A view over an array."}` +
		"\n]\n```"}
	observer := &countingObserver{}

	gen := NewQuestionGenerator(stub, 2, zap.NewNop(), 0).WithObserver(observer)

	questions, err := gen.Generate(context.Background(), model.JobProfile{
		Position:    "Go Developer",
		Description: "Services and tooling",
		Experience:  2,
		TechStack:   "Go",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	if questions[0].ID != "q1" || questions[0].Answer != "Implicit method sets." {
		t.Fatalf("unexpected first question: %+v", questions[0])
	}

	if questions[1].ID != "q2" {
		t.Fatalf("expected missing id to be filled, got %q", questions[1].ID)
	}

	if !strings.Contains(stub.lastPrompt, "containing 2 technical interview questions") {
		t.Fatalf("expected count in prompt: %s", stub.lastPrompt)
	}

	if observer.questions != 2 {
		t.Fatalf("expected 2 observed questions, got %d", observer.questions)
	}
}

func TestQuestionGeneratorPropagatesErrors(t *testing.T) {
	tests := []struct {
		name      string
		stub      *stubGenerator
		malformed bool
	}{
		{name: "service error", stub: &stubGenerator{err: errors.New("quota")}},
		{name: "no array", stub: &stubGenerator{response: "Sorry, I cannot help."}, malformed: true},
		{name: "empty array", stub: &stubGenerator{response: "[]"}, malformed: true},
		{name: "empty question", stub: &stubGenerator{response: `[{"id": "q1", "question": " "}]`}, malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewQuestionGenerator(tt.stub, 0, nil, 0)
			questions, err := gen.Generate(context.Background(), model.JobProfile{Position: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if questions != nil {
				t.Fatalf("expected no questions, got %+v", questions)
			}
			if tt.malformed && !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
