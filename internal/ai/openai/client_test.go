package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

type fakeCompletions struct {
	resp  *openai.ChatCompletion
	err   error
	calls []openai.ChatCompletionNewParams
}

func (f *fakeCompletions) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls = append(f.calls, body)
	return f.resp, f.err
}

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content},
		}},
	}
}

func TestGeneratorGenerateContent(t *testing.T) {
	fake := &fakeCompletions{resp: completion(" {\"ratings\": 9, \"feedback\": \"great\"} ")}
	g := &Generator{completions: fake, model: "deepseek-chat", system: "Be strict.", logger: zap.NewNop()}

	out, err := g.GenerateContent(context.Background(), "grade")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != `{"ratings": 9, "feedback": "great"}` {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}

	if got := fake.calls[0].Model.Value; got != "deepseek-chat" {
		t.Fatalf("unexpected model: %q", got)
	}

	if got := len(fake.calls[0].Messages.Value); got != 2 {
		t.Fatalf("expected system and user messages, got %d", got)
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeCompletions
	}{
		{name: "api error", fake: &fakeCompletions{err: errors.New("401 unauthorized")}},
		{name: "no choices", fake: &fakeCompletions{resp: &openai.ChatCompletion{}}},
		{name: "blank content", fake: &fakeCompletions{resp: completion("  ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Generator{completions: tt.fake, model: "m", logger: zap.NewNop()}
			if _, err := g.GenerateContent(context.Background(), "grade"); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := NewGenerator(" ", "", "", "", nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
