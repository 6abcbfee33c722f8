package ai

import (
	"strings"
	"testing"

	"github.com/spigell/mockwise/internal/model"
)

func TestFormatScoringPromptEmbedsInputsVerbatim(t *testing.T) {
	t.Parallel()

	question := "What is a goroutine?"
	modelAnswer := "A lightweight thread managed by the Go runtime."
	userAnswer := "It's like a \"thread\"\nbut cheaper {{QUESTION}}"

	prompt := FormatScoringPrompt(question, modelAnswer, userAnswer)

	for _, want := range []string{question, modelAnswer, userAnswer, `"ratings"`, `"feedback"`} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt does not contain %q:\n%s", want, prompt)
		}
	}

	if strings.Count(prompt, question) != 1 {
		t.Fatalf("placeholder inside user answer must not be expanded:\n%s", prompt)
	}

	if prompt != FormatScoringPrompt(question, modelAnswer, userAnswer) {
		t.Fatal("expected deterministic prompt")
	}
}

func TestFormatQuestionsPrompt(t *testing.T) {
	t.Parallel()

	profile := model.JobProfile{
		Position:    "Backend Engineer",
		Description: "Build payment services",
		Experience:  4,
		TechStack:   "Go, PostgreSQL",
	}

	prompt := FormatQuestionsPrompt(profile, 0)

	for _, want := range []string{
		"containing 5 technical interview questions",
		"- Job Position: Backend Engineer",
		"- Job Description: Build payment services",
		"- Years of Experience Required: 4",
		"- Tech Stacks: Go, PostgreSQL",
		"skills in Go, PostgreSQL development",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt does not contain %q:\n%s", want, prompt)
		}
	}

	if !strings.Contains(FormatQuestionsPrompt(profile, 3), "containing 3 technical") {
		t.Fatal("expected custom question count")
	}
}
