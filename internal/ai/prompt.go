package ai

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/spigell/mockwise/internal/model"
)

//go:embed prompts/score.md
var scorePromptTemplate string

//go:embed prompts/questions.md
var questionsPromptTemplate string

// DefaultQuestionCount is how many questions a new interview gets.
const DefaultQuestionCount = 5

// FormatScoringPrompt builds the grading request for one answer. The three
// inputs are embedded verbatim; a single-pass replacer keeps placeholder-like
// text inside them untouched.
func FormatScoringPrompt(question, modelAnswer, userAnswer string) string {
	r := strings.NewReplacer(
		"{{QUESTION}}", question,
		"{{USER_ANSWER}}", userAnswer,
		"{{CORRECT_ANSWER}}", modelAnswer,
	)
	return r.Replace(scorePromptTemplate)
}

// FormatQuestionsPrompt builds the question generation request for a job profile.
func FormatQuestionsPrompt(profile model.JobProfile, count int) string {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	r := strings.NewReplacer(
		"{{COUNT}}", strconv.Itoa(count),
		"{{POSITION}}", profile.Position,
		"{{DESCRIPTION}}", profile.Description,
		"{{EXPERIENCE}}", strconv.Itoa(profile.Experience),
		"{{TECH_STACK}}", profile.TechStack,
	)
	return r.Replace(questionsPromptTemplate)
}
