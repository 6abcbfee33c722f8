// Package ai holds the provider-independent side of the generative service:
// prompts, response sanitizing, answer scoring and question generation.
package ai

import "context"

// ContentGenerator sends one prompt to a generative text service and returns
// its whole textual reply.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Observer receives outcome counters. Implemented by internal/metrics.
type Observer interface {
	ObserveScoring(outcome string)
	ObserveQuestions(count int)
}

const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

type nopObserver struct{}

func (nopObserver) ObserveScoring(string) {}
func (nopObserver) ObserveQuestions(int)  {}
