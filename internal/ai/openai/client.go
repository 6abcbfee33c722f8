// Package openai talks to any OpenAI-compatible chat completions endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const defaultModel = "gpt-4o-mini"

type completions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Generator sends single prompts as one-message chat completions.
type Generator struct {
	completions completions
	model       string
	system      string
	logger      *zap.Logger
}

// NewGenerator creates a generator. An empty baseURL means api.openai.com.
func NewGenerator(apiKey, baseURL, model, systemInstruction string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		completions: client.Chat.Completions,
		model:       model,
		system:      strings.TrimSpace(systemInstruction),
		logger:      logger,
	}, nil
}

// GenerateContent returns the content of the first choice.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.completions == nil {
		return "", errors.New("openai generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if g.system != "" {
		messages = append(messages, openai.SystemMessage(g.system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(g.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	g.logger.Debug("chat completion finished",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
	)

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
