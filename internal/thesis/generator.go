package thesis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrNotConfigured is returned when no LLM credentials are set
var ErrNotConfigured = errors.New("LLM provider not configured")

// Generator turns a prompt into text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClaudeGenerator calls the Anthropic Messages API
type ClaudeGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewClaudeGenerator creates a generator. Returns ErrNotConfigured without an API key.
func NewClaudeGenerator(apiKey, model string, maxTokens int, opts ...option.RequestOption) (*ClaudeGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeGenerator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate sends a single user message and returns the trimmed text reply
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", errors.New("empty response from Claude API")
	}
	return out, nil
}
