package thesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wonny/themescreen/pkg/httputil"
)

// ChatGenerator calls an OpenAI-compatible chat completions endpoint.
// OpenAI and DeepSeek share this wire format and differ only in base URL.
type ChatGenerator struct {
	httpClient *httputil.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
}

var _ Generator = (*ChatGenerator)(nil)

// NewChatGenerator creates a generator. Returns ErrNotConfigured without an API key.
func NewChatGenerator(httpClient *httputil.Client, baseURL, apiKey, model string, maxTokens int) (*ChatGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &ChatGenerator{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a single user message and returns the trimmed text reply
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     g.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, msg)
	}

	if len(decoded.Choices) == 0 {
		return "", errors.New("empty response from chat API")
	}
	out := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("empty response from chat API")
	}
	return out, nil
}
