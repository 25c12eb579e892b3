package senpai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mmynk/crewchat/internal/apperr"
)

// Completer turns a system+user prompt pair into a reply.
// Every failure wraps apperr.ErrExternalService.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIClient completes prompts against any OpenAI-compatible API.
type OpenAIClient struct {
	model     string
	maxTokens int
	client    *openai.Client
}

var _ Completer = (*OpenAIClient)(nil)

// NewOpenAIClient applies defaults: gpt-4o-mini, 300 tokens, 30s timeout.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    openai.NewClientWithConfig(oc),
	}
}

// Complete sends one chat completion request. It never retries.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d: %s", apperr.ErrExternalService, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrExternalService, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", apperr.ErrExternalService)
	}
	return resp.Choices[0].Message.Content, nil
}
