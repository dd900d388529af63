// Package llm talks to an OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EasterCompany/dex-telephony-service/config"
	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Message is one entry of a chat completion request.
type Message struct {
	Role    string
	Content string
}

// Options bounds a single completion.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Completer produces the next assistant message for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Client is a Completer backed by go-openai.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a client from the llm section of the config.
func NewClient(cfg config.LLMConfig) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Client{
		api:     openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout(),
	}
}

func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
