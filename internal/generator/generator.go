// Package generator produces natural-language text (advice, memory
// summaries) from a chat-completion model behind a small provider interface.
package generator

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Provider completes a system+user prompt pair into text. Implementations
// are injected into the services so tests can swap in fakes.
type Provider interface {
	Complete(ctx context.Context, system, user string, opts ...Option) (string, error)
}

// Options carries per-call generation parameters.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Option mutates generation parameters for a single call.
type Option func(*Options)

func WithTemperature(t float32) Option { return func(o *Options) { o.Temperature = t } }
func WithMaxTokens(n int) Option       { return func(o *Options) { o.MaxTokens = n } }

func applyOptions(opts []Option) Options {
	o := Options{Temperature: 0.7, MaxTokens: 256}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Config configures the OpenAI-backed provider. BaseURL is optional and
// exists for compatible gateways and tests.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAI implements Provider on the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generator: missing API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("generator: missing model name")
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(c), model: cfg.Model}, nil
}

func (g *OpenAI) Complete(ctx context.Context, system, user string, opts ...Option) (string, error) {
	o := applyOptions(opts)

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return out, nil
}
