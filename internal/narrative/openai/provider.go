// Package openai implements narrative providers for OpenAI and for servers that
// expose an OpenAI-compatible chat completions API (Ollama, vLLM).
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/sashabaranov/go-openai"
)

const (
	maxTokens    = 1024
	systemPrompt = "You write concise quality-control assessments of concrete slab flatness scans."
)

// Provider implements models.NarrativeProvider on a chat completions endpoint.
type Provider struct {
	*openai.Client
	name       string
	model      string
	requireKey bool
	hasKey     bool
}

// NewProvider creates a provider for the OpenAI API. An empty BaseURL uses api.openai.com.
func NewProvider(cfg config.OpenAIConfig) *Provider {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Provider{
		Client:     openai.NewClientWithConfig(c),
		name:       "openai",
		model:      cfg.Model,
		requireKey: true,
		hasKey:     cfg.APIKey != "",
	}
}

// NewOllamaProvider creates a provider for Ollama's OpenAI-compatible endpoint.
func NewOllamaProvider(cfg config.OllamaConfig) *Provider {
	return newCompatible("ollama", cfg.BaseURL, cfg.Model)
}

// NewVLLMProvider creates a provider for a vLLM server.
func NewVLLMProvider(cfg config.VLLMConfig) *Provider {
	return newCompatible("vllm", cfg.BaseURL, cfg.Model)
}

func newCompatible(name, baseURL, model string) *Provider {
	// Local servers ignore the key but the client always sends one.
	c := openai.DefaultConfig(name)
	c.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &Provider{
		Client: openai.NewClientWithConfig(c),
		name:   name,
		model:  model,
	}
}

func (p *Provider) Name() string  { return p.name }
func (p *Provider) Model() string { return p.model }

// Generate runs one chat completion and returns the first choice's content.
func (p *Provider) Generate(ctx context.Context, prompt models.Prompt) (string, error) {
	if p.requireKey && !p.hasKey {
		return "", models.ErrMissingCredentials
	}

	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt.Text},
		},
	}
	if prompt.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// Reasoning models reject max_tokens.
	if isReasoningModel(p.model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := p.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// classifyError maps client errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %s", models.ErrProviderUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

var _ models.NarrativeProvider = (*Provider)(nil)
