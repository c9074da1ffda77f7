package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/internal/narrative/openai"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionServer serves /v1/chat/completions, handing each decoded request to inspect.
func completionServer(t *testing.T, content string, inspect func(req goopenai.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req goopenai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if inspect != nil {
			inspect(req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goopenai.ChatCompletionResponse{
			ID:      "chatcmpl-1",
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []goopenai.ChatCompletionChoice{{
				Index:        0,
				Message:      goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: content},
				FinishReason: goopenai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestOpenAI_Generate(t *testing.T) {
	var got goopenai.ChatCompletionRequest
	ts := completionServer(t, `{"analysis":"flat","recommendations":["none"]}`, func(req goopenai.ChatCompletionRequest) {
		got = req
	})

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: ts.URL + "/v1"})
	text, err := p.Generate(context.Background(), models.Prompt{Text: "assess", JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"analysis":"flat","recommendations":["none"]}`, text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, goopenai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "assess", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, goopenai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
	assert.Equal(t, 1024, got.MaxTokens)
	assert.Zero(t, got.MaxCompletionTokens)
}

func TestOpenAI_ReasoningModelUsesCompletionTokens(t *testing.T) {
	var got goopenai.ChatCompletionRequest
	ts := completionServer(t, "ok", func(req goopenai.ChatCompletionRequest) { got = req })

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "sk-test", Model: "o3-mini", BaseURL: ts.URL + "/v1"})
	_, err := p.Generate(context.Background(), models.Prompt{Text: "assess"})

	require.NoError(t, err)
	assert.Zero(t, got.MaxTokens)
	assert.Equal(t, 1024, got.MaxCompletionTokens)
	assert.Nil(t, got.ResponseFormat)
}

func TestOpenAI_MissingAPIKey(t *testing.T) {
	p := openai.NewProvider(config.OpenAIConfig{Model: "gpt-4o-mini"})
	_, err := p.Generate(context.Background(), models.Prompt{Text: "assess"})
	assert.ErrorIs(t, err, models.ErrMissingCredentials)
}

func TestOllama_NoKeyRequired(t *testing.T) {
	ts := completionServer(t, "from ollama", nil)

	p := openai.NewOllamaProvider(config.OllamaConfig{BaseURL: ts.URL + "/", Model: "llama3"})
	text, err := p.Generate(context.Background(), models.Prompt{Text: "assess"})

	require.NoError(t, err)
	assert.Equal(t, "from ollama", text)
	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, "llama3", p.Model())
}

func TestVLLM_Identity(t *testing.T) {
	p := openai.NewVLLMProvider(config.VLLMConfig{BaseURL: "http://vllm:8000", Model: "mistral-7b"})
	assert.Equal(t, "vllm", p.Name())
	assert.Equal(t, "mistral-7b", p.Model())
}

func TestGenerate_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer ts.Close()

	p := openai.NewVLLMProvider(config.VLLMConfig{BaseURL: ts.URL, Model: "m"})
	_, err := p.Generate(context.Background(), models.Prompt{Text: "assess"})

	require.ErrorIs(t, err, models.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerate_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := openai.NewOllamaProvider(config.OllamaConfig{BaseURL: ts.URL, Model: "m"})
	_, err := p.Generate(ctx, models.Prompt{Text: "assess"})
	assert.ErrorIs(t, err, models.ErrInferenceTimeout)
}

func TestGenerate_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	p := openai.NewOllamaProvider(config.OllamaConfig{BaseURL: ts.URL, Model: "m"})
	text, err := p.Generate(context.Background(), models.Prompt{Text: "assess"})
	require.NoError(t, err)
	assert.Empty(t, text)
}
