package narrative

import (
	"fmt"

	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/internal/narrative/gemini"
	"github.com/kiranshivaraju/slabscan/internal/narrative/mock"
	"github.com/kiranshivaraju/slabscan/internal/narrative/openai"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// NewProvider constructs the appropriate narrative provider based on config.
// Called once at startup. Missing credentials are not an error here; the
// provider reports them per request and the service falls back.
func NewProvider(cfg config.AIConfig) (models.NarrativeProvider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return gemini.NewProvider(cfg.Gemini, cfg.InferenceTimeout), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "ollama":
		return openai.NewOllamaProvider(cfg.Ollama), nil
	case "vllm":
		return openai.NewVLLMProvider(cfg.VLLM), nil
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, ollama, vllm, mock", cfg.Provider)
	}
}
