// Package mock provides narrative providers for tests and offline demos.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// MockProvider satisfies models.NarrativeProvider for testing.
type MockProvider struct {
	Name_        string
	Model_       string
	GenerateFunc func(ctx context.Context, prompt models.Prompt) (string, error)

	mu      sync.Mutex
	prompts []models.Prompt
}

func (m *MockProvider) Name() string  { return m.Name_ }
func (m *MockProvider) Model() string { return m.Model_ }

func (m *MockProvider) Generate(ctx context.Context, prompt models.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

// Calls returns the prompts received so far.
func (m *MockProvider) Calls() []models.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Prompt(nil), m.prompts...)
}

// NewMockProvider returns a MockProvider that answers with a fixed, well-formed assessment.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock",
		Model_: "mock-v1",
		GenerateFunc: func(_ context.Context, prompt models.Prompt) (string, error) {
			analysis := "Simulated assessment: the slab is within tolerance across most of the surface."
			if prompt.Language == models.LanguageZH {
				analysis = "模拟评估：楼板大部分区域在允许偏差范围内。"
			}
			out, err := json.Marshal(map[string]any{
				"analysis": analysis,
				"recommendations": []string{
					"Grind high spots above +5 mm",
					"Fill low spots below -5 mm with self-leveling compound",
					"Re-scan after remediation",
				},
			})
			if err != nil {
				return "", fmt.Errorf("encoding mock narrative: %w", err)
			}
			return string(out), nil
		},
	}
}

// NewTextProvider returns a MockProvider that always answers with text.
func NewTextProvider(text string) *MockProvider {
	return &MockProvider{
		Name_:  "mock-text",
		Model_: "mock-v1",
		GenerateFunc: func(_ context.Context, _ models.Prompt) (string, error) {
			return text, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_:  "mock-failing",
		Model_: "mock-v1",
		GenerateFunc: func(_ context.Context, _ models.Prompt) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock-timeout",
		Model_: "mock-v1",
		GenerateFunc: func(ctx context.Context, _ models.Prompt) (string, error) {
			<-ctx.Done()
			return "", models.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements NarrativeProvider.
var _ models.NarrativeProvider = (*MockProvider)(nil)
