package mock_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kiranshivaraju/slabscan/internal/narrative/mock"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- NewMockProvider ---

func TestNewMockProvider_Identity(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
	assert.Equal(t, "mock-v1", p.Model())
}

func TestNewMockProvider_Generate(t *testing.T) {
	p := mock.NewMockProvider()
	text, err := p.Generate(context.Background(), models.Prompt{Text: "assess", Language: models.LanguageEN, JSON: true})
	require.NoError(t, err)

	var out struct {
		Analysis        string   `json:"analysis"`
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Contains(t, out.Analysis, "Simulated assessment")
	assert.Len(t, out.Recommendations, 3)
}

func TestNewMockProvider_Localised(t *testing.T) {
	text, err := mock.NewMockProvider().Generate(context.Background(), models.Prompt{Language: models.LanguageZH})
	require.NoError(t, err)
	assert.Contains(t, text, "模拟评估")
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	p := mock.NewTextProvider("{}")
	_, _ = p.Generate(context.Background(), models.Prompt{Text: "one"})
	_, _ = p.Generate(context.Background(), models.Prompt{Text: "two"})

	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "two", calls[1].Text)
}

// --- NewFailingProvider ---

func TestNewFailingProvider(t *testing.T) {
	p := mock.NewFailingProvider(models.ErrProviderUnavailable)
	assert.Equal(t, "mock-failing", p.Name())

	_, err := p.Generate(context.Background(), models.Prompt{})
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)

	customErr := errors.New("custom AI error")
	_, err = mock.NewFailingProvider(customErr).Generate(context.Background(), models.Prompt{})
	assert.ErrorIs(t, err, customErr)
}

// --- NewTimeoutProvider ---

func TestNewTimeoutProvider(t *testing.T) {
	p := mock.NewTimeoutProvider()
	assert.Equal(t, "mock-timeout", p.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, models.Prompt{})
	assert.ErrorIs(t, err, models.ErrInferenceTimeout)
}

// --- Zero-value MockProvider ---

func TestMockProvider_NilFunc(t *testing.T) {
	p := &mock.MockProvider{Name_: "bare"}
	text, err := p.Generate(context.Background(), models.Prompt{})
	assert.NoError(t, err)
	assert.Equal(t, "", text)
}

// --- Sentinel errors ---

func TestSentinelErrors_Distinct(t *testing.T) {
	errs := []error{
		models.ErrMissingCredentials,
		models.ErrProviderUnavailable,
		models.ErrInferenceTimeout,
		models.ErrInvalidResponse,
	}
	for i := range errs {
		for j := range errs {
			if i != j {
				assert.NotErrorIs(t, errs[i], errs[j])
			}
		}
	}
}
