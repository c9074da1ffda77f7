// Package gemini talks to the Google Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiranshivaraju/slabscan/internal/config"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// Provider implements models.NarrativeProvider using Gemini generateContent.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewProvider creates a Gemini provider. The HTTP client timeout is a backstop;
// callers bound each request with their context.
func NewProvider(cfg config.GeminiConfig, timeout time.Duration) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Name() string  { return "gemini" }
func (p *Provider) Model() string { return p.model }

// Generate sends a single-turn request and returns the concatenated text of the
// first candidate. A response with no candidates yields empty text.
func (p *Provider) Generate(ctx context.Context, prompt models.Prompt) (string, error) {
	if p.apiKey == "" {
		return "", models.ErrMissingCredentials
	}

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt.Text}}}},
	}
	if prompt.JSON {
		body.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", models.ErrProviderUnavailable, resp.StatusCode, errorMessage(resp.Body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding gemini response: %v", models.ErrInvalidResponse, err)
	}

	return out.text(), nil
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", models.ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", models.ErrProviderUnavailable, err)
}

// errorMessage extracts the API error message from a non-200 body, if any.
func errorMessage(r io.Reader) string {
	var body errorResponse
	data, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Message == "" {
		return strings.TrimSpace(string(data))
	}
	return body.Error.Message
}

// --- Gemini wire types ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var _ models.NarrativeProvider = (*Provider)(nil)
