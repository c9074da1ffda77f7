// Package narrative turns scan metrics into a written assessment with remedial steps.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/internal/cache"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/kiranshivaraju/slabscan/pkg/prompt"
)

// Fallback texts returned in place of a provider answer.
const (
	MissingKeyAnalysis = "API Key missing. Cannot generate AI analysis."
	MissingKeyAction   = "Check configuration"
	ConnectionAnalysis = "Error connecting to AI service."
	ConnectionAction   = "Retry analysis"
	EmptyAnalysis      = "Analysis failed."
)

const (
	narrativeTTL       = 24 * time.Hour
	maxAnalysisBytes   = 4000
	maxRecommendations = 10
	maxActionBytes     = 500
)

// Request identifies the scan to describe.
type Request struct {
	ScanID   uuid.UUID
	Metrics  models.AnalysisMetrics
	Regions  []models.DeviationRegion
	Language models.Language
}

// Service asks a provider for a narrative and degrades to fixed fallback texts.
type Service struct {
	provider models.NarrativeProvider
	cache    cache.Cache
	catalog  *i18n.Catalog
	builder  prompt.Builder
	timeout  time.Duration
}

// NewService creates a new Service. ca may be nil to disable caching.
func NewService(provider models.NarrativeProvider, ca cache.Cache, catalog *i18n.Catalog, timeout time.Duration) *Service {
	return &Service{
		provider: provider,
		cache:    ca,
		catalog:  catalog,
		timeout:  timeout,
	}
}

// ProviderName reports which provider the service calls.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Analyze returns the provider's assessment, or a fallback narrative when the
// provider cannot be reached or answers with something unusable. It never fails.
func (s *Service) Analyze(ctx context.Context, req Request) models.Narrative {
	if n, ok := s.cached(ctx, req); ok {
		return n
	}

	text := s.builder.Build(prompt.Params{
		Metrics:             req.Metrics,
		Hotspots:            req.Regions,
		LanguageInstruction: s.catalog.T(req.Language, i18n.KeyPromptLanguage),
	})

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.Generate(genCtx, models.Prompt{Text: text, Language: req.Language, JSON: true})
	if err != nil {
		slog.Warn("narrative generation failed",
			"provider", s.provider.Name(), "scan_id", req.ScanID, "error", err, "duration", time.Since(start))
		if errors.Is(err, models.ErrMissingCredentials) {
			return s.fallback(MissingKeyAnalysis, MissingKeyAction)
		}
		return s.fallback(ConnectionAnalysis, ConnectionAction)
	}

	n, err := parse(raw)
	if err != nil {
		slog.Warn("narrative response unusable",
			"provider", s.provider.Name(), "scan_id", req.ScanID, "error", err)
		return s.fallback(ConnectionAnalysis, ConnectionAction)
	}
	n.Provider = s.provider.Name()
	n.Model = s.provider.Model()

	slog.Info("narrative generated",
		"provider", n.Provider, "scan_id", req.ScanID, "language", req.Language, "duration", time.Since(start))
	s.store(ctx, req, n)
	return n
}

func (s *Service) fallback(analysis, action string) models.Narrative {
	return models.Narrative{
		Analysis:        analysis,
		Recommendations: []string{action},
		Provider:        s.provider.Name(),
		Model:           s.provider.Model(),
		Fallback:        true,
	}
}

func (s *Service) cached(ctx context.Context, req Request) (models.Narrative, bool) {
	if s.cache == nil || req.ScanID == uuid.Nil {
		return models.Narrative{}, false
	}
	data, found, err := s.cache.Get(ctx, cache.NarrativeKey(req.ScanID, req.Language))
	if err != nil || !found {
		return models.Narrative{}, false
	}
	var n models.Narrative
	if err := json.Unmarshal(data, &n); err != nil {
		return models.Narrative{}, false
	}
	return n, true
}

func (s *Service) store(ctx context.Context, req Request, n models.Narrative) {
	if s.cache == nil || req.ScanID == uuid.Nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.NarrativeKey(req.ScanID, req.Language), data, narrativeTTL); err != nil {
		slog.Warn("caching narrative failed", "scan_id", req.ScanID, "error", err)
	}
}

// parse decodes a provider answer of the form {"analysis": ..., "recommendations": [...]}.
// Empty text counts as an empty object.
func parse(raw string) (models.Narrative, error) {
	text := stripFences(raw)
	if text == "" {
		text = "{}"
	}

	var body struct {
		Analysis        any `json:"analysis"`
		Recommendations any `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return models.Narrative{}, fmt.Errorf("%w: %v", models.ErrInvalidResponse, err)
	}

	analysis, _ := body.Analysis.(string)
	if strings.TrimSpace(analysis) == "" {
		analysis = EmptyAnalysis
	}

	return models.Narrative{
		Analysis:        truncateString(analysis, maxAnalysisBytes),
		Recommendations: recommendations(body.Recommendations),
	}, nil
}

// recommendations accepts a list of strings or a single string; anything else is empty.
func recommendations(v any) []string {
	out := []string{}
	switch r := v.(type) {
	case string:
		if strings.TrimSpace(r) != "" {
			out = append(out, truncateString(r, maxActionBytes))
		}
	case []any:
		for _, item := range r {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			out = append(out, truncateString(s, maxActionBytes))
			if len(out) == maxRecommendations {
				break
			}
		}
	}
	return out
}

// stripFences removes a surrounding Markdown code fence such as ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
