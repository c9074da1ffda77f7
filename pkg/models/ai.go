// Package models contains shared data models used across the SlabScan codebase.
package models

import "context"

// NarrativeProvider is the core interface that all text-generation integrations must implement.
// Callers receive it by injection and never reach for a concrete provider.
type NarrativeProvider interface {
	// Generate sends the prompt and returns the raw model text.
	Generate(ctx context.Context, prompt Prompt) (string, error)
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string
	// Model returns the model the provider talks to.
	Model() string
}

// Prompt is the input to a text-generation request.
type Prompt struct {
	Text     string
	Language Language
	// JSON asks the provider to constrain output to a JSON object when it supports it.
	JSON bool
}

// Narrative is the written assessment returned for a scan, or its fallback.
type Narrative struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
	Provider        string   `json:"provider"`
	Model           string   `json:"model"`
	Fallback        bool     `json:"fallback"`
}
