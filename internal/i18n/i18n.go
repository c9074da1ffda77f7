// Package i18n holds the user-facing string tables for each supported language.
package i18n

import (
	_ "embed"
	"fmt"

	"github.com/kiranshivaraju/slabscan/pkg/models"
	"gopkg.in/yaml.v3"
)

// Keys used outside the web client.
const (
	KeyFileParsed     = "fileParsed"
	KeyCameraDenied   = "cameraDenied"
	KeyPromptLanguage = "promptLanguage"
	KeyReportTitle    = "reportTitle"
	KeyProject        = "project"
	KeyGeneratedAt    = "generatedAt"
	KeyAvgDev         = "avgDev"
	KeyMaxDev         = "maxDev"
	KeyMinDev         = "minDev"
	KeyFlatness       = "flatness"
	KeyTolerance      = "tolerance"
	KeyDeviationMap   = "deviationMap"
	KeyAnalysis       = "analysis"
	KeyRemedialAction = "remedialAction"
	KeyExportPDF      = "exportPdf"
)

//go:embed locales.yaml
var localesYAML []byte

// Catalog maps a language to its key/value string table.
type Catalog struct {
	tables map[models.Language]map[string]string
}

// Load parses the embedded string tables.
func Load() (*Catalog, error) {
	return Parse(localesYAML)
}

// MustLoad is Load for package initialisation paths where the embedded tables are known good.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a Catalog from YAML of the form {LANG: {key: text}}.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing locales: %w", err)
	}

	tables := make(map[models.Language]map[string]string, len(raw))
	for lang, table := range raw {
		l := models.Language(lang)
		if !l.Valid() {
			return nil, fmt.Errorf("%w: unknown locale %q", models.ErrInvalidInput, lang)
		}
		tables[l] = table
	}
	if _, ok := tables[models.LanguageEN]; !ok {
		return nil, fmt.Errorf("%w: locales must define EN", models.ErrInvalidInput)
	}
	return &Catalog{tables: tables}, nil
}

// T returns the text for key in lang, falling back to English and then to the key itself.
func (c *Catalog) T(lang models.Language, key string) string {
	if v, ok := c.tables[lang][key]; ok {
		return v
	}
	if v, ok := c.tables[models.LanguageEN][key]; ok {
		return v
	}
	return key
}

// Table returns a copy of the full string table for lang, English keys filling any gaps.
func (c *Catalog) Table(lang models.Language) map[string]string {
	out := make(map[string]string, len(c.tables[models.LanguageEN]))
	for k, v := range c.tables[models.LanguageEN] {
		out[k] = v
	}
	for k, v := range c.tables[lang] {
		out[k] = v
	}
	return out
}
