package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the SlabScan server and CLI.
type Config struct {
	Server ServerConfig
	Scan   ScanConfig
	Redis  RedisConfig
	AI     AIConfig
	Export ExportConfig
}

type ServerConfig struct {
	Port            int
	Env             string
	DefaultLanguage string
	CORSOrigins     []string
	// RateLimit is the number of mutating requests a client may make per minute.
	RateLimit int
	// PDFFont is an optional TTF used for PDF reports. Without it reports are
	// rendered in English with core fonts.
	PDFFont string
}

type ScanConfig struct {
	GridSize int
	Delay    time.Duration
	// Camera selects the preview source: "simulated" or "denied".
	Camera string
}

type RedisConfig struct {
	// URL is optional; an in-process cache is used when empty.
	URL string
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Gemini           GeminiConfig
	OpenAI           OpenAIConfig
	Ollama           OllamaConfig
	VLLM             VLLMConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

// ExportConfig points at an S3-compatible bucket for report uploads.
type ExportConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Enabled reports whether report export is configured.
func (e ExportConfig) Enabled() bool {
	return e.Endpoint != ""
}

var validProviders = map[string]bool{
	"gemini": true,
	"openai": true,
	"ollama": true,
	"vllm":   true,
	"mock":   true,
}

var validCameras = map[string]bool{
	"simulated": true,
	"denied":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Missing AI credentials are not an error: narratives degrade to a fallback text.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            envInt("SLABSCAN_PORT", 8080),
			Env:             envString("SLABSCAN_ENV", "development"),
			DefaultLanguage: envString("SLABSCAN_DEFAULT_LANGUAGE", "ZH"),
			CORSOrigins:     envList("SLABSCAN_CORS_ORIGINS", []string{"*"}),
			RateLimit:       envInt("SLABSCAN_RATE_LIMIT", 60),
			PDFFont:         os.Getenv("SLABSCAN_PDF_FONT"),
		},
		Scan: ScanConfig{
			GridSize: envInt("SLABSCAN_GRID_SIZE", 20),
			Delay:    envDuration("SLABSCAN_SCAN_DELAY", 2500*time.Millisecond),
			Camera:   envString("SLABSCAN_CAMERA", "simulated"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "gemini"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Gemini: GeminiConfig{
				APIKey:  envString("GEMINI_API_KEY", os.Getenv("API_KEY")),
				Model:   envString("GEMINI_MODEL", "gemini-2.5-flash"),
				BaseURL: envString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
		},
		Export: ExportConfig{
			Endpoint:  os.Getenv("EXPORT_S3_ENDPOINT"),
			AccessKey: os.Getenv("EXPORT_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("EXPORT_S3_SECRET_KEY"),
			Bucket:    envString("EXPORT_S3_BUCKET", "slab-reports"),
			Region:    os.Getenv("EXPORT_S3_REGION"),
			UseSSL:    envBool("EXPORT_S3_USE_SSL", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SLABSCAN_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.DefaultLanguage != "EN" && c.Server.DefaultLanguage != "ZH" {
		return fmt.Errorf("SLABSCAN_DEFAULT_LANGUAGE must be EN or ZH; got %q", c.Server.DefaultLanguage)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("SLABSCAN_RATE_LIMIT must be positive, got %d", c.Server.RateLimit)
	}

	if c.Scan.GridSize <= 0 {
		return fmt.Errorf("SLABSCAN_GRID_SIZE must be positive, got %d", c.Scan.GridSize)
	}
	if c.Scan.Delay < 0 {
		return fmt.Errorf("SLABSCAN_SCAN_DELAY must not be negative, got %s", c.Scan.Delay)
	}
	if !validCameras[c.Scan.Camera] {
		return fmt.Errorf("SLABSCAN_CAMERA must be one of simulated, denied; got %q", c.Scan.Camera)
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of gemini, openai, ollama, vllm, mock; got %q", c.AI.Provider)
	}
	if c.AI.InferenceTimeout <= 0 {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT_SECS must be positive")
	}
	for name, u := range map[string]string{
		"GEMINI_BASE_URL": c.AI.Gemini.BaseURL,
		"OPENAI_BASE_URL": c.AI.OpenAI.BaseURL,
		"OLLAMA_BASE_URL": c.AI.Ollama.BaseURL,
		"VLLM_BASE_URL":   c.AI.VLLM.BaseURL,
	} {
		if u != "" && !isHTTPURL(u) {
			return fmt.Errorf("%s must start with http:// or https://, got %q", name, u)
		}
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}

	if c.Export.Enabled() {
		if strings.Contains(c.Export.Endpoint, "://") {
			return fmt.Errorf("EXPORT_S3_ENDPOINT must be host[:port] without a scheme, got %q", c.Export.Endpoint)
		}
		if c.Export.Bucket == "" {
			return fmt.Errorf("EXPORT_S3_BUCKET is required when EXPORT_S3_ENDPOINT is set")
		}
	}

	return nil
}

func isHTTPURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
