package models

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the service configuration
type Config struct {
	// Server config
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Upload limits
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// Timeout applied to each upstream call (extraction, structuring)
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`

	LogLevel string `yaml:"log_level"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`
}

// OCRConfig selects and configures the text-extraction provider
type OCRConfig struct {
	Provider string `yaml:"provider"` // "vision", "gemini", "ollama"

	// Text regions below this confidence are dropped (vision provider only)
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// Path to the Google Cloud service account key (vision provider)
	CredentialsFile string `yaml:"credentials_file"`

	Gemini GeminiConfig `yaml:"gemini"`
	Ollama OllamaConfig `yaml:"ollama"`
}

// AIConfig selects and configures the structuring provider
type AIConfig struct {
	Provider string `yaml:"provider"` // "openai", "gemini"

	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// OpenAIConfig for OpenAI or any OpenAI-compatible endpoint
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // for custom endpoints
	Model   string `yaml:"model"`
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OllamaConfig for a local Ollama instance
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // default http://localhost:11434
	Model   string `yaml:"model"`    // e.g. "llava"
}

// ApplyDefaults fills zero values with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 10 * 1024 * 1024
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = 60 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OCR.Provider == "" {
		c.OCR.Provider = "vision"
	}
	if c.OCR.ConfidenceThreshold == 0 {
		c.OCR.ConfidenceThreshold = 0.3
	}
	if c.OCR.Ollama.BaseURL == "" {
		c.OCR.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
}

// Validate checks that the selected providers have their credentials set.
// Called once at startup; the process must not come up half-configured.
func (c *Config) Validate() error {
	switch c.OCR.Provider {
	case "vision":
		if c.OCR.CredentialsFile == "" {
			return fmt.Errorf("ocr provider %q requires credentials_file (or GOOGLE_APPLICATION_CREDENTIALS)", c.OCR.Provider)
		}
	case "gemini":
		if c.OCR.Gemini.APIKey == "" {
			return fmt.Errorf("ocr provider %q requires a Gemini API key (or GEMINI_API_KEY)", c.OCR.Provider)
		}
	case "ollama":
		// Local instance, no credential needed.
	default:
		return fmt.Errorf("unsupported ocr provider: %q", c.OCR.Provider)
	}

	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai provider %q requires an OpenAI API key (or OPENAI_API_KEY)", c.AI.Provider)
		}
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("ai provider %q requires a Gemini API key (or GEMINI_API_KEY)", c.AI.Provider)
		}
	default:
		return fmt.Errorf("unsupported ai provider: %q", c.AI.Provider)
	}

	return nil
}

// AllowsExtension reports whether the file extension is accepted for upload.
func (c *Config) AllowsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range c.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
