package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/receiptscan/receipt-ocr-service/api"
	"github.com/receiptscan/receipt-ocr-service/internal/ai"
	"github.com/receiptscan/receipt-ocr-service/internal/logger"
	"github.com/receiptscan/receipt-ocr-service/internal/models"
	"github.com/receiptscan/receipt-ocr-service/internal/ocr"
	"github.com/receiptscan/receipt-ocr-service/internal/pipeline"
)

func main() {
	// Load .env file if present; real deployments set the environment directly.
	_ = godotenv.Load()

	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger.Init(config.LogLevel)

	ctx := context.Background()

	extractor, err := createExtractor(ctx, config)
	if err != nil {
		log.Fatalf("Failed to create text extractor: %v", err)
	}
	defer extractor.Close()

	chatProvider, err := createChatProvider(ctx, config)
	if err != nil {
		log.Fatalf("Failed to create chat provider: %v", err)
	}
	defer chatProvider.Close()

	pipe := pipeline.New(extractor, ai.NewStructurer(chatProvider), config.UpstreamTimeout)

	handler := api.NewHandler(config, pipe)
	router := handler.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	logger.L.Info("Starting server",
		"addr", addr,
		"ocr_provider", config.OCR.Provider,
		"ai_provider", config.AI.Provider,
	)
	logger.L.Info("Endpoints registered",
		"process", "POST /process-receipt",
		"health", "GET /health",
	)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  2 * config.UpstreamTimeout,
		WriteTimeout: 3 * config.UpstreamTimeout,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig reads the YAML config file and applies environment overrides. A
// missing file is fine: everything can come from the environment.
func loadConfig(path string) (*models.Config, error) {
	config := &models.Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides lets the environment win over the config file.
func applyEnvOverrides(config *models.Config) {
	if v := os.Getenv("HOST"); v != "" {
		config.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Port = port
		}
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.UpstreamTimeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}

	if v := os.Getenv("OCR_PROVIDER"); v != "" {
		config.OCR.Provider = v
	}
	if v := os.Getenv("OCR_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.OCR.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		config.OCR.CredentialsFile = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.OCR.Gemini.APIKey = v
		config.AI.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		config.OCR.Gemini.Model = v
		config.AI.Gemini.Model = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		config.OCR.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		config.OCR.Ollama.Model = v
	}

	if v := os.Getenv("AI_PROVIDER"); v != "" {
		config.AI.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.AI.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		config.AI.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		config.AI.OpenAI.Model = v
	}
}

// createExtractor builds the configured text-extraction provider.
func createExtractor(ctx context.Context, config *models.Config) (ocr.TextExtractor, error) {
	switch config.OCR.Provider {
	case "vision":
		return ocr.NewVisionExtractor(ctx, config.OCR.CredentialsFile, config.OCR.ConfidenceThreshold)
	case "gemini":
		return ocr.NewGeminiExtractor(ctx, config.OCR.Gemini.APIKey, config.OCR.Gemini.Model)
	case "ollama":
		return ocr.NewOllamaExtractor(config.OCR.Ollama.BaseURL, config.OCR.Ollama.Model)
	default:
		return nil, fmt.Errorf("unsupported ocr provider: %q", config.OCR.Provider)
	}
}

// createChatProvider builds the configured structuring provider.
func createChatProvider(ctx context.Context, config *models.Config) (ai.ChatProvider, error) {
	switch config.AI.Provider {
	case "openai":
		return ai.NewOpenAIProvider(config.AI.OpenAI.APIKey, config.AI.OpenAI.BaseURL, config.AI.OpenAI.Model)
	case "gemini":
		return ai.NewGeminiProvider(ctx, config.AI.Gemini.APIKey, config.AI.Gemini.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %q", config.AI.Provider)
	}
}
