// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Per-backend model and API key lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
)

// Settings holds all application configuration.
type Settings struct {
	Backends  map[model.ModelID]BackendConfig
	Decider   BackendConfig
	Generate  GenerateConfig
	Knowledge KnowledgeConfig
	Scrape    ScrapeConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
	Server    ServerConfig
}

// BackendConfig holds one model backend's credentials and model name.
type BackendConfig struct {
	APIKey string
	Model  string
}

// GenerateConfig holds ad-generation sampling parameters and the per-branch
// deadline.
type GenerateConfig struct {
	Temperature   float64
	TopP          float64
	MaxTokens     int
	BranchTimeout time.Duration
}

// Params returns the sampling parameters in the shape the workflow takes.
func (c GenerateConfig) Params() model.GenerationParams {
	return model.GenerationParams{
		Temperature: float32(c.Temperature),
		TopP:        float32(c.TopP),
		MaxTokens:   c.MaxTokens,
	}
}

// KnowledgeConfig locates the knowledge base.
type KnowledgeConfig struct {
	DBPath string
}

// ScrapeConfig locates the external scraping service. Empty URL disables
// scraping.
type ScrapeConfig struct {
	ServiceURL string
}

// SearchConfig holds the web search credentials.
type SearchConfig struct {
	SerperAPIKey string
}

// RateLimitConfig bounds run admission.
type RateLimitConfig struct {
	RedisAddr string
	Limit     int
	Window    time.Duration
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string
}

// backendInfo holds the environment variable names for one backend.
type backendInfo struct {
	apiKeyEnv    string
	modelEnv     string
	defaultModel string
}

var backends = map[model.ModelID]backendInfo{
	model.ModelOpenAI:    {"OPENAI_API_KEY", "OPENAI_MODEL", llm.DefaultOpenAIModel},
	model.ModelAnthropic: {"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", llm.DefaultAnthropicModel},
	model.ModelGemini:    {"GEMINI_API_KEY", "GEMINI_MODEL", llm.DefaultGeminiModel},
}

// New loads settings from the environment. Backends without an API key are
// simply absent from Settings.Backends; the caller decides whether that is
// fatal.
func New() (Settings, error) {
	configured := make(map[model.ModelID]BackendConfig)
	for id, info := range backends {
		key := os.Getenv(info.apiKeyEnv)
		if key == "" {
			continue
		}
		modelName := os.Getenv(info.modelEnv)
		if modelName == "" {
			modelName = info.defaultModel
		}
		configured[id] = BackendConfig{APIKey: key, Model: modelName}
	}

	deciderModel := os.Getenv("DECIDER_MODEL")
	if deciderModel == "" {
		deciderModel = llm.DefaultDeciderModel
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}
	topP, err := getEnvFloat64("LLM_TOP_P", 0.9)
	if err != nil {
		return Settings{}, err
	}
	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 1500)
	if err != nil {
		return Settings{}, err
	}
	branchTimeout, err := getEnvDuration("BRANCH_TIMEOUT", 3*time.Minute)
	if err != nil {
		return Settings{}, err
	}

	rateLimit, err := getEnvInt("RATE_LIMIT_REQUESTS", 3)
	if err != nil {
		return Settings{}, err
	}
	rateWindow, err := getEnvDuration("RATE_LIMIT_WINDOW", 2*time.Minute)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Backends: configured,
		Decider: BackendConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  deciderModel,
		},
		Generate: GenerateConfig{
			Temperature:   temperature,
			TopP:          topP,
			MaxTokens:     maxTokens,
			BranchTimeout: branchTimeout,
		},
		Knowledge: KnowledgeConfig{
			DBPath: getEnvString("KNOWLEDGE_DB", "data/knowledge.db"),
		},
		Scrape: ScrapeConfig{
			ServiceURL: os.Getenv("SCRAPE_SERVICE_URL"),
		},
		Search: SearchConfig{
			SerperAPIKey: os.Getenv("SERPER_API_KEY"),
		},
		RateLimit: RateLimitConfig{
			RedisAddr: getEnvString("REDIS_ADDR", "localhost:6379"),
			Limit:     rateLimit,
			Window:    rateWindow,
		},
		Server: ServerConfig{
			Addr: getEnvString("SERVER_ADDR", ":8080"),
		},
	}, nil
}

// MustNew loads settings and panics on invalid values.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
