package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "sage-clone/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// AI
	LiteLLMURL          string
	ModelID             string
	OpenRouterAPIKey    string
	EmbeddingModel      string
	EmbeddingDimensions int

	// Retrieval
	RetrievalStrategy string // "direct" or "retriever"
	TopK              int
	LLMTimeout        time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		Neo4jURI:            getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		LiteLLMURL:          getEnv("LITELLM_URL", "http://localhost:4000"),
		ModelID:             getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		OpenRouterAPIKey:    getEnv("OPENROUTER_API_KEY", ""),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 3072),
		RetrievalStrategy:   getEnv("RETRIEVAL_STRATEGY", "direct"),
		TopK:                getEnvInt("TOP_K", 5),
		LLMTimeout:          time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.LiteLLMURL == "" {
		return apperrors.NewConfigMissingRequired("LITELLM_URL")
	}
	if c.ModelID == "" {
		return apperrors.NewConfigMissingRequired("MODEL_ID")
	}
	if c.EmbeddingModel == "" {
		return apperrors.NewConfigMissingRequired("EMBEDDING_MODEL")
	}
	if c.RetrievalStrategy != "direct" && c.RetrievalStrategy != "retriever" {
		return fmt.Errorf("RETRIEVAL_STRATEGY must be 'direct' or 'retriever', got %q", c.RetrievalStrategy)
	}
	if c.TopK < 1 {
		return fmt.Errorf("TOP_K must be positive")
	}
	// OpenRouter API key is optional for development (LiteLLM can hold keys)
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
