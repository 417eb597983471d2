// Package config holds environment-driven configuration for the
// Solo in Public assistant service and CLI.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Port         string `env:"PORT" envDefault:"8787"`
	ClientOrigin string `env:"CLIENT_APP_URL" envDefault:"http://localhost:5173"`

	// Model providers. Any key left empty disables that provider.
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	BedrockModel    string `env:"BEDROCK_MODEL"`

	PremiumModel   string `env:"ASSISTANT_PREMIUM_MODEL" envDefault:"gpt-4o"`
	SecondaryModel string `env:"ASSISTANT_SECONDARY_MODEL" envDefault:"claude-3-5-haiku-latest"`
	EmbeddingModel string `env:"ASSISTANT_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	// Collaborator endpoints. Empty values select the local fallbacks
	// (in-process memory, keyword search, simulated handover, no-op
	// telemetry).
	MemoryServiceURL    string `env:"ASSISTANT_MEMORY_URL"`
	KnowledgeServiceURL string `env:"ASSISTANT_KNOWLEDGE_URL"`
	HandoverIntakeURL   string `env:"CHATWOOD_HANDOVER_URL"`
	TelemetrySinkURL    string `env:"ASSISTANT_TELEMETRY_URL"`

	// SurrealDB persistence (server mode). Empty URL runs the server
	// fully in-memory.
	SurrealDBURL       string `env:"SURREALDB_URL"`
	SurrealDBNamespace string `env:"SURREALDB_NAMESPACE" envDefault:"soloinpublic"`
	SurrealDBDatabase  string `env:"SURREALDB_DATABASE" envDefault:"assistant"`
	SurrealDBUser      string `env:"SURREALDB_USER" envDefault:"root"`
	SurrealDBPass      string `env:"SURREALDB_PASS" envDefault:"root"`

	// Assistant tuning knobs.
	MemoryWindow        int    `env:"ASSISTANT_MEMORY_WINDOW" envDefault:"6"`
	KnowledgeLimit      int    `env:"ASSISTANT_KNOWLEDGE_LIMIT" envDefault:"3"`
	ContentMonthlyLimit int    `env:"CONTENT_MONTHLY_LIMIT" envDefault:"3"`
	KnowledgePath       string `env:"ASSISTANT_KNOWLEDGE_PATH"`

	// Logging
	LogFile     string `env:"SOLO_LOG_FILE" envDefault:"/tmp/solo-in-public.log"`
	LogLevelRaw string `env:"SOLO_LOG_LEVEL" envDefault:"INFO"`
}

// Load reads a .env file when present, then parses configuration from
// environment variables.
func Load() (Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.MemoryWindow < 1 {
		return Config{}, fmt.Errorf("memory window must be at least 1, got %d", cfg.MemoryWindow)
	}
	if cfg.KnowledgeLimit < 1 {
		return Config{}, fmt.Errorf("knowledge limit must be at least 1, got %d", cfg.KnowledgeLimit)
	}
	return cfg, nil
}

// LogLevel resolves the configured slog level.
func (c Config) LogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevelRaw) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
