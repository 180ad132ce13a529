package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	FrontendURL string

	Anthropic AnthropicConfig
}

type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	APIVersion   string
	DefaultModel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		Anthropic: AnthropicConfig{
			APIKey:       getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:      getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			APIVersion:   "2023-06-01",
			DefaultModel: getEnv("ANTHROPIC_DEFAULT_MODEL", "claude-3-haiku-20240307"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
