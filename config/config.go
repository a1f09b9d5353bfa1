package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
	OpenRouter OpenRouterConfig
	OpenAI     OpenAIConfig
	Chat       ChatConfig
	App        AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

type OpenRouterConfig struct {
	APIKey   string
	BaseURL  string
	Referer  string
	AppTitle string
	Timeout  time.Duration
	RPS      float64
	Burst    int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type ChatConfig struct {
	// ContextLimit is the number of recent turns sent to the model.
	ContextLimit int
	// RateLimit caps chat submissions per user per minute. 0 disables.
	RateLimit int
}

type AppConfig struct {
	Environment string
	Version     string
	// TurnRetention is how long conversation data of a deleted project
	// is kept before the nightly sweeper purges it.
	TurnRetention time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:   getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:  getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Referer:  getEnv("APP_URL", "http://localhost:3000"),
			AppTitle: getEnv("APP_TITLE", "Chatbot Platform"),
			Timeout:  time.Duration(getEnvAsInt("OPENROUTER_TIMEOUT_SECONDS", 60)) * time.Second,
			RPS:      float64(getEnvAsInt("OPENROUTER_RPS", 5)),
			Burst:    getEnvAsInt("OPENROUTER_BURST", 10),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Chat: ChatConfig{
			ContextLimit: getEnvAsInt("CHAT_CONTEXT_LIMIT", 10),
			RateLimit:    getEnvAsInt("CHAT_RATE_LIMIT", 30),
		},
		App: AppConfig{
			Environment:   getEnv("APP_ENV", "development"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			TurnRetention: time.Duration(getEnvAsInt("TURN_RETENTION_DAYS", 30)) * 24 * time.Hour,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	// The chat core cannot serve a single request without the provider
	// credential, so surface the misconfiguration at startup instead of
	// on the first chat submission.
	if c.OpenRouter.APIKey == "" && c.App.Environment == "production" {
		return fmt.Errorf("OPENROUTER_API_KEY is required in production")
	}

	if c.Chat.ContextLimit <= 0 {
		return fmt.Errorf("CHAT_CONTEXT_LIMIT must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
