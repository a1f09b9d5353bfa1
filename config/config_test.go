package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/chatbot_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Chat.ContextLimit)
	assert.Equal(t, 30, cfg.Chat.RateLimit)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouter.BaseURL)
	assert.Equal(t, "Chatbot Platform", cfg.OpenRouter.AppTitle)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestValidate_RequiresProviderKeyInProduction(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/chatbot")
	t.Setenv("APP_ENV", "production")
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/chatbot")
	t.Setenv("CHAT_CONTEXT_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Chat.ContextLimit)
}
