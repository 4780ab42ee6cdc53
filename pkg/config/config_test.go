package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_URL", "")
	os.Unsetenv("OPENAI_URL")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://127.0.0.1:11434/v1", cfg.API.URL)
	assert.Equal(t, "qwen3:1.7b", cfg.Model)
	assert.Equal(t, 8, cfg.MaxTurns)
	assert.Equal(t, "exit", cfg.ExitSentinel)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.Equal(t, 10*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, -10, cfg.Tools.Weather.MinTemperature)
	assert.Equal(t, 35, cfg.Tools.Weather.MaxTemperature)
	assert.Equal(t, 500*time.Millisecond, cfg.Tools.Weather.Delay)
	assert.Equal(t, 2*time.Minute, cfg.API.RequestTimeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: gpt-4o-mini
max_turns: 3
api:
  url: https://api.example.com/v1
  request_timeout: 30s
tools:
  timeout: 2s
  timeouts:
    get_current_weather: 5s
  weather:
    min_temperature: 0
    max_temperature: 10
log:
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 3, cfg.MaxTurns)
	assert.Equal(t, "https://api.example.com/v1", cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Tools.Timeouts["get_current_weather"])
	assert.Equal(t, 10, cfg.Tools.Weather.MaxTemperature)
	assert.Equal(t, 90, cfg.Tools.Weather.MaxHumidity)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("OPENAI_URL", "http://gateway:8080/v1")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TOOLCHAT_MODEL", "llama3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://gateway:8080/v1", cfg.API.URL)
	assert.Equal(t, "sk-test", cfg.API.Key)
	assert.Equal(t, "llama3", cfg.Model)
}

func TestValidate(t *testing.T) {
	valid, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty url", mutate: func(c *Config) { c.API.URL = " " }},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }},
		{name: "zero max turns", mutate: func(c *Config) { c.MaxTurns = 0 }},
		{name: "zero tool timeout", mutate: func(c *Config) { c.Tools.Timeout = 0 }},
		{name: "inverted temperature", mutate: func(c *Config) { c.Tools.Weather.MaxTemperature = -20 }},
		{name: "inverted humidity", mutate: func(c *Config) { c.Tools.Weather.MinHumidity = 95 }},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
