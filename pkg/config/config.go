// Package config loads settings from defaults, an optional YAML file and the environment
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultSystemPrompt = "You are a helpful assistant with access to tools. Use the available tools when appropriate to help the user."

type Config struct {
	API            APIConfig       `mapstructure:"api"`
	Model          string          `mapstructure:"model"`
	Reasoning      string          `mapstructure:"reasoning"`
	SystemPrompt   string          `mapstructure:"system_prompt"`
	MaxTurns       int             `mapstructure:"max_turns"`
	ExitSentinel   string          `mapstructure:"exit_sentinel"`
	Stream         bool            `mapstructure:"stream"`
	ParallelTools  bool            `mapstructure:"parallel_tools"`
	TranscriptFile string          `mapstructure:"transcript_file"`
	Log            LogConfig       `mapstructure:"log"`
	Tools          ToolsConfig     `mapstructure:"tools"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type APIConfig struct {
	URL            string        `mapstructure:"url"`
	Key            string        `mapstructure:"key"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// Debug also turns on the SDK's HTTP debug log.
	Debug bool `mapstructure:"debug"`
}

type ToolsConfig struct {
	Timeout    time.Duration            `mapstructure:"timeout"`
	Timeouts   map[string]time.Duration `mapstructure:"timeouts"`
	Weather    WeatherConfig            `mapstructure:"weather"`
	Calculator CalculatorConfig         `mapstructure:"calculator"`
}

type WeatherConfig struct {
	MinTemperature int           `mapstructure:"min_temperature"`
	MaxTemperature int           `mapstructure:"max_temperature"`
	MinHumidity    int           `mapstructure:"min_humidity"`
	MaxHumidity    int           `mapstructure:"max_humidity"`
	Delay          time.Duration `mapstructure:"delay"`
}

type CalculatorConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type RateLimitConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// Load reads the configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("api.url", "http://127.0.0.1:11434/v1")
	v.SetDefault("api.key", "")
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("api.request_timeout", 2*time.Minute)
	v.SetDefault("model", "qwen3:1.7b")
	v.SetDefault("reasoning", "")
	v.SetDefault("system_prompt", DefaultSystemPrompt)
	v.SetDefault("max_turns", 8)
	v.SetDefault("exit_sentinel", "exit")
	v.SetDefault("stream", false)
	v.SetDefault("parallel_tools", false)
	v.SetDefault("transcript_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.debug", false)
	v.SetDefault("tools.timeout", 10*time.Second)
	v.SetDefault("tools.weather.min_temperature", -10)
	v.SetDefault("tools.weather.max_temperature", 35)
	v.SetDefault("tools.weather.min_humidity", 30)
	v.SetDefault("tools.weather.max_humidity", 90)
	v.SetDefault("tools.weather.delay", 500*time.Millisecond)
	v.SetDefault("tools.calculator.delay", 100*time.Millisecond)
	v.SetDefault("rate_limit.min_interval", time.Duration(0))

	v.SetEnvPrefix("TOOLCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.url", "TOOLCHAT_API_URL", "OPENAI_URL"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("api.key", "TOOLCHAT_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.URL) == "" {
		return fmt.Errorf("api.url is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns)
	}
	if c.Tools.Timeout <= 0 {
		return fmt.Errorf("tools.timeout must be positive, got %s", c.Tools.Timeout)
	}
	if w := c.Tools.Weather; w.MaxTemperature <= w.MinTemperature {
		return fmt.Errorf("tools.weather: max_temperature %d must exceed min_temperature %d", w.MaxTemperature, w.MinTemperature)
	}
	if w := c.Tools.Weather; w.MaxHumidity <= w.MinHumidity {
		return fmt.Errorf("tools.weather: max_humidity %d must exceed min_humidity %d", w.MaxHumidity, w.MinHumidity)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
