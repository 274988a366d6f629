package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// BOOKOFMONTH_LLM_GEMINI_API_KEY sets llm.gemini_api_key.
const EnvPrefix = "BOOKOFMONTH"

// Load configuration from environment variables and an optional config.yaml
// in the working directory or ./config.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile loads configuration from the given file, with environment
// variables still taking precedence. A missing file is an error.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override keys that
// have no value in the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_create_schema", true)
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.openai_model_name", "gpt-4o-mini")
	v.SetDefault("llm.image_model_name", "imagen-3.0-generate-002")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.requests_per_minute", 60)
	v.SetDefault("llm.timeout_seconds", 60)

	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.news_api_key", "")
	v.SetDefault("news.base_url", "https://newsapi.org")
	v.SetDefault("news.feed_urls", []string{})
	v.SetDefault("news.language", "en")
	v.SetDefault("news.query", "world news for children")
	v.SetDefault("news.days_ago", 1)

	v.SetDefault("media.pexels_api_key", "")
	v.SetDefault("media.youtube_api_key", "")
	v.SetDefault("media.requests_per_minute", 30)

	v.SetDefault("pipeline.age_range", "7-9")
	v.SetDefault("pipeline.question_count", 3)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.generate_images", false)
	v.SetDefault("pipeline.image_dir", "generated_images")
	v.SetDefault("pipeline.schedule_interval", "24h")
}
