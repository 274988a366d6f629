package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	News     NewsConfig     `mapstructure:"news" validate:"required"`
	Media    MediaConfig    `mapstructure:"media" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL may be empty for dry runs that use the in-memory stores.
type DatabaseConfig struct {
	URL              string `mapstructure:"url" validate:"omitempty,url"`
	AutoCreateSchema bool   `mapstructure:"auto_create_schema"`
	MaxOpenConns     int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey      string  `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	OpenAIModelName   string  `mapstructure:"openai_model_name" validate:"required"`
	ImageModelName    string  `mapstructure:"image_model_name" validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=1"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute" validate:"gte=0"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// NewsConfig selects and configures the news aggregator.
type NewsConfig struct {
	Provider   string   `mapstructure:"provider" validate:"required,oneof=newsapi rss"`
	NewsAPIKey string   `mapstructure:"news_api_key" validate:"required_if=Provider newsapi"`
	BaseURL    string   `mapstructure:"base_url" validate:"required,url"`
	FeedURLs   []string `mapstructure:"feed_urls" validate:"omitempty,dive,url"`
	Language   string   `mapstructure:"language" validate:"required,len=2"`
	Query      string   `mapstructure:"query" validate:"required"`
	DaysAgo    int      `mapstructure:"days_ago" validate:"gte=0"`
}

// MediaConfig contains the photo and video search settings. Empty keys
// disable the corresponding search.
type MediaConfig struct {
	PexelsAPIKey      string `mapstructure:"pexels_api_key"`
	YouTubeAPIKey     string `mapstructure:"youtube_api_key"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" validate:"gte=0"`
}

// PipelineConfig tunes the ingestion pipeline.
type PipelineConfig struct {
	AgeRange         string        `mapstructure:"age_range" validate:"required,oneof=4-6 7-9 10-12"`
	QuestionCount    int           `mapstructure:"question_count" validate:"gte=1,lte=10"`
	Concurrency      int           `mapstructure:"concurrency" validate:"gte=1,lte=32"`
	GenerateImages   bool          `mapstructure:"generate_images"`
	ImageDir         string        `mapstructure:"image_dir" validate:"required"`
	ScheduleInterval time.Duration `mapstructure:"schedule_interval" validate:"gte=1m"`
}
