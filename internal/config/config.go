package config

import "time"

// Content sources.
const (
	ContentSourcePostgres = "postgres"
	ContentSourceFile     = "file"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Content  ContentConfig  `mapstructure:"content" validate:"required"`
	Capture  CaptureConfig  `mapstructure:"capture" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL is required when reference strokes are served from Postgres.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// ContentConfig selects where reference strokes come from.
type ContentConfig struct {
	Source string `mapstructure:"source" validate:"required,oneof=postgres file"`
	// File is the YAML bundle read when Source is "file".
	File string `mapstructure:"file"`
	// Warm lists characters parsed into the cache at startup.
	Warm            []string `mapstructure:"warm"`
	WarmConcurrency int      `mapstructure:"warm_concurrency" validate:"gte=0"`
}

// CaptureConfig contains live capture session settings.
type CaptureConfig struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
}

// TaskConfig sizes the background scoring workers.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// LLMConfig contains the external handwriting assessor settings.
type LLMConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	Language          string `mapstructure:"language" validate:"oneof=en ja"`
}
