package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "KANJI"

// keys lists every configuration key so each can be bound to its
// environment variable, e.g. server.log_level to KANJI_SERVER_LOG_LEVEL.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout",
	"database.url",
	"content.source",
	"content.file",
	"content.warm",
	"content.warm_concurrency",
	"capture.idle_timeout",
	"task.worker_count",
	"task.queue_size",
	"llm.enabled",
	"llm.gemini_api_key",
	"llm.model_name",
	"llm.max_retries",
	"llm.retry_delay_seconds",
	"llm.language",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("content.source", ContentSourcePostgres)
	v.SetDefault("content.warm_concurrency", 4)
	v.SetDefault("capture.idle_timeout", 30*time.Minute)
	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("llm.language", "en")
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory or ./config.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// default locations; a missing file there is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the requirements one section places
// on another.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterStructValidation(validateDependencies, Config{})
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func validateDependencies(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	switch cfg.Content.Source {
	case ContentSourcePostgres:
		if cfg.Database.URL == "" {
			sl.ReportError(cfg.Database.URL, "Database.URL", "URL", "required_for_postgres", "")
		}
	case ContentSourceFile:
		if cfg.Content.File == "" {
			sl.ReportError(cfg.Content.File, "Content.File", "File", "required_for_file", "")
		}
	}

	if cfg.LLM.Enabled && cfg.LLM.GeminiAPIKey == "" {
		sl.ReportError(cfg.LLM.GeminiAPIKey, "LLM.GeminiAPIKey", "GeminiAPIKey", "required_when_enabled", "")
	}
}
