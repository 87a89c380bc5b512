package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Reward    RewardConfig    `mapstructure:"reward"`
	Quota     QuotaConfig     `mapstructure:"quota"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=memory sqlite mysql"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	CacheSizeMB int    `mapstructure:"cache_size_mb" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// LLMConfig selects the chat-completion backend. Keys are only read from the environment.
type LLMConfig struct {
	Provider         string           `mapstructure:"provider" validate:"oneof=openai mistral openrouter cohere gemini"`
	Model            string           `mapstructure:"model"`
	MaxRetryAttempts int              `mapstructure:"max_retry_attempts" validate:"gte=0,lte=5"`
	Temperature      float64          `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens        int              `mapstructure:"max_tokens" validate:"gte=0"`
	Timeout          time.Duration    `mapstructure:"timeout"`
	OpenAI           ProviderConfig   `mapstructure:"openai"`
	Mistral          ProviderConfig   `mapstructure:"mistral"`
	OpenRouter       OpenRouterConfig `mapstructure:"openrouter"`
	Cohere           ProviderConfig   `mapstructure:"cohere"`
	Gemini           ProviderConfig   `mapstructure:"gemini"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type OpenRouterConfig struct {
	ProviderConfig `mapstructure:",squash"`
	Referer        string `mapstructure:"referer"`
	Title          string `mapstructure:"title"`
}

type RewardConfig struct {
	TargetSeconds       int           `mapstructure:"target_seconds" validate:"gt=0"`
	GrantDuration       time.Duration `mapstructure:"grant_duration" validate:"gt=0"`
	CreditPerCompletion int           `mapstructure:"credit_per_completion" validate:"gt=0"`
}

type QuotaConfig struct {
	DailyLimit int `mapstructure:"daily_limit" validate:"gte=0"`
	// Enabled gates assistant queries behind the daily limit.
	Enabled bool `mapstructure:"enabled"`
}

type AssistantConfig struct {
	SessionScanLimit int `mapstructure:"session_scan_limit" validate:"gt=0"`
	EventScanLimit   int `mapstructure:"event_scan_limit" validate:"gt=0"`
	MaxHits          int `mapstructure:"max_hits" validate:"gt=0"`
	SummaryWindow    int `mapstructure:"summary_window" validate:"gt=0"`
}

type CalendarConfig struct {
	EventsFile string `mapstructure:"events_file" validate:"omitempty,file"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gt=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,origin"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// APIKey returns the key of the selected provider.
func (c LLMConfig) APIKey() string {
	return c.selected().APIKey
}

// ResolvedModel returns the explicit model, the provider's model, or the provider default, in that order.
func (c LLMConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	if m := c.selected().Model; m != "" {
		return m
	}
	return defaultModels[c.Provider]
}

func (c LLMConfig) selected() ProviderConfig {
	switch c.Provider {
	case "mistral":
		return c.Mistral
	case "openrouter":
		return c.OpenRouter.ProviderConfig
	case "cohere":
		return c.Cohere
	case "gemini":
		return c.Gemini
	default:
		return c.OpenAI
	}
}

var defaultModels = map[string]string{
	"openai":     "gpt-4o-mini",
	"mistral":    "mistral-small-latest",
	"openrouter": "openai/gpt-4o-mini",
	"cohere":     "command-a-03-2025",
	"gemini":     "gemini-2.5-flash",
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/neuronest")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "neuronest.db")
	v.SetDefault("storage.cache_size_mb", 0)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "neuronest")
	v.SetDefault("database.username", "user")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.max_retry_attempts", 0)
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.max_tokens", 600)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.openrouter.title", "Neuronest")
	v.SetDefault("reward.target_seconds", 100)
	v.SetDefault("reward.grant_duration", "72h")
	v.SetDefault("reward.credit_per_completion", 25)
	v.SetDefault("quota.daily_limit", 20)
	v.SetDefault("quota.enabled", false)
	v.SetDefault("assistant.session_scan_limit", 80)
	v.SetDefault("assistant.event_scan_limit", 120)
	v.SetDefault("assistant.max_hits", 12)
	v.SetDefault("assistant.summary_window", 10)
	// Events file is optional; the calendar is empty without it
	v.SetDefault("calendar.events_file", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("metrics.enabled", true)

	// API keys are bound to environment variables only (not from config file)
	envBindings := map[string]string{
		"llm.openai.api_key":     "OPENAI_API_KEY",
		"llm.mistral.api_key":    "MISTRAL_API_KEY",
		"llm.openrouter.api_key": "OPENROUTER_API_KEY",
		"llm.cohere.api_key":     "COHERE_API_KEY",
		"llm.gemini.api_key":     "GEMINI_API_KEY",
		"llm.provider":           "NEURONEST_LLM_PROVIDER",
		"database.password":      "DB_PASSWORD",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
