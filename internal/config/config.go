// Package config loads and validates application configuration.
package config

import "time"

type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Payment  PaymentConfig  `mapstructure:"payment" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Support  SupportConfig  `mapstructure:"support" validate:"required"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr" validate:"required,hostname_port"`
	LogLevel    string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat   string   `mapstructure:"log_format" validate:"required,oneof=json text"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=sqlite postgres pgx"`
	DSN         string `mapstructure:"dsn" validate:"required"`
	ProfileName string `mapstructure:"profile_name" validate:"required,max=64"`
}

type LLMConfig struct {
	Provider        string        `mapstructure:"provider" validate:"required,oneof=gemini anthropic cli mock"`
	Model           string        `mapstructure:"model"`
	GeminiAPIKey    string        `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key" validate:"required_if=Provider anthropic"`
	CLIPath         string        `mapstructure:"cli_path" validate:"required_if=Provider cli"`
	MaxRetries      int           `mapstructure:"max_retries" validate:"gte=0,lte=5"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

type PaymentConfig struct {
	CheckoutURL   string        `mapstructure:"checkout_url" validate:"required,url"`
	StatusURL     string        `mapstructure:"status_url" validate:"omitempty,url"`
	PollInterval  time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MaxAttempts   int           `mapstructure:"max_attempts" validate:"gt=0"`
	Simulate      bool          `mapstructure:"simulate"`
	SimulateAfter time.Duration `mapstructure:"simulate_after" validate:"gte=0"`
}

type AuthConfig struct {
	TokenSecret string        `mapstructure:"token_secret" validate:"required,min=32"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type SupportConfig struct {
	ContactURL string `mapstructure:"contact_url" validate:"required,url"`
}
