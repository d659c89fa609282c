package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "ENFQ"

// Load reads configuration from defaults, an optional YAML file and the
// environment. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs := []struct {
		key  string
		envs []string
	}{
		{"llm.gemini_api_key", []string{"ENFQ_LLM_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"}},
		{"llm.anthropic_api_key", []string{"ENFQ_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"}},
		{"llm.provider", []string{"ENFQ_LLM_PROVIDER"}},
		{"auth.token_secret", []string{"ENFQ_AUTH_TOKEN_SECRET"}},
		{"payment.status_url", []string{"ENFQ_PAYMENT_STATUS_URL"}},
	}
	for _, b := range bindEnvs {
		args := append([]string{b.key}, b.envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", b.key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	resolveProvider(&cfg.LLM)
	if cfg.Auth.TokenSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Auth.TokenSecret = secret
	}
	// Without a status endpoint the only usable source is the simulator.
	if cfg.Payment.StatusURL == "" {
		cfg.Payment.Simulate = true
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "enfq.db")
	v.SetDefault("database.profile_name", "enfq_profile")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.cli_path", "claude")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.request_timeout", "90s")

	v.SetDefault("payment.checkout_url", "https://checkout.infinitepay.io/katia-souza-lopes/1kcbZuJfUb")
	v.SetDefault("payment.status_url", "")
	v.SetDefault("payment.poll_interval", "3s")
	v.SetDefault("payment.max_attempts", 200)
	v.SetDefault("payment.simulate", false)
	v.SetDefault("payment.simulate_after", "15s")

	v.SetDefault("auth.token_secret", "")
	v.SetDefault("auth.token_ttl", "72h")

	v.SetDefault("support.contact_url", "https://wa.me/5591984243443")
}

// resolveProvider picks Gemini when a key is present and falls back to the
// offline mock generator otherwise.
func resolveProvider(c *LLMConfig) {
	if c.Provider == "" {
		if c.GeminiAPIKey != "" {
			c.Provider = "gemini"
		} else {
			c.Provider = "mock"
		}
	}
	if c.Model != "" {
		return
	}
	switch c.Provider {
	case "gemini":
		c.Model = "gemini-3-flash-preview"
	case "anthropic":
		c.Model = "claude-sonnet-4-5-20250929"
	case "cli":
		c.Model = "claude-cli"
	default:
		c.Model = "mock"
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
