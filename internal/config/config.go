// Package config loads coacha's settings from defaults, an optional YAML
// file and COACHA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/coacha/internal/identity"
	"github.com/abhisek/coacha/internal/llm"
	"github.com/abhisek/coacha/internal/logging"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "COACHA"

// Config is the full application configuration.
type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	LLM    llm.Config     `mapstructure:"llm"`
	Store  StoreConfig    `mapstructure:"store"`
	Log    logging.Config `mapstructure:"log"`
	Auth   AuthConfig     `mapstructure:"auth"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release or test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RateLimit       float64       `mapstructure:"rate_limit"` // requests per second per client; 0 disables
	RateBurst       int           `mapstructure:"rate_burst"`
	Metrics         bool          `mapstructure:"metrics"`
}

// StoreConfig locates the database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig configures identity and session tokens.
type AuthConfig struct {
	AdminEmail string        `mapstructure:"admin_email"`
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`

	// Email and Name identify the learner for the terminal front end.
	Email string `mapstructure:"email"`
	Name  string `mapstructure:"name"`

	// Allow seeds the allowlist at start-up.
	Allow []string `mapstructure:"allow"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimit:       5,
			RateBurst:       10,
			Metrics:         true,
		},
		LLM: llm.DefaultConfig(),
		Log: logging.DefaultConfig(),
		Auth: AuthConfig{
			AdminEmail: identity.DefaultAdminEmail,
			TokenTTL:   24 * time.Hour,
		},
	}
}

// providerKeyEnv lists the conventional environment variables read for
// provider credentials, in addition to the COACHA_ form.
var providerKeyEnv = map[string]string{
	"llm.gemini.api_key":     "GEMINI_API_KEY",
	"llm.anthropic.api_key":  "ANTHROPIC_API_KEY",
	"llm.openai.api_key":     "OPENAI_API_KEY",
	"llm.openrouter.api_key": "OPENROUTER_API_KEY",
}

// Load reads configuration. When path is empty the default location is
// tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range providerKeyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if dir, err := DefaultDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"server.addr":             d.Server.Addr,
		"server.mode":             d.Server.Mode,
		"server.read_timeout":     d.Server.ReadTimeout,
		"server.write_timeout":    d.Server.WriteTimeout,
		"server.shutdown_timeout": d.Server.ShutdownTimeout,
		"server.allowed_origins":  d.Server.AllowedOrigins,
		"server.rate_limit":       d.Server.RateLimit,
		"server.rate_burst":       d.Server.RateBurst,
		"server.metrics":          d.Server.Metrics,

		"llm.provider":            d.LLM.Provider,
		"llm.temperature":         d.LLM.Temperature,
		"llm.max_tokens":          d.LLM.MaxTokens,
		"llm.timeout":             d.LLM.Timeout,
		"llm.gemini.api_key":      "",
		"llm.gemini.model":        d.LLM.Gemini.Model,
		"llm.gemini.base_url":     "",
		"llm.anthropic.api_key":   "",
		"llm.anthropic.model":     d.LLM.Anthropic.Model,
		"llm.anthropic.base_url":  "",
		"llm.openai.api_key":      "",
		"llm.openai.model":        d.LLM.OpenAI.Model,
		"llm.openai.base_url":     "",
		"llm.openrouter.api_key":  "",
		"llm.openrouter.model":    d.LLM.OpenRouter.Model,
		"llm.openrouter.base_url": "",
		"llm.remote.url":          "",

		"store.path": d.Store.Path,

		"log.level":        d.Log.Level,
		"log.file":         d.Log.File,
		"log.max_size_mb":  d.Log.MaxSizeMB,
		"log.max_backups":  d.Log.MaxBackups,
		"log.max_age_days": d.Log.MaxAgeDays,
		"log.compress":     d.Log.Compress,
		"log.console":      d.Log.Console,

		"auth.admin_email": d.Auth.AdminEmail,
		"auth.jwt_secret":  d.Auth.JWTSecret,
		"auth.token_ttl":   d.Auth.TokenTTL,
		"auth.email":       d.Auth.Email,
		"auth.name":        d.Auth.Name,
		"auth.allow":       []string{},
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Validate reports the first invalid setting. A missing provider
// credential is not an error here: the service starts and reports it
// per request.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1 when rate limiting, got %d", c.Server.RateBurst)
	}
	if err := c.LLM.Validate(); err != nil && !errors.Is(err, llm.ErrNotConfigured) {
		return fmt.Errorf("llm: %w", err)
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	for _, email := range c.Auth.Allow {
		if _, err := identity.NormalizeEmail(email); err != nil {
			return fmt.Errorf("auth.allow: %w", err)
		}
	}
	return nil
}

// DefaultDir returns $XDG_CONFIG_HOME/coacha, or ~/.config/coacha.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "coacha"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "coacha"), nil
}
