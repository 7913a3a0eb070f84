package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"resumectl/internal/intake"
)

var (
	ErrInvalidEndpointURL   = errors.New("endpoint URL must be an absolute http(s) URL")
	ErrInvalidEndpointField = errors.New("endpoint form field name must be set")
	ErrInvalidTimeout       = errors.New("endpoint timeout must not be negative")
	ErrInvalidMaxBytes      = errors.New("intake max bytes must be greater than 0")
	ErrInvalidAllowedTypes  = errors.New("intake allowed types must not be empty")
	ErrInvalidHistoryPath   = errors.New("history path must be set when history is enabled")
)

// Config holds all application configuration
type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Intake   IntakeConfig   `mapstructure:"intake"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

// EndpointConfig describes the remote submission endpoint
type EndpointConfig struct {
	URL     string        `mapstructure:"url"`
	Path    string        `mapstructure:"path"`
	Field   string        `mapstructure:"field"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 disables the request timeout
}

// IntakeConfig holds validation limits
type IntakeConfig struct {
	MaxBytes     int64    `mapstructure:"max_bytes"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// HistoryConfig controls the local submission history
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type UIConfig struct {
	Progress bool `mapstructure:"progress"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:   "http://localhost:8080",
			Path:  "/api/resumes/upload",
			Field: "resume",
		},
		Intake: IntakeConfig{
			MaxBytes:     intake.MaxResumeBytes, // 5 MB
			AllowedTypes: append([]string(nil), intake.DefaultAllowedTypes...),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "resumectl.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Progress: true,
		},
	}
}

// SetDefaults registers every default with v so that config files and
// environment variables only need to override what differs.
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("endpoint.url", d.Endpoint.URL)
	v.SetDefault("endpoint.path", d.Endpoint.Path)
	v.SetDefault("endpoint.field", d.Endpoint.Field)
	v.SetDefault("endpoint.token", d.Endpoint.Token)
	v.SetDefault("endpoint.timeout", d.Endpoint.Timeout)
	v.SetDefault("intake.max_bytes", d.Intake.MaxBytes)
	v.SetDefault("intake.allowed_types", d.Intake.AllowedTypes)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("ui.progress", d.UI.Progress)
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpointURL
	}
	if c.Endpoint.Field == "" {
		return ErrInvalidEndpointField
	}
	if c.Endpoint.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Intake.MaxBytes <= 0 {
		return ErrInvalidMaxBytes
	}
	if len(c.Intake.AllowedTypes) == 0 {
		return ErrInvalidAllowedTypes
	}
	if c.History.Enabled && c.History.Path == "" {
		return ErrInvalidHistoryPath
	}
	return nil
}

// SubmitURL joins the endpoint base URL and path.
func (e EndpointConfig) SubmitURL() (string, error) {
	return url.JoinPath(e.URL, e.Path)
}

// Validator builds the intake validator from the configured limits.
func (c *Config) Validator() intake.Validator {
	return intake.Validator{
		MaxBytes:     c.Intake.MaxBytes,
		AllowedTypes: append([]string(nil), c.Intake.AllowedTypes...),
	}
}
