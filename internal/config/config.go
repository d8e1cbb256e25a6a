// Package config handles configuration loading for katareport.
// It supports YAML config files, a local .env file and environment
// variable overrides. Configuration is read once at process start.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	SMTP     SMTPConfig     `mapstructure:"smtp"     yaml:"smtp"`
	LLM      LLMConfig      `mapstructure:"llm"      yaml:"llm"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report"`
	Delivery DeliveryConfig `mapstructure:"delivery" yaml:"delivery"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-" yaml:"-"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	ServeWidget bool     `mapstructure:"serve_widget" yaml:"serve_widget"`
}

// Addr returns host:port for net/http.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// SMTPConfig holds outbound mail settings. Reports are sent to a fixed
// internal mailbox; when To is empty the From address receives them.
type SMTPConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from"     yaml:"from"`
	To       string `mapstructure:"to"       yaml:"to"`
	TLS      string `mapstructure:"tls"      yaml:"tls"` // "mandatory", "opportunistic", "none"
}

// Enabled reports whether an SMTP host is configured.
func (s SMTPConfig) Enabled() bool { return s.Host != "" }

// Recipient returns the mailbox that receives reports.
func (s SMTPConfig) Recipient() string {
	if s.To != "" {
		return s.To
	}
	if s.From != "" {
		return s.From
	}
	return s.Username
}

// LLMConfig holds settings for the optional AI metrics mode.
type LLMConfig struct {
	Primary      string  `mapstructure:"primary"       yaml:"primary"` // "openai" or "anthropic"
	OpenAIKey    string  `mapstructure:"openai_key"    yaml:"openai_key"`
	AnthropicKey string  `mapstructure:"anthropic_key" yaml:"anthropic_key"`
	BaseURL      string  `mapstructure:"base_url"      yaml:"base_url"`
	Model        string  `mapstructure:"model"         yaml:"model"`
	Temperature  float64 `mapstructure:"temperature"   yaml:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"    yaml:"max_tokens"`
	TimeoutSec   int     `mapstructure:"timeout_sec"   yaml:"timeout_sec"`
	// RequestsPerMinute caps outbound LLM calls; 0 disables the limit.
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// Timeout returns the per-request LLM timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSec) * time.Second
}

// ReportConfig controls report generation.
type ReportConfig struct {
	DefaultSet  string `mapstructure:"default_set"  yaml:"default_set"`  // template set for /analyze_name
	ChartStyle  string `mapstructure:"chart_style"  yaml:"chart_style"`  // "css" or "svg"
	MetricsMode string `mapstructure:"metrics_mode" yaml:"metrics_mode"` // "random" or "ai"
	Timezone    string `mapstructure:"timezone"     yaml:"timezone"`
}

// DeliveryConfig controls the fire-and-forget mail attempt.
type DeliveryConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the delivery timeout.
func (d DeliveryConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSec) * time.Second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Metrics modes.
const (
	MetricsRandom = "random"
	MetricsAI     = "ai"
)

// Chart styles.
const (
	ChartCSS = "css"
	ChartSVG = "svg"
)

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.katareport/config.yaml (home directory)
//  3. /etc/katareport/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: KATAREPORT_<SECTION>_<KEY>, e.g., KATAREPORT_SMTP_PASSWORD
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".katareport"))
	v.AddConfigPath("/etc/katareport")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("KATAREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 5000)
	v.SetDefault("api.cors_origins", []string{"*"})
	v.SetDefault("api.serve_widget", true)

	// SMTP defaults (host empty = log-only delivery)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.to", "")
	v.SetDefault("smtp.tls", "mandatory")

	// LLM defaults
	v.SetDefault("llm.primary", "openai")
	v.SetDefault("llm.openai_key", "")
	v.SetDefault("llm.anthropic_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1200)
	v.SetDefault("llm.timeout_sec", 30)
	v.SetDefault("llm.requests_per_minute", 60)

	// Report defaults
	v.SetDefault("report.default_set", "zh-child")
	v.SetDefault("report.chart_style", ChartCSS)
	v.SetDefault("report.metrics_mode", MetricsRandom)
	v.SetDefault("report.timezone", "Asia/Singapore")

	// Delivery defaults
	v.SetDefault("delivery.timeout_sec", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// SMTP_PASSWORD is honoured for compatibility with existing deployments.
func overrideFromEnv(cfg *Config) {
	if pw := os.Getenv("SMTP_PASSWORD"); pw != "" && cfg.SMTP.Password == "" {
		cfg.SMTP.Password = pw
	}
	if pw := os.Getenv("KATAREPORT_SMTP_PASSWORD"); pw != "" {
		cfg.SMTP.Password = pw
	}
	if key := os.Getenv("KATAREPORT_LLM_OPENAI_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
	if key := os.Getenv("KATAREPORT_LLM_ANTHROPIC_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
	}
}

// Validate checks values that would otherwise fail late, at request time.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port %d out of range", c.API.Port)
	}
	if c.SMTP.Enabled() && (c.SMTP.Port < 1 || c.SMTP.Port > 65535) {
		return fmt.Errorf("config: smtp.port %d out of range", c.SMTP.Port)
	}
	switch c.SMTP.TLS {
	case "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("config: smtp.tls must be mandatory, opportunistic or none, got %q", c.SMTP.TLS)
	}
	switch c.Report.MetricsMode {
	case MetricsRandom, MetricsAI:
	default:
		return fmt.Errorf("config: report.metrics_mode must be %q or %q, got %q", MetricsRandom, MetricsAI, c.Report.MetricsMode)
	}
	if c.Report.MetricsMode == MetricsAI && c.LLM.TimeoutSec <= 0 {
		return fmt.Errorf("config: llm.timeout_sec must be positive in ai mode, got %d", c.LLM.TimeoutSec)
	}
	switch c.Report.ChartStyle {
	case ChartCSS, ChartSVG:
	default:
		return fmt.Errorf("config: report.chart_style must be %q or %q, got %q", ChartCSS, ChartSVG, c.Report.ChartStyle)
	}
	if c.Delivery.TimeoutSec <= 0 {
		return fmt.Errorf("config: delivery.timeout_sec must be positive, got %d", c.Delivery.TimeoutSec)
	}
	return nil
}

// loadDotEnv loads ./.env if present. Existing environment variables win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
