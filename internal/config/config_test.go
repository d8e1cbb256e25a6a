package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearSecretEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		"SMTP_PASSWORD", "KATAREPORT_SMTP_PASSWORD",
		"KATAREPORT_LLM_OPENAI_KEY", "KATAREPORT_LLM_ANTHROPIC_KEY",
	} {
		t.Setenv(e, "")
		os.Unsetenv(e)
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearSecretEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 5000 {
		t.Errorf("API.Port: got %d, want 5000", cfg.API.Port)
	}
	if !cfg.API.ServeWidget {
		t.Error("API.ServeWidget should be true by default")
	}
	if cfg.SMTP.Enabled() {
		t.Error("SMTP should be disabled without a host")
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("SMTP.Port: got %d, want 587", cfg.SMTP.Port)
	}
	if cfg.SMTP.TLS != "mandatory" {
		t.Errorf("SMTP.TLS: got %q, want mandatory", cfg.SMTP.TLS)
	}
	if cfg.LLM.Primary != "openai" {
		t.Errorf("LLM.Primary: got %q, want %q", cfg.LLM.Primary, "openai")
	}
	if cfg.LLM.Timeout() != 30*time.Second {
		t.Errorf("LLM.Timeout: got %v, want 30s", cfg.LLM.Timeout())
	}
	if cfg.Report.DefaultSet != "zh-child" {
		t.Errorf("Report.DefaultSet: got %q", cfg.Report.DefaultSet)
	}
	if cfg.Report.ChartStyle != ChartCSS {
		t.Errorf("Report.ChartStyle: got %q", cfg.Report.ChartStyle)
	}
	if cfg.Report.MetricsMode != MetricsRandom {
		t.Errorf("Report.MetricsMode: got %q", cfg.Report.MetricsMode)
	}
	if cfg.Report.Timezone != "Asia/Singapore" {
		t.Errorf("Report.Timezone: got %q", cfg.Report.Timezone)
	}
	if cfg.Delivery.Timeout() != 30*time.Second {
		t.Errorf("Delivery.Timeout: got %v", cfg.Delivery.Timeout())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearSecretEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
api:
  port: 9090
  cors_origins: ["https://katachat.example"]
smtp:
  host: "smtp.example.com"
  port: 2525
  username: "reports@example.com"
  password: "from-file-secret"
  to: "inbox@example.com"
  tls: "opportunistic"
report:
  default_set: "en-child"
  chart_style: "svg"
  metrics_mode: "ai"
llm:
  primary: "anthropic"
  anthropic_key: "sk-ant-file-key-123"
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.API.Addr() != "0.0.0.0:9090" {
		t.Errorf("API.Addr: got %q", cfg.API.Addr())
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "https://katachat.example" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}
	if !cfg.SMTP.Enabled() || cfg.SMTP.Port != 2525 {
		t.Errorf("SMTP: got %+v", cfg.SMTP)
	}
	if cfg.SMTP.Recipient() != "inbox@example.com" {
		t.Errorf("SMTP.Recipient: got %q", cfg.SMTP.Recipient())
	}
	if cfg.SMTP.Password != "from-file-secret" {
		t.Errorf("SMTP.Password: got %q", cfg.SMTP.Password)
	}
	if cfg.Report.DefaultSet != "en-child" || cfg.Report.ChartStyle != ChartSVG || cfg.Report.MetricsMode != MetricsAI {
		t.Errorf("Report: got %+v", cfg.Report)
	}
	if cfg.LLM.Primary != "anthropic" || cfg.LLM.AnthropicKey != "sk-ant-file-key-123" {
		t.Errorf("LLM: got %+v", cfg.LLM)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q", cfg.Logging.Format)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadFromFileInvalidMode(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("report:\n  metrics_mode: \"magic\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(cfgPath); err == nil {
		t.Error("expected validation error for unknown metrics_mode")
	}
}

// ── Environment ──

func TestEnvOverridesFile(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("KATAREPORT_API_PORT", "7070")
	t.Setenv("KATAREPORT_REPORT_CHART_STYLE", "svg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port: got %d, want 7070", cfg.API.Port)
	}
	if cfg.Report.ChartStyle != ChartSVG {
		t.Errorf("Report.ChartStyle: got %q", cfg.Report.ChartStyle)
	}
}

func TestOverrideFromEnv(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("SMTP_PASSWORD", "legacy-secret")
	t.Setenv("KATAREPORT_LLM_OPENAI_KEY", "sk-test-openai-key-123456")
	t.Setenv("KATAREPORT_LLM_ANTHROPIC_KEY", "sk-ant-test")

	cfg := &Config{}
	overrideFromEnv(cfg)

	if cfg.SMTP.Password != "legacy-secret" {
		t.Errorf("SMTP.Password: got %q", cfg.SMTP.Password)
	}
	if cfg.LLM.OpenAIKey != "sk-test-openai-key-123456" {
		t.Errorf("OpenAIKey: got %q", cfg.LLM.OpenAIKey)
	}
	if cfg.LLM.AnthropicKey != "sk-ant-test" {
		t.Errorf("AnthropicKey: got %q", cfg.LLM.AnthropicKey)
	}

	t.Setenv("KATAREPORT_SMTP_PASSWORD", "prefixed-secret")
	overrideFromEnv(cfg)
	if cfg.SMTP.Password != "prefixed-secret" {
		t.Errorf("prefixed password should win, got %q", cfg.SMTP.Password)
	}
}

func TestRecipientFallback(t *testing.T) {
	s := SMTPConfig{Username: "user@example.com"}
	if s.Recipient() != "user@example.com" {
		t.Errorf("Recipient: got %q", s.Recipient())
	}
	s.From = "from@example.com"
	if s.Recipient() != "from@example.com" {
		t.Errorf("Recipient: got %q", s.Recipient())
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		API:      APIConfig{Port: 5000},
		SMTP:     SMTPConfig{TLS: "mandatory"},
		Report:   ReportConfig{ChartStyle: ChartCSS, MetricsMode: MetricsRandom},
		Delivery: DeliveryConfig{TimeoutSec: 30},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base
	bad.API.Port = 70000
	if bad.Validate() == nil {
		t.Error("expected error for port out of range")
	}

	bad = base
	bad.Report.ChartStyle = "png"
	if bad.Validate() == nil {
		t.Error("expected error for unknown chart style")
	}

	bad = base
	bad.SMTP = SMTPConfig{Host: "smtp.example.com", Port: 0, TLS: "mandatory"}
	if bad.Validate() == nil {
		t.Error("expected error for smtp port 0")
	}

	bad = base
	bad.SMTP.TLS = "sometimes"
	if bad.Validate() == nil {
		t.Error("expected error for unknown tls policy")
	}

	bad = base
	bad.Delivery.TimeoutSec = 0
	if bad.Validate() == nil {
		t.Error("expected error for delivery timeout 0")
	}
}

func TestValidateLLMTimeoutInAIMode(t *testing.T) {
	cfg := Config{
		API:      APIConfig{Port: 5000},
		SMTP:     SMTPConfig{TLS: "mandatory"},
		Report:   ReportConfig{ChartStyle: ChartCSS, MetricsMode: MetricsAI},
		Delivery: DeliveryConfig{TimeoutSec: 30},
		LLM:      LLMConfig{TimeoutSec: 0},
	}
	if cfg.Validate() == nil {
		t.Error("expected error for llm timeout 0 in ai mode")
	}

	cfg.LLM.TimeoutSec = -5
	if cfg.Validate() == nil {
		t.Error("expected error for negative llm timeout in ai mode")
	}

	cfg.LLM.TimeoutSec = 30
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid ai config rejected: %v", err)
	}

	cfg.Report.MetricsMode = MetricsRandom
	cfg.LLM.TimeoutSec = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("llm timeout is irrelevant in random mode: %v", err)
	}
}

// ── Keys ──

func TestCheckKeys(t *testing.T) {
	clearSecretEnv(t)
	t.Setenv("KATAREPORT_LLM_OPENAI_KEY", "sk-abcdefghijklmnop")

	cfg := &Config{
		SMTP: SMTPConfig{Password: "short"},
		LLM:  LLMConfig{OpenAIKey: "sk-abcdefghijklmnop"},
	}
	keys := CheckKeys(cfg)
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}

	smtp := keys[0]
	if !smtp.IsSet || smtp.Source != KeySourceConfig || smtp.Masked != "***" {
		t.Errorf("SMTP key status: %+v", smtp)
	}
	openai := keys[1]
	if !openai.IsSet || openai.Source != KeySourceEnv || openai.Masked != "sk-...nop" {
		t.Errorf("OpenAI key status: %+v", openai)
	}
	anthropic := keys[2]
	if anthropic.IsSet || anthropic.Source != KeySourceNone {
		t.Errorf("Anthropic key status: %+v", anthropic)
	}
}
