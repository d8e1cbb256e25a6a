package api

import (
	"net/http"

	"github.com/katachat/katareport/internal/config"
)

// ConfigResponse is returned by GET /api/v1/config. Secrets are reported
// only through GET /api/v1/config/keys, masked.
type ConfigResponse struct {
	ConfigFile string       `json:"config_file"`
	API        apiView      `json:"api"`
	SMTP       smtpView     `json:"smtp"`
	LLM        llmView      `json:"llm"`
	Report     reportView   `json:"report"`
	Delivery   deliveryView `json:"delivery"`
	Logging    loggingView  `json:"logging"`
}

type apiView struct {
	Addr        string   `json:"addr"`
	CORSOrigins []string `json:"cors_origins"`
	ServeWidget bool     `json:"serve_widget"`
}

type smtpView struct {
	Enabled   bool   `json:"enabled"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	TLS       string `json:"tls"`
	Recipient string `json:"recipient"`
}

type llmView struct {
	Primary           string  `json:"primary"`
	Model             string  `json:"model"`
	BaseURL           string  `json:"base_url,omitempty"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	TimeoutSec        int     `json:"timeout_sec"`
	RequestsPerMinute int     `json:"requests_per_minute"`
}

type reportView struct {
	DefaultSet  string `json:"default_set"`
	ChartStyle  string `json:"chart_style"`
	MetricsMode string `json:"metrics_mode"`
	Timezone    string `json:"timezone"`
}

type deliveryView struct {
	TimeoutSec int `json:"timeout_sec"`
}

type loggingView struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// newConfigResponse builds the redacted view of cfg.
func newConfigResponse(cfg *config.Config) ConfigResponse {
	return ConfigResponse{
		ConfigFile: cfg.Source,
		API: apiView{
			Addr:        cfg.API.Addr(),
			CORSOrigins: cfg.API.CORSOrigins,
			ServeWidget: cfg.API.ServeWidget,
		},
		SMTP: smtpView{
			Enabled:   cfg.SMTP.Enabled(),
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			TLS:       cfg.SMTP.TLS,
			Recipient: cfg.SMTP.Recipient(),
		},
		LLM: llmView{
			Primary:           cfg.LLM.Primary,
			Model:             cfg.LLM.Model,
			BaseURL:           cfg.LLM.BaseURL,
			Temperature:       cfg.LLM.Temperature,
			MaxTokens:         cfg.LLM.MaxTokens,
			TimeoutSec:        cfg.LLM.TimeoutSec,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		},
		Report: reportView{
			DefaultSet:  cfg.Report.DefaultSet,
			ChartStyle:  cfg.Report.ChartStyle,
			MetricsMode: cfg.Report.MetricsMode,
			Timezone:    cfg.Report.Timezone,
		},
		Delivery: deliveryView{TimeoutSec: cfg.Delivery.TimeoutSec},
		Logging:  loggingView{Level: cfg.Logging.Level, Format: cfg.Logging.Format},
	}
}

// handleGetConfig returns the running configuration without secrets.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newConfigResponse(s.cfg))
}

// handleGetConfigKeys returns the masked status of every secret.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.CheckKeys(s.cfg))
}
