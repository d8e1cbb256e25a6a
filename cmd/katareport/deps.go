package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katachat/katareport/internal/config"
	"github.com/katachat/katareport/internal/delivery"
	"github.com/katachat/katareport/internal/infra"
	"github.com/katachat/katareport/internal/llm"
	"github.com/katachat/katareport/internal/locale"
	"github.com/katachat/katareport/internal/metrics"
	"github.com/katachat/katareport/internal/pipeline"
	"github.com/katachat/katareport/pkg/utils"
)

// services are the long-lived collaborators shared by serve and render.
type services struct {
	registry *locale.Registry
	stats    *infra.Collectors
	clock    utils.Clock
	analyzer *pipeline.Analyzer
	provider llm.Provider // nil unless metrics_mode is "ai"
}

// buildServices wires the pipeline. A nil gateway selects one from the
// SMTP config.
func buildServices(gateway delivery.Gateway) (*services, error) {
	registry := locale.Default()
	if _, err := registry.Resolve(cfg.Report.DefaultSet); err != nil {
		return nil, fmt.Errorf("report.default_set: %w", err)
	}

	if gateway == nil {
		var err error
		if gateway, err = delivery.New(cfg.SMTP, cfg.Delivery.Timeout(), logger); err != nil {
			return nil, err
		}
	}

	svc := &services{
		registry: registry,
		stats:    infra.NewCollectors(),
		clock:    utils.SystemClock(utils.LoadLocation(cfg.Report.Timezone, 8*60*60)),
	}

	gen, err := newGenerator(svc)
	if err != nil {
		return nil, err
	}

	svc.analyzer, err = pipeline.New(pipeline.Options{
		Registry:        registry,
		Generator:       gen,
		Gateway:         gateway,
		ChartStyle:      cfg.Report.ChartStyle,
		Clock:           svc.clock,
		DeliveryTimeout: cfg.Delivery.Timeout(),
		Logger:          logger,
		Collectors:      svc.stats,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("services ready",
		zap.String("metrics_mode", cfg.Report.MetricsMode),
		zap.String("gateway", gateway.Name()),
		zap.Strings("template_sets", registry.IDs()))
	return svc, nil
}

func newGenerator(svc *services) (metrics.Generator, error) {
	if cfg.Report.MetricsMode != config.MetricsAI {
		return metrics.NewRandomGenerator(), nil
	}

	provider, err := llm.NewFromConfig(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	svc.provider = provider

	gen := &metrics.AIGenerator{
		Provider:    provider,
		Timeout:     cfg.LLM.Timeout(),
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
	// A nil *RateLimiter must not become a non-nil interface.
	if rl := infra.PerMinute(cfg.LLM.RequestsPerMinute); rl != nil {
		gen.Limiter = rl
	}
	return gen, nil
}
