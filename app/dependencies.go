// Package app wires the control plane's components together.
package app

import (
	"fmt"

	"github.com/ecocompute/control-plane/config"
	"github.com/ecocompute/control-plane/observability"
	"github.com/ecocompute/control-plane/services/executor"
	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/services/providers/demo"
	"github.com/ecocompute/control-plane/services/providers/gemini"
	"github.com/ecocompute/control-plane/services/providers/groq"
	"github.com/ecocompute/control-plane/services/providers/openai"
	"github.com/ecocompute/control-plane/services/routing"
	"github.com/ecocompute/control-plane/services/trace"
	"go.uber.org/zap"
)

// Dependencies holds every wired component.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *providers.Registry
	Traces   *trace.Log
	Router   *routing.Service
	Executor *executor.Service
}

// New builds all dependencies from configuration. Registration order
// matters: it is the router's tie-break order.
func New(cfg *config.Config) (*Dependencies, error) {
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	registry := providers.NewRegistry()

	demoAdapter := demo.NewWithLatency(cfg.Providers.DemoLatency)
	geminiAdapter := gemini.New(providers.AdapterConfig{
		BaseURL: cfg.Providers.Gemini.BaseURL,
		Timeout: cfg.Providers.Gemini.Timeout,
	})
	openaiAdapter := openai.New(providers.AdapterConfig{
		BaseURL: cfg.Providers.OpenAI.BaseURL,
		Timeout: cfg.Providers.OpenAI.Timeout,
	})
	groqAdapter := groq.New(providers.AdapterConfig{
		BaseURL: cfg.Providers.Groq.BaseURL,
		Timeout: cfg.Providers.Groq.Timeout,
	})

	if cfg.CatalogFile != "" {
		catalog, err := config.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load capability catalog: %w", err)
		}
		if caps := catalog.CapabilitiesFor(demo.ID); caps != nil {
			demoAdapter.SetCapabilities(caps)
		}
		if caps := catalog.CapabilitiesFor(gemini.ID); caps != nil {
			geminiAdapter.SetCapabilities(caps)
		}
		if caps := catalog.CapabilitiesFor(openai.ID); caps != nil {
			openaiAdapter.SetCapabilities(caps)
		}
		if caps := catalog.CapabilitiesFor(groq.ID); caps != nil {
			groqAdapter.SetCapabilities(caps)
		}
		logger.Info("applied capability catalog", zap.String("path", cfg.CatalogFile))
	}

	for _, p := range []providers.Provider{demoAdapter, geminiAdapter, openaiAdapter, groqAdapter} {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register provider %s: %w", p.ID(), err)
		}
	}

	traces := trace.NewLog()
	router := routing.NewService(registry, logger)
	exec := executor.NewService(router, registry, traces, logger)

	logger.Info("control plane wired",
		zap.Strings("providers", registry.IDs()),
		zap.String("environment", cfg.Environment))

	return &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Traces:   traces,
		Router:   router,
		Executor: exec,
	}, nil
}
