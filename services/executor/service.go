// Package executor orchestrates one execution: route, invoke the chosen
// adapter, fall back once to demo on failure, and record a trace. The
// executor owns the adapter side effect; the router never calls one.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/services/providers/demo"
	"github.com/ecocompute/control-plane/services/trace"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router produces a routing decision for a request. Satisfied by
// *routing.Service; an interface so tests can inject decisions directly.
type Router interface {
	Route(req *models.ExecutionRequest, credential string) models.RoutingDecision
}

// Service is the control plane's sole entry point.
type Service struct {
	router   Router
	registry *providers.Registry
	traces   *trace.Log
	logger   *zap.Logger
}

// NewService creates an executor service.
func NewService(router Router, registry *providers.Registry, traces *trace.Log, logger *zap.Logger) *Service {
	return &Service{
		router:   router,
		registry: registry,
		traces:   traces,
		logger:   logger,
	}
}

// Execute routes the request, invokes the selected adapter, retries exactly
// once against demo on failure, and appends one trace on every path. It
// never returns an error; failures ride in the result's success/error
// fields, and the caller always receives a trace id.
func (s *Service) Execute(ctx context.Context, req *models.ExecutionRequest, credential string) *models.ExecutionResult {
	traceID := generateTraceID()
	start := time.Now()

	routing := s.router.Route(req, credential)

	s.logger.Info("executing request",
		zap.String("trace_id", traceID),
		zap.String("provider", routing.SelectedProvider),
		zap.String("model", routing.SelectedModel),
		zap.String("objective", string(req.Objective)))

	var result *models.ProviderResult
	var execErr string

	provider, err := s.registry.Get(routing.SelectedProvider)
	if err != nil {
		execErr = fmt.Sprintf("provider %q not found in registry", routing.SelectedProvider)
	} else {
		result, err = provider.Run(ctx, req.Input.Prompt, credential, routing.SelectedModel)
		if err != nil {
			execErr = err.Error()
		}
	}

	if execErr != "" && routing.SelectedProvider != demo.ID {
		result, execErr = s.fallback(ctx, req.Input.Prompt, execErr, traceID)
	}
	if execErr != "" {
		result = nil
	}

	totalLatency := int(time.Since(start).Milliseconds())

	outcome := models.TraceOutcome{
		Success:   execErr == "",
		LatencyMS: totalLatency,
		Provider:  routing.SelectedProvider,
		Model:     routing.SelectedModel,
	}
	if result != nil {
		outcome.CostUSD = result.EstimatedCostUSD
		outcome.Provider = result.Provider
		outcome.Model = result.Model
	}

	t := models.ExecutionTrace{
		TraceID:   traceID,
		Timestamp: time.Now().UTC(),
		Request:   *req,
		Routing:   routing,
		Outcome:   outcome,
	}
	s.traces.Record(t)

	if execErr != "" {
		s.logger.Warn("execution failed",
			zap.String("trace_id", traceID),
			zap.String("error", execErr),
			zap.Int("latency_ms", totalLatency))
	} else {
		s.logger.Info("execution completed",
			zap.String("trace_id", traceID),
			zap.String("provider", outcome.Provider),
			zap.String("model", outcome.Model),
			zap.Int("latency_ms", totalLatency),
			zap.Float64("cost_usd", outcome.CostUSD))
	}

	return &models.ExecutionResult{
		Success: execErr == "",
		Data:    result,
		Error:   execErr,
		Routing: routing,
		Trace:   t,
	}
}

// fallback retries once against the demo adapter with no credential. On
// success the text discloses the fallback and the original error, and the
// returned error string is empty; on failure the original error is kept.
func (s *Service) fallback(ctx context.Context, prompt, originalErr, traceID string) (*models.ProviderResult, string) {
	s.logger.Warn("provider failed, retrying against demo",
		zap.String("trace_id", traceID),
		zap.String("error", originalErr))

	fallbackProvider, err := s.registry.Get(demo.ID)
	if err != nil {
		return nil, originalErr
	}

	result, err := fallbackProvider.Run(ctx, prompt, "", demo.DefaultModel)
	if err != nil {
		return nil, originalErr
	}

	result.Text = fmt.Sprintf("[Fallback] %s (Original error: %s)", result.Text, originalErr)
	return result, ""
}

// generateTraceID builds "eco_<unix-millis>_<6-char suffix>".
func generateTraceID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("eco_%d_%s", time.Now().UnixMilli(), suffix)
}
