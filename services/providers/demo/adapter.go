// Package demo implements the zero-cost simulated provider. It performs no
// network calls; responses are canned and keyed on trivial substring matches
// against the prompt. It is a stub, not a model.
package demo

import (
	"context"
	"strings"
	"time"

	"github.com/ecocompute/control-plane/models"
)

const (
	// ID is the demo provider identifier. The executor falls back to this
	// provider when the selected adapter fails.
	ID = "demo"

	// DefaultModel is the single model the demo provider exposes.
	DefaultModel = "demo-v1"

	// DefaultLatency is the simulated call duration.
	DefaultLatency = 1200 * time.Millisecond
)

const (
	leaderboardResponse = "[DEMO] Based on the metrics, energy-efficient models offer the best green computing trade-off. Consider quantized variants for workloads where marginal accuracy loss is acceptable."
	genericResponse     = "[DEMO] Analysis complete. This is a simulated response. Configure a real API provider in Settings for production-quality results."
)

// Adapter simulates an inference backend with fixed latency and zero cost.
type Adapter struct {
	latency      time.Duration
	capabilities []models.Capability
}

// New creates a demo adapter with the default simulated latency.
func New() *Adapter {
	return NewWithLatency(DefaultLatency)
}

// NewWithLatency creates a demo adapter with a custom simulated latency.
// Tests use zero to avoid sleeping.
func NewWithLatency(latency time.Duration) *Adapter {
	return &Adapter{
		latency: latency,
		capabilities: []models.Capability{
			{
				Provider:        ID,
				Model:           DefaultModel,
				QualityScore:    0.6,
				CostPer1KTokens: 0,
				AvgLatencyMS:    int(DefaultLatency / time.Millisecond),
				SupportsVision:  false,
				SupportsTools:   false,
				EnergyProfile:   models.EnergyEfficient,
				TaskStrengths:   []models.TaskType{models.TaskAnalyzeLeaderboard, models.TaskSummarize, models.TaskGeneral},
			},
		},
	}
}

// ID returns the provider identifier.
func (a *Adapter) ID() string {
	return ID
}

// Name returns the provider display name.
func (a *Adapter) Name() string {
	return "Demo Mode"
}

// Capabilities returns the static capability declarations.
func (a *Adapter) Capabilities() []models.Capability {
	return a.capabilities
}

// SetCapabilities replaces the declared capabilities (catalog override).
func (a *Adapter) SetCapabilities(caps []models.Capability) {
	a.capabilities = caps
}

// Run simulates a provider call. The credential and model arguments are
// accepted for interface parity and ignored.
func (a *Adapter) Run(ctx context.Context, prompt, _, _ string) (*models.ProviderResult, error) {
	start := time.Now()

	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	lower := strings.ToLower(prompt)
	text := genericResponse
	if strings.Contains(lower, "model") && strings.Contains(lower, "accuracy") {
		text = leaderboardResponse
	}

	return &models.ProviderResult{
		Text:             text,
		Model:            DefaultModel,
		Provider:         ID,
		LatencyMS:        int(time.Since(start).Milliseconds()),
		EstimatedCostUSD: 0,
	}, nil
}

// HealthCheck always succeeds; there is no external dependency.
func (a *Adapter) HealthCheck(_ context.Context) bool {
	return true
}
