package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/services/providers/demo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	id   string
	caps []models.Capability
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) Name() string { return f.id }

func (f *fakeProvider) Capabilities() []models.Capability { return f.caps }

func (f *fakeProvider) HealthCheck(context.Context) bool { return true }

func (f *fakeProvider) Run(context.Context, string, string, string) (*models.ProviderResult, error) {
	return nil, errors.New("fake provider has no backend")
}

func newFake(id, model string, quality, cost float64, latencyMS int, vision bool, profile models.EnergyProfile) *fakeProvider {
	return &fakeProvider{
		id: id,
		caps: []models.Capability{{
			Provider:        id,
			Model:           model,
			QualityScore:    quality,
			CostPer1KTokens: cost,
			AvgLatencyMS:    latencyMS,
			SupportsVision:  vision,
			EnergyProfile:   profile,
			TaskStrengths:   []models.TaskType{models.TaskGeneral},
		}},
	}
}

func newTestService(t *testing.T, provs ...providers.Provider) *Service {
	t.Helper()
	registry := providers.NewRegistry()
	for _, p := range provs {
		require.NoError(t, registry.Register(p))
	}
	return NewService(registry, zap.NewNop())
}

func request(task models.TaskType, objective models.Objective, constraints models.ExecutionConstraints) *models.ExecutionRequest {
	return &models.ExecutionRequest{
		Input:       models.ExecutionInput{TaskType: task, Prompt: "hello"},
		Objective:   objective,
		Constraints: constraints,
	}
}

func TestRouteSelectsHighestScoredCandidate(t *testing.T) {
	svc := newTestService(t,
		newFake("demo", "demo-v1", 0.6, 0, 1200, false, models.EnergyEfficient),
		newFake("gemini", "gemini-2.0-flash", 0.88, 0.00015, 800, true, models.EnergyModerate),
		newFake("openai", "gpt-4o-mini", 0.92, 0.00015, 1200, true, models.EnergyHeavy),
	)

	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{}), "key")

	require.NotEmpty(t, decision.CandidatesScored)
	selected := decision.SelectedProvider + "/" + decision.SelectedModel
	selectedScore, ok := decision.CandidatesScored[selected]
	require.True(t, ok, "selected candidate must appear in the scored map")
	for key, score := range decision.CandidatesScored {
		assert.LessOrEqual(t, score, selectedScore, "candidate %s outscores the selection", key)
	}
	assert.Equal(t, "v0.3", decision.PolicyVersion)
}

func TestRouteReasonNamesSelection(t *testing.T) {
	svc := newTestService(t,
		newFake("demo", "demo-v1", 0.6, 0, 1200, false, models.EnergyEfficient),
		newFake("groq", "llama-3.1-8b-instant", 0.78, 0.00005, 300, false, models.EnergyEfficient),
	)

	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMinimizeLatency, models.ExecutionConstraints{}), "key")

	assert.Contains(t, decision.Reason, decision.SelectedProvider+"/"+decision.SelectedModel)
	assert.Contains(t, decision.Reason, `objective "minimize_latency"`)
	assert.True(t, strings.HasPrefix(decision.Reason, "Selected "))
}

func TestRouteCredentialGating(t *testing.T) {
	svc := newTestService(t,
		newFake("demo", "demo-v1", 0.6, 0, 1200, false, models.EnergyEfficient),
		newFake("openai", "gpt-4o-mini", 0.92, 0.00015, 1200, true, models.EnergyHeavy),
	)

	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{}), "")

	assert.Equal(t, "demo", decision.SelectedProvider)
	assert.Len(t, decision.CandidatesScored, 1, "credentialed providers must be skipped without a credential")
}

func TestRouteVisionFilter(t *testing.T) {
	svc := newTestService(t,
		newFake("demo", "demo-v1", 0.6, 0, 1200, false, models.EnergyEfficient),
		newFake("gemini", "gemini-2.0-flash", 0.88, 0.00015, 800, true, models.EnergyModerate),
		newFake("groq", "llama-3.1-8b-instant", 0.78, 0.00005, 300, false, models.EnergyEfficient),
	)

	decision := svc.Route(request(models.TaskChatWithImage, models.ObjectiveBalanced, models.ExecutionConstraints{}), "key")

	assert.Equal(t, "gemini", decision.SelectedProvider)
	assert.Len(t, decision.CandidatesScored, 1)
}

func TestRouteCostConstraintExcludesCandidate(t *testing.T) {
	svc := newTestService(t,
		newFake("cheap", "cheap-v1", 0.5, 0.00005, 500, false, models.EnergyEfficient),
		newFake("pricy", "pricy-v1", 0.99, 0.01, 500, false, models.EnergyEfficient),
	)

	// Empty-ish prompt projects ~200 tokens: pricy costs ~$0.002, cheap ~$0.00001.
	maxCost := 0.001
	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{
		MaxCostUSD: &maxCost,
	}), "key")

	assert.Equal(t, "cheap", decision.SelectedProvider)
	assert.NotContains(t, decision.CandidatesScored, "pricy/pricy-v1")
}

func TestRouteLatencyConstraintExcludesCandidate(t *testing.T) {
	svc := newTestService(t,
		newFake("fast", "fast-v1", 0.5, 0, 300, false, models.EnergyEfficient),
		newFake("slow", "slow-v1", 0.99, 0, 2500, false, models.EnergyEfficient),
	)

	maxLatency := 1000
	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{
		MaxLatencyMS: &maxLatency,
	}), "key")

	assert.Equal(t, "fast", decision.SelectedProvider)
	assert.NotContains(t, decision.CandidatesScored, "slow/slow-v1")
}

func TestRoutePreferredProviderAllowList(t *testing.T) {
	provs := []providers.Provider{
		newFake("demo", "demo-v1", 0.6, 0, 1200, false, models.EnergyEfficient),
		newFake("gemini", "gemini-2.0-flash", 0.88, 0.00015, 800, true, models.EnergyModerate),
		newFake("openai", "gpt-4o-mini", 0.92, 0.00015, 1200, true, models.EnergyHeavy),
	}

	t.Run("nil fallbacks default to demo", func(t *testing.T) {
		svc := newTestService(t, provs...)
		decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{
			PreferredProvider: "openai",
		}), "key")

		assert.Contains(t, decision.CandidatesScored, "openai/gpt-4o-mini")
		assert.Contains(t, decision.CandidatesScored, "demo/demo-v1")
		assert.NotContains(t, decision.CandidatesScored, "gemini/gemini-2.0-flash")
	})

	t.Run("explicit empty fallbacks restrict to preferred", func(t *testing.T) {
		svc := newTestService(t, provs...)
		decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{
			PreferredProvider: "openai",
			FallbackProviders: []string{},
		}), "key")

		assert.Equal(t, "openai", decision.SelectedProvider)
		assert.Len(t, decision.CandidatesScored, 1)
	})

	t.Run("explicit fallback list honored", func(t *testing.T) {
		svc := newTestService(t, provs...)
		decision := svc.Route(request(models.TaskGeneral, models.ObjectiveMaximizeQuality, models.ExecutionConstraints{
			PreferredProvider: "openai",
			FallbackProviders: []string{"gemini"},
		}), "key")

		assert.Contains(t, decision.CandidatesScored, "gemini/gemini-2.0-flash")
		assert.NotContains(t, decision.CandidatesScored, "demo/demo-v1")
	})
}

func TestRouteTieBreakFollowsRegistrationOrder(t *testing.T) {
	// Two identical capabilities: the earlier registration must win.
	svc := newTestService(t,
		newFake("first", "same-v1", 0.8, 0.0001, 500, false, models.EnergyModerate),
		newFake("second", "same-v1", 0.8, 0.0001, 500, false, models.EnergyModerate),
	)

	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveBalanced, models.ExecutionConstraints{}), "key")

	assert.Equal(t, "first", decision.SelectedProvider)
}

func TestRouteFallbackDecisionWhenNothingSurvives(t *testing.T) {
	// Vision task, no vision-capable candidates at all.
	svc := newTestService(t,
		newFake("groq", "llama-3.1-8b-instant", 0.78, 0.00005, 300, false, models.EnergyEfficient),
	)

	decision := svc.Route(request(models.TaskExtractText, models.ObjectiveBalanced, models.ExecutionConstraints{}), "key")

	assert.Equal(t, demo.ID, decision.SelectedProvider)
	assert.Equal(t, demo.DefaultModel, decision.SelectedModel)
	assert.Equal(t, "No eligible candidates found, falling back to demo mode", decision.Reason)
	assert.Empty(t, decision.CandidatesScored)
	assert.Equal(t, "v0.3", decision.PolicyVersion)
}

func TestRouteScoresRoundedToThreeDecimals(t *testing.T) {
	svc := newTestService(t,
		newFake("demo", "demo-v1", 0.613, 0.00033, 777, false, models.EnergyModerate),
	)

	decision := svc.Route(request(models.TaskGeneral, models.ObjectiveBalanced, models.ExecutionConstraints{}), "key")

	for key, score := range decision.CandidatesScored {
		rounded := float64(int(score*1000+0.5)) / 1000
		assert.InDelta(t, rounded, score, 1e-9, "score for %s not rounded", key)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		prompt string
		want   int
	}{
		{"", 200},
		{"abcd", 201},
		{"abcde", 202},
		{strings.Repeat("x", 400), 300},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.prompt), "prompt length %d", len(tt.prompt))
	}
}
