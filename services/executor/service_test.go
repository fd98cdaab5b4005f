package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/services/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubRouter returns a fixed decision, letting tests steer the executor
// without composing a real registry-backed router.
type stubRouter struct {
	decision models.RoutingDecision
}

func (s *stubRouter) Route(*models.ExecutionRequest, string) models.RoutingDecision {
	return s.decision
}

type stubProvider struct {
	id  string
	run func(ctx context.Context, prompt, credential, model string) (*models.ProviderResult, error)
}

func (s *stubProvider) ID() string   { return s.id }
func (s *stubProvider) Name() string { return s.id }

func (s *stubProvider) Capabilities() []models.Capability { return nil }

func (s *stubProvider) HealthCheck(context.Context) bool { return true }

func (s *stubProvider) Run(ctx context.Context, prompt, credential, model string) (*models.ProviderResult, error) {
	return s.run(ctx, prompt, credential, model)
}

func succeeding(id, model string) *stubProvider {
	return &stubProvider{
		id: id,
		run: func(_ context.Context, _, _, m string) (*models.ProviderResult, error) {
			if m == "" {
				m = model
			}
			return &models.ProviderResult{
				Text:             "result from " + id,
				Model:            m,
				Provider:         id,
				LatencyMS:        5,
				EstimatedCostUSD: 0.0001,
			}, nil
		},
	}
}

func failing(id string, err error) *stubProvider {
	return &stubProvider{
		id: id,
		run: func(context.Context, string, string, string) (*models.ProviderResult, error) {
			return nil, err
		},
	}
}

func decisionFor(provider, model string) models.RoutingDecision {
	return models.RoutingDecision{
		SelectedProvider: provider,
		SelectedModel:    model,
		Reason:           "test decision",
		CandidatesScored: map[string]float64{provider + "/" + model: 0.9},
		PolicyVersion:    "v0.3",
	}
}

func newExecutor(t *testing.T, decision models.RoutingDecision, provs ...providers.Provider) (*Service, *trace.Log) {
	t.Helper()
	registry := providers.NewRegistry()
	for _, p := range provs {
		require.NoError(t, registry.Register(p))
	}
	traces := trace.NewLog()
	return NewService(&stubRouter{decision: decision}, registry, traces, zap.NewNop()), traces
}

func execRequest() *models.ExecutionRequest {
	return &models.ExecutionRequest{
		Input:     models.ExecutionInput{TaskType: models.TaskGeneral, Prompt: "hello"},
		Objective: models.ObjectiveBalanced,
	}
}

func TestExecuteSuccess(t *testing.T) {
	svc, traces := newExecutor(t, decisionFor("openai", "gpt-4o-mini"),
		succeeding("demo", "demo-v1"),
		succeeding("openai", "gpt-4o-mini"),
	)

	result := svc.Execute(context.Background(), execRequest(), "key")

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, "openai", result.Data.Provider)
	assert.Empty(t, result.Error)

	require.Equal(t, 1, traces.Len())
	recorded := traces.List()[0]
	assert.True(t, recorded.Outcome.Success)
	assert.Equal(t, "openai", recorded.Outcome.Provider)
	assert.Equal(t, "gpt-4o-mini", recorded.Outcome.Model)
	assert.Equal(t, result.Trace.TraceID, recorded.TraceID)
}

func TestExecuteFallbackOnProviderFailure(t *testing.T) {
	svc, traces := newExecutor(t, decisionFor("openai", "gpt-4o-mini"),
		succeeding("demo", "demo-v1"),
		failing("openai", errors.New("rate limited")),
	)

	result := svc.Execute(context.Background(), execRequest(), "key")

	require.True(t, result.Success, "demo fallback should rescue the execution")
	require.NotNil(t, result.Data)
	assert.True(t, strings.HasPrefix(result.Data.Text, "[Fallback] "))
	assert.Contains(t, result.Data.Text, "Original error: rate limited")
	assert.Equal(t, "demo", result.Data.Provider)

	// The routing decision is preserved; the outcome names the rescuer.
	assert.Equal(t, "openai", result.Routing.SelectedProvider)
	require.Equal(t, 1, traces.Len())
	assert.Equal(t, "demo", traces.List()[0].Outcome.Provider)
}

func TestExecuteBothFailKeepsOriginalError(t *testing.T) {
	svc, traces := newExecutor(t, decisionFor("openai", "gpt-4o-mini"),
		failing("demo", errors.New("demo broke too")),
		failing("openai", errors.New("rate limited")),
	)

	result := svc.Execute(context.Background(), execRequest(), "key")

	require.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Equal(t, "rate limited", result.Error, "the original error must survive a failed fallback")

	require.Equal(t, 1, traces.Len())
	recorded := traces.List()[0]
	assert.False(t, recorded.Outcome.Success)
	assert.Equal(t, "openai", recorded.Outcome.Provider)
}

func TestExecuteUnregisteredProviderFallsBack(t *testing.T) {
	svc, traces := newExecutor(t, decisionFor("ghost", "ghost-v1"),
		succeeding("demo", "demo-v1"),
	)

	result := svc.Execute(context.Background(), execRequest(), "key")

	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Contains(t, result.Data.Text, `provider "ghost" not found in registry`)
	assert.Equal(t, "demo", result.Data.Provider)
	assert.Equal(t, 1, traces.Len())
}

func TestExecuteDemoFailureDoesNotRetry(t *testing.T) {
	calls := 0
	demoStub := &stubProvider{
		id: "demo",
		run: func(context.Context, string, string, string) (*models.ProviderResult, error) {
			calls++
			return nil, errors.New("demo down")
		},
	}

	svc, traces := newExecutor(t, decisionFor("demo", "demo-v1"), demoStub)

	result := svc.Execute(context.Background(), execRequest(), "")

	require.False(t, result.Success)
	assert.Equal(t, "demo down", result.Error)
	assert.Equal(t, 1, calls, "demo must not fall back to itself")
	assert.Equal(t, 1, traces.Len())
}

func TestExecuteTraceIDFormat(t *testing.T) {
	svc, _ := newExecutor(t, decisionFor("demo", "demo-v1"), succeeding("demo", "demo-v1"))

	result := svc.Execute(context.Background(), execRequest(), "")

	parts := strings.Split(result.Trace.TraceID, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "eco", parts[0])
	assert.Len(t, parts[2], 6)
}

func TestExecuteTracePerCall(t *testing.T) {
	svc, traces := newExecutor(t, decisionFor("demo", "demo-v1"), succeeding("demo", "demo-v1"))

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		result := svc.Execute(context.Background(), execRequest(), "")
		seen[result.Trace.TraceID] = true
	}

	assert.Equal(t, 5, traces.Len())
	assert.Len(t, seen, 5, "trace ids should be unique per call")
}
