package demo

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCannedResponses(t *testing.T) {
	adapter := NewWithLatency(0)

	tests := []struct {
		name        string
		prompt      string
		leaderboard bool
	}{
		{"leaderboard keywords", "Which model has the best accuracy?", true},
		{"keywords case-insensitive", "compare MODEL ACCURACY numbers", true},
		{"model only", "what model is this", false},
		{"accuracy only", "how accurate is it", false},
		{"generic", "tell me a story", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := adapter.Run(context.Background(), tt.prompt, "", "")
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if !strings.HasPrefix(result.Text, "[DEMO]") {
				t.Errorf("expected [DEMO] prefix, got %q", result.Text)
			}
			isLeaderboard := strings.Contains(result.Text, "green computing")
			if isLeaderboard != tt.leaderboard {
				t.Errorf("leaderboard response = %v, want %v (prompt %q)", isLeaderboard, tt.leaderboard, tt.prompt)
			}
		})
	}
}

func TestRunZeroCost(t *testing.T) {
	adapter := NewWithLatency(0)

	result, err := adapter.Run(context.Background(), "anything", "ignored-credential", "ignored-model")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.EstimatedCostUSD != 0 {
		t.Errorf("expected zero cost, got %f", result.EstimatedCostUSD)
	}
	if result.Provider != ID {
		t.Errorf("expected provider %q, got %q", ID, result.Provider)
	}
	if result.Model != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, result.Model)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	adapter := NewWithLatency(10 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Run(ctx, "anything", "", "")
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCapabilitiesDeclaration(t *testing.T) {
	adapter := New()

	caps := adapter.Capabilities()
	if len(caps) != 1 {
		t.Fatalf("expected 1 capability, got %d", len(caps))
	}

	cap := caps[0]
	if cap.Provider != ID || cap.Model != DefaultModel {
		t.Errorf("unexpected identity: %s/%s", cap.Provider, cap.Model)
	}
	if cap.CostPer1KTokens != 0 {
		t.Errorf("demo must be free, got cost %f", cap.CostPer1KTokens)
	}
	if cap.SupportsVision {
		t.Error("demo must not declare vision support")
	}
}

func TestHealthCheck(t *testing.T) {
	if !New().HealthCheck(context.Background()) {
		t.Error("demo health check should always pass")
	}
}
