// Package routing selects the best (provider, model) candidate for a
// request. The router never performs I/O and never calls an adapter; it is a
// pure selection function over the request and the static registry.
package routing

import (
	"fmt"
	"math"
	"sort"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
	"github.com/ecocompute/control-plane/services/providers/demo"
	"github.com/ecocompute/control-plane/services/scoring"
	"go.uber.org/zap"
)

// responseTokenOverhead is the fixed allowance added to the prompt estimate
// when projecting cost against max_cost_usd.
const responseTokenOverhead = 200

// Service routes execution requests over the provider registry.
type Service struct {
	registry *providers.Registry
	logger   *zap.Logger
}

// NewService creates a routing service.
func NewService(registry *providers.Registry, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

type candidate struct {
	provider string
	model    string
	score    float64
}

// Route produces exactly one routing decision for the request. Providers
// that require a credential are skipped when none is supplied (demo is
// exempt); surviving candidates are filtered by constraints, scored, and the
// best is selected. Ties resolve to the first-declared candidate in registry
// order. When nothing survives, the decision falls back to demo with score 0.
func (s *Service) Route(req *models.ExecutionRequest, credential string) models.RoutingDecision {
	constraints := req.Constraints
	input := req.Input

	var candidates []candidate

	for _, provider := range s.registry.All() {
		if provider.ID() != demo.ID && credential == "" {
			continue
		}

		if constraints.PreferredProvider != "" && !allowed(constraints, provider.ID()) {
			continue
		}

		for _, cap := range provider.Capabilities() {
			if input.TaskType.RequiresVision() && !cap.SupportsVision {
				continue
			}

			if constraints.MaxCostUSD != nil {
				if projectedCost(input.Prompt, cap.CostPer1KTokens) > *constraints.MaxCostUSD {
					continue
				}
			}

			if constraints.MaxLatencyMS != nil && cap.AvgLatencyMS > *constraints.MaxLatencyMS {
				continue
			}

			candidates = append(candidates, candidate{
				provider: provider.ID(),
				model:    cap.Model,
				score:    scoring.Score(cap, req.Objective, input.TaskType),
			})
		}
	}

	// Stable sort keeps registry declaration order as the tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	scored := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		scored[c.provider+"/"+c.model] = round3(c.score)
	}

	if len(candidates) == 0 {
		s.logger.Debug("no eligible candidates, falling back to demo",
			zap.String("task_type", string(input.TaskType)),
			zap.String("objective", string(req.Objective)))

		return models.RoutingDecision{
			SelectedProvider: demo.ID,
			SelectedModel:    demo.DefaultModel,
			Reason:           "No eligible candidates found, falling back to demo mode",
			CandidatesScored: scored,
			PolicyVersion:    scoring.PolicyVersion,
		}
	}

	best := candidates[0]
	s.logger.Debug("routed request",
		zap.String("provider", best.provider),
		zap.String("model", best.model),
		zap.Float64("score", best.score),
		zap.Int("candidates", len(candidates)))

	return models.RoutingDecision{
		SelectedProvider: best.provider,
		SelectedModel:    best.model,
		Reason: fmt.Sprintf("Selected %s/%s (score: %.3f) from %d candidates for objective %q",
			best.provider, best.model, best.score, len(candidates), req.Objective),
		CandidatesScored: scored,
		PolicyVersion:    scoring.PolicyVersion,
	}
}

// EstimateTokens approximates the token footprint of a prompt plus a fixed
// response overhead.
func EstimateTokens(prompt string) int {
	return int(math.Ceil(float64(len(prompt))/4)) + responseTokenOverhead
}

func projectedCost(prompt string, costPer1KTokens float64) float64 {
	return float64(EstimateTokens(prompt)) / 1000 * costPer1KTokens
}

// allowed checks the preferred-provider allow-list. A nil fallback list
// defaults to ["demo"]; an explicitly empty list restricts to the preferred
// provider alone.
func allowed(constraints models.ExecutionConstraints, id string) bool {
	if id == constraints.PreferredProvider {
		return true
	}
	fallbacks := constraints.FallbackProviders
	if fallbacks == nil {
		fallbacks = []string{demo.ID}
	}
	for _, f := range fallbacks {
		if id == f {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
