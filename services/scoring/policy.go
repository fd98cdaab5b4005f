// Package scoring implements the objective-weighted candidate scoring policy.
// Score is a pure function; the router's determinism guarantee depends on it.
package scoring

import "github.com/ecocompute/control-plane/models"

// PolicyVersion tags every routing decision with the scoring policy revision.
const PolicyVersion = "v0.3"

const (
	// taskAffinityBonus is added when a capability declares strength in the
	// requested task type.
	taskAffinityBonus = 0.15

	// costSaturationUSD saturates the cost term: $0.01 per 1k tokens and
	// above scores 0.
	costSaturationUSD = 0.01

	// latencySaturationMS saturates the latency term: 3000ms and above
	// scores 0.
	latencySaturationMS = 3000
)

type weights struct {
	quality float64
	cost    float64
	latency float64
	energy  float64
}

// Each quadruple sums to 1.0; the task bonus sits on top, so scores land in
// roughly [0, 1.15].
var objectiveWeights = map[models.Objective]weights{
	models.ObjectiveMaximizeQuality: {quality: 0.6, cost: 0.1, latency: 0.1, energy: 0.2},
	models.ObjectiveMinimizeCost:    {quality: 0.2, cost: 0.5, latency: 0.1, energy: 0.2},
	models.ObjectiveMinimizeLatency: {quality: 0.2, cost: 0.1, latency: 0.5, energy: 0.2},
	models.ObjectiveMinimizeCarbon:  {quality: 0.15, cost: 0.1, latency: 0.05, energy: 0.7},
	models.ObjectiveBalanced:        {quality: 0.3, cost: 0.25, latency: 0.2, energy: 0.25},
}

// Score rates one capability for an objective and task type. All four terms
// are normalized so that higher is better before weighting.
func Score(cap models.Capability, objective models.Objective, task models.TaskType) float64 {
	w, ok := objectiveWeights[objective]
	if !ok {
		w = objectiveWeights[models.ObjectiveBalanced]
	}

	bonus := 0.0
	if cap.StrongAt(task) {
		bonus = taskAffinityBonus
	}

	qualityScore := cap.QualityScore
	costScore := 1 - min(cap.CostPer1KTokens/costSaturationUSD, 1)
	latencyScore := 1 - min(float64(cap.AvgLatencyMS)/latencySaturationMS, 1)
	energyScore := energyScore(cap.EnergyProfile)

	return w.quality*qualityScore +
		w.cost*costScore +
		w.latency*latencyScore +
		w.energy*energyScore +
		bonus
}

func energyScore(profile models.EnergyProfile) float64 {
	switch profile {
	case models.EnergyEfficient:
		return 1.0
	case models.EnergyModerate:
		return 0.6
	default:
		return 0.3
	}
}
