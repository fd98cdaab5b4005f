package models

// TaskType identifies the kind of work a request carries. The set is closed;
// adapters declare which task types they are strong at.
type TaskType string

const (
	TaskAnalyzeLeaderboard TaskType = "analyze_leaderboard"
	TaskChatWithImage      TaskType = "chat_with_image"
	TaskExtractText        TaskType = "extract_text"
	TaskSummarize          TaskType = "summarize"
	TaskGeneral            TaskType = "general"
)

// AllTaskTypes lists every valid task type in declaration order.
func AllTaskTypes() []TaskType {
	return []TaskType{
		TaskAnalyzeLeaderboard,
		TaskChatWithImage,
		TaskExtractText,
		TaskSummarize,
		TaskGeneral,
	}
}

// RequiresVision reports whether the task can only be handled by a
// vision-capable model.
func (t TaskType) RequiresVision() bool {
	return t == TaskChatWithImage || t == TaskExtractText
}

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskAnalyzeLeaderboard, TaskChatWithImage, TaskExtractText, TaskSummarize, TaskGeneral:
		return true
	}
	return false
}

// Objective names the optimization goal used to weight candidate scores.
type Objective string

const (
	ObjectiveMaximizeQuality Objective = "maximize_quality"
	ObjectiveMinimizeCost    Objective = "minimize_cost"
	ObjectiveMinimizeLatency Objective = "minimize_latency"
	ObjectiveMinimizeCarbon  Objective = "minimize_carbon"
	ObjectiveBalanced        Objective = "balanced"
)

// Valid reports whether o is one of the named objectives.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveMaximizeQuality, ObjectiveMinimizeCost, ObjectiveMinimizeLatency,
		ObjectiveMinimizeCarbon, ObjectiveBalanced:
		return true
	}
	return false
}

// EnergyProfile is the coarse energy-efficiency category of a model.
type EnergyProfile string

const (
	EnergyEfficient EnergyProfile = "efficient"
	EnergyModerate  EnergyProfile = "moderate"
	EnergyHeavy     EnergyProfile = "heavy"
)

// ExecutionConstraints carries optional hard limits and provider preferences.
// A nil pointer means the dimension is unconstrained.
type ExecutionConstraints struct {
	MaxCostUSD        *float64 `json:"max_cost_usd,omitempty"`
	MaxLatencyMS      *int     `json:"max_latency_ms,omitempty"`
	MaxTokens         *int     `json:"max_tokens,omitempty"`
	PreferredProvider string   `json:"preferred_provider,omitempty"`
	FallbackProviders []string `json:"fallback_providers,omitempty"`
}

// ExecutionInput is the task payload of a request.
type ExecutionInput struct {
	TaskType TaskType               `json:"task_type"`
	Prompt   string                 `json:"prompt"`
	Context  map[string]interface{} `json:"context,omitempty"`
	// ImageData holds raw image bytes for vision tasks (base64 over JSON).
	ImageData []byte `json:"image_data,omitempty"`
}

// ExecutionRequest is the immutable input to the control plane. Neither the
// router nor the executor mutates it.
type ExecutionRequest struct {
	Input       ExecutionInput       `json:"input"`
	Objective   Objective            `json:"objective"`
	Constraints ExecutionConstraints `json:"constraints"`
}

// Capability declares one (provider, model) pairing: what it supports, what
// it costs and how it behaves. Capabilities are static configuration and are
// never mutated at runtime.
type Capability struct {
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	QualityScore    float64       `json:"quality_score"`
	CostPer1KTokens float64       `json:"cost_per_1k_tokens"`
	AvgLatencyMS    int           `json:"avg_latency_ms"`
	SupportsVision  bool          `json:"supports_vision"`
	SupportsTools   bool          `json:"supports_tools"`
	EnergyProfile   EnergyProfile `json:"energy_profile"`
	TaskStrengths   []TaskType    `json:"task_strengths"`
}

// StrongAt reports whether the capability declares strength in the task.
func (c Capability) StrongAt(task TaskType) bool {
	for _, t := range c.TaskStrengths {
		if t == task {
			return true
		}
	}
	return false
}

// RoutingDecision records which candidate was chosen, why, and how every
// surviving candidate scored. Candidate keys are "<provider>/<model>".
type RoutingDecision struct {
	SelectedProvider string             `json:"selected_provider"`
	SelectedModel    string             `json:"selected_model"`
	Reason           string             `json:"reason"`
	CandidatesScored map[string]float64 `json:"candidates_scored"`
	PolicyVersion    string             `json:"policy_version"`
}

// ProviderResult is the normalized output of one adapter invocation.
type ProviderResult struct {
	Text             string  `json:"text"`
	Model            string  `json:"model"`
	Provider         string  `json:"provider"`
	LatencyMS        int     `json:"latency_ms"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	TokenCount       int     `json:"token_count,omitempty"`
}
