package models

import "time"

// TraceOutcome summarizes how one execution ended. Provider and Model name
// whichever adapter actually produced the returned result, which after a
// fallback differs from the routing decision.
type TraceOutcome struct {
	Success   bool    `json:"success"`
	LatencyMS int     `json:"latency_ms"`
	CostUSD   float64 `json:"cost_usd"`
	Provider  string  `json:"provider"`
	Model     string  `json:"model"`
}

// ExecutionTrace is the immutable record of one execute() call: the request,
// the routing decision, and the outcome. Exactly one trace is appended to the
// shared log per call, regardless of outcome.
type ExecutionTrace struct {
	TraceID   string           `json:"trace_id"`
	Timestamp time.Time        `json:"timestamp"`
	Request   ExecutionRequest `json:"request"`
	Routing   RoutingDecision  `json:"routing"`
	Outcome   TraceOutcome     `json:"outcome"`
}

// ExecutionResult is returned to the caller. Data is nil when both the
// selected adapter and the demo fallback failed; the trace is always present
// so failures stay correlatable.
type ExecutionResult struct {
	Success bool            `json:"success"`
	Data    *ProviderResult `json:"data"`
	Error   string          `json:"error,omitempty"`
	Routing RoutingDecision `json:"routing"`
	Trace   ExecutionTrace  `json:"trace"`
}
