package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/utils"
	"go.uber.org/zap"
)

// ExecutionService defines the control plane entry point consumed by the
// execute handler.
type ExecutionService interface {
	Execute(ctx context.Context, req *models.ExecutionRequest, credential string) *models.ExecutionResult
}

// ExecuteRequest is the HTTP payload for POST /api/v1/execute.
type ExecuteRequest struct {
	TaskType    string                 `json:"task_type" validate:"required,oneof=analyze_leaderboard chat_with_image extract_text summarize general"`
	Prompt      string                 `json:"prompt" validate:"required"`
	Objective   string                 `json:"objective" validate:"required,oneof=maximize_quality minimize_cost minimize_latency minimize_carbon balanced"`
	Context     map[string]interface{} `json:"context,omitempty"`
	ImageData   []byte                 `json:"image_data,omitempty"`
	Constraints ExecuteConstraints     `json:"constraints"`
}

// ExecuteConstraints mirrors models.ExecutionConstraints on the wire.
type ExecuteConstraints struct {
	MaxCostUSD        *float64 `json:"max_cost_usd,omitempty" validate:"omitempty,gte=0"`
	MaxLatencyMS      *int     `json:"max_latency_ms,omitempty" validate:"omitempty,gt=0"`
	MaxTokens         *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	PreferredProvider string   `json:"preferred_provider,omitempty"`
	FallbackProviders []string `json:"fallback_providers,omitempty"`
}

// ExecuteHandler handles execution requests.
type ExecuteHandler struct {
	service           ExecutionService
	defaultCredential string
	logger            *zap.Logger
}

// NewExecuteHandler creates an ExecuteHandler. defaultCredential is used
// when a request carries no X-API-Key header.
func NewExecuteHandler(service ExecutionService, defaultCredential string, logger *zap.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		service:           service,
		defaultCredential: defaultCredential,
		logger:            logger,
	}
}

// HandleExecute handles POST /api/v1/execute. The response is always 200
// with the full execution result; failed executions carry success=false and
// a trace id rather than an HTTP error.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var httpReq ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&httpReq); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&httpReq); err != nil {
		h.logger.Warn("request validation failed", zap.Error(err))
		details := map[string]interface{}{}
		for field, msg := range utils.GetValidationFields(err) {
			details[field] = msg
		}
		_ = utils.WriteBadRequest(w, "Validation failed", details)
		return
	}

	credential := r.Header.Get("X-API-Key")
	if credential == "" {
		credential = h.defaultCredential
	}

	req := &models.ExecutionRequest{
		Input: models.ExecutionInput{
			TaskType:  models.TaskType(httpReq.TaskType),
			Prompt:    httpReq.Prompt,
			Context:   httpReq.Context,
			ImageData: httpReq.ImageData,
		},
		Objective: models.Objective(httpReq.Objective),
		Constraints: models.ExecutionConstraints{
			MaxCostUSD:        httpReq.Constraints.MaxCostUSD,
			MaxLatencyMS:      httpReq.Constraints.MaxLatencyMS,
			MaxTokens:         httpReq.Constraints.MaxTokens,
			PreferredProvider: httpReq.Constraints.PreferredProvider,
			FallbackProviders: httpReq.Constraints.FallbackProviders,
		},
	}

	result := h.service.Execute(r.Context(), req, credential)

	if err := utils.WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("failed to write response",
			zap.String("trace_id", result.Trace.TraceID),
			zap.Error(err))
	}
}
