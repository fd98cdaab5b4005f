package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
)

const (
	// ID is the OpenAI provider identifier.
	ID = "openai"

	// DefaultModel is used when the router does not name a model.
	DefaultModel = "gpt-4o-mini"

	defaultBaseURL  = "https://api.openai.com/v1"
	maxOutputTokens = 200
	costPer1KTokens = 0.00015
)

// Adapter implements the Provider interface against the OpenAI
// chat-completions API.
type Adapter struct {
	config       providers.AdapterConfig
	httpClient   *http.Client
	capabilities []models.Capability
}

// New creates an OpenAI adapter.
func New(config providers.AdapterConfig) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		capabilities: []models.Capability{
			{
				Provider:        ID,
				Model:           DefaultModel,
				QualityScore:    0.92,
				CostPer1KTokens: costPer1KTokens,
				AvgLatencyMS:    1200,
				SupportsVision:  true,
				SupportsTools:   true,
				EnergyProfile:   models.EnergyHeavy,
				TaskStrengths:   models.AllTaskTypes(),
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
	return "OpenAI"
}

// Capabilities returns the static capability declarations.
func (a *Adapter) Capabilities() []models.Capability {
	return a.capabilities
}

// SetCapabilities replaces the declared capabilities (catalog override).
func (a *Adapter) SetCapabilities(caps []models.Capability) {
	a.capabilities = caps
}

// Run performs a chat completion and normalizes the result.
func (a *Adapter) Run(ctx context.Context, prompt, credential, model string) (*models.ProviderResult, error) {
	start := time.Now()
	if model == "" {
		model = DefaultModel
	}

	body := chatRequest{
		Model:     model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxOutputTokens,
	}
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, providers.NewProviderError(ID, "MARSHAL_ERROR", "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(ID, "REQUEST_ERROR", "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(ID, "HTTP_ERROR", "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(ID, "READ_ERROR", "failed to read response", httpResp.StatusCode, err)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderError(ID, "UNMARSHAL_ERROR", "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if resp.Error != nil {
		return nil, providers.NewProviderError(ID, resp.Error.Type, resp.Error.Message, httpResp.StatusCode, errors.New(resp.Error.Message))
	}

	text := "Could not generate analysis."
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		text = resp.Choices[0].Message.Content
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = int(math.Ceil(float64(len(prompt))/4)) + int(math.Ceil(float64(len(text))/4))
	}

	return &models.ProviderResult{
		Text:             text,
		Model:            model,
		Provider:         ID,
		LatencyMS:        int(time.Since(start).Milliseconds()),
		EstimatedCostUSD: float64(tokens) / 1000 * costPer1KTokens,
		TokenCount:       tokens,
	}, nil
}

// HealthCheck reports availability. The API offers no unauthenticated probe
// endpoint, so this reports true.
func (a *Adapter) HealthCheck(_ context.Context) bool {
	return true
}

// OpenAI wire types.

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}
