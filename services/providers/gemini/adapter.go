package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/ecocompute/control-plane/models"
	"github.com/ecocompute/control-plane/services/providers"
)

const (
	// ID is the Gemini provider identifier.
	ID = "gemini"

	// DefaultModel is used when the router does not name a model.
	DefaultModel = "gemini-2.0-flash"

	defaultBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	costPer1KTokens = 0.00015
)

// Adapter implements the Provider interface against the Gemini
// generateContent API.
type Adapter struct {
	config       providers.AdapterConfig
	httpClient   *http.Client
	capabilities []models.Capability
}

// New creates a Gemini adapter.
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
				QualityScore:    0.88,
				CostPer1KTokens: costPer1KTokens,
				AvgLatencyMS:    800,
				SupportsVision:  true,
				SupportsTools:   true,
				EnergyProfile:   models.EnergyModerate,
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
	return "Google Gemini"
}

// Capabilities returns the static capability declarations.
func (a *Adapter) Capabilities() []models.Capability {
	return a.capabilities
}

// SetCapabilities replaces the declared capabilities (catalog override).
func (a *Adapter) SetCapabilities(caps []models.Capability) {
	a.capabilities = caps
}

// Run performs a generateContent call and normalizes the result.
func (a *Adapter) Run(ctx context.Context, prompt, credential, model string) (*models.ProviderResult, error) {
	start := time.Now()
	if model == "" {
		model = DefaultModel
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, providers.NewProviderError(ID, "MARSHAL_ERROR", "failed to marshal request", 0, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.config.BaseURL, model, credential)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(ID, "REQUEST_ERROR", "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(ID, "HTTP_ERROR", "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(ID, "READ_ERROR", "failed to read response", httpResp.StatusCode, err)
	}

	var resp generateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderError(ID, "UNMARSHAL_ERROR", "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if resp.Error != nil {
		return nil, providers.NewProviderError(ID, resp.Error.Status, resp.Error.Message, httpResp.StatusCode, errors.New(resp.Error.Message))
	}

	text := "Could not generate analysis."
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}

	tokens := int(math.Ceil(float64(len(prompt))/4)) + int(math.Ceil(float64(len(text))/4))

	return &models.ProviderResult{
		Text:             text,
		Model:            model,
		Provider:         ID,
		LatencyMS:        int(time.Since(start).Milliseconds()),
		EstimatedCostUSD: float64(tokens) / 1000 * costPer1KTokens,
		TokenCount:       tokens,
	}, nil
}

// HealthCheck reports availability. There is no unauthenticated probe
// endpoint, so this reports true.
func (a *Adapter) HealthCheck(_ context.Context) bool {
	return true
}

// Gemini wire types.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
