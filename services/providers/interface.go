package providers

import (
	"context"
	"time"

	"github.com/ecocompute/control-plane/models"
)

// Provider is the unified inference backend interface. Credentials are
// opaque per-call tokens supplied by the caller; adapters forward them
// verbatim and own their own protocol details.
type Provider interface {
	// ID returns the stable provider identifier (e.g. "demo", "gemini").
	ID() string

	// Name returns the human-readable provider name.
	Name() string

	// Capabilities returns the static (provider, model) declarations this
	// backend offers. The returned slice must not be mutated.
	Capabilities() []models.Capability

	// Run invokes the backend for a prompt and normalizes the result.
	// An empty model selects the adapter's default.
	Run(ctx context.Context, prompt, credential, model string) (*models.ProviderResult, error)

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) bool
}

// AdapterConfig holds common knobs for HTTP-backed adapters.
type AdapterConfig struct {
	// BaseURL overrides the provider API endpoint (used by tests).
	BaseURL string

	// Timeout bounds each HTTP call.
	Timeout time.Duration
}

// ProviderError represents an error surfaced by a provider adapter.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error.
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}
