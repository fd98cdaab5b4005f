package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecocompute/control-plane/services/providers"
)

func TestRunSuccess(t *testing.T) {
	var gotPath string
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		resp := generateResponse{
			Candidates: []candidate{{Content: content{Parts: []part{{Text: "generated text"}}}}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	adapter := New(providers.AdapterConfig{BaseURL: server.URL})

	result, err := adapter.Run(context.Background(), "analyze this", "gm-key", "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(gotPath, "models/"+DefaultModel) {
		t.Errorf("expected default model in path, got %q", gotPath)
	}
	if !strings.HasSuffix(gotPath, ":generateContent") {
		t.Errorf("expected generateContent endpoint, got %q", gotPath)
	}
	if gotKey != "gm-key" {
		t.Errorf("expected credential as query key, got %q", gotKey)
	}
	if result.Text != "generated text" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.Provider != ID {
		t.Errorf("expected provider %q, got %q", ID, result.Provider)
	}
	if result.TokenCount == 0 {
		t.Error("expected estimated token count")
	}
}

func TestRunAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(generateResponse{
			Error: &apiError{Code: 400, Message: "API key not valid", Status: "INVALID_ARGUMENT"},
		})
	}))
	defer server.Close()

	adapter := New(providers.AdapterConfig{BaseURL: server.URL})

	_, err := adapter.Run(context.Background(), "analyze this", "bad-key", "")
	if err == nil {
		t.Fatal("expected error from API error envelope")
	}

	var provErr *providers.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *providers.ProviderError, got %T", err)
	}
	if provErr.Code != "INVALID_ARGUMENT" {
		t.Errorf("expected code INVALID_ARGUMENT, got %q", provErr.Code)
	}
	if provErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", provErr.StatusCode)
	}
}

func TestRunEmptyCandidatesFallsBackToPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer server.Close()

	adapter := New(providers.AdapterConfig{BaseURL: server.URL})

	result, err := adapter.Run(context.Background(), "analyze this", "gm-key", "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Text != "Could not generate analysis." {
		t.Errorf("unexpected placeholder text %q", result.Text)
	}
}
