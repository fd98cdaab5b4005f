package config

import (
	"fmt"
	"os"

	"github.com/ecocompute/control-plane/models"
	"gopkg.in/yaml.v3"
)

// Catalog is an optional YAML file that overrides the adapters' built-in
// capability declarations. Capabilities are static configuration; loading
// them from a file lets operators retune quality/cost/latency profiles
// without a rebuild.
type Catalog struct {
	Providers []CatalogEntry `yaml:"providers"`
}

// CatalogEntry overrides the capabilities of one provider.
type CatalogEntry struct {
	ID           string           `yaml:"id"`
	Capabilities []CapabilitySpec `yaml:"capabilities"`
}

// CapabilitySpec is the YAML form of one capability declaration.
type CapabilitySpec struct {
	Model           string   `yaml:"model"`
	QualityScore    float64  `yaml:"quality_score"`
	CostPer1KTokens float64  `yaml:"cost_per_1k_tokens"`
	AvgLatencyMS    int      `yaml:"avg_latency_ms"`
	SupportsVision  bool     `yaml:"supports_vision"`
	SupportsTools   bool     `yaml:"supports_tools"`
	EnergyProfile   string   `yaml:"energy_profile"`
	TaskStrengths   []string `yaml:"task_strengths"`
}

// LoadCatalog reads and validates a capability catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for _, entry := range catalog.Providers {
		if entry.ID == "" {
			return nil, fmt.Errorf("catalog entry missing provider id")
		}
		for _, spec := range entry.Capabilities {
			if spec.Model == "" {
				return nil, fmt.Errorf("catalog entry for %q missing model", entry.ID)
			}
			for _, task := range spec.TaskStrengths {
				if !models.TaskType(task).Valid() {
					return nil, fmt.Errorf("catalog entry for %q has unknown task type %q", entry.ID, task)
				}
			}
		}
	}

	return &catalog, nil
}

// CapabilitiesFor returns the override capabilities for a provider id, or
// nil when the catalog has no entry for it.
func (c *Catalog) CapabilitiesFor(id string) []models.Capability {
	for _, entry := range c.Providers {
		if entry.ID != id {
			continue
		}
		caps := make([]models.Capability, 0, len(entry.Capabilities))
		for _, spec := range entry.Capabilities {
			tasks := make([]models.TaskType, 0, len(spec.TaskStrengths))
			for _, t := range spec.TaskStrengths {
				tasks = append(tasks, models.TaskType(t))
			}
			caps = append(caps, models.Capability{
				Provider:        id,
				Model:           spec.Model,
				QualityScore:    spec.QualityScore,
				CostPer1KTokens: spec.CostPer1KTokens,
				AvgLatencyMS:    spec.AvgLatencyMS,
				SupportsVision:  spec.SupportsVision,
				SupportsTools:   spec.SupportsTools,
				EnergyProfile:   models.EnergyProfile(spec.EnergyProfile),
				TaskStrengths:   tasks,
			})
		}
		return caps
	}
	return nil
}
