// Package trace holds the process-wide execution trace log. The log is the
// one piece of mutable shared state in the control plane; it is injected
// explicitly so tests can run against isolated instances.
package trace

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ecocompute/control-plane/models"
)

// SchemaVersion tags exported datasets.
const SchemaVersion = "0.3.0"

// Log is a mutex-guarded, append-only list of execution traces with
// application lifetime. It is unbounded; Clear is the only eviction.
type Log struct {
	mu      sync.RWMutex
	entries []models.ExecutionTrace
}

// NewLog creates an empty trace log.
func NewLog() *Log {
	return &Log{}
}

// Record appends one trace. Appends are atomic per call; concurrent callers
// never interleave entries.
func (l *Log) Record(t models.ExecutionTrace) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, t)
}

// List returns a snapshot of all traces in insertion order.
func (l *Log) List() []models.ExecutionTrace {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.ExecutionTrace, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded traces.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
}

// Dataset is the export envelope for the trace log.
type Dataset struct {
	SchemaVersion string                  `json:"schema_version"`
	ExportedAt    time.Time               `json:"exported_at"`
	TraceCount    int                     `json:"trace_count"`
	Traces        []models.ExecutionTrace `json:"traces"`
}

// ExportDataset serializes the full log as an indented JSON dataset.
func (l *Log) ExportDataset() ([]byte, error) {
	traces := l.List()

	return json.MarshalIndent(Dataset{
		SchemaVersion: SchemaVersion,
		ExportedAt:    time.Now().UTC(),
		TraceCount:    len(traces),
		Traces:        traces,
	}, "", "  ")
}
