// Package tui provides an interactive terminal user interface for recall.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"time"

	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Retrieval searches the owner's memories.
	Retrieval driving.RetrievalService

	// Insight reads the time reference and mood of the query. Optional.
	Insight driving.InsightService

	// Settings manages the embedding configuration. Optional.
	Settings driving.SettingsService

	// Owner scopes every search.
	Owner string

	// Now is the reference clock for relative dates. Defaults to time.Now.
	Now func() time.Time
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Owner == "" {
		return ErrMissingOwner
	}
	return nil
}

func (p *Ports) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
