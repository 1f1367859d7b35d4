package mcp

import (
	"time"

	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Retrieval answers memory searches.
	Retrieval driving.RetrievalService

	// Ingest imports exports. Optional; the tool is not registered without it.
	Ingest driving.IngestService

	// Session saves live sessions. Optional.
	Session driving.SessionService

	// Insight exposes the mood and temporal heuristics. Optional.
	Insight driving.InsightService

	// Owner is used when a tool call does not name one.
	Owner string

	// Now is the clock for temporal parsing. Defaults to time.Now.
	Now func() time.Time
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

func (p *Ports) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Ports) owner(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if p.Owner != "" {
		return p.Owner, nil
	}
	return "", ErrMissingOwner
}
