package httpapi

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// ErrMissingRetrievalService is returned when Ports has no retrieval service.
var ErrMissingRetrievalService = errors.New("retrieval service is required")

// Ports holds the services the API serves. Ingest and Session are optional;
// their routes are not registered when nil.
type Ports struct {
	Retrieval driving.RetrievalService
	Ingest    driving.IngestService
	Session   driving.SessionService

	// Gatherer backs /metrics. Defaults to the Prometheus default registry.
	Gatherer prometheus.Gatherer

	// Now is the clock used to resolve temporal references.
	Now func() time.Time
}

// Validate checks that required ports are set.
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

func (p *Ports) gatherer() prometheus.Gatherer {
	if p.Gatherer != nil {
		return p.Gatherer
	}
	return prometheus.DefaultGatherer
}
