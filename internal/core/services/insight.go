package services

import (
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/mood"
	"github.com/custodia-labs/recall/internal/temporal"
)

// Ensure InsightService implements the interface.
var _ driving.InsightService = (*InsightService)(nil)

// InsightService exposes the mood and temporal heuristics.
type InsightService struct{}

// NewInsightService creates a new insight service.
func NewInsightService() *InsightService {
	return &InsightService{}
}

// AnalyzeMood estimates the emotional state of a message.
func (s *InsightService) AnalyzeMood(message string) *domain.MoodAnalysis {
	return mood.Analyze(message)
}

// ParseTemporal extracts a calendar range from a message.
func (s *InsightService) ParseTemporal(message string, now time.Time) *domain.TemporalRange {
	return temporal.Parse(message, now)
}
