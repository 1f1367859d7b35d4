package driving

import (
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// InsightService exposes the pure heuristics used to shape prompts.
type InsightService interface {
	// AnalyzeMood estimates the emotional state of a message.
	// Returns nil when the message is too short or nothing matched.
	AnalyzeMood(message string) *domain.MoodAnalysis

	// ParseTemporal extracts a calendar range from a message.
	// Returns nil when the message has no time reference.
	ParseTemporal(message string, now time.Time) *domain.TemporalRange
}
