package domain

import "time"

// Default result counts for retrieval.
const (
	// RangedTopK is the number of results requested for a time-filtered search.
	RangedTopK = 5

	// UnfilteredTopK is the number of results requested for a plain search
	// and for the fallback after a ranged search fails.
	UnfilteredTopK = 3
)

// SearchResult represents a single similarity hit.
type SearchResult struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	Source         Source     `json:"source"`
	Title          string     `json:"title"`
	ConversationID string     `json:"conversationId"`
	Similarity     float64    `json:"similarity"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// RetrievalResult is the outcome of a retrieval request.
type RetrievalResult struct {
	// Content holds results ranked by descending similarity.
	Content []SearchResult `json:"results"`

	// HadTemporalMiss is true when a ranged search succeeded but found nothing,
	// so the caller can say that nothing was found for that period.
	HadTemporalMiss bool `json:"hadTemporalMiss"`
}
