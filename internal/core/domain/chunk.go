package domain

import (
	"fmt"
	"time"
)

// Chunk is a bounded, overlapping slice of a conversation transcript.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// ID is "{ConversationID}-{Index}".
	ID string

	// ConversationID refers back to the conversation this chunk was cut from.
	ConversationID string

	// Content is the trimmed chunk text.
	Content string

	// Source is inherited from the conversation.
	Source Source

	// Title is inherited from the conversation.
	Title string

	// Index is the 0-based position within the conversation.
	Index int
}

// ChunkID builds the stable identifier for the i-th chunk of a conversation.
func ChunkID(conversationID string, index int) string {
	return fmt.Sprintf("%s-%d", conversationID, index)
}

// ChunkRecord is a chunk persisted in a vector store.
type ChunkRecord struct {
	Chunk

	// OwnerID scopes the row to a single user.
	OwnerID string

	// Vector is the chunk embedding.
	Vector []float32

	// CreatedAt is used by ranged search.
	CreatedAt time.Time
}
