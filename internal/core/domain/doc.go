// Package domain defines the core business entities for recall.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Conversation: A normalised chat export with ordered messages
//   - Chunk: A bounded, overlapping slice of a conversation transcript
//   - ChunkRecord: A chunk with its owner, vector and creation time
//   - TemporalRange: A calendar interval derived from a query
//   - MoodAnalysis: A heuristic emotional reading of a message
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
