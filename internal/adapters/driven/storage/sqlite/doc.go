// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Embeddings are stored as little-endian
// float32 blobs and ranked in process by cosine similarity.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Rows are keyed by (user_id, id) so that two owners can hold the same chunk.
//
// # Data Location
//
// By default, the database is stored at ~/.recall/data/memory.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
