// Package postgres provides a Postgres implementation of driven.VectorStore
// backed by the pgvector extension.
//
// Similarity ranking runs in the database through the match_chunks and
// match_chunks_in_range SQL functions, which order by cosine distance.
// The schema is created by the embedded migrations on first connect.
package postgres
