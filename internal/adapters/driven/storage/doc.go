// Package storage holds the ranking helpers shared by the vector store
// adapters that score candidates in process (memory and sqlite).
package storage
