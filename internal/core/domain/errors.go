package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates an export file type no parser handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedPayload indicates the file could not be decoded.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingProvider indicates the embedding provider failed a request.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrStoreUnavailable indicates the vector store failed a request.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector does not match the dimension
	// already stored for its owner.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ParseError reports an export file that could not be turned into conversations.
// It is recoverable: ingestion continues with the remaining files.
type ParseError struct {
	Filename string
	Reason   string
	Err      error
}

// NewParseError creates a ParseError wrapping err.
func NewParseError(filename, reason string, err error) *ParseError {
	return &ParseError{Filename: filename, Reason: reason, Err: err}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Filename, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmbeddingError reports a failed call to an embedding provider.
type EmbeddingError struct {
	Provider string
	Err      error
}

// NewEmbeddingError creates an EmbeddingError for the named provider.
func NewEmbeddingError(provider string, err error) *EmbeddingError {
	return &EmbeddingError{Provider: provider, Err: err}
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("%s embeddings: %v", e.Provider, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *EmbeddingError) Unwrap() []error {
	return []error{ErrEmbeddingProvider, e.Err}
}

// StoreError reports a failed vector store operation.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError creates a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}
