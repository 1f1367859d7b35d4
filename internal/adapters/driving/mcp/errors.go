// Package mcp provides an MCP (Model Context Protocol) server adapter for recall.
// It lets AI assistants search, extend and annotate a user's conversational memory.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingOwner is returned when a tool call names no owner and no default is set.
var ErrMissingOwner = errors.New("mcp: owner is required")
