// Package migrations holds the Postgres schema for chat chunks, including
// the pgvector extension and its index.
package migrations

import "embed"

// FS is applied in version order when the store connects.
//
//go:embed *.sql
var FS embed.FS
