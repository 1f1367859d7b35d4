// Package migrations holds the SQLite schema for chat chunks.
package migrations

import "embed"

// FS is applied in version order when the store opens.
//
//go:embed *.sql
var FS embed.FS
