// Package migrations contains embedded SQL migrations for the SQLite store.
package migrations

import "embed"

//go:embed engine/*.sql
var EngineFS embed.FS
