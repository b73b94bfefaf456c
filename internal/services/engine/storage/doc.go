// Package storage defines persistence boundaries for the engine service.
//
// Interfaces here are grouped by aggregate: campaigns with their rosters,
// the append-only event log, scoped memories, per-actor read cursors, the
// campaign key/value state bag, and resolved dice rolls. Implementations
// live in subpackages; sqlite is the default backend.
package storage
