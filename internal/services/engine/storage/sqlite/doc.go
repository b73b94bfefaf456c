// Package sqlite implements the engine storage interfaces on SQLite.
//
// One database file holds every table. Timestamps persist as UTC
// millisecond integers; event append order is protected by a monotonic
// shim on created_at so cursor pagination never loses ties.
package sqlite
