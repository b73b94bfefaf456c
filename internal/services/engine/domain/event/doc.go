// Package event provides the append-only campaign event log entries and
// the visibility lattice that governs who may read them.
//
// Events are immutable once appended. The log itself is raw: filtering is
// always the reader's concern, applied through Visible. Unknown visibility
// labels are readable by no one.
package event
