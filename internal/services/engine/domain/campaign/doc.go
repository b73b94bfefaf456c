// Package campaign provides the campaign aggregate and its actor roster.
//
// A campaign is the durable unit of play: a fixed roster of actors, an
// append-only event log, a scoped memory store, and a small key/value
// state bag. The roster is set once at creation; the core never adds or
// removes actors afterwards.
//
// The package also owns the canonical turn order. Dungeon-master actors
// come first sorted by id, then every other actor sorted by id, so the
// DM always opens a round and the order is deterministic regardless of
// insertion order.
package campaign
