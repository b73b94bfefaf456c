// Package app orchestrates engine operations over the storage layer.
//
// Every operation that reads or writes a single campaign runs under that
// campaign's exclusive lock, so turn advances, director calls, and event
// appends observe each other's effects in a serial order. Campaigns are
// fully independent of one another.
package app
