// Package timeouts defines shared timeout constants for HTTP serving.
// Centralizing the values keeps the engine server and its tests in
// agreement about how patient the process is at the edges.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
