// Package api exposes the engine over HTTP/JSON: request decoding, the
// pre-shared key check, tracing, and the wire types shared with the Go
// client. Handlers stay thin; semantics live in the app package.
package api
