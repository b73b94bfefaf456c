// Package service exposes the engine API as MCP tools over stdio.
//
// Each tool maps one engine endpoint:
// - parse the MCP tool input into an engine request,
// - call the engine over its authenticated HTTP API,
// - and surface a structured result MCP clients can render.
//
// The adapter holds no state of its own; visibility filtering, turn
// rotation, and persistence all stay behind the engine.
package service
