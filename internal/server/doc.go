// Package server connects the tool registry to the MCP protocol.
//
// # Key Components
//
// ServerContext holds what tool handlers share: the credential store, the
// fan-out limit for Gmail calls, metrics and the audit logger. Mailbox
// resolves credentials on every call, so an expired token is refreshed the
// next time a Gmail tool runs.
//
// NewMCPServer registers every registry entry with mcp-go using the
// registry's own JSON schema, and ServeStdio runs the server over
// stdin/stdout until the client disconnects or the context is canceled.
// Nothing but protocol messages may be written to stdout.
//
// MetricsServer optionally serves /metrics, /healthz and /readyz on a
// loopback port.
package server
