// Package logging provides structured logging utilities for inboxmcp.
//
// All logging goes through log/slog. The process logger is built once by
// NewLogger and always writes to stderr, because stdout carries the MCP
// JSON-RPC stream and any stray byte there corrupts the session.
//
// # Usage Patterns
//
//	logger := logging.WithTool(slog.Default(), "read_emails")
//	logger.Info("tool executed", logging.Status(logging.StatusSuccess))
//
// Tokens and recipient addresses are never logged directly; use
// SanitizeToken and RedactRecipients.
package logging
