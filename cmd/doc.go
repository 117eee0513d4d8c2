// Package cmd implements the command-line interface for inboxmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server on stdio (default when no subcommand is given)
//   - auth: Obtain or refresh the Google OAuth token from the terminal
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Settings come from flags, INBOXMCP_* environment variables, an optional
// .env file and an optional --config file, in that order of precedence.
package cmd
