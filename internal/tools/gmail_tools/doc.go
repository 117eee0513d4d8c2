// Package gmail_tools provides the Gmail tools of the MCP server.
//
// send_email and read_emails are always registered. search_emails and
// read_email are registered only when extended tools are enabled, so the
// default catalog stays hello, read_emails and send_email.
//
// Every handler resolves its Mailbox through the ServerContext on each call.
// Credential and API errors become a text result of the form
// "Error {action}: {err}" rather than a protocol error.
package gmail_tools
