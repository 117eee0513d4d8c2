// Package greeting_tools provides the hello tool, which needs no credentials.
package greeting_tools
