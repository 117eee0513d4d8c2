package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxmcp/internal/tools"
)

// NewMCPServer exposes every tool in reg through an MCP server. The wire
// schema of each tool is the registry's schema verbatim.
func NewMCPServer(name, version string, reg *tools.Registry) (*mcpserver.MCPServer, error) {
	s := mcpserver.NewMCPServer(name, version,
		mcpserver.WithToolCapabilities(true),
	)

	for _, d := range reg.ListTools() {
		schema, err := d.InputSchema.MarshalRaw()
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema of tool %s: %w", d.Name, err)
		}
		s.AddTool(mcp.NewToolWithRawSchema(d.Name, d.Description, schema), toolHandler(reg, d.Name))
	}
	return s, nil
}

// toolHandler adapts a registry entry to mcp-go. Operational failures arrive
// as text blocks; a returned error becomes a JSON-RPC error.
func toolHandler(reg *tools.Registry, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		blocks, err := reg.CallTool(ctx, name, request.GetArguments())
		if err != nil {
			return nil, err
		}

		content := make([]mcp.Content, 0, len(blocks))
		for _, b := range blocks {
			content = append(content, mcp.NewTextContent(b.Text))
		}
		return &mcp.CallToolResult{Content: content}, nil
	}
}

// ServeStdio serves s over in/out until in is closed or ctx is done.
// Nothing else may write to out.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := mcpserver.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return nil
	default:
		return fmt.Errorf("server stopped with error: %w", err)
	}
}
