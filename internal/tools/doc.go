// Package tools holds the tool registry shared by the MCP server and the
// documentation generator.
//
// A Tool is a Descriptor (name, description, input schema) plus a Handler.
// Handlers return a typed Result: content blocks on success, or a Failure
// naming the action that failed. Failures are rendered as
// "Error {action}: {err}" text only when the result leaves the registry, so
// the MCP client sees a normal text response for operational errors. A call
// to an unregistered name is the one hard error (ErrUnknownTool).
//
// Tool packages live in subdirectories (greeting_tools, gmail_tools) and
// register themselves:
//
//	reg := tools.NewRegistry(tools.WithStrictArguments(cfg.StrictArgs))
//	if err := greeting_tools.RegisterGreetingTools(reg); err != nil {
//	    return err
//	}
//	blocks, err := reg.CallTool(ctx, "hello", map[string]any{"name": "Ada"})
package tools
