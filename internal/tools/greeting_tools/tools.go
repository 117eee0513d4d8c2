package greeting_tools

import (
	"context"
	"fmt"

	"github.com/teemow/inboxmcp/internal/tools"
)

// DefaultName is greeted when no name is given.
const DefaultName = "World"

// RegisterGreetingTools registers the hello tool with the registry.
func RegisterGreetingTools(reg *tools.Registry) error {
	helloTool := tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "hello",
			Description: "A simple tool that returns a greeting message",
			InputSchema: tools.ObjectSchema(map[string]tools.Property{
				"name": {
					Type:        tools.TypeString,
					Description: "Name of the person to greet",
				},
			}, "name"),
		},
		Handler: handleHello,
	}

	if err := reg.Register(helloTool); err != nil {
		return fmt.Errorf("failed to register greeting tools: %w", err)
	}
	return nil
}

func handleHello(_ context.Context, args tools.Arguments) tools.Result {
	name := args.String("name")
	if name == "" {
		name = DefaultName
	}
	return tools.TextResult(fmt.Sprintf("Hello, %s! Welcome to the MCP server.", name))
}
